// Package config loads curator.yaml, the single configuration file driving
// every pipeline stage.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/codechat/curator/internal/record"
)

// Config is the full pipeline configuration.
type Config struct {
	// DataDir holds artifacts, checkpoints and the dataset snapshot.
	DataDir string `yaml:"data_dir"`

	// Workers is the evaluator pool size. Zero selects half the logical CPUs.
	Workers int `yaml:"workers"`

	Dataset DatasetConfig `yaml:"dataset"`
	Filter  FilterConfig  `yaml:"filter"`
	Syntax  SyntaxConfig  `yaml:"syntax"`
	Judge   JudgeConfig   `yaml:"judge"`
	Remote  RemoteConfig  `yaml:"remote"`
}

// DatasetConfig pins the input dataset to an immutable revision.
type DatasetConfig struct {
	Name     string `yaml:"name"`
	Revision string `yaml:"revision"`
	File     string `yaml:"file"`
	BaseURL  string `yaml:"base_url"`
}

// FilterConfig holds the filtering stage's effective parameters. These feed
// the stage's cache key, so changing them produces a new artifact.
type FilterConfig struct {
	// Langs are the fence info-string languages accepted as target code.
	Langs []string `yaml:"langs" json:"langs"`
	// MinLines is the non-trivial threshold: a block qualifies when it has
	// more than this many non-blank, non-comment lines.
	MinLines int `yaml:"min_lines" json:"min_lines"`
	// OnlyEnglish excludes turns whose prompt is not classified as English.
	OnlyEnglish bool `yaml:"only_english" json:"only_english"`
}

// SyntaxConfig configures the static-analysis stage.
type SyntaxConfig struct {
	// LintBin is the linter executable looked up on PATH.
	LintBin string `yaml:"lint_bin" json:"lint_bin"`
}

// JudgeConfig configures the LLM judge.
type JudgeConfig struct {
	Endpoint string `yaml:"endpoint" json:"-"`
	Model    string `yaml:"model" json:"model"`
	// Retries is how many times a failed judge exchange is re-attempted
	// before the record fails permanently.
	Retries int `yaml:"retries" json:"retries"`
	// Dimensions is the judged dimension set. Must be a subset of the known
	// semantic dimensions.
	Dimensions []string `yaml:"dimensions" json:"dimensions"`
}

// RemoteConfig points at an optional blob-storage mirror for artifacts.
type RemoteConfig struct {
	AccountURL string `yaml:"account_url"`
	Container  string `yaml:"container"`
}

// Default returns the configuration used when no curator.yaml is present.
func Default() *Config {
	return &Config{
		DataDir: "data",
		Dataset: DatasetConfig{
			Name:     "Suzhen/CodeChat-V2.0",
			Revision: "09dacf311596f8214075878600dcb60e5bcd7eb4",
			File:     "train.jsonl",
			BaseURL:  "https://huggingface.co",
		},
		Filter: FilterConfig{
			Langs:       []string{"go", "golang"},
			MinLines:    5,
			OnlyEnglish: true,
		},
		Syntax: SyntaxConfig{
			LintBin: "golangci-lint",
		},
		Judge: JudgeConfig{
			Endpoint:   "http://localhost:11434",
			Model:      "qwen3-coder:30b",
			Retries:    1,
			Dimensions: record.SemanticDimensions,
		},
	}
}

// Load reads a curator.yaml, overlaying it on the defaults. A missing file is
// not an error when path is the conventional default name; an explicitly
// requested file must exist.
func Load(path string, explicit bool) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return cfg, nil
		}
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.DataDir == "" {
		return errors.New("data_dir must not be empty")
	}
	if len(c.Filter.Langs) == 0 {
		return errors.New("filter.langs must name at least one language")
	}
	if c.Filter.MinLines < 0 {
		return errors.New("filter.min_lines must not be negative")
	}
	if c.Judge.Retries < 0 {
		return errors.New("judge.retries must not be negative")
	}
	if len(c.Judge.Dimensions) == 0 {
		return errors.New("judge.dimensions must name at least one dimension")
	}
	for _, dim := range c.Judge.Dimensions {
		if !slices.Contains(record.SemanticDimensions, dim) {
			return fmt.Errorf("judge.dimensions: unknown dimension %q", dim)
		}
	}
	return nil
}
