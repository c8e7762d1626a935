package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/codechat/curator/internal/artifact"
	"github.com/codechat/curator/internal/config"
	"github.com/codechat/curator/internal/dataset"
	"github.com/codechat/curator/internal/executor"
	"github.com/codechat/curator/internal/filter"
	"github.com/codechat/curator/internal/judge"
	"github.com/codechat/curator/internal/langid"
	"github.com/codechat/curator/internal/pipeline"
	"github.com/codechat/curator/internal/progress"
	"github.com/codechat/curator/internal/record"
	"github.com/codechat/curator/internal/syntax"
)

// app bundles the pieces every command needs: the effective configuration and
// the artifact store rooted at its data directory.
type app struct {
	cfg    *config.Config
	store  *artifact.Store
	logger *slog.Logger
}

func loadApp(cmd *cobra.Command) (*app, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	explicit := cmd.Flags().Changed("config")

	cfg, err := config.Load(path, explicit)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	return &app{
		cfg:    cfg,
		store:  artifact.NewStore(cfg.DataDir),
		logger: slog.Default(),
	}, nil
}

func (a *app) workers() int {
	if a.cfg.Workers > 0 {
		return a.cfg.Workers
	}
	return executor.DefaultWorkers()
}

func (a *app) source() *dataset.Source {
	return &dataset.Source{
		Name:     a.cfg.Dataset.Name,
		Revision: a.cfg.Dataset.Revision,
		File:     a.cfg.Dataset.File,
		BaseURL:  a.cfg.Dataset.BaseURL,
	}
}

// Stage cache keys chain: a parameter change upstream invalidates every stage
// after it.

func (a *app) filterKey() (string, error) {
	return artifact.Key("filter", a.cfg.Filter)
}

func (a *app) syntaxKey() (string, error) {
	fk, err := a.filterKey()
	if err != nil {
		return "", err
	}
	return artifact.ChainKey("syntax", fk, a.cfg.Syntax)
}

func (a *app) semanticKey() (string, error) {
	sk, err := a.syntaxKey()
	if err != nil {
		return "", err
	}
	return artifact.ChainKey("semantic", sk, a.cfg.Judge)
}

// loadConversations requires the dataset snapshot to already exist; commands
// that need it point the user at 'curator load' instead of downloading as a
// side effect.
func (a *app) loadConversations() ([]record.Conversation, error) {
	path := a.source().LocalPath(a.cfg.DataDir)
	if _, err := os.Stat(path); err != nil {
		return nil, &pipeline.ConfigError{
			Msg:    fmt.Sprintf("dataset snapshot %s not found", path),
			Remedy: "run 'curator load' first",
		}
	}
	return dataset.Load(path)
}

// runStage executes one stage with a terminal progress bar and normalizes its
// error class: interrupts and configuration problems pass through, anything
// else becomes a stage failure.
func runStage[I record.Keyed, O record.Keyed](ctx context.Context, s *pipeline.Stage[I, O], inputs []I) ([]O, bool, error) {
	bar := progress.NewBar(os.Stderr, s.Name)
	s.Observer = bar.Observe

	outputs, cached, err := s.Run(ctx, inputs)
	bar.Finish()
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, false, err
		}
		var cfgErr *pipeline.ConfigError
		if errors.As(err, &cfgErr) {
			return nil, false, err
		}
		return nil, false, &pipeline.StageError{Stage: s.Name, Err: err}
	}
	return outputs, cached, nil
}

// filterStage builds the filtering stage. Inputs come from the dataset
// snapshot; outputs are the qualifying turns.
func (a *app) filterStage() (*pipeline.Stage[record.Conversation, record.FilteredTurn], error) {
	key, err := a.filterKey()
	if err != nil {
		return nil, err
	}
	eval := filter.NewEvaluator(langid.New(), a.cfg.Filter.Langs, a.cfg.Filter.MinLines, a.cfg.Filter.OnlyEnglish)
	return &pipeline.Stage[record.Conversation, record.FilteredTurn]{
		Name:     "filter",
		Key:      key,
		Schema:   record.FilteredTurnSchema,
		Store:    a.store,
		Workers:  a.workers(),
		Evaluate: eval.Evaluate,
	}, nil
}

func (a *app) syntaxStage() (*pipeline.Stage[record.FilteredTurn, record.SyntaxScore], error) {
	key, err := a.syntaxKey()
	if err != nil {
		return nil, err
	}
	linter, err := syntax.NewLintRunner(a.cfg.Syntax.LintBin)
	if err != nil {
		return nil, err
	}
	eval := syntax.NewEvaluator(linter, a.logger)
	return &pipeline.Stage[record.FilteredTurn, record.SyntaxScore]{
		Name:     "syntax",
		Key:      key,
		Schema:   record.SyntaxScoreSchema,
		Store:    a.store,
		Workers:  a.workers(),
		Evaluate: eval.Evaluate,
	}, nil
}

func (a *app) semanticStage(ctx context.Context) (*pipeline.Stage[record.SyntaxScore, record.SemanticScore], error) {
	key, err := a.semanticKey()
	if err != nil {
		return nil, err
	}
	client := judge.NewClient(a.cfg.Judge.Endpoint, a.cfg.Judge.Model)
	if err := client.Ping(ctx); err != nil {
		return nil, err
	}
	eval, err := judge.NewEvaluator(client, a.cfg.Judge.Dimensions, a.cfg.Judge.Retries)
	if err != nil {
		return nil, err
	}
	return &pipeline.Stage[record.SyntaxScore, record.SemanticScore]{
		Name:     "semantic",
		Key:      key,
		Schema:   record.SemanticScoreSchema,
		Store:    a.store,
		Workers:  a.workers(),
		Evaluate: eval.Evaluate,
	}, nil
}

// upstreamTurns loads the filter stage's published artifact for the syntax
// stage to consume.
func (a *app) upstreamTurns() ([]record.FilteredTurn, error) {
	key, err := a.filterKey()
	if err != nil {
		return nil, err
	}
	if !a.store.Exists("filter", key) {
		return nil, &pipeline.ConfigError{
			Msg:    "filter stage output not found",
			Remedy: "run 'curator filter' first",
		}
	}
	tbl, err := a.store.Load("filter", key)
	if err != nil {
		return nil, err
	}
	return record.FromRows[record.FilteredTurn](tbl.Rows)
}

// upstreamScores loads the syntax stage's published artifact for the semantic
// stage to consume.
func (a *app) upstreamScores() ([]record.SyntaxScore, error) {
	key, err := a.syntaxKey()
	if err != nil {
		return nil, err
	}
	if !a.store.Exists("syntax", key) {
		return nil, &pipeline.ConfigError{
			Msg:    "syntax stage output not found",
			Remedy: "run 'curator syntax' first",
		}
	}
	tbl, err := a.store.Load("syntax", key)
	if err != nil {
		return nil, err
	}
	return record.FromRows[record.SyntaxScore](tbl.Rows)
}
