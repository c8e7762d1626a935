package syntax

import (
	"context"
	"encoding/json"
	"fmt"
	"go/parser"
	"go/token"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/codechat/curator/internal/pipeline"
)

// LintCounts groups lint findings by what kind of problem they indicate.
type LintCounts struct {
	StyleErrors    int
	StyleWarnings  int
	LogicIssues    int
	BugIssues      int
	SecurityIssues int
}

// linterCategory maps a golangci-lint linter name to the counter it feeds.
// Linters outside the map still count as style warnings, the mildest bucket.
var linterCategory = map[string]string{
	"stylecheck":  "style_error",
	"gosimple":    "style_warning",
	"govet":       "logic",
	"staticcheck": "bug",
	"gosec":       "security",
}

// runFunc executes the lint binary in dir and returns its stdout. Swappable
// for tests.
type runFunc func(ctx context.Context, bin, dir string, args ...string) ([]byte, error)

// LintRunner scores code blocks with golangci-lint. Each invocation writes
// the code into a throwaway module so the linter sees a buildable layout.
type LintRunner struct {
	bin string
	run runFunc
}

// NewLintRunner resolves the lint binary up front so a missing install fails
// before any work is scheduled.
func NewLintRunner(bin string) (*LintRunner, error) {
	path, err := exec.LookPath(bin)
	if err != nil {
		return nil, &pipeline.ConfigError{
			Msg:    fmt.Sprintf("lint binary %q not found", bin),
			Remedy: "install golangci-lint (https://golangci-lint.run/welcome/install/) or set syntax.lint_bin",
		}
	}
	return &LintRunner{bin: path, run: runCommand}, nil
}

func runCommand(ctx context.Context, bin, dir string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Dir = dir
	return cmd.Output()
}

// lintReport is the subset of golangci-lint's JSON output we read.
type lintReport struct {
	Issues []struct {
		FromLinter string `json:"FromLinter"`
	} `json:"Issues"`
}

// Count lints one block of code. Lint failures other than "issues found" are
// reported to the caller, which treats them as a zero score rather than a
// stage failure; a response that crashes the linter is just bad code.
func (l *LintRunner) Count(ctx context.Context, code string) (LintCounts, error) {
	dir, err := os.MkdirTemp("", "curator-lint-*")
	if err != nil {
		return LintCounts{}, fmt.Errorf("creating lint workspace: %w", err)
	}
	defer os.RemoveAll(dir)

	files := map[string]string{
		"go.mod":  "module lintcheck\n\ngo 1.22\n",
		"main.go": ensureFile(code),
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			return LintCounts{}, fmt.Errorf("writing lint workspace: %w", err)
		}
	}

	out, runErr := l.run(ctx, l.bin, dir, "run", "--out-format", "json", "./...")
	// Exit code 1 means issues were found and the JSON is still on stdout.
	// Parse whatever we got; only an unparseable payload is an error.
	var report lintReport
	if err := json.Unmarshal(out, &report); err != nil {
		if runErr != nil {
			return LintCounts{}, fmt.Errorf("lint run failed: %w", runErr)
		}
		return LintCounts{}, fmt.Errorf("parsing lint output: %w", err)
	}

	var counts LintCounts
	for _, issue := range report.Issues {
		switch linterCategory[issue.FromLinter] {
		case "style_error":
			counts.StyleErrors++
		case "logic":
			counts.LogicIssues++
		case "bug":
			counts.BugIssues++
		case "security":
			counts.SecurityIssues++
		default:
			counts.StyleWarnings++
		}
	}
	return counts, nil
}

// ensureFile makes a snippet lintable as a standalone file by prepending a
// package clause when the author left it out.
func ensureFile(code string) string {
	if _, err := parser.ParseFile(token.NewFileSet(), "main.go", code, parser.PackageClauseOnly); err == nil {
		return code
	}
	return "package main\n\n" + code
}
