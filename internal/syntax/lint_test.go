package syntax

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codechat/curator/internal/pipeline"
)

func fakeLint(output []byte, err error) (*LintRunner, *[]string) {
	var dirs []string
	return &LintRunner{
		bin: "golangci-lint",
		run: func(_ context.Context, _, dir string, _ ...string) ([]byte, error) {
			dirs = append(dirs, dir)
			return output, err
		},
	}, &dirs
}

func TestNewLintRunnerMissingBinary(t *testing.T) {
	_, err := NewLintRunner("definitely-not-a-real-linter-binary")

	var cfgErr *pipeline.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, cfgErr.Remedy, "install golangci-lint")
}

func TestCountCategorizesIssues(t *testing.T) {
	out := []byte(`{"Issues":[
		{"FromLinter":"stylecheck"},
		{"FromLinter":"stylecheck"},
		{"FromLinter":"gosimple"},
		{"FromLinter":"govet"},
		{"FromLinter":"staticcheck"},
		{"FromLinter":"gosec"},
		{"FromLinter":"unused"}
	]}`)
	runner, _ := fakeLint(out, nil)

	counts, err := runner.Count(context.Background(), "package main\n")
	require.NoError(t, err)

	assert.Equal(t, 2, counts.StyleErrors)
	assert.Equal(t, 2, counts.StyleWarnings, "unknown linters fall into the mildest bucket")
	assert.Equal(t, 1, counts.LogicIssues)
	assert.Equal(t, 1, counts.BugIssues)
	assert.Equal(t, 1, counts.SecurityIssues)
}

func TestCountCleanCode(t *testing.T) {
	runner, _ := fakeLint([]byte(`{"Issues":[]}`), nil)

	counts, err := runner.Count(context.Background(), "package main\n")
	require.NoError(t, err)
	assert.Zero(t, counts)
}

func TestCountIssuesFoundExitCode(t *testing.T) {
	// golangci-lint exits non-zero when it finds issues but still emits JSON.
	runner, _ := fakeLint([]byte(`{"Issues":[{"FromLinter":"govet"}]}`), errors.New("exit status 1"))

	counts, err := runner.Count(context.Background(), "package main\n")
	require.NoError(t, err)
	assert.Equal(t, 1, counts.LogicIssues)
}

func TestCountLintCrash(t *testing.T) {
	runner, _ := fakeLint([]byte("panic: something went wrong"), errors.New("exit status 3"))

	_, err := runner.Count(context.Background(), "package main\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lint run failed")
}

func TestCountWorkspaceCleanedUp(t *testing.T) {
	runner, dirs := fakeLint([]byte(`{"Issues":[]}`), nil)

	_, err := runner.Count(context.Background(), "func main() {}\n")
	require.NoError(t, err)

	require.Len(t, *dirs, 1)
	_, statErr := os.Stat((*dirs)[0])
	assert.True(t, os.IsNotExist(statErr), "lint workspace must not outlive the invocation")
}

func TestCountWorkspaceContents(t *testing.T) {
	var gotMain string
	runner := &LintRunner{
		bin: "golangci-lint",
		run: func(_ context.Context, _, dir string, _ ...string) ([]byte, error) {
			data, err := os.ReadFile(filepath.Join(dir, "main.go"))
			require.NoError(t, err)
			gotMain = string(data)
			return []byte(`{"Issues":[]}`), nil
		},
	}

	_, err := runner.Count(context.Background(), "func main() {}\n")
	require.NoError(t, err)
	assert.Equal(t, "package main\n\nfunc main() {}\n", gotMain,
		"snippets get a package clause before linting")
}

func TestEnsureFileKeepsCompleteFiles(t *testing.T) {
	code := "package tool\n\nfunc run() {}\n"
	assert.Equal(t, code, ensureFile(code))
}
