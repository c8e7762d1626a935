package syntax

import (
	"context"
	"log/slog"
	"strings"

	"github.com/codechat/curator/internal/record"
)

// codeSeparator joins a turn's code blocks into the single column that the
// linter sees and that downstream stages and the stored artifact carry. The
// structural metrics work per block and never see it.
const codeSeparator = "\n\n// ===== CODEBLOCK =====\n\n"

// Evaluator scores one filtered turn with the in-process metrics and the
// external linter.
type Evaluator struct {
	linter *LintRunner
	logger *slog.Logger
}

func NewEvaluator(linter *LintRunner, logger *slog.Logger) *Evaluator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Evaluator{linter: linter, logger: logger}
}

// Evaluate always yields exactly one scored record per input turn. A linter
// crash on a particular record zeroes its lint counts instead of failing the
// stage; the structural metrics still stand.
func (e *Evaluator) Evaluate(ctx context.Context, turn record.FilteredTurn) ([]record.SyntaxScore, error) {
	code := strings.Join(turn.Code, codeSeparator)
	m := Analyze(turn.Code)

	counts, err := e.linter.Count(ctx, code)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		e.logger.Warn("lint failed, scoring zero", "id", turn.TurnID, "error", err)
		counts = LintCounts{}
	}

	score := record.SyntaxScore{
		TurnID:     turn.TurnID,
		Model:      turn.Model,
		Prompt:     turn.Prompt,
		Response:   turn.Response,
		Code:       code,
		PrevTurnID: turn.PrevTurnID,

		Parseable:       m.Parseable,
		Lines:           m.Lines,
		StyleErrors:     counts.StyleErrors,
		StyleWarnings:   counts.StyleWarnings,
		LogicIssues:     counts.LogicIssues,
		BugIssues:       counts.BugIssues,
		SecurityIssues:  counts.SecurityIssues,
		Complexity:      m.Complexity,
		Maintainability: m.Maintainability,
	}
	return []record.SyntaxScore{score}, nil
}
