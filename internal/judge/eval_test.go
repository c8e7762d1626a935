package judge

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codechat/curator/internal/pipeline"
	"github.com/codechat/curator/internal/record"
)

// scriptedChatter replays canned replies in order.
type scriptedChatter struct {
	replies []string
	calls   int
}

func (s *scriptedChatter) Chat(_ context.Context, _, _ string) (string, error) {
	reply := s.replies[s.calls]
	if s.calls < len(s.replies)-1 {
		s.calls++
	}
	return reply, nil
}

var allDims = record.SemanticDimensions

func testTurn() record.SyntaxScore {
	return record.SyntaxScore{
		TurnID: "conv-1:0",
		Prompt: "write add",
		Code:   "func add(a, b int) int { return a + b }",
	}
}

func TestEvaluateParsesScores(t *testing.T) {
	chatter := &scriptedChatter{replies: []string{
		`{"clarity":5,"specificity":4,"completeness":4,"correctness":5,"robustness":3,"readability":5,"efficiency":4}`,
	}}
	eval, err := NewEvaluator(chatter, allDims, 1)
	require.NoError(t, err)

	out, err := eval.Evaluate(context.Background(), testTurn())
	require.NoError(t, err)
	require.Len(t, out, 1)

	assert.Equal(t, 5, out[0].Clarity)
	assert.Equal(t, 4, out[0].Specificity)
	assert.Equal(t, 3, out[0].Robustness)
	assert.Equal(t, "conv-1:0", out[0].TurnID, "syntax fields carry through")
}

// capturingChatter records the prompts it was sent.
type capturingChatter struct {
	reply  string
	system string
	user   string
}

func (c *capturingChatter) Chat(_ context.Context, system, user string) (string, error) {
	c.system = system
	c.user = user
	return c.reply, nil
}

func TestEvaluateSendsAnchoredRubric(t *testing.T) {
	chatter := &capturingChatter{
		reply: `{"clarity":3,"specificity":3,"completeness":3,"correctness":3,"robustness":3,"readability":3,"efficiency":3}`,
	}
	eval, err := NewEvaluator(chatter, allDims, 1)
	require.NoError(t, err)

	_, err = eval.Evaluate(context.Background(), testTurn())
	require.NoError(t, err)

	// The rubric carries the calibration instructions and per-level anchors,
	// not just dimension names.
	assert.Contains(t, chatter.system, "Use the full range")
	assert.Contains(t, chatter.system, "Score correctness against what the PROMPT asked")
	assert.Contains(t, chatter.system, "5 Crystal clear - zero ambiguity")
	assert.Contains(t, chatter.system, "2 Naive brute-force")
	assert.Contains(t, chatter.user, "write add")
}

func TestEvaluateClampsOutOfRange(t *testing.T) {
	chatter := &scriptedChatter{replies: []string{
		`{"clarity":9,"specificity":0,"completeness":-2,"correctness":5,"robustness":3,"readability":5,"efficiency":100}`,
	}}
	eval, err := NewEvaluator(chatter, allDims, 1)
	require.NoError(t, err)

	out, err := eval.Evaluate(context.Background(), testTurn())
	require.NoError(t, err)

	assert.Equal(t, 5, out[0].Clarity)
	assert.Equal(t, 1, out[0].Specificity)
	assert.Equal(t, 1, out[0].Completeness)
	assert.Equal(t, 5, out[0].Efficiency)
}

func TestEvaluateExtractsJSONFromProse(t *testing.T) {
	chatter := &scriptedChatter{replies: []string{
		"Here is my assessment:\n\n```json\n" +
			`{"clarity":4,"specificity":4,"completeness":4,"correctness":4,"robustness":4,"readability":4,"efficiency":4}` +
			"\n```\nHope that helps!",
	}}
	eval, err := NewEvaluator(chatter, allDims, 1)
	require.NoError(t, err)

	out, err := eval.Evaluate(context.Background(), testTurn())
	require.NoError(t, err)
	assert.Equal(t, 4, out[0].Clarity)
}

func TestEvaluateRetriesOnceThenSucceeds(t *testing.T) {
	chatter := &scriptedChatter{replies: []string{
		"I cannot rate this.",
		`{"clarity":3,"specificity":3,"completeness":3,"correctness":3,"robustness":3,"readability":3,"efficiency":3}`,
	}}
	eval, err := NewEvaluator(chatter, allDims, 1)
	require.NoError(t, err)

	out, err := eval.Evaluate(context.Background(), testTurn())
	require.NoError(t, err)
	assert.Equal(t, 3, out[0].Clarity)
	assert.Equal(t, 1, chatter.calls)
}

func TestEvaluateFailsAfterRetry(t *testing.T) {
	chatter := &scriptedChatter{replies: []string{
		`{"clarity":5}`, // missing every other dimension, twice
	}}
	eval, err := NewEvaluator(chatter, allDims, 1)
	require.NoError(t, err)

	_, err = eval.Evaluate(context.Background(), testTurn())

	var protoErr *pipeline.ProtocolError
	require.ErrorAs(t, err, &protoErr)
	assert.Equal(t, "conv-1:0", protoErr.RecordID)
	assert.Contains(t, protoErr.Missing, "specificity")
	assert.Contains(t, protoErr.Missing, "efficiency")
	assert.NotContains(t, protoErr.Missing, "clarity")
}

func TestEvaluateSubsetOfDimensions(t *testing.T) {
	chatter := &scriptedChatter{replies: []string{
		`{"clarity":2,"correctness":4}`,
	}}
	eval, err := NewEvaluator(chatter, []string{"clarity", "correctness"}, 1)
	require.NoError(t, err)

	out, err := eval.Evaluate(context.Background(), testTurn())
	require.NoError(t, err)
	assert.Equal(t, 2, out[0].Clarity)
	assert.Equal(t, 4, out[0].Correctness)
	assert.Zero(t, out[0].Robustness, "unconfigured dimensions stay zero")
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{"bare object", `{"a":1}`, `{"a":1}`, true},
		{"wrapped in prose", `sure! {"a":1} done`, `{"a":1}`, true},
		{"no braces", "no json here", "", false},
		{"only close", "} dangling", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := extractJSON(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
