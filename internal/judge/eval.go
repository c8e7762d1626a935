package judge

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/codechat/curator/internal/pipeline"
	"github.com/codechat/curator/internal/record"
)

const systemPrompt = `Score a PROMPT/CODE pair on the requested dimensions (1-5 each).
Use the full range (3 is genuinely average, not a safe default).
Score correctness against what the PROMPT asked, not an ideal solution.

PROMPT DIMENSIONS

1. CLARITY - How unambiguous is the intent?
   1 Incomprehensible
   2 Mostly unclear - multiple plausible interpretations
   3 Understandable with effort - requires assumptions
   4 Clear to a competent developer
   5 Crystal clear - zero ambiguity

2. SPECIFICITY - How precisely does it describe what is needed?
   1 Completely vague (e.g. "write some code")
   2 Names a task, no constraints
   3 Core task + some constraints, significant decisions left open
   4 Inputs, outputs, key constraints specified
   5 Fully specified - types, edge cases, examples

3. COMPLETENESS - Enough info to produce a correct answer without guessing?
   1 Missing critical information
   2 Major gaps requiring significant assumptions
   3 Moderate gaps
   4 Nearly complete - minor details inferable
   5 Fully self-contained

CODE DIMENSIONS

4. CORRECTNESS - Does the code solve what was asked?
   1 Wrong or irrelevant
   2 Right idea, critical bugs
   3 Works on happy path, fails common cases
   4 Correct, minor edge-case issues
   5 Fully correct for all cases implied by prompt

5. ROBUSTNESS - Error handling and edge cases?
   1 Fragile - fails on basic inputs
   2 Happy path only
   3 Some defensive coding
   4 Handles most common edge cases
   5 Comprehensive - validation, boundaries, graceful errors

6. READABILITY - Naming, structure, clarity?
   1 Incomprehensible
   2 Poor names, no structure
   3 Acceptable - followable with effort
   4 Good - clear names, logical structure
   5 Exemplary - self-documenting, idiomatic, consistent style

7. EFFICIENCY - Is the algorithmic approach appropriate?
   1 Fundamentally wrong approach (exponential where linear exists)
   2 Naive brute-force, orders of magnitude slower than needed
   3 Reasonable approach, not optimal
   4 Good algorithmic choices, minor optimisation possible
   5 Optimal or near-optimal approach for the problem

Reason briefly about each requested dimension, then output a single JSON
object on its own line whose keys are exactly the requested dimensions and
whose values are integers.`

// Chatter is the piece of Client the evaluator needs.
type Chatter interface {
	Chat(ctx context.Context, system, user string) (string, error)
}

// Evaluator asks the judge model to grade each syntax-scored turn. Responses
// must contain every configured dimension; one malformed reply triggers a
// retry, and a second one aborts the stage, since a model that cannot follow
// the output contract will poison every score after it.
type Evaluator struct {
	client  Chatter
	dims    []string
	retries int
	schema  *jsonschema.Schema
}

func NewEvaluator(client Chatter, dims []string, retries int) (*Evaluator, error) {
	schema, err := compileResponseSchema(dims)
	if err != nil {
		return nil, err
	}
	return &Evaluator{client: client, dims: dims, retries: retries, schema: schema}, nil
}

// compileResponseSchema builds the validation schema for the judge's reply:
// an object carrying every configured dimension as a number.
func compileResponseSchema(dims []string) (*jsonschema.Schema, error) {
	props := map[string]any{}
	for _, d := range dims {
		props[d] = map[string]any{"type": "number"}
	}
	doc := map[string]any{
		"type":       "object",
		"required":   toAnySlice(dims),
		"properties": props,
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("judge-response.json", doc); err != nil {
		return nil, fmt.Errorf("adding judge response schema: %w", err)
	}
	sch, err := compiler.Compile("judge-response.json")
	if err != nil {
		return nil, fmt.Errorf("compiling judge response schema: %w", err)
	}
	return sch, nil
}

func toAnySlice(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

// Evaluate grades one turn, yielding exactly one semantic record.
func (e *Evaluator) Evaluate(ctx context.Context, turn record.SyntaxScore) ([]record.SemanticScore, error) {
	user := buildUserPrompt(turn, e.dims)

	var lastDetail string
	var lastMissing []string
	for attempt := 0; attempt <= e.retries; attempt++ {
		reply, err := e.client.Chat(ctx, systemPrompt, user)
		if err != nil {
			return nil, fmt.Errorf("judging %s: %w", turn.TurnID, err)
		}

		scores, missing, detail := e.parseReply(reply)
		if len(missing) == 0 && detail == "" {
			out := record.SemanticScore{SyntaxScore: turn}
			for dim, val := range scores {
				if err := out.SetScore(dim, clamp(val, 1, 5)); err != nil {
					return nil, err
				}
			}
			return []record.SemanticScore{out}, nil
		}
		lastDetail, lastMissing = detail, missing
	}

	return nil, &pipeline.ProtocolError{
		RecordID: turn.TurnID,
		Missing:  lastMissing,
		Detail:   lastDetail,
	}
}

// parseReply extracts and validates the scores from one model reply. It
// returns either the scores, or the missing dimensions and a human-readable
// reason the reply was rejected.
func (e *Evaluator) parseReply(reply string) (map[string]int, []string, string) {
	raw, ok := extractJSON(reply)
	if !ok {
		return nil, nil, "reply contains no JSON object"
	}

	var doc any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, nil, fmt.Sprintf("reply JSON is malformed: %v", err)
	}
	if err := e.schema.Validate(doc); err != nil {
		obj, _ := doc.(map[string]any)
		var missing []string
		for _, dim := range e.dims {
			if _, present := obj[dim]; !present {
				missing = append(missing, dim)
			}
		}
		sort.Strings(missing)
		return nil, missing, err.Error()
	}

	obj := doc.(map[string]any)
	scores := make(map[string]int, len(e.dims))
	for _, dim := range e.dims {
		v, isNum := obj[dim].(float64)
		if !isNum {
			return nil, []string{dim}, fmt.Sprintf("dimension %q is not a number", dim)
		}
		scores[dim] = int(v)
	}
	return scores, nil, ""
}

// extractJSON pulls the trailing JSON object out of a reply that may wrap it
// in prose or a markdown fence: the last "}" closes the object, and the last
// "{" before it opens it.
func extractJSON(s string) (string, bool) {
	end := strings.LastIndex(s, "}")
	if end < 0 {
		return "", false
	}
	start := strings.LastIndex(s[:end], "{")
	if start < 0 {
		return "", false
	}
	return s[start : end+1], true
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func buildUserPrompt(turn record.SyntaxScore, dims []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Requested dimensions: %s\n\n", strings.Join(dims, ", "))
	fmt.Fprintf(&b, "## User request\n\n%s\n\n", turn.Prompt)
	fmt.Fprintf(&b, "## Assistant code\n\n%s\n", turn.Code)
	return b.String()
}
