// Package filter selects the conversation turns worth scoring: English
// prompts whose assistant replies contain at least one non-trivial fenced
// code block in a target language.
package filter

import (
	"context"
	"fmt"
	"strings"

	"github.com/codechat/curator/internal/codefence"
	"github.com/codechat/curator/internal/langid"
	"github.com/codechat/curator/internal/record"
)

const commentPrefix = "//"

// Evaluator filters one conversation into zero or more kept turns. Turns are
// walked in order and each kept turn records the id of the previously kept
// turn from the same conversation, so downstream consumers can rebuild the
// dialogue chain without reloading the source dataset.
type Evaluator struct {
	classifier  *langid.Classifier
	langs       []string
	minLines    int
	onlyEnglish bool
}

func NewEvaluator(classifier *langid.Classifier, langs []string, minLines int, onlyEnglish bool) *Evaluator {
	return &Evaluator{classifier: classifier, langs: langs, minLines: minLines, onlyEnglish: onlyEnglish}
}

// Evaluate applies the turn predicates to conv. A conversation that yields no
// qualifying turns is not an error; it simply contributes nothing.
func (e *Evaluator) Evaluate(_ context.Context, conv record.Conversation) ([]record.FilteredTurn, error) {
	var kept []record.FilteredTurn
	prevID := ""

	for i, turn := range conv.Turns {
		prompt, response, ok := splitTurn(turn)
		if !ok {
			continue
		}
		if e.onlyEnglish && !e.classifier.IsEnglish(prompt) {
			continue
		}

		// One substantial block qualifies the turn; the record then carries
		// every extracted block, trivial siblings included, so downstream
		// scoring sees the full code payload.
		blocks := codefence.Extract(response, e.langs)
		qualifies := false
		for _, block := range blocks {
			if codefence.NonTrivial(block, commentPrefix, e.minLines) {
				qualifies = true
				break
			}
		}
		if !qualifies {
			continue
		}

		ft := record.FilteredTurn{
			TurnID:     fmt.Sprintf("%s:%d", conv.ConversationID, i),
			Model:      conv.Model,
			Prompt:     prompt,
			Response:   response,
			Code:       blocks,
			PrevTurnID: prevID,
		}
		kept = append(kept, ft)
		prevID = ft.TurnID
	}
	return kept, nil
}

// splitTurn extracts the user prompt and assistant response from one turn.
// Turns with extra trailing messages keep their first two; turns that are not
// a well-formed user/assistant exchange are skipped.
func splitTurn(turn []record.Message) (prompt, response string, ok bool) {
	if len(turn) < 2 {
		return "", "", false
	}
	if turn[0].Role != "user" || turn[1].Role != "assistant" {
		return "", "", false
	}
	prompt = strings.TrimSpace(turn[0].Content)
	response = strings.TrimSpace(turn[1].Content)
	if prompt == "" || response == "" {
		return "", "", false
	}
	return prompt, response, true
}
