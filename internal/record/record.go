// Package record defines the typed rows that flow between pipeline stages.
//
// The raw dataset is dynamically shaped (string-keyed fields), but each stage
// works with an explicit struct and converts at its boundary. Conversion to and
// from the untyped row form used by columnar artifacts goes through
// mapstructure so renames stay in one place (the field tags).
package record

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
)

// Message is a single message within a conversation turn.
type Message struct {
	Role      string `json:"role" mapstructure:"role"`
	Content   string `json:"content" mapstructure:"content"`
	Language  string `json:"language" mapstructure:"language"`
	Timestamp string `json:"timestamp" mapstructure:"timestamp"`
}

// Conversation is one raw dataset row: an ordered list of turns, each turn an
// ordered list of messages (user first, assistant second).
type Conversation struct {
	ConversationID string      `json:"conversation_id" mapstructure:"conversation_id"`
	Model          string      `json:"model" mapstructure:"model"`
	Turns          [][]Message `json:"conversation" mapstructure:"conversation"`
}

// ID implements Keyed.
func (c Conversation) ID() string { return c.ConversationID }

// FilteredTurn is one qualifying user/assistant exchange. Its ID is
// "<conversation_id>:<turn_index>"; PrevTurnID links to the previous qualifying
// turn of the same conversation, or is empty for the first one.
type FilteredTurn struct {
	TurnID     string   `json:"id" mapstructure:"id"`
	Model      string   `json:"model" mapstructure:"model"`
	Prompt     string   `json:"prompt" mapstructure:"prompt"`
	Response   string   `json:"response" mapstructure:"response"`
	Code       []string `json:"code" mapstructure:"code"`
	PrevTurnID string   `json:"prev_turn_id" mapstructure:"prev_turn_id"`
}

func (t FilteredTurn) ID() string { return t.TurnID }

// SyntaxScore enriches a filtered turn with static-analysis metrics. The Code
// column holds the turn's blocks concatenated with a separator; lint counts
// describe that whole, while parseability is judged block by block.
type SyntaxScore struct {
	TurnID     string `json:"id" mapstructure:"id"`
	Model      string `json:"model" mapstructure:"model"`
	Prompt     string `json:"prompt" mapstructure:"prompt"`
	Response   string `json:"response" mapstructure:"response"`
	Code       string `json:"code" mapstructure:"code"`
	PrevTurnID string `json:"prev_turn_id" mapstructure:"prev_turn_id"`

	Parseable       bool    `json:"parseable" mapstructure:"parseable"`
	Lines           int     `json:"lines" mapstructure:"lines"`
	StyleErrors     int     `json:"lint_style_errors" mapstructure:"lint_style_errors"`
	StyleWarnings   int     `json:"lint_style_warnings" mapstructure:"lint_style_warnings"`
	LogicIssues     int     `json:"lint_logic" mapstructure:"lint_logic"`
	BugIssues       int     `json:"lint_bugs" mapstructure:"lint_bugs"`
	SecurityIssues  int     `json:"lint_security" mapstructure:"lint_security"`
	Complexity      float64 `json:"complexity" mapstructure:"complexity"`
	Maintainability float64 `json:"maintainability" mapstructure:"maintainability"`
}

func (s SyntaxScore) ID() string { return s.TurnID }

// SemanticScore enriches a syntax-scored turn with the judge's ordinal scores.
// Every dimension value is an integer in [1,5]; a dimension that is not part of
// the configured set stays 0.
type SemanticScore struct {
	SyntaxScore `mapstructure:",squash"`

	Clarity      int `json:"clarity" mapstructure:"clarity"`
	Specificity  int `json:"specificity" mapstructure:"specificity"`
	Completeness int `json:"completeness" mapstructure:"completeness"`
	Correctness  int `json:"correctness" mapstructure:"correctness"`
	Robustness   int `json:"robustness" mapstructure:"robustness"`
	Readability  int `json:"readability" mapstructure:"readability"`
	Efficiency   int `json:"efficiency" mapstructure:"efficiency"`
}

// Dimension names accepted by SemanticScore, in storage order.
var SemanticDimensions = []string{
	"clarity", "specificity", "completeness", "correctness",
	"robustness", "readability", "efficiency",
}

// SetScore assigns one judge dimension by name.
func (s *SemanticScore) SetScore(dim string, val int) error {
	switch dim {
	case "clarity":
		s.Clarity = val
	case "specificity":
		s.Specificity = val
	case "completeness":
		s.Completeness = val
	case "correctness":
		s.Correctness = val
	case "robustness":
		s.Robustness = val
	case "readability":
		s.Readability = val
	case "efficiency":
		s.Efficiency = val
	default:
		return fmt.Errorf("record: unknown judge dimension %q", dim)
	}
	return nil
}

// Keyed is anything carrying a stable record identity.
type Keyed interface {
	ID() string
}

// ToRow converts a typed record into the untyped row form used by columnar
// artifacts.
func ToRow(rec any) (map[string]any, error) {
	row := map[string]any{}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  &row,
		Squash:  true,
		TagName: "mapstructure",
	})
	if err != nil {
		return nil, fmt.Errorf("record: building encoder: %w", err)
	}
	if err := dec.Decode(rec); err != nil {
		return nil, fmt.Errorf("record: encoding row: %w", err)
	}
	return row, nil
}

// FromRow converts an untyped artifact row back into a typed record. It is
// lenient about numeric widths (columnar JSON yields float64) but rejects
// unknown fields so schema drift surfaces immediately.
func FromRow[T any](row map[string]any) (T, error) {
	var rec T
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &rec,
		Squash:           true,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return rec, fmt.Errorf("record: building decoder: %w", err)
	}
	if err := dec.Decode(row); err != nil {
		return rec, fmt.Errorf("record: decoding row: %w", err)
	}
	return rec, nil
}

// ToRows converts a slice of typed records.
func ToRows[T any](recs []T) ([]map[string]any, error) {
	rows := make([]map[string]any, 0, len(recs))
	for i, r := range recs {
		row, err := ToRow(r)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// FromRows converts untyped artifact rows into typed records.
func FromRows[T any](rows []map[string]any) ([]T, error) {
	recs := make([]T, 0, len(rows))
	for i, row := range rows {
		rec, err := FromRow[T](row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		recs = append(recs, rec)
	}
	return recs, nil
}
