package record

// Field describes one column of a persisted table.
type Field struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Column types understood by the artifact store.
const (
	TypeString     = "string"
	TypeLong       = "long"
	TypeDouble     = "double"
	TypeBool       = "bool"
	TypeStringList = "string_list"
)

// FilteredTurnSchema is the column layout of the filter stage's table.
var FilteredTurnSchema = []Field{
	{Name: "id", Type: TypeString},
	{Name: "model", Type: TypeString},
	{Name: "prompt", Type: TypeString},
	{Name: "response", Type: TypeString},
	{Name: "code", Type: TypeStringList},
	{Name: "prev_turn_id", Type: TypeString},
}

// SyntaxScoreSchema is the column layout of the syntax stage's table.
var SyntaxScoreSchema = []Field{
	{Name: "id", Type: TypeString},
	{Name: "model", Type: TypeString},
	{Name: "prompt", Type: TypeString},
	{Name: "response", Type: TypeString},
	{Name: "code", Type: TypeString},
	{Name: "prev_turn_id", Type: TypeString},
	{Name: "parseable", Type: TypeBool},
	{Name: "lines", Type: TypeLong},
	{Name: "lint_style_errors", Type: TypeLong},
	{Name: "lint_style_warnings", Type: TypeLong},
	{Name: "lint_logic", Type: TypeLong},
	{Name: "lint_bugs", Type: TypeLong},
	{Name: "lint_security", Type: TypeLong},
	{Name: "complexity", Type: TypeDouble},
	{Name: "maintainability", Type: TypeDouble},
}

// SemanticScoreSchema is the column layout of the semantic stage's table.
var SemanticScoreSchema = func() []Field {
	fields := make([]Field, 0, len(SyntaxScoreSchema)+len(SemanticDimensions))
	fields = append(fields, SyntaxScoreSchema...)
	for _, dim := range SemanticDimensions {
		fields = append(fields, Field{Name: dim, Type: TypeLong})
	}
	return fields
}()
