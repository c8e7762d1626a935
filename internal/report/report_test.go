package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codechat/curator/internal/artifact"
	"github.com/codechat/curator/internal/record"
)

func scoreTable() *artifact.Table {
	return &artifact.Table{
		Stage: "syntax",
		Key:   "abc123def456",
		Schema: []record.Field{
			{Name: "id", Type: record.TypeString},
			{Name: "lines", Type: record.TypeLong},
			{Name: "complexity", Type: record.TypeDouble},
			{Name: "parseable", Type: record.TypeBool},
		},
		Rows: []map[string]any{
			{"id": "a", "lines": int64(10), "complexity": 1.0, "parseable": true},
			{"id": "b", "lines": int64(20), "complexity": 3.0, "parseable": true},
			{"id": "c", "lines": int64(60), "complexity": 5.0, "parseable": false},
		},
	}
}

func TestNumericOverview(t *testing.T) {
	var buf bytes.Buffer
	NumericOverview(&buf, scoreTable())
	out := buf.String()

	assert.Contains(t, out, "metric")
	assert.Contains(t, out, "lines")
	assert.Contains(t, out, "30.00") // mean of 10, 20, 60
	assert.Contains(t, out, "20.00") // median
	assert.Contains(t, out, "3.00")  // complexity mean and median coincide
	assert.NotContains(t, out, "parseable", "bool columns are not numeric")
}

func TestNumericOverviewEmptyTable(t *testing.T) {
	var buf bytes.Buffer
	NumericOverview(&buf, &artifact.Table{Schema: scoreTable().Schema})
	assert.Empty(t, buf.String(), "nothing to summarize prints nothing")
}

func TestParseablePercent(t *testing.T) {
	assert.InDelta(t, 66.7, ParseablePercent(scoreTable()), 0.1)

	noCol := &artifact.Table{Rows: []map[string]any{{"id": "a"}}}
	assert.Equal(t, -1.0, ParseablePercent(noCol))
}

func TestSchemaOverview(t *testing.T) {
	tbl := scoreTable()
	var buf bytes.Buffer
	SchemaOverview(&buf, "syntax", len(tbl.Rows), tbl.Schema)
	out := buf.String()

	assert.Contains(t, out, "syntax (3 rows)")
	assert.Contains(t, out, "complexity")
	assert.Contains(t, out, "double")
}

func TestCacheStats(t *testing.T) {
	var buf bytes.Buffer
	CacheStats(&buf, "filter", artifact.Info{Path: "/data/filter_abc.colz", Rows: 42, Size: 2048})
	out := buf.String()

	assert.Contains(t, out, "/data/filter_abc.colz")
	assert.Contains(t, out, "rows: 42")
	assert.Contains(t, out, "2.0 KiB")
}

func TestWriteTableAlignment(t *testing.T) {
	var buf bytes.Buffer
	writeTable(&buf, []string{"name", "value"}, [][]string{
		{"short", "1"},
		{"much-longer-name", "2"},
	})

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	// Value cells start at the same column in every row.
	assert.Equal(t, strings.Index(lines[3], "2"), strings.Index(lines[2], "1"))
}
