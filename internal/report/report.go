// Package report renders stage summaries and cache statistics for the CLI.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/codechat/curator/internal/artifact"
	"github.com/codechat/curator/internal/record"
)

// CacheStats prints where a stage artifact lives and how big it is.
func CacheStats(w io.Writer, stage string, info artifact.Info) {
	fmt.Fprintf(w, "cache: %s\n", info.Path)
	fmt.Fprintf(w, "  stage: %s  rows: %d  size: %s\n", stage, info.Rows, formatBytes(info.Size))
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

// SchemaOverview prints the shape of a table: its name, row count, and the
// fields with their types.
func SchemaOverview(w io.Writer, name string, rows int, schema []record.Field) {
	fmt.Fprintf(w, "%s (%d rows)\n", name, rows)
	out := make([][]string, 0, len(schema))
	for _, f := range schema {
		out = append(out, []string{f.Name, f.Type})
	}
	writeTable(w, []string{"field", "type"}, out)
}

// NumericOverview prints mean and median for every numeric column in the
// table, in schema order.
func NumericOverview(w io.Writer, tbl *artifact.Table) {
	var out [][]string
	for _, f := range tbl.Schema {
		if f.Type != record.TypeLong && f.Type != record.TypeDouble {
			continue
		}
		vals := columnFloats(tbl, f.Name)
		if len(vals) == 0 {
			continue
		}
		out = append(out, []string{
			f.Name,
			fmt.Sprintf("%.2f", mean(vals)),
			fmt.Sprintf("%.2f", median(vals)),
		})
	}
	if len(out) == 0 {
		return
	}
	writeTable(w, []string{"metric", "mean", "median"}, out)
}

// ParseablePercent reports the share of rows with a true "parseable" column,
// or -1 when the column is absent.
func ParseablePercent(tbl *artifact.Table) float64 {
	seen := false
	yes := 0
	for _, row := range tbl.Rows {
		v, ok := row["parseable"].(bool)
		if !ok {
			continue
		}
		seen = true
		if v {
			yes++
		}
	}
	if !seen || len(tbl.Rows) == 0 {
		return -1
	}
	return 100 * float64(yes) / float64(len(tbl.Rows))
}

func columnFloats(tbl *artifact.Table, name string) []float64 {
	var vals []float64
	for _, row := range tbl.Rows {
		switch v := row[name].(type) {
		case int64:
			vals = append(vals, float64(v))
		case int:
			vals = append(vals, float64(v))
		case float64:
			vals = append(vals, v)
		}
	}
	return vals
}

func mean(vals []float64) float64 {
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

func median(vals []float64) float64 {
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// writeTable renders an aligned two-space-gutter table. Column widths use
// display width so CJK content in field names lines up.
func writeTable(w io.Writer, header []string, rows [][]string) {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if cw := runewidth.StringWidth(cell); cw > widths[i] {
				widths[i] = cw
			}
		}
	}

	writeRow := func(cells []string) {
		parts := make([]string, len(cells))
		for i, cell := range cells {
			parts[i] = runewidth.FillRight(cell, widths[i])
		}
		fmt.Fprintf(w, "  %s\n", strings.TrimRight(strings.Join(parts, "  "), " "))
	}

	writeRow(header)
	divider := make([]string, len(header))
	for i := range divider {
		divider[i] = strings.Repeat("-", widths[i])
	}
	writeRow(divider)
	for _, row := range rows {
		writeRow(row)
	}
}
