package report

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/codechat/curator/internal/artifact"
	"github.com/codechat/curator/internal/record"
)

func TestBootstrapCISurroundsMean(t *testing.T) {
	vals := []float64{1, 2, 3, 4, 5, 4, 3, 2, 4, 5, 3, 4}

	ci := bootstrapCI(vals, 0.95, 42)
	assert.LessOrEqual(t, ci.Lower, ci.Mean)
	assert.GreaterOrEqual(t, ci.Upper, ci.Mean)
	assert.InDelta(t, 3.33, ci.Mean, 0.01)
}

func TestBootstrapCIDeterministic(t *testing.T) {
	vals := []float64{1, 5, 3, 2, 4}

	ci1 := bootstrapCI(vals, 0.95, 7)
	ci2 := bootstrapCI(vals, 0.95, 7)
	assert.Equal(t, ci1, ci2)
}

func TestBootstrapCIDegenerate(t *testing.T) {
	ci := bootstrapCI([]float64{4}, 0.95, 0)
	assert.Equal(t, 4.0, ci.Lower)
	assert.Equal(t, 4.0, ci.Upper)
	assert.Equal(t, 4.0, ci.Mean)
}

func TestScoreConfidence(t *testing.T) {
	tbl := &artifact.Table{
		Schema: []record.Field{
			{Name: "clarity", Type: record.TypeLong},
		},
		Rows: []map[string]any{
			{"clarity": int64(4)}, {"clarity": int64(5)}, {"clarity": int64(3)},
		},
	}

	var buf bytes.Buffer
	ScoreConfidence(&buf, tbl, []string{"clarity", "absent"})
	out := buf.String()

	assert.Contains(t, out, "clarity")
	assert.Contains(t, out, "4.00")
	assert.Contains(t, out, "95% CI")
	assert.NotContains(t, out, "absent")
}
