package report

import (
	"fmt"
	"io"
	"math"
	"math/rand"
	"sort"

	"github.com/codechat/curator/internal/artifact"
)

// ConfidenceInterval is a bootstrap interval around a column mean.
type ConfidenceInterval struct {
	Lower float64
	Upper float64
	Mean  float64
}

const bootstrapIterations = 2000

// bootstrapCI computes a percentile bootstrap confidence interval for the
// mean of vals. Fewer than two values collapse the interval to the mean. The
// seed makes repeated summaries of the same artifact identical.
func bootstrapCI(vals []float64, confidence float64, seed int64) ConfidenceInterval {
	m := mean(vals)
	if len(vals) < 2 {
		return ConfidenceInterval{Lower: m, Upper: m, Mean: m}
	}

	rng := rand.New(rand.NewSource(seed))
	bootMeans := make([]float64, bootstrapIterations)
	sample := make([]float64, len(vals))
	for i := range bootMeans {
		for j := range sample {
			sample[j] = vals[rng.Intn(len(vals))]
		}
		bootMeans[i] = mean(sample)
	}
	sort.Float64s(bootMeans)

	alpha := (1 - confidence) / 2
	lo := int(math.Floor(alpha * float64(bootstrapIterations)))
	hi := int(math.Ceil((1 - alpha) * float64(bootstrapIterations)))
	if hi >= bootstrapIterations {
		hi = bootstrapIterations - 1
	}
	return ConfidenceInterval{Lower: bootMeans[lo], Upper: bootMeans[hi], Mean: m}
}

// ScoreConfidence prints a 95% bootstrap confidence interval around the mean
// of each named column.
func ScoreConfidence(w io.Writer, tbl *artifact.Table, columns []string) {
	var rows [][]string
	for i, col := range columns {
		vals := columnFloats(tbl, col)
		if len(vals) == 0 {
			continue
		}
		ci := bootstrapCI(vals, 0.95, int64(i))
		rows = append(rows, []string{
			col,
			fmt.Sprintf("%.2f", ci.Mean),
			fmt.Sprintf("[%.2f, %.2f]", ci.Lower, ci.Upper),
		})
	}
	if len(rows) == 0 {
		return
	}
	writeTable(w, []string{"dimension", "mean", "95% CI"}, rows)
}
