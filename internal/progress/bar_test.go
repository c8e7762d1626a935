package progress

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBarNonTTYFallback(t *testing.T) {
	var buf bytes.Buffer
	bar := NewBar(&buf, "filter")

	bar.Observe(Snapshot{Completed: 3, Total: 10})
	bar.Observe(Snapshot{Completed: 10, Total: 10})
	bar.Finish()

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	assert.Len(t, lines, 2, "non-TTY output is one line per snapshot")
	assert.Contains(t, lines[0], "filter")
	assert.Contains(t, lines[0], "3/10")
	assert.Contains(t, lines[1], "10/10")
}

func TestBarETADisplay(t *testing.T) {
	var buf bytes.Buffer
	bar := NewBar(&buf, "semantic")

	bar.Observe(Snapshot{Completed: 1, Total: 100, ETA: 95 * time.Second})
	assert.Contains(t, buf.String(), "1m35s left")
}

func TestFormatETA(t *testing.T) {
	assert.Equal(t, "45s", formatETA(45*time.Second))
	assert.Equal(t, "2m05s", formatETA(125*time.Second))
	assert.Equal(t, "1h01m", formatETA(61*time.Minute))
}

func TestPadTo(t *testing.T) {
	assert.Equal(t, "ab   ", padTo("ab", 5))
	assert.Equal(t, "abcde", padTo("abcdefgh", 5))
}
