package progress

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

// Bar renders snapshots as a single updating terminal line:
//
//	Scoring syntax [=========>          ] 120/480  1m32s left
//
// It degrades to plain line-per-update output when w is not a terminal.
type Bar struct {
	w     io.Writer
	label string
	tty   bool
	width int
}

// NewBar creates a bar writing to w with the given label.
func NewBar(w io.Writer, label string) *Bar {
	b := &Bar{w: w, label: label, width: 80}
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b.tty = true
		if tw, _, err := term.GetSize(int(f.Fd())); err == nil && tw > 20 {
			b.width = tw
		}
	}
	return b
}

// Observe is an Observer rendering each snapshot.
func (b *Bar) Observe(s Snapshot) {
	line := b.render(s)
	if b.tty {
		fmt.Fprintf(b.w, "\r%s", padTo(line, b.width-1)) //nolint:errcheck
		return
	}
	fmt.Fprintln(b.w, line) //nolint:errcheck
}

// Finish terminates the updating line after the run completes or stops.
func (b *Bar) Finish() {
	if b.tty {
		fmt.Fprintln(b.w) //nolint:errcheck
	}
}

func (b *Bar) render(s Snapshot) string {
	counts := fmt.Sprintf("%d/%d", s.Completed, s.Total)
	eta := ""
	if s.ETA > 0 {
		eta = fmt.Sprintf("  %s left", formatETA(s.ETA))
	}

	barWidth := b.width - runewidth.StringWidth(b.label) - runewidth.StringWidth(counts) - runewidth.StringWidth(eta) - 6
	if barWidth < 10 {
		return fmt.Sprintf("%s %s%s", b.label, counts, eta)
	}

	frac := 0.0
	if s.Total > 0 {
		frac = float64(s.Completed) / float64(s.Total)
	}
	filled := int(frac * float64(barWidth))
	if filled > barWidth {
		filled = barWidth
	}
	gauge := strings.Repeat("=", filled)
	if filled < barWidth {
		gauge += ">" + strings.Repeat(" ", barWidth-filled-1)
	}
	return fmt.Sprintf("%s [%s] %s%s", b.label, gauge, counts, eta)
}

func formatETA(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm%02ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%02dm", int(d.Hours()), int(d.Minutes())%60)
}

func padTo(s string, width int) string {
	w := runewidth.StringWidth(s)
	if w >= width {
		return runewidth.Truncate(s, width, "")
	}
	return s + strings.Repeat(" ", width-w)
}
