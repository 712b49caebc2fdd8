package worker

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// redrawInterval throttles meter redraws; bands of a small field can finish
// thousands of times per second.
const redrawInterval = 100 * time.Millisecond

// Progress draws a one-line meter for a field sample on a terminal. Counts
// are rows, as reported by Pool; throughput is shown in pixels so that
// fields of different widths compare.
type Progress struct {
	out   io.Writer
	width int
	now   func() time.Time

	mu        sync.Mutex
	start     time.Time
	lastDraw  time.Time
	rows      int
	total     int
	failed    int
	drawnOnce bool
}

// ProgressStats is a point-in-time view of a Progress.
type ProgressStats struct {
	Rows    int
	Total   int
	Failed  int
	Pixels  int
	Elapsed time.Duration
}

// PixelRate returns sampled pixels per second, 0 before any time passed.
func (s ProgressStats) PixelRate() float64 {
	if s.Elapsed <= 0 {
		return 0
	}
	return float64(s.Pixels) / s.Elapsed.Seconds()
}

// NewProgress returns a meter for a field width pixels wide and height rows
// tall, drawn on out.
func NewProgress(out io.Writer, width, height int) *Progress {
	return newProgress(out, width, height, time.Now)
}

func newProgress(out io.Writer, width, height int, now func() time.Time) *Progress {
	return &Progress{
		out:   out,
		width: width,
		total: height,
		now:   now,
		start: now(),
	}
}

// Update records pool progress and redraws the meter when due.
func (p *Progress) Update(completed, total, failed int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.rows, p.total, p.failed = completed, total, failed

	now := p.now()
	if p.drawnOnce && completed < total && now.Sub(p.lastDraw) < redrawInterval {
		return
	}
	p.drawLocked(now)
}

// Callback adapts Update to Config.OnProgress.
func (p *Progress) Callback() ProgressFunc {
	return p.Update
}

// Stats returns the current counters.
func (p *Progress) Stats() ProgressStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.statsLocked(p.now())
}

// Done draws the final state and ends the line.
func (p *Progress) Done() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.drawLocked(p.now())
	fmt.Fprintln(p.out)
}

func (p *Progress) statsLocked(now time.Time) ProgressStats {
	return ProgressStats{
		Rows:    p.rows,
		Total:   p.total,
		Failed:  p.failed,
		Pixels:  (p.rows - p.failed) * p.width,
		Elapsed: now.Sub(p.start),
	}
}

func (p *Progress) drawLocked(now time.Time) {
	p.lastDraw = now
	p.drawnOnce = true
	fmt.Fprint(p.out, "\r"+formatMeter(p.statsLocked(now))+"\x1b[K")
}

// formatMeter renders e.g. "[########............] 40% 205/512 rows 1.3 Mpx/s eta 2s".
func formatMeter(s ProgressStats) string {
	const barWidth = 20

	var frac float64
	if s.Total > 0 {
		frac = min(float64(s.Rows)/float64(s.Total), 1)
	}
	filled := int(frac * barWidth)

	var b strings.Builder
	b.WriteString("[" + strings.Repeat("#", filled) + strings.Repeat(".", barWidth-filled) + "]")
	fmt.Fprintf(&b, " %3.0f%% %d/%d rows", frac*100, s.Rows, s.Total)
	if s.Failed > 0 {
		fmt.Fprintf(&b, " %d failed", s.Failed)
	}
	if rate := s.PixelRate(); rate > 0 {
		b.WriteString(" " + formatPixelRate(rate))
		if s.Rows < s.Total && s.Rows > 0 {
			left := time.Duration(float64(s.Elapsed) * float64(s.Total-s.Rows) / float64(s.Rows))
			b.WriteString(" eta " + formatETA(left))
		}
	}
	if s.Total > 0 && s.Rows >= s.Total {
		b.WriteString(" in " + formatETA(s.Elapsed))
	}
	return b.String()
}

func formatPixelRate(perSec float64) string {
	switch {
	case perSec >= 1e6:
		return fmt.Sprintf("%.1f Mpx/s", perSec/1e6)
	case perSec >= 1e3:
		return fmt.Sprintf("%.1f kpx/s", perSec/1e3)
	default:
		return fmt.Sprintf("%.0f px/s", perSec)
	}
}

func formatETA(d time.Duration) string {
	if d < time.Second {
		return "<1s"
	}
	return d.Round(time.Second).String()
}
