package worker

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestProgress(width, height int) (*Progress, *bytes.Buffer, *fakeClock) {
	var buf bytes.Buffer
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	return newProgress(&buf, width, height, clock.now), &buf, clock
}

func TestProgress_DrawsMeter(t *testing.T) {
	p, buf, clock := newTestProgress(1000, 10)

	clock.advance(2 * time.Second)
	p.Update(4, 10, 0)

	out := buf.String()
	for _, want := range []string{"\r[########............]", " 40% 4/10 rows", "2.0 kpx/s", "eta 3s"} {
		if !strings.Contains(out, want) {
			t.Errorf("meter %q missing %q", out, want)
		}
	}
}

func TestProgress_ThrottlesRedraws(t *testing.T) {
	p, buf, clock := newTestProgress(8, 100)

	p.Update(1, 100, 0)
	p.Update(2, 100, 0)
	p.Update(3, 100, 0)
	if n := strings.Count(buf.String(), "\r"); n != 1 {
		t.Fatalf("got %d redraws within the interval, want 1", n)
	}

	clock.advance(redrawInterval)
	p.Update(4, 100, 0)
	if n := strings.Count(buf.String(), "\r"); n != 2 {
		t.Errorf("got %d redraws after the interval, want 2", n)
	}

	// completion is always drawn
	p.Update(100, 100, 0)
	if n := strings.Count(buf.String(), "\r"); n != 3 {
		t.Errorf("got %d redraws after completion, want 3", n)
	}
}

func TestProgress_Done(t *testing.T) {
	p, buf, clock := newTestProgress(2000, 4)

	clock.advance(1500 * time.Millisecond)
	p.Update(4, 4, 1)
	p.Done()

	out := buf.String()
	if !strings.HasSuffix(out, "\n") {
		t.Errorf("Done did not end the line: %q", out)
	}
	last := out[strings.LastIndex(out, "\r"):]
	for _, want := range []string{"100% 4/4 rows", "1 failed", "4.0 kpx/s", "in 2s"} {
		if !strings.Contains(last, want) {
			t.Errorf("final meter %q missing %q", last, want)
		}
	}
	if strings.Contains(last, "eta") {
		t.Errorf("final meter %q still shows an eta", last)
	}
}

func TestProgress_Stats(t *testing.T) {
	p, _, clock := newTestProgress(640, 480)

	clock.advance(4 * time.Second)
	p.Update(100, 480, 20)

	st := p.Stats()
	if st.Rows != 100 || st.Total != 480 || st.Failed != 20 {
		t.Errorf("Stats() counters = %+v", st)
	}
	if st.Pixels != 80*640 {
		t.Errorf("Stats().Pixels = %d, want %d", st.Pixels, 80*640)
	}
	if got, want := st.PixelRate(), float64(80*640)/4; got != want {
		t.Errorf("PixelRate() = %v, want %v", got, want)
	}
}

func TestProgress_ZeroHeight(t *testing.T) {
	p, buf, _ := newTestProgress(16, 0)
	p.Update(0, 0, 0)
	p.Done()

	if !strings.Contains(buf.String(), "  0% 0/0 rows") {
		t.Errorf("unexpected meter for an empty field: %q", buf.String())
	}
	if rate := p.Stats().PixelRate(); rate != 0 {
		t.Errorf("PixelRate() = %v before any time passed", rate)
	}
}

func TestProgress_Callback(t *testing.T) {
	p, _, _ := newTestProgress(4, 10)
	p.Callback()(7, 10, 2)

	if st := p.Stats(); st.Rows != 7 || st.Failed != 2 {
		t.Errorf("callback did not update stats: %+v", st)
	}
}

func TestFormatPixelRate(t *testing.T) {
	tests := []struct {
		rate float64
		want string
	}{
		{12, "12 px/s"},
		{999, "999 px/s"},
		{1500, "1.5 kpx/s"},
		{2.34e6, "2.3 Mpx/s"},
	}

	for _, tt := range tests {
		if got := formatPixelRate(tt.rate); got != tt.want {
			t.Errorf("formatPixelRate(%v) = %s, want %s", tt.rate, got, tt.want)
		}
	}
}

func TestFormatETA(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{300 * time.Millisecond, "<1s"},
		{1400 * time.Millisecond, "1s"},
		{90 * time.Second, "1m30s"},
		{2*time.Hour + 5*time.Minute, "2h5m0s"},
	}

	for _, tt := range tests {
		if got := formatETA(tt.d); got != tt.want {
			t.Errorf("formatETA(%v) = %s, want %s", tt.d, got, tt.want)
		}
	}
}
