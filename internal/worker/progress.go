package worker

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const barWidth = 30

// Progress renders a single-line progress bar for a sprite batch.
type Progress struct {
	startTime time.Time
	output    io.Writer
	stats     Stats
	mu        sync.RWMutex
	enabled   bool
}

// NewProgress creates a tracker for total sprites. When enabled is false it only
// records stats for Summary.
func NewProgress(total int, enabled bool) *Progress {
	return &Progress{
		stats:     Stats{Total: total},
		startTime: time.Now(),
		output:    os.Stderr,
		enabled:   enabled,
	}
}

// Update records the latest batch stats.
func (p *Progress) Update(s Stats) {
	p.mu.Lock()
	p.stats = s
	p.mu.Unlock()

	if p.enabled {
		p.Print()
	}
}

// SetOutput redirects progress lines, e.g. to a command's stderr.
func (p *Progress) SetOutput(w io.Writer) {
	p.mu.Lock()
	p.output = w
	p.mu.Unlock()
}

// Callback returns a ProgressFunc suitable for use with Pool.Config.
func (p *Progress) Callback() ProgressFunc {
	return p.Update
}

func (p *Progress) snapshot() (Stats, time.Duration, io.Writer) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.stats, time.Since(p.startTime), p.output
}

// Print writes the current progress line to output.
func (p *Progress) Print() {
	s, elapsed, output := p.snapshot()

	var rate float64
	var eta time.Duration
	if s.Completed > 0 && elapsed > 0 {
		rate = float64(s.Completed) / elapsed.Seconds()
		eta = time.Duration(float64(s.Total-s.Completed)/rate) * time.Second
	}

	filled := 0
	if s.Total > 0 {
		filled = min(s.Completed*barWidth/s.Total, barWidth)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\r[%s%s] %d/%d sprites", strings.Repeat("█", filled), strings.Repeat("░", barWidth-filled), s.Completed, s.Total)
	if s.Failed > 0 {
		fmt.Fprintf(&b, " (%d failed)", s.Failed)
	}
	fmt.Fprintf(&b, ", %d maps - %.1f sprites/sec", s.Maps, rate)
	switch {
	case s.Completed == s.Total:
		fmt.Fprintf(&b, " - Done in %s", formatDuration(elapsed))
	case eta > 0:
		fmt.Fprintf(&b, " - ETA: %s", formatDuration(eta))
	}
	if s.Sprite != "" && s.Completed < s.Total {
		fmt.Fprintf(&b, " - %s", filepath.Base(s.Sprite))
	}
	// Clear leftovers of a longer previous line.
	b.WriteString("          ")

	fmt.Fprint(output, b.String())
}

// Done prints the final progress and a newline.
func (p *Progress) Done() {
	if p.enabled {
		p.Print()
		fmt.Fprintln(p.output)
	}
}

// Summary returns a one-line account of the batch.
func (p *Progress) Summary() string {
	s, elapsed, _ := p.snapshot()

	var rate float64
	if elapsed.Seconds() > 0 {
		rate = float64(s.Completed) / elapsed.Seconds()
	}

	return fmt.Sprintf("Generated %d/%d sprites, %d maps (%d failed) in %s (%.1f sprites/sec)",
		s.Completed-s.Failed, s.Total, s.Maps, s.Failed, formatDuration(elapsed), rate)
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.0fs", d.Seconds())
	}
	if d < time.Hour {
		mins := int(d.Minutes())
		secs := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm%ds", mins, secs)
	}
	hours := int(d.Hours())
	mins := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh%dm", hours, mins)
}
