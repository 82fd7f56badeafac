package worker

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestProgress_Update(t *testing.T) {
	p := NewProgress(10, false)

	p.Update(Stats{Completed: 5, Total: 10, Maps: 20})

	if p.stats.Completed != 5 {
		t.Errorf("Expected Completed=5, got %d", p.stats.Completed)
	}
	if p.stats.Total != 10 {
		t.Errorf("Expected Total=10, got %d", p.stats.Total)
	}
	if p.stats.Maps != 20 {
		t.Errorf("Expected Maps=20, got %d", p.stats.Maps)
	}
}

func TestProgress_Print(t *testing.T) {
	var buf bytes.Buffer

	p := NewProgress(10, true)
	p.output = &buf
	p.startTime = time.Now().Add(-10 * time.Second) // Simulate 10 seconds elapsed

	p.Update(Stats{Completed: 5, Total: 10, Failed: 1, Maps: 16, Sprite: "art/hero.png"})

	output := buf.String()

	// Should contain progress bar
	if !strings.Contains(output, "█") {
		t.Error("Expected progress bar in output")
	}

	// Should show completed/total
	if !strings.Contains(output, "5/10 sprites") {
		t.Errorf("Expected '5/10 sprites' in output, got: %s", output)
	}

	// Should show failed count
	if !strings.Contains(output, "(1 failed)") {
		t.Errorf("Expected '(1 failed)' in output, got: %s", output)
	}

	// Should show written maps and the last sprite
	if !strings.Contains(output, "16 maps") {
		t.Errorf("Expected '16 maps' in output, got: %s", output)
	}
	if !strings.Contains(output, "hero.png") {
		t.Errorf("Expected 'hero.png' in output, got: %s", output)
	}

	// Should show rate
	if !strings.Contains(output, "sprites/sec") {
		t.Errorf("Expected 'sprites/sec' in output, got: %s", output)
	}

	// Should show ETA (since not complete)
	if !strings.Contains(output, "ETA:") {
		t.Errorf("Expected 'ETA:' in output, got: %s", output)
	}
}

func TestProgress_Done(t *testing.T) {
	var buf bytes.Buffer

	p := NewProgress(3, true)
	p.output = &buf
	p.startTime = time.Now().Add(-3 * time.Second)

	p.Update(Stats{Completed: 3, Total: 3, Maps: 12})
	buf.Reset() // Clear previous output

	p.Done()

	output := buf.String()

	// Should show "Done" message
	if !strings.Contains(output, "Done in") {
		t.Errorf("Expected 'Done in' in output, got: %s", output)
	}

	// Should end with newline
	if !strings.HasSuffix(output, "\n") {
		t.Error("Expected output to end with newline")
	}
}

func TestProgress_Summary(t *testing.T) {
	p := NewProgress(10, false)
	p.startTime = time.Now().Add(-10 * time.Second)

	p.Update(Stats{Completed: 10, Total: 10, Failed: 2, Maps: 32})

	summary := p.Summary()

	if !strings.Contains(summary, "8/10 sprites") {
		t.Errorf("Expected '8/10 sprites' (successful) in summary, got: %s", summary)
	}

	if !strings.Contains(summary, "32 maps") {
		t.Errorf("Expected '32 maps' in summary, got: %s", summary)
	}

	if !strings.Contains(summary, "2 failed") {
		t.Errorf("Expected '2 failed' in summary, got: %s", summary)
	}
}

func TestProgress_Disabled(t *testing.T) {
	var buf bytes.Buffer

	p := NewProgress(10, false) // Disabled
	p.SetOutput(&buf)

	p.Update(Stats{Completed: 5, Total: 10})

	// Should not produce output when disabled
	if buf.Len() != 0 {
		t.Errorf("Expected no output when disabled, got: %s", buf.String())
	}
}

func TestProgress_ZeroTotal(t *testing.T) {
	var buf bytes.Buffer

	p := NewProgress(0, true)
	p.SetOutput(&buf)
	p.Update(Stats{})

	if !strings.Contains(buf.String(), "0/0 sprites") {
		t.Errorf("Expected '0/0 sprites' in output, got: %s", buf.String())
	}
}

func TestProgress_Callback(t *testing.T) {
	p := NewProgress(10, false)

	callback := p.Callback()

	callback(Stats{Completed: 5, Total: 10, Failed: 1})

	if p.stats.Completed != 5 {
		t.Errorf("Expected Completed=5, got %d", p.stats.Completed)
	}
	if p.stats.Failed != 1 {
		t.Errorf("Expected Failed=1, got %d", p.stats.Failed)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		expected string
		duration time.Duration
	}{
		{duration: 30 * time.Second, expected: "30s"},
		{duration: 90 * time.Second, expected: "1m30s"},
		{duration: 5 * time.Minute, expected: "5m0s"},
		{duration: 65 * time.Minute, expected: "1h5m"},
		{duration: 2*time.Hour + 30*time.Minute, expected: "2h30m"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			result := formatDuration(tt.duration)
			if result != tt.expected {
				t.Errorf("formatDuration(%v) = %s, want %s", tt.duration, result, tt.expected)
			}
		})
	}
}
