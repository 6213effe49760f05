package monitor

import (
	"testing"

	"github.com/benchmodular/trigseq"
)

func TestPassThroughRoundTrip(t *testing.T) {
	p := NewPassThrough(8)
	levels := []float32{0, trigseq.TriggerHigh, 0, trigseq.TriggerHigh}
	if rem := p.InputLevels(levels); rem != 0 {
		t.Fatalf("InputLevels left %d unaccepted, want 0", rem)
	}

	out := make([]int16, 4)
	n := p.GetAudio(out)
	if n != 4 {
		t.Fatalf("GetAudio returned %d, want 4", n)
	}
	if out[0] != 0 || out[1] == 0 || out[2] != 0 || out[3] == 0 {
		t.Fatalf("unexpected PCM pattern: %v", out)
	}
}

func TestPassThroughBoundedBuffer(t *testing.T) {
	p := NewPassThrough(2)
	levels := make([]float32, 5)
	rem := p.InputLevels(levels)
	if rem != 3 {
		t.Fatalf("InputLevels rejected %d samples, want 3 (buffer size 2)", rem)
	}
}

func TestClickOnlyFiresOnRisingEdges(t *testing.T) {
	c := NewClick(64, 0, 0, 48000)
	levels := []float32{0, trigseq.TriggerHigh, trigseq.TriggerHigh, 0, trigseq.TriggerHigh}
	c.InputLevels(levels)

	out := make([]int16, len(levels))
	if n := c.GetAudio(out); n != len(levels) {
		t.Fatalf("GetAudio returned %d, want %d", n, len(levels))
	}

	if out[0] != 0 {
		t.Fatalf("sample 0 should be silent, got %d", out[0])
	}
	if out[1] == 0 {
		t.Fatalf("sample 1 is a rising edge and should click")
	}
	if out[2] != 0 {
		t.Fatalf("sample 2 is a held level, not a new edge, should stay silent, got %d", out[2])
	}
	if out[4] == 0 {
		t.Fatalf("sample 4 is a new rising edge and should click")
	}
}
