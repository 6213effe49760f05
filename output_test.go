package trigseq

import "testing"

func TestPulseLengthSamples(t *testing.T) {
	if got := pulseLengthSamples(44100); got != 441 {
		t.Fatalf("pulseLengthSamples(44100) = %d, want 441 (10ms)", got)
	}
	if got := pulseLengthSamples(1); got != 1 {
		t.Fatalf("pulseLengthSamples(1) = %d, want clamped to 1", got)
	}
}

func TestArmPulseClampsToHalfPeriod(t *testing.T) {
	var remaining int
	armPulse(&remaining, 441, 100)
	if remaining != 50 {
		t.Fatalf("remaining = %d, want clamped to half the 100-sample clock period (50)", remaining)
	}
}

func TestArmPulseUsesFullLengthWhenPeriodIsLong(t *testing.T) {
	var remaining int
	armPulse(&remaining, 441, 10000)
	if remaining != 441 {
		t.Fatalf("remaining = %d, want the unclamped pulse length 441", remaining)
	}
}

func TestArmPulseIgnoresZeroPeriod(t *testing.T) {
	var remaining int
	armPulse(&remaining, 441, 0)
	if remaining != 441 {
		t.Fatalf("remaining = %d, want unclamped when no period has been measured yet", remaining)
	}
}

func TestMixSampleReplaceMode(t *testing.T) {
	got := mixSample(TriggerHigh, 0, ModeReplace, 0, 1, TriggerHigh, true)
	if got != 0 {
		t.Fatalf("ModeReplace should overwrite the bus with the new value, got %v", got)
	}
}

func TestMixSampleAddModeDifferentBuses(t *testing.T) {
	got := mixSample(1.0, TriggerHigh, ModeAdd, 0, 1, TriggerHigh, true)
	if got != 1.0+TriggerHigh {
		t.Fatalf("ModeAdd on a distinct bus should sum, got %v", got)
	}
}

func TestMixSampleAddModeSameBusNoDoubling(t *testing.T) {
	got := mixSample(0, TriggerHigh, ModeAdd, 2, 2, TriggerHigh, true)
	if got != TriggerHigh {
		t.Fatalf("pass-through Add onto the same bus should forward the input once, not double it, got %v", got)
	}
}

func TestMixSampleAddModeSameBusDuringInjectionStillSums(t *testing.T) {
	// passThrough=false (playback while Locked or on an injection bar):
	// same-bus Add should behave like a
	// normal additive mix, since there is no live input being echoed.
	got := mixSample(0, TriggerHigh, ModeAdd, 2, 2, 0, false)
	if got != TriggerHigh {
		t.Fatalf("got %v, want %v", got, TriggerHigh)
	}
}
