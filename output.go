package trigseq

// pulseLengthSamples is the nominal ~10ms trigger pulse length, clamped to
// at least one sample.
func pulseLengthSamples(sampleRate float64) int {
	n := int(pulseSeconds*sampleRate + 0.5)
	if n < 1 {
		n = 1
	}
	return n
}

// armPulse sets the channel's remaining pulse-high sample count, clamped so
// the pulse never exceeds half the measured clock period.
func armPulse(remaining *int, pulseLen, clockPeriodSamples int) {
	n := pulseLen
	if half := clockPeriodSamples / 2; half > 0 && half < n {
		n = half
	}
	*remaining = n
}

// mixSample applies the Add/Replace output policy for one channel's bus
// sample. In the pass-through regime, a channel whose trig-out bus
// is the same physical bus as its trig-in in Add mode must not double the
// signal, so it writes the input value through unchanged instead of adding
// to it.
func mixSample(existing, value float32, mode TrigOutMode, trigInBus, trigOutBus int, trigInValue float32, passThrough bool) float32 {
	if passThrough && mode == ModeAdd && trigOutBus == trigInBus {
		return trigInValue
	}
	if mode == ModeReplace {
		return value
	}
	return existing + value
}
