package trigseq

// evaluateBarBoundary runs the supervisor's state transitions at the end of
// a bar. It is called after BarClock.AdvanceTick has already bumped
// the bar counter to the bar that's about to start, so dtc.Clock.Bar here
// names that upcoming bar, not the one just completed. recording holds each
// channel's just-completed in-progress bar (HitBar1), not yet rotated;
// learned and outputBars are mutated in place when the supervisor locks or
// schedules an injection. Rotation (ChannelPattern.ShiftForNewBar) is the
// caller's responsibility and must happen after this call returns, per the
// recording -> supervision -> rotation ordering.
func evaluateBarBoundary(dtc *DTC, recording []ChannelPattern, learned []LearnedPattern, outputBars [][MaxTicksPerBar]bool, snap Snapshot) {
	switch dtc.State {
	case StateLearning:
		evaluateLearning(dtc, recording, learned, snap)
	case StateLocked, StateInjecting:
		evaluateLockedOrInjecting(dtc, recording, learned, snap)
	}

	if dtc.State == StateLocked && snap.Fuel > 0 && shouldInjectThisBar(dtc.Clock.Bar, snap.InjectionInterval) {
		scheduleInjection(dtc, learned, outputBars, snap)
	}
}

func evaluateLearning(dtc *DTC, recording []ChannelPattern, learned []LearnedPattern, snap Snapshot) {
	minSimilarity := 100
	for c := range recording {
		s := recording[c].Similarity()
		dtc.LastSimilarity[c] = s
		if s < minSimilarity {
			minSimilarity = s
		}
	}

	if minSimilarity < similarityLockThreshold {
		dtc.StableBars = 0
		return
	}

	dtc.StableBars++
	if dtc.StableBars < snap.RequiredStableBars {
		return
	}

	for c := range recording {
		learned[c] = snapshotLearned(&recording[c])
	}
	dtc.State = StateLocked
	dtc.BarsSinceLock = 0
}

func evaluateLockedOrInjecting(dtc *DTC, recording []ChannelPattern, learned []LearnedPattern, snap Snapshot) {
	changed := false
	for c := range recording {
		didChange, similarity := detectPatternChange(&learned[c], &recording[c])
		dtc.LastSimilarity[c] = similarity
		if didChange {
			changed = true
		}
	}

	if changed {
		dtc.State = StateLearning
		dtc.StableBars = 0
		dtc.BarsSinceLock = 0
		dtc.IsInjectionBar = false
		clearPulses(dtc)
		return
	}

	dtc.BarsSinceLock++
	if dtc.State == StateInjecting {
		dtc.State = StateLocked
		dtc.IsInjectionBar = false
		clearPulses(dtc)
	}
}

func scheduleInjection(dtc *DTC, learned []LearnedPattern, outputBars [][MaxTicksPerBar]bool, snap Snapshot) {
	dtc.State = StateInjecting
	dtc.IsInjectionBar = true
	for c := range learned {
		applyInjections(&learned[c], &outputBars[c], dtc.PRNG, snap)
	}
}

func clearPulses(dtc *DTC) {
	for c := range dtc.Channels {
		dtc.Channels[c].PulseRemaining = 0
	}
}

// shouldInjectThisBar is the 1-indexed injection-interval predicate: the
// bar about to start is an injection bar whenever it falls on the interval.
func shouldInjectThisBar(nextBarNumber, interval int) bool {
	return nextBarNumber%interval == 0
}
