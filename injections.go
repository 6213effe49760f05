package trigseq

// shouldApplyInjection is the shared Fuel-scaled gate: with Fuel or
// the kind's own probability at zero it never fires; otherwise a single RNG
// draw decides, scaled so Fuel linearly attenuates every probability.
func shouldApplyInjection(p, fuel int, rng RNG) bool {
	if fuel == 0 || p == 0 {
		return false
	}
	r := int(rng.Next() % 100)
	return r < (p*fuel)/100
}

// applyInjections runs the six injection kernels over learned in their
// fixed order, writing the result into output. Each kernel shares
// the (learned, output, fuel, rng, ticksPerBar, ppqn) signature and is
// itself gated by shouldApplyInjection at its configured probability; the
// kernels never dispatch dynamically, they are just called in sequence.
func applyInjections(learned *LearnedPattern, output *[MaxTicksPerBar]bool, rng RNG, snap Snapshot) {
	ticksPerBar := snap.TicksPerBar
	ppqn := snap.PPQN
	fuel := snap.Fuel

	for i := 0; i < ticksPerBar; i++ {
		output[i] = learned.Hit[i]
	}
	for i := ticksPerBar; i < MaxTicksPerBar; i++ {
		output[i] = false
	}

	kernels := [injectionKindCount]func(*LearnedPattern, *[MaxTicksPerBar]bool, int, RNG, int, int){
		InjMicrotiming: applyMicrotiming,
		InjOmission:    applyOmission,
		InjRoll:        applyRoll,
		InjDensity:     applyDensity,
		InjPermutation: applyPermutation,
		InjPolyrhythm:  applyPolyrhythm,
	}
	for k := InjectionKind(0); k < injectionKindCount; k++ {
		p := snap.Probabilities.byKind(k)
		if shouldApplyInjection(p, fuel, rng) {
			kernels[k](learned, output, fuel, rng, ticksPerBar, ppqn)
		}
	}
}

// applyMicrotiming nudges each learned hit by a small random offset.
func applyMicrotiming(learned *LearnedPattern, output *[MaxTicksPerBar]bool, fuel int, rng RNG, ticksPerBar, ppqn int) {
	rang := ppqn / 4
	if rang < 1 {
		return
	}
	for i := 0; i < ticksPerBar; i++ {
		if !learned.Hit[i] {
			continue
		}
		shift := intn(rng, 2*rang+1) - rang

		adjacent := -1
		if i-1 >= 0 && learned.Hit[i-1] {
			adjacent = i - 1
		} else if i+1 < ticksPerBar && learned.Hit[i+1] {
			adjacent = i + 1
		}

		newPos := applyMicrotimingShift(i, shift, adjacent)
		if newPos != i && newPos >= 0 && newPos < ticksPerBar {
			output[i] = false
			output[newPos] = true
		}
	}
}

func applyMicrotimingShift(i, shift, adjacent int) int {
	newPos := i + shift
	if adjacent >= 0 && newPos == adjacent {
		if shift > 0 {
			newPos++
		} else {
			newPos--
		}
	}
	if newPos < 0 {
		newPos = 0
	}
	if newPos > MaxTicksPerBar-1 {
		newPos = MaxTicksPerBar - 1
	}
	return newPos
}

// applyOmission drops a capped number of learned hits, preferring non-
// downbeat positions.
func applyOmission(learned *LearnedPattern, output *[MaxTicksPerBar]bool, fuel int, rng RNG, ticksPerBar, ppqn int) {
	if learned.Count == 0 {
		return
	}

	var pool []int
	for i := 0; i < ticksPerBar; i++ {
		if learned.Hit[i] && i != 0 {
			pool = append(pool, i)
		}
	}
	if len(pool) == 0 {
		for i := 0; i < ticksPerBar; i++ {
			if learned.Hit[i] {
				pool = append(pool, i)
			}
		}
	}

	omitCap := (learned.Count + 3) / 4 // ceil(hits/4)
	var omit []int
	for slot := 0; slot < omitCap && len(pool) > 0; slot++ {
		if !shouldApplyInjection(100, fuel, rng) {
			continue
		}
		idx := intn(rng, len(pool))
		omit = append(omit, pool[idx])
		pool = append(pool[:idx], pool[idx+1:]...)
	}

	for _, i := range omit {
		output[i] = false
	}
}

// applyRoll subdivides learned hits into a ratchet within the same beat
// window; each hit is gated on its own, with no cap on how many roll.
func applyRoll(learned *LearnedPattern, output *[MaxTicksPerBar]bool, fuel int, rng RNG, ticksPerBar, ppqn int) {
	subdivisionChoices := [3]int{2, 3, 4}

	for i := 0; i < ticksPerBar; i++ {
		if !learned.Hit[i] {
			continue
		}
		if !shouldApplyInjection(100, fuel, rng) {
			continue
		}

		subdivisions := subdivisionChoices[intn(rng, len(subdivisionChoices))]
		spacing := ppqn / subdivisions
		if spacing == 0 {
			continue
		}

		beatStart := (i / ppqn) * ppqn
		for j := 1; j < subdivisions; j++ {
			p := i + j*spacing
			if p < beatStart+ppqn && p < ticksPerBar {
				output[p] = true
			}
		}
	}
}

// applyDensity adds an eighth-note subdivision hit after a capped number of
// beat-aligned learned hits: beat-aligned candidate selection capped at
// half the candidates rounded up, with an eighth-note subdivision added.
func applyDensity(learned *LearnedPattern, output *[MaxTicksPerBar]bool, fuel int, rng RNG, ticksPerBar, ppqn int) {
	if ppqn < 2 {
		return
	}

	var beats []int
	for beatStart := 0; beatStart < ticksPerBar; beatStart += ppqn {
		if learned.Hit[beatStart] {
			beats = append(beats, beatStart)
		}
	}

	burstCap := (len(beats) + 1) / 2
	for i := 0; i < burstCap; i++ {
		if !shouldApplyInjection(100, fuel, rng) {
			continue
		}
		pos := beats[i] + ppqn/2
		if pos < ticksPerBar {
			output[pos] = true
		}
	}
}

// applyPermutation shuffles the output bar's eighth-note segments.
func applyPermutation(learned *LearnedPattern, output *[MaxTicksPerBar]bool, fuel int, rng RNG, ticksPerBar, ppqn int) {
	segment := ppqn / 2
	if segment == 0 {
		return
	}
	segmentCount := ticksPerBar / segment
	if segmentCount == 0 {
		return
	}

	perm := make([]int, segmentCount)
	for i := range perm {
		perm[i] = i
	}
	for i := segmentCount - 1; i > 0; i-- {
		j := intn(rng, i+1)
		perm[i], perm[j] = perm[j], perm[i]
	}

	var scratch [MaxTicksPerBar]bool
	for s := 0; s < segmentCount; s++ {
		src := perm[s] * segment
		dst := s * segment
		for k := 0; k < segment; k++ {
			scratch[dst+k] = output[src+k]
		}
	}
	*output = scratch
}

// applyPolyrhythm overlays an evenly-spaced 3-against or 5-against pattern,
// adding hits without clearing any existing ones.
func applyPolyrhythm(learned *LearnedPattern, output *[MaxTicksPerBar]bool, fuel int, rng RNG, ticksPerBar, ppqn int) {
	types := [2]int{3, 5}
	typ := types[intn(rng, len(types))]

	spacing := ticksPerBar / typ
	if spacing == 0 {
		return
	}
	for k := 0; k < typ; k++ {
		pos := k * spacing
		if pos < ticksPerBar {
			output[pos] = true
		}
	}
}
