package trigseq

import "testing"

func TestShouldApplyInjectionZeroFuelNeverFires(t *testing.T) {
	r := &stubRNG{values: []uint32{0}}
	if shouldApplyInjection(100, 0, r) {
		t.Fatal("zero Fuel should never allow an injection")
	}
}

func TestShouldApplyInjectionZeroProbabilityNeverFires(t *testing.T) {
	r := &stubRNG{values: []uint32{0}}
	if shouldApplyInjection(0, 100, r) {
		t.Fatal("zero probability should never allow an injection")
	}
}

func TestShouldApplyInjectionScalesByFuel(t *testing.T) {
	// p=50, fuel=50 -> threshold = 25
	r := &stubRNG{values: []uint32{24}}
	if !shouldApplyInjection(50, 50, r) {
		t.Fatal("a draw below the fuel-scaled threshold should fire")
	}
	r2 := &stubRNG{values: []uint32{25}}
	if shouldApplyInjection(50, 50, r2) {
		t.Fatal("a draw at or above the fuel-scaled threshold should not fire")
	}
}

func TestApplyMicrotimingShift(t *testing.T) {
	// range = ppqn/4 = 12. A stub draw of 14 against modulus 2*12+1=25
	// yields shift = 14-12 = 2, per the concrete scenario this kernel is
	// specified against.
	if got := applyMicrotimingShift(10, 2, -1); got != 12 {
		t.Fatalf("applyMicrotimingShift(10, +2, no adjacent) = %d, want 12", got)
	}
}

func TestApplyMicrotimingShiftAvoidsAdjacentCollision(t *testing.T) {
	// Shifting tick 10 by +2 would land on 12, but 12 is already an
	// adjacent hit, so the kernel pushes one further away (+1 more).
	if got := applyMicrotimingShift(10, 2, 12); got != 13 {
		t.Fatalf("applyMicrotimingShift with adjacent collision = %d, want 13", got)
	}
}

func TestApplyMicrotimingShiftClampsToBounds(t *testing.T) {
	if got := applyMicrotimingShift(0, -5, -1); got != 0 {
		t.Fatalf("applyMicrotimingShift should clamp to 0, got %d", got)
	}
	if got := applyMicrotimingShift(MaxTicksPerBar-1, 5, -1); got != MaxTicksPerBar-1 {
		t.Fatalf("applyMicrotimingShift should clamp to MaxTicksPerBar-1, got %d", got)
	}
}

func TestApplyMicrotimingMovesHitsWithStubbedDraws(t *testing.T) {
	learned := LearnedPattern{Count: 1}
	learned.Hit[10] = true

	var output [MaxTicksPerBar]bool
	output[10] = true

	// rang = ppqn/4 = 12, draw=14 -> shift=+2 -> newPos=12
	rng := &stubRNG{values: []uint32{14}}
	applyMicrotiming(&learned, &output, 100, rng, 48, 48)

	if output[10] {
		t.Fatal("the original hit position should be cleared after a shift")
	}
	if !output[12] {
		t.Fatal("the hit should have moved to tick 12")
	}
}

func TestApplyOmissionRespectsCap(t *testing.T) {
	learned := LearnedPattern{Count: 8}
	for i := 0; i < 8; i++ {
		learned.Hit[i*2+2] = true // avoid tick 0 so the non-downbeat pool is full
	}

	var output [MaxTicksPerBar]bool
	output = learned.Hit

	// Always gate true (small draws) and always pick pool index 0.
	rng := &stubRNG{values: []uint32{0}}
	applyOmission(&learned, &output, 100, rng, 48, 48)

	omitted := 0
	for i := 0; i < 48; i++ {
		if learned.Hit[i] && !output[i] {
			omitted++
		}
	}
	wantCap := (8 + 3) / 4
	if omitted != wantCap {
		t.Fatalf("omitted %d hits, want the capped %d (ceil(hits/4))", omitted, wantCap)
	}
}

func TestApplyOmissionNoOpWithNoHits(t *testing.T) {
	learned := LearnedPattern{}
	var output [MaxTicksPerBar]bool
	rng := &stubRNG{values: []uint32{0}}
	applyOmission(&learned, &output, 100, rng, 48, 48)
	for i := range output {
		if output[i] {
			t.Fatal("no hits to omit should leave output untouched")
		}
	}
}

func TestApplyPolyrhythmOverlaysWithoutClearing(t *testing.T) {
	learned := LearnedPattern{Count: 1}
	learned.Hit[5] = true

	var output [MaxTicksPerBar]bool
	output[5] = true

	// types={3,5}; draw 0 -> index 0 -> typ=3
	rng := &stubRNG{values: []uint32{0}}
	applyPolyrhythm(&learned, &output, 100, rng, 48, 48)

	if !output[5] {
		t.Fatal("polyrhythm must not clear pre-existing hits")
	}
	spacing := 48 / 3
	for k := 0; k < 3; k++ {
		if !output[k*spacing] {
			t.Fatalf("expected an overlay hit at tick %d", k*spacing)
		}
	}
}

func TestApplyPermutationPreservesSegmentContents(t *testing.T) {
	learned := LearnedPattern{Count: 1}
	var output [MaxTicksPerBar]bool
	// One hit per 24-tick segment (ppqn=48 -> segment=24, 2 segments in a
	// 48-tick bar) so a swap is externally observable.
	output[0] = true
	output[30] = true

	// A single swap for segmentCount=2: i=1, j=intn(rng,2).
	rng := &stubRNG{values: []uint32{0}} // j=0 -> swap segment 1 and segment 0
	applyPermutation(&learned, &output, 100, rng, 48, 48)

	if output[0] {
		t.Fatal("segment 0's original hit should have moved after the swap")
	}
	if !output[6] {
		t.Fatal("segment 1's hit (relative offset 6) should now occupy segment 0")
	}
}

func TestApplyDensityAddsEighthNoteAfterBeat(t *testing.T) {
	learned := LearnedPattern{Count: 1}
	learned.Hit[0] = true // beat-aligned at tick 0

	var output [MaxTicksPerBar]bool
	output[0] = true

	rng := &stubRNG{values: []uint32{0}}
	applyDensity(&learned, &output, 100, rng, 48, 48)

	if !output[24] {
		t.Fatal("expected an eighth-note subdivision hit at ppqn/2 after the beat")
	}
}

func TestApplyRollAddsSubdivisions(t *testing.T) {
	learned := LearnedPattern{Count: 1}
	learned.Hit[0] = true

	var output [MaxTicksPerBar]bool
	output[0] = true

	// subdivisionChoices={2,3,4}; draw 0 -> index 0 -> subdivisions=2
	rng := &stubRNG{values: []uint32{0}}
	applyRoll(&learned, &output, 100, rng, 48, 48)

	spacing := 48 / 2
	if !output[spacing] {
		t.Fatalf("expected a roll subdivision hit at tick %d", spacing)
	}
}

func TestApplyInjectionsCopiesLearnedAndBoundsOutputWhenNoKernelFires(t *testing.T) {
	learned := LearnedPattern{Count: 1}
	learned.Hit[0] = true

	snap := makeSnapshot(48, 1, 100, 4, 1)
	var output [MaxTicksPerBar]bool

	// A draw of 99 is at or above every kernel's fuel-scaled threshold (50
	// here), so no kernel fires and output is simply the learned pattern
	// copied through.
	rng := &stubRNG{values: []uint32{99}}
	applyInjections(&learned, &output, rng, snap)

	if !output[0] {
		t.Fatal("with every kernel suppressed, output should equal the learned pattern")
	}
	for i := 1; i < MaxTicksPerBar; i++ {
		if output[i] {
			t.Fatalf("tick %d should be false, only tick 0 was learned", i)
		}
	}
}
