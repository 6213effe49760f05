package trigseq

import "testing"

func TestNormalizeClampsFuel(t *testing.T) {
	p := DefaultParams()
	p.Fuel = -5
	snap, _ := p.Normalize(nil)
	if snap.Fuel != 0 {
		t.Fatalf("Fuel = %d, want clamped to 0", snap.Fuel)
	}

	p2 := DefaultParams()
	p2.Fuel = 250
	snap2, _ := p2.Normalize(nil)
	if snap2.Fuel != 100 {
		t.Fatalf("Fuel = %d, want clamped to 100", snap2.Fuel)
	}
}

func TestNormalizeDefaultsInvalidPPQN(t *testing.T) {
	p := DefaultParams()
	p.PPQN = 0
	snap, _ := p.Normalize(nil)
	if snap.PPQN != 48 {
		t.Fatalf("PPQN = %d, want default 48", snap.PPQN)
	}
}

func TestNormalizeClampsBarLengthToTicksPerBarBudget(t *testing.T) {
	p := DefaultParams()
	p.PPQN = 48
	p.BarLength = 100 // would need 4800 ticks, far over MaxTicksPerBar
	snap, _ := p.Normalize(nil)

	maxBarLength := MaxTicksPerBar / 48
	if snap.BarLength != maxBarLength {
		t.Fatalf("BarLength = %d, want clamped to %d", snap.BarLength, maxBarLength)
	}
	if snap.TicksPerBar > MaxTicksPerBar {
		t.Fatalf("TicksPerBar = %d exceeds MaxTicksPerBar %d", snap.TicksPerBar, MaxTicksPerBar)
	}
}

func TestNormalizeRequiredStableBars(t *testing.T) {
	p := DefaultParams()
	p.LearningBars = 1
	snap, _ := p.Normalize(nil)
	if snap.RequiredStableBars != 1 {
		t.Fatalf("RequiredStableBars = %d, want 1 (floor of LearningBars-1)", snap.RequiredStableBars)
	}

	p2 := DefaultParams()
	p2.LearningBars = 4
	snap2, _ := p2.Normalize(nil)
	if snap2.RequiredStableBars != 3 {
		t.Fatalf("RequiredStableBars = %d, want 3", snap2.RequiredStableBars)
	}
}

func TestNormalizeReportsStructuralChange(t *testing.T) {
	p := DefaultParams()
	first, structural := p.Normalize(nil)
	if !structural {
		t.Fatal("first Normalize call (prev=nil) should always report a structural change")
	}

	p2 := DefaultParams()
	_, structural2 := p2.Normalize(&first)
	if structural2 {
		t.Fatal("identical PPQN/BarLength should not report a structural change")
	}

	p3 := DefaultParams()
	p3.PPQN = 24
	_, structural3 := p3.Normalize(&first)
	if !structural3 {
		t.Fatal("a PPQN change should report a structural change")
	}
}

func TestDefaultRoutingDisconnectsAllBuses(t *testing.T) {
	r := DefaultRouting()
	if r.ClockBus != -1 || r.ResetBus != -1 {
		t.Fatal("DefaultRouting should disconnect the clock and reset buses")
	}
	for c := range r.TrigInBus {
		if r.TrigInBus[c] != -1 || r.TrigOutBus[c] != -1 {
			t.Fatalf("channel %d should start disconnected", c)
		}
	}
}

func TestInjectionProbabilitiesByKind(t *testing.T) {
	p := InjectionProbabilities{
		Microtiming: 1, Omission: 2, Roll: 3, Density: 4, Permutation: 5, Polyrhythm: 6,
	}
	cases := map[InjectionKind]int{
		InjMicrotiming: 1, InjOmission: 2, InjRoll: 3, InjDensity: 4, InjPermutation: 5, InjPolyrhythm: 6,
	}
	for k, want := range cases {
		if got := p.byKind(k); got != want {
			t.Fatalf("byKind(%v) = %d, want %d", k, got, want)
		}
	}
}
