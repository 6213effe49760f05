package trigseq

// BarClock converts clock ticks into (bar, tick-in-bar) coordinates and
// tracks the inter-tick sample period. It holds no opinion about
// what a tick or a bar boundary should cause elsewhere; Engine drives it and
// reacts to the booleans it returns.
type BarClock struct {
	TicksPerBar int

	Tick int // clock_tick_counter: 0 .. TicksPerBar-1
	Bar  int // bar_counter: monotonic, never wraps
	Half int // current_bar_index: alternates 0/1 on every bar boundary

	SamplesSinceClock int
	LastPeriodSamples int
}

// Reset reinitializes the clock for ticksPerBar, as happens on a reset edge
// or a structural parameter change.
func (c *BarClock) Reset(ticksPerBar int) {
	*c = BarClock{TicksPerBar: ticksPerBar}
}

// AdvanceSample should be called exactly once per audio frame, before any
// edge handling for that frame.
func (c *BarClock) AdvanceSample() {
	c.SamplesSinceClock++
}

// OnClockEdge records the measured inter-tick period and resets the sample
// counter. It must be called only for frames where a clock rising edge was
// observed and no coincident reset edge takes precedence.
func (c *BarClock) OnClockEdge() {
	c.LastPeriodSamples = c.SamplesSinceClock
	c.SamplesSinceClock = 0
}

// AdvanceTick increments the tick counter after this frame's per-channel
// recording and output have been produced, and reports whether doing so
// crossed a bar boundary. On a boundary the bar counter advances and the
// bar-half alternator flips.
func (c *BarClock) AdvanceTick() bool {
	c.Tick++
	if c.Tick >= c.TicksPerBar {
		c.Tick = 0
		c.Bar++
		c.Half ^= 1
		return true
	}
	return false
}
