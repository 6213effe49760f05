package trigseq

// Engine is the top-level per-instance object: it owns the DTC, the
// per-channel pattern memory, and the injected-pattern buffers, and wires
// components A-H together into a single per-sample Step.
type Engine struct {
	numChannels int

	params Params
	snap   Snapshot

	dtc DTC

	recording  [MaxChannels]ChannelPattern
	learned    [MaxChannels]LearnedPattern
	outputBars [MaxChannels][MaxTicksPerBar]bool

	sampleRate float64
	pulseLen   int
}

// NewEngine constructs an Engine for numChannels channels (clamped to
// [1, MaxChannels]) with the given initial parameters. It starts in
// StateLearning with a freshly seeded PRNG.
func NewEngine(p Params, numChannels int) *Engine {
	if numChannels < 1 {
		numChannels = 1
	}
	if numChannels > MaxChannels {
		numChannels = MaxChannels
	}

	e := &Engine{numChannels: numChannels}
	e.dtc.PRNG = NewPRNG(p.Seed)
	e.params = p
	snap, _ := e.params.Normalize(nil)
	e.snap = snap
	e.forceReset()
	return e
}

// SetParams installs a new parameter set, taking effect from the next Step
// call. A structural change (PPQN or bar length) forces a full re-learn via
// forceReset, since every recorded tick position would otherwise refer to a
// different slot than before.
func (e *Engine) SetParams(p Params) {
	prev := e.snap
	snap, structural := p.Normalize(&prev)
	e.params = p
	e.snap = snap
	if structural {
		e.forceReset()
	}
}

// forceReset returns the engine to StateLearning with empty pattern memory:
// on construction, a reset edge, or a structural parameter change. It does
// not reseed the PRNG; reseeding is a distinct, explicit operation from
// forgetting a learned pattern.
func (e *Engine) forceReset() {
	e.dtc.Clock.Reset(e.snap.TicksPerBar)
	e.dtc.State = StateLearning
	e.dtc.StableBars = 0
	e.dtc.BarsSinceLock = 0
	e.dtc.IsInjectionBar = false
	e.dtc.ClockEdge.Reset()
	e.dtc.ResetEdge.Reset()

	for c := 0; c < e.numChannels; c++ {
		e.dtc.Channels[c] = channelHotState{}
		e.recording[c].Reset()
		e.learned[c] = LearnedPattern{}
		e.outputBars[c] = [MaxTicksPerBar]bool{}
	}
}

// Step advances the engine by frameCount samples, reading and writing
// buses by index per the currently installed ChannelRouting. buses[i]
// must have at least frameCount samples for every bus index the routing
// references; a referenced index outside buses is treated as disconnected
// rather than a panic, so a host need only allocate the buses it wires up.
func (e *Engine) Step(host Host, buses [][]float32, frameCount int) {
	rate := host.SampleRate()
	if rate != e.sampleRate {
		e.sampleRate = rate
		e.pulseLen = pulseLengthSamples(rate)
	}

	for f := 0; f < frameCount; f++ {
		e.stepFrame(buses, f)
	}
}

func (e *Engine) stepFrame(buses [][]float32, f int) {
	dtc := &e.dtc
	snap := &e.snap

	dtc.Clock.AdvanceSample()

	var resetRising bool
	if snap.Routing.ResetBus >= 0 {
		resetRising = dtc.ResetEdge.Rising(busSample(buses, snap.Routing.ResetBus, f))
	}
	if resetRising {
		e.forceReset()
		return
	}

	var clockRising bool
	if snap.Routing.ClockBus >= 0 {
		clockRising = dtc.ClockEdge.Rising(busSample(buses, snap.Routing.ClockBus, f))
	}
	if clockRising {
		dtc.Clock.OnClockEdge()
	}

	// Playback regime covers both Locked (play the learned bar back
	// verbatim) and Injecting (play the transformed output bar) while Fuel
	// is above zero; Learning, or Fuel at zero, falls through to
	// pass-through of the live input.
	injecting := dtc.State == StateInjecting && dtc.IsInjectionBar
	playingNow := snap.Fuel > 0 && (dtc.State == StateLocked || injecting)

	for c := 0; c < e.numChannels; c++ {
		ch := &dtc.Channels[c]
		trigInBus := snap.Routing.TrigInBus[c]
		trigOutBus := snap.Routing.TrigOutBus[c]
		mode := snap.Routing.TrigOutMode[c]

		var trigInValue float32
		if trigInBus >= 0 {
			trigInValue = busSample(buses, trigInBus, f)
			if ch.Edge.Rising(trigInValue) {
				e.recording[c].RecordHit(dtc.Clock.Tick)
			}
		}

		var value float32
		passThrough := true
		if playingNow {
			passThrough = false
			if ch.PulseRemaining > 0 {
				value = TriggerHigh
			}
		} else {
			value = trigInValue
		}
		if ch.PulseRemaining > 0 {
			ch.PulseRemaining--
		}

		existing := busSample(buses, trigOutBus, f)
		out := mixSample(existing, value, mode, trigInBus, trigOutBus, trigInValue, passThrough)
		busWrite(buses, trigOutBus, f, out)
	}

	if !clockRising {
		return
	}

	if dtc.Clock.AdvanceTick() {
		evaluateBarBoundary(dtc, e.recording[:e.numChannels], e.learned[:e.numChannels], e.outputBars[:e.numChannels], *snap)
		for c := 0; c < e.numChannels; c++ {
			e.recording[c].ShiftForNewBar()
		}
	}

	// Arm this tick's pulse from whichever bar is driving playback: the
	// output bar on an injection bar, the learned bar every other tick
	// while Locked.
	switch {
	case dtc.State == StateInjecting && dtc.IsInjectionBar:
		tick := dtc.Clock.Tick
		for c := 0; c < e.numChannels; c++ {
			if e.outputBars[c][tick] {
				armPulse(&dtc.Channels[c].PulseRemaining, e.pulseLen, dtc.Clock.LastPeriodSamples)
			}
		}
	case dtc.State == StateLocked:
		tick := dtc.Clock.Tick
		for c := 0; c < e.numChannels; c++ {
			if e.learned[c].Hit[tick] {
				armPulse(&dtc.Channels[c].PulseRemaining, e.pulseLen, dtc.Clock.LastPeriodSamples)
			}
		}
	}

	if dtc.Clock.AdvanceTick() {
		evaluateBarBoundary(dtc, e.recording[:e.numChannels], e.learned[:e.numChannels], e.outputBars[:e.numChannels], *snap)
		for c := 0; c < e.numChannels; c++ {
			e.recording[c].ShiftForNewBar()
		}
	}
}

func busSample(buses [][]float32, bus, f int) float32 {
	if bus < 0 || bus >= len(buses) {
		return 0
	}
	buf := buses[bus]
	if f < 0 || f >= len(buf) {
		return 0
	}
	return buf[f]
}

// State reports the supervisor's current position in the
// Learning->Locked->Injecting cycle.
func (e *Engine) State() State { return e.dtc.State }

// Bar reports the monotonic bar counter.
func (e *Engine) Bar() int { return e.dtc.Clock.Bar }

// Tick reports the current tick-in-bar position.
func (e *Engine) Tick() int { return e.dtc.Clock.Tick }

// LastPeriodSamples reports the most recently measured inter-tick sample
// period, or 0 before the first clock edge has been observed.
func (e *Engine) LastPeriodSamples() int { return e.dtc.Clock.LastPeriodSamples }

// LearnedHitCount reports the learned pattern's hit count for channel c, or
// 0 if nothing has locked yet.
func (e *Engine) LearnedHitCount(c int) int {
	if c < 0 || c >= e.numChannels {
		return 0
	}
	return e.learned[c].Count
}

// PulseRemaining reports the number of output samples left in channel c's
// currently armed playback pulse (Locked or Injecting), if any.
func (e *Engine) PulseRemaining(c int) int {
	if c < 0 || c >= e.numChannels {
		return 0
	}
	return e.dtc.Channels[c].PulseRemaining
}

// Similarity reports channel c's most recently computed bar-to-bar
// similarity percentage, the value that drove the last Learning/Locked
// transition decision.
func (e *Engine) Similarity(c int) int {
	if c < 0 || c >= e.numChannels {
		return 0
	}
	return e.dtc.LastSimilarity[c]
}

// LearnedHit reports whether channel c's learned pattern has a hit at tick.
func (e *Engine) LearnedHit(c, tick int) bool {
	if c < 0 || c >= e.numChannels || tick < 0 || tick >= MaxTicksPerBar {
		return false
	}
	return e.learned[c].Hit[tick]
}

// OutputHit reports whether channel c's current injected output bar has a
// hit at tick.
func (e *Engine) OutputHit(c, tick int) bool {
	if c < 0 || c >= e.numChannels || tick < 0 || tick >= MaxTicksPerBar {
		return false
	}
	return e.outputBars[c][tick]
}

// TicksPerBar reports the currently installed tick-per-bar length.
func (e *Engine) TicksPerBar() int {
	return e.snap.TicksPerBar
}

func busWrite(buses [][]float32, bus, f int, v float32) {
	if bus < 0 || bus >= len(buses) {
		return
	}
	buf := buses[bus]
	if f < 0 || f >= len(buf) {
		return
	}
	buf[f] = v
}
