package main

import (
	"github.com/benchmodular/trigseq"
	"github.com/benchmodular/trigseq/scenario"
)

// scenarioDriver walks a scenario's bars at a fixed samples-per-tick rate,
// looping back to bar 0 once the scenario is exhausted, and fills clock and
// per-channel trigger-in buses one tick boundary at a time.
type scenarioDriver struct {
	sc             *scenario.Scenario
	samplesPerTick int
	channels       int

	tick         int
	bar          int
	sampleInTick int
}

func newScenarioDriver(sc *scenario.Scenario, samplesPerTick, channels int) *scenarioDriver {
	return &scenarioDriver{sc: sc, samplesPerTick: samplesPerTick, channels: channels}
}

// fill writes one tick's worth of samples into clock, reset and trigIn
// (reset is always left low; this driver never resets, only SIGINT/flag
// handling upstream would). len(clock) must equal samplesPerTick.
func (d *scenarioDriver) fill(clock, reset []float32, trigIn [][]float32) {
	barCount := len(d.sc.Channels[0])
	barIdx := d.bar % barCount

	for i := range clock {
		if d.sampleInTick == 0 {
			clock[i] = trigseq.TriggerHigh
			for c := 0; c < d.channels && c < len(d.sc.Channels); c++ {
				for _, ht := range d.sc.Channels[c][barIdx].Ticks {
					if ht == d.tick {
						trigIn[c][i] = trigseq.TriggerHigh
						break
					}
				}
			}
		}
		reset[i] = 0

		d.sampleInTick++
		if d.sampleInTick >= d.samplesPerTick {
			d.sampleInTick = 0
			d.tick++
			if d.tick >= d.sc.TicksPerBar() {
				d.tick = 0
				d.bar++
				barIdx = d.bar % barCount
			}
		}
	}
}
