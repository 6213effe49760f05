// trigdump drives a trigseq.Engine from a scenario fixture at two samples
// per tick (no audio, no real clock jitter) and prints a bar-by-bar text
// trace of the supervisor's state and each channel's output pattern.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/benchmodular/trigseq"
	"github.com/benchmodular/trigseq/scenario"
)

var (
	flagBars     = flag.Int("bars", 16, "number of bars to dump")
	flagFuel     = flag.Int("fuel", 100, "Fuel amount, 0-100")
	flagLearn    = flag.Int("learn", 2, "bars of stable pattern required to lock")
	flagInterval = flag.Int("interval", 4, "bars between injections once locked")
)

type constHost struct{ rate float64 }

func (h constHost) SampleRate() float64 { return h.rate }

func main() {
	log.SetFlags(0)
	log.SetPrefix("trigdump: ")
	flag.Parse()

	if len(flag.Args()) == 0 {
		log.Fatal("Missing scenario filename")
	}

	f, err := os.Open(flag.Arg(0))
	if err != nil {
		log.Fatal(err)
	}
	sc, err := scenario.ParseScenario(f)
	f.Close()
	if err != nil {
		log.Fatal(err)
	}

	channels := len(sc.Channels)
	params := trigseq.DefaultParams()
	params.PPQN = sc.PPQN
	params.BarLength = sc.BarLength
	params.Fuel = *flagFuel
	params.LearningBars = *flagLearn
	params.InjectionInterval = *flagInterval
	params.Routing = routingFor(channels)

	engine := trigseq.NewEngine(params, channels)
	host := constHost{rate: 1}

	// Two samples per tick: a clock rising edge, then a held-low sample so
	// the next tick's edge can be detected in turn.
	clock := []float32{trigseq.TriggerHigh, 0}
	reset := []float32{0, 0}
	trigIn := make([][]float32, channels)
	trigOut := make([][]float32, channels)
	for c := range trigIn {
		trigIn[c] = make([]float32, 2)
		trigOut[c] = make([]float32, 2)
	}
	buses := busesFor(clock, reset, trigIn, trigOut, channels)

	ticksPerBar := sc.TicksPerBar()
	barCount := len(sc.Channels[0])

	hits := make([][]bool, channels)
	for c := range hits {
		hits[c] = make([]bool, ticksPerBar)
	}

	for bar := 0; bar < *flagBars; bar++ {
		barIdx := bar % barCount
		for c := range hits {
			for i := range hits[c] {
				hits[c][i] = false
			}
			if c < len(sc.Channels) {
				for _, ht := range sc.Channels[c][barIdx].Ticks {
					hits[c][ht] = true
				}
			}
		}

		for tick := 0; tick < ticksPerBar; tick++ {
			for c := range trigIn {
				trigIn[c][0], trigIn[c][1] = 0, 0
				if hits[c][tick] {
					trigIn[c][0], trigIn[c][1] = trigseq.TriggerHigh, trigseq.TriggerHigh
				}
			}
			engine.Step(host, buses, 2)
		}

		fmt.Printf("bar=%-4d state=%-4s", bar, engine.State())
		for c := 0; c < channels; c++ {
			fmt.Printf(" ch%d=%s sim=%-3d%%", c, renderSupervisorRow(engine, c, ticksPerBar), engine.Similarity(c))
		}
		fmt.Println()
	}
}

// renderSupervisorRow renders the bar the supervisor is actually driving for
// channel c: the injected output bar while Injecting, the learned bar
// otherwise (Locked, or Learning before anything has locked).
func renderSupervisorRow(engine *trigseq.Engine, c, ticksPerBar int) string {
	row := make([]bool, ticksPerBar)
	for tick := range row {
		if engine.State() == trigseq.StateInjecting {
			row[tick] = engine.OutputHit(c, tick)
		} else {
			row[tick] = engine.LearnedHit(c, tick)
		}
	}
	return renderHitRow(row)
}

func renderHitRow(hits []bool) string {
	var sb strings.Builder
	for _, h := range hits {
		if h {
			sb.WriteByte('X')
		} else {
			sb.WriteByte('.')
		}
	}
	return sb.String()
}

func routingFor(channels int) trigseq.ChannelRouting {
	r := trigseq.DefaultRouting()
	r.ClockBus = 0
	r.ResetBus = 1
	for c := 0; c < channels; c++ {
		r.TrigInBus[c] = 2 + c
		r.TrigOutBus[c] = 2 + channels + c
		r.TrigOutMode[c] = trigseq.ModeReplace
	}
	return r
}

func busesFor(clock, reset []float32, trigIn, trigOut [][]float32, channels int) [][]float32 {
	buses := make([][]float32, 2+2*channels)
	buses[0] = clock
	buses[1] = reset
	for c := 0; c < channels; c++ {
		buses[2+c] = trigIn[c]
		buses[2+channels+c] = trigOut[c]
	}
	return buses
}
