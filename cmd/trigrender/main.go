// trigrender drives a trigseq.Engine from a scenario fixture and writes the
// rendered channel outputs to a multi-channel WAV file, headless.
package main

import (
	"flag"
	"log"
	"os"

	"github.com/benchmodular/trigseq"
	"github.com/benchmodular/trigseq/scenario"
	"github.com/benchmodular/trigseq/wav"
)

var (
	flagHz        = flag.Int("hz", 44100, "output sample rate")
	flagTickMs    = flag.Float64("tickms", 125, "milliseconds per clock tick")
	flagFuel      = flag.Int("fuel", 100, "Fuel amount, 0-100")
	flagBars      = flag.Int("bars", 16, "number of bars to render")
	flagLearnBars = flag.Int("learn", 2, "bars of stable pattern required to lock")
	flagInterval  = flag.Int("interval", 4, "bars between injections once locked")
	flagOut       = flag.String("wav", "", "output WAV file")
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("trigrender: ")
	flag.Parse()

	if len(flag.Args()) == 0 {
		log.Fatal("Missing scenario filename")
	}
	if *flagOut == "" {
		log.Fatal("Missing -wav output filename")
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
	params.LearningBars = *flagLearnBars
	params.InjectionInterval = *flagInterval
	params.Routing = routingFor(channels)

	engine := trigseq.NewEngine(params, channels)
	host := constHost{rate: float64(*flagHz)}

	samplesPerTick := int(*flagTickMs / 1000 * float64(*flagHz))
	if samplesPerTick < 1 {
		samplesPerTick = 1
	}
	driver := newScenarioDriver(sc, samplesPerTick, channels)

	wavF, err := os.Create(*flagOut)
	if err != nil {
		log.Fatal(err)
	}
	defer wavF.Close()

	w, err := wav.NewWriter(wavF, *flagHz, channels)
	if err != nil {
		log.Fatal(err)
	}
	defer w.Finish()

	ticksPerBar := sc.TicksPerBar()
	totalTicks := ticksPerBar * *flagBars
	blockTicks := 64 // ticks per outer loop pass; each tick is written to the WAV as it is rendered

	clock := make([]float32, samplesPerTick)
	reset := make([]float32, samplesPerTick)
	trigIn := make([][]float32, channels)
	trigOut := make([][]float32, channels)
	for c := range trigIn {
		trigIn[c] = make([]float32, samplesPerTick)
		trigOut[c] = make([]float32, samplesPerTick)
	}
	buses := busesFor(clock, reset, trigIn, trigOut, channels)

	pcm := make([][]int16, channels)
	for c := range pcm {
		pcm[c] = make([]int16, samplesPerTick)
	}

	ticksRendered := 0
	for ticksRendered < totalTicks {
		n := blockTicks
		if totalTicks-ticksRendered < n {
			n = totalTicks - ticksRendered
		}
		for t := 0; t < n; t++ {
			for c := range trigIn {
				clear(trigIn[c])
				clear(trigOut[c])
			}
			clear(clock)
			clear(reset)

			driver.fill(clock, reset, trigIn)
			engine.Step(host, buses, samplesPerTick)

			for c := range trigOut {
				for i, v := range trigOut[c] {
					pcm[c][i] = gateToPCM(v)
				}
			}
			if err := w.WriteFrame(pcm); err != nil {
				log.Fatal(err)
			}
		}
		ticksRendered += n
	}
}

func gateToPCM(v float32) int16 {
	if v >= trigseq.TriggerThreshold {
		return 12000
	}
	return 0
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

type constHost struct {
	rate float64
}

func (h constHost) SampleRate() float64 { return h.rate }
