// trigbench drives a trigseq.Engine from a scenario fixture in real time
// through PortAudio, rendering the supervisor's state to the terminal and
// the output channels' trigger pulses to an audible click monitor.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"atomicgo.dev/keyboard"
	"atomicgo.dev/keyboard/keys"
	"github.com/fatih/color"
	"github.com/gordonklaus/portaudio"

	"github.com/benchmodular/trigseq"
	"github.com/benchmodular/trigseq/cmd/internal/config"
	"github.com/benchmodular/trigseq/internal/monitor"
	"github.com/benchmodular/trigseq/scenario"
)

var (
	flagHz       = flag.Int("hz", 44100, "output hz")
	flagFuel     = flag.Int("fuel", 100, "Fuel amount, 0-100")
	flagLearn    = flag.Int("learn", 2, "bars of stable pattern required to lock")
	flagInterval = flag.Int("interval", 4, "bars between injections once locked")
	flagMonitor  = flag.String("monitor", "light", "click monitor coloration: none, light, medium, silly")
	flagNoUI     = flag.Bool("noui", false, "disable terminal UI")
)

const (
	escape     = "\x1b["
	hideCursor = escape + "?25l"
	showCursor = escape + "?25h"
)

const (
	audioBufferSize = 756 / 2
	uiLineCount     = 5
)

var (
	white   = color.New(color.FgWhite).SprintfFunc()
	cyan    = color.New(color.FgCyan).SprintfFunc()
	magenta = color.New(color.FgMagenta).SprintfFunc()
	yellow  = color.New(color.FgYellow).SprintfFunc()
	green   = color.New(color.FgGreen).SprintfFunc()
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("trigbench: ")
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

	renderer, err := config.MonitorFromFlag(*flagMonitor, *flagHz)
	if err != nil {
		log.Fatal(err)
	}

	samplesPerTick := int(float64(*flagHz) * 60.0 / float64(120*sc.PPQN))
	driver := newScenarioDriver(sc, samplesPerTick, channels)

	tb := NewAudioMonitor(engine, driver, renderer, params, channels, float64(*flagHz), *flagNoUI)

	if err := tb.Run(); err != nil {
		log.Fatal(err)
	}
}

// AudioMonitor encapsulates real-time playback and UI rendering for the
// sequencer engine, mirroring the shape of a MOD player's audio frontend
// but driving a trigger engine and click monitor instead of sampled audio.
type AudioMonitor struct {
	engine   *trigseq.Engine
	driver   *scenarioDriver
	renderer monitor.Renderer
	params   trigseq.Params
	channels int
	rate     float64

	stream *portaudio.Stream
	host   constHost

	clock, reset    []float32
	trigIn, trigOut [][]float32
	buses           [][]float32
	levels          []float32
	mono            []int16

	muted        bool
	resetPending bool

	uiWriter  io.Writer
	lastBar   int
	lastState trigseq.State

	wg             sync.WaitGroup
	stopOnce       sync.Once
	terminated     bool
	keyboardDoneCh chan struct{}
	doneCh         chan struct{}
}

type constHost struct{ rate float64 }

func (h constHost) SampleRate() float64 { return h.rate }

func NewAudioMonitor(engine *trigseq.Engine, driver *scenarioDriver, renderer monitor.Renderer, params trigseq.Params, channels int, rate float64, noUI bool) *AudioMonitor {
	var uiw io.Writer = os.Stdout
	if noUI {
		uiw = io.Discard
	}

	trigIn := make([][]float32, channels)
	trigOut := make([][]float32, channels)
	for c := range trigIn {
		trigIn[c] = make([]float32, audioBufferSize)
		trigOut[c] = make([]float32, audioBufferSize)
	}

	am := &AudioMonitor{
		engine:         engine,
		driver:         driver,
		renderer:       renderer,
		params:         params,
		channels:       channels,
		rate:           rate,
		host:           constHost{rate: rate},
		clock:          make([]float32, audioBufferSize),
		reset:          make([]float32, audioBufferSize),
		trigIn:         trigIn,
		trigOut:        trigOut,
		levels:         make([]float32, audioBufferSize),
		mono:           make([]int16, audioBufferSize),
		uiWriter:       uiw,
		lastBar:        -1,
		keyboardDoneCh: make(chan struct{}),
		doneCh:         make(chan struct{}),
	}
	am.buses = busesFor(am.clock, am.reset, am.trigIn, am.trigOut, channels)
	return am
}

func (am *AudioMonitor) Run() error {
	if err := portaudio.Initialize(); err != nil {
		return err
	}

	stream, err := portaudio.OpenDefaultStream(0, 2, am.rate, audioBufferSize, am.streamCallback)
	if err != nil {
		return err
	}
	am.stream = stream
	if err := stream.Start(); err != nil {
		stream.Close()
		return err
	}

	am.setupSignalHandlers()
	am.setupKeyboardHandlers()

	fmt.Fprint(am.uiWriter, hideCursor)

	for {
		select {
		case <-am.doneCh:
			goto exit
		default:
		}
		if am.engine.Bar() != am.lastBar || am.engine.State() != am.lastState {
			am.renderUI()
			am.lastBar = am.engine.Bar()
			am.lastState = am.engine.State()
		}
	}

exit:
	fmt.Fprint(am.uiWriter, showCursor)

	select {
	case <-am.keyboardDoneCh:
	case <-time.After(500 * time.Millisecond):
	}

	am.wg.Wait()
	return nil
}

func (am *AudioMonitor) streamCallback(out []int16) {
	numFrames := len(out) / 2

	for c := range am.trigIn {
		clear(am.trigIn[c][:numFrames])
		clear(am.trigOut[c][:numFrames])
	}
	clear(am.clock[:numFrames])
	clear(am.reset[:numFrames])

	am.driver.fill(am.clock[:numFrames], am.reset[:numFrames], sliceAll(am.trigIn, numFrames))

	if am.resetPending {
		am.reset[0] = trigseq.TriggerHigh
		am.resetPending = false
	}
	if am.muted {
		for c := range am.trigIn {
			clear(am.trigIn[c][:numFrames])
		}
	}

	am.engine.Step(am.host, sliceBuses(am.buses, numFrames), numFrames)

	for i := 0; i < numFrames; i++ {
		level := float32(0)
		for c := 0; c < am.channels; c++ {
			if am.trigOut[c][i] > level {
				level = am.trigOut[c][i]
			}
		}
		am.levels[i] = level
	}
	am.renderer.InputLevels(am.levels[:numFrames])
	n := am.renderer.GetAudio(am.mono[:numFrames])

	for i := 0; i < numFrames; i++ {
		var s int16
		if i < n {
			s = am.mono[i]
		}
		out[2*i] = s
		out[2*i+1] = s
	}
}

func sliceAll(bufs [][]float32, n int) [][]float32 {
	out := make([][]float32, len(bufs))
	for i, b := range bufs {
		out[i] = b[:n]
	}
	return out
}

func sliceBuses(buses [][]float32, n int) [][]float32 {
	out := make([][]float32, len(buses))
	for i, b := range buses {
		if b == nil {
			continue
		}
		out[i] = b[:n]
	}
	return out
}

func (am *AudioMonitor) setupSignalHandlers() {
	sigch := make(chan os.Signal, 5)
	signal.Notify(sigch, syscall.SIGINT)

	am.wg.Add(1)
	go func() {
		defer am.wg.Done()
		<-sigch
		am.Stop()
	}()
}

func (am *AudioMonitor) setupKeyboardHandlers() {
	am.wg.Add(1)
	go func() {
		defer am.wg.Done()
		keyboard.Listen(func(key keys.Key) (stop bool, err error) {
			if key.Code == keys.CtrlC || key.Code == keys.Escape {
				am.Stop()
				return true, nil
			}

			return am.handleKeyPress(key)
		})
		close(am.keyboardDoneCh)
	}()
}

// handleKeyPress processes a single key press: +/- adjust Fuel, r forces a
// reset edge on the next audio callback, m toggles channel mute on the
// pass-through path, and q quits.
func (am *AudioMonitor) handleKeyPress(key keys.Key) (stop bool, err error) {
	if key.Code != keys.RuneKey || len(key.Runes) == 0 {
		return false, nil
	}

	switch key.Runes[0] {
	case '+':
		am.adjustFuel(5)
	case '-':
		am.adjustFuel(-5)
	case 'r':
		am.resetPending = true
	case 'm':
		am.muted = !am.muted
	case 'q':
		am.Stop()
		return true, nil
	}
	return false, nil
}

func (am *AudioMonitor) adjustFuel(delta int) {
	fuel := am.params.Fuel + delta
	fuel = max(fuel, 0)
	fuel = min(fuel, 100)
	am.params.Fuel = fuel
	am.engine.SetParams(am.params)
}

func (am *AudioMonitor) Stop() {
	am.stopOnce.Do(func() {
		close(am.doneCh)

		if am.stream != nil {
			am.stream.Stop()
			am.stream.Close()
		}
		if !am.terminated {
			portaudio.Terminate()
			am.terminated = true
		}
		fmt.Fprint(am.uiWriter, showCursor)
	})
}

func (am *AudioMonitor) renderUI() {
	fmt.Fprintf(am.uiWriter, "%s %-10s %s %4d %s %3d %s %d\n",
		cyan("state"), am.engine.State(),
		cyan("bar"), am.engine.Bar(),
		cyan("tick"), am.engine.Tick(),
		cyan("period"), am.engine.LastPeriodSamples())

	for c := 0; c < am.channels; c++ {
		fmt.Fprintf(am.uiWriter, "%s %s hits=%s pulse=%s\n",
			green("ch%d", c),
			white(""),
			magenta("%2d", am.engine.LearnedHitCount(c)),
			yellow("%2d", am.engine.PulseRemaining(c)))
	}

	fmt.Fprintf(am.uiWriter, escape+"%dF", uiLineCount-1+am.channels)
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
