package trigseq

// channelHotState is the per-channel slice of the DTC: the trigger-in edge
// detector and the remaining samples of an armed output pulse.
type channelHotState struct {
	Edge           EdgeDetector
	PulseRemaining int
}

// DTC is the instance's hot per-step state: bar clock position, the
// supervisor's state and stability bookkeeping, the PRNG, and the edge
// detectors for clock, reset and every channel's trigger-in. It holds no
// audio data itself - ChannelPatterns, learned snapshots and output buffers
// are owned by Engine - keeping the scalar bookkeeping that must survive
// every frame separate from the larger per-channel buffers.
type DTC struct {
	Clock BarClock

	State          State
	StableBars     int
	BarsSinceLock  int
	IsInjectionBar bool

	// LastSimilarity holds each channel's most recently computed bar-to-bar
	// similarity percentage, the value that drove the last Learning/Locked
	// transition decision. It is diagnostic only - nothing in the
	// supervisor reads it back.
	LastSimilarity [MaxChannels]int

	PRNG RNG

	ClockEdge EdgeDetector
	ResetEdge EdgeDetector

	Channels [MaxChannels]channelHotState
}
