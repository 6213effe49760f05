// Package trigseq implements a multi-channel trigger-pattern processor for a
// modular synthesizer audio engine.
//
// It watches trigger pulses on up to eight channels synchronized to an
// external clock, learns the repeating rhythmic pattern on each channel over
// a configurable number of bars, then - once locked - periodically emits
// modified ("injected") versions of that pattern in place of simple
// pass-through. A single Fuel parameter scales the probability of every
// injection.
//
// The package is the core of a plugin module: it owns no threads, does no
// allocation in its per-sample path, and performs no audio-rate signal
// processing beyond emitting a gate level per channel per sample. Hosting
// concerns - the plugin ABI, parameter UI, and MIDI byte parsing - live
// outside this package; see Host and MIDIClockDecoder for the seams it
// expects from its caller.
package trigseq
