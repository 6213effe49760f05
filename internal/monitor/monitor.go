// Package monitor renders channel trigger gates as audible clicks for
// off-line or interactive monitoring. It is a strictly out-of-band collaborator: nothing in the core
// package imports it, and nothing here runs on the core's per-sample path.
package monitor

import "github.com/benchmodular/trigseq"

// Renderer turns a stream of per-sample trigger-gate levels into audible
// int16 PCM. Implementations may buffer internally, which is why both
// methods report how many samples they could or couldn't handle rather
// than blocking.
type Renderer interface {
	// InputLevels feeds a block of gate-level samples (trigseq.TriggerHigh or
	// 0) and returns the number of trailing samples it could not yet accept
	// into its internal buffer.
	InputLevels(in []float32) int

	// GetAudio writes up to len(out) rendered samples and returns how many
	// it wrote.
	GetAudio(out []int16) int
}

// PassThrough renders a gate level directly as full-scale PCM with no
// shaping, for monitoring the raw trigger stream. It holds the rendered
// samples in a fixed-size ring buffer.
type PassThrough struct {
	audio             []int16
	bufSize           int
	readPos, writePos int
	n                 int
}

var _ Renderer = (*PassThrough)(nil)

func NewPassThrough(bufferSize int) *PassThrough {
	return &PassThrough{
		audio:   make([]int16, bufferSize),
		bufSize: bufferSize,
	}
}

func (r *PassThrough) InputLevels(in []float32) int {
	free := r.bufSize - r.n
	n := len(in)
	if n > free {
		n = free
	}
	if n == 0 {
		return len(in)
	}

	for i := 0; i < n; i++ {
		pos := (r.writePos + i) % r.bufSize
		r.audio[pos] = levelToPCM(in[i])
	}
	r.writePos = (r.writePos + n) % r.bufSize
	r.n += n

	return len(in) - n
}

func (r *PassThrough) GetAudio(out []int16) int {
	n := len(out)
	if n > r.n {
		n = r.n
	}
	if n == 0 {
		return 0
	}

	if r.readPos+n > r.bufSize {
		n1 := r.bufSize - r.readPos
		n2 := n - n1
		copy(out[:n1], r.audio[r.readPos:r.readPos+n1])
		copy(out[n1:n], r.audio[:n2])
		r.readPos = n2
	} else {
		copy(out[:n], r.audio[r.readPos:r.readPos+n])
		r.readPos += n
	}
	r.n -= n

	return n
}

// Click renders every rising trigger edge as a short click with a
// comb-filtered decaying tail, so a bar's worth of injected hits is audibly
// distinguishable from the learned pattern during interactive monitoring.
// It is grounded on a streaming comb filter's incremental
// accumulate-then-feedback approach: new samples are appended to a growing
// buffer, and once enough of the delay line has accumulated, feedback taps
// are applied exactly once per sample rather than recomputed on every read.
type Click struct {
	delayOffset int
	decay       float32
	amplitude   int16

	audio    []int16
	writePos int
	readPos  int

	edge trigseq.EdgeDetector
}

var _ Renderer = (*Click)(nil)

// NewClick creates a Click renderer with the given decay (tail gain per
// delayMs hop, [0,1)) at sampleRate. initialSize preallocates the buffer's
// backing array in samples.
func NewClick(initialSize int, decay float32, delayMs, sampleRate int) *Click {
	return &Click{
		delayOffset: (delayMs * sampleRate) / 1000,
		decay:       decay,
		amplitude:   12000,
		audio:       make([]int16, 0, initialSize),
	}
}

func (c *Click) InputLevels(in []float32) int {
	for _, lvl := range in {
		var s int16
		if c.edge.Rising(lvl) {
			s = c.amplitude
		}
		c.audio = append(c.audio, s)
	}

	if c.delayOffset > 0 && len(c.audio) > c.delayOffset {
		ns := len(c.audio) - (c.delayOffset + c.writePos)
		for i := 0; i < ns; i++ {
			idx := i + c.delayOffset + c.writePos
			c.audio[idx] += int16(float32(c.audio[i+c.writePos]) * c.decay)
		}
		c.writePos += ns
	}

	return 0
}

func (c *Click) GetAudio(out []int16) int {
	wanted := len(out)
	have := len(c.audio) - c.readPos
	if wanted > have {
		wanted = have
	}
	if wanted > 0 {
		copy(out, c.audio[c.readPos:c.readPos+wanted])
		c.readPos += wanted
	}
	return wanted
}

func levelToPCM(level float32) int16 {
	if level >= trigseq.TriggerThreshold {
		return 12000
	}
	return 0
}
