// A very simple WAVE file writer for multi-channel trigger-gate capture.
// See http://soundfile.sapp.org/doc/WaveFormat/ for format documentation.

package wav

import (
	"encoding/binary"
	"fmt"
	"io"
)

const PCM = 1

type Writer struct {
	WS       io.WriteSeeker
	channels int
}

type Format struct {
	AudioFormat   uint16
	Channels      uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
}

// WriteFrame writes one block of interleaved PCM samples. samples is
// organized by channel: samples[c][i] is channel c's i'th sample. Every
// channel slice must have the same length, and the slice count must match
// the channel count the Writer was created with - trigrender passes one
// slice per channel's trig-out bus, so a slice count different from the
// channel count the file was opened for is a programmer error, not a
// format one.
func (w *Writer) WriteFrame(samples [][]int16) error {
	if len(samples) != w.channels {
		return fmt.Errorf("wav: WriteFrame got %d channels, writer has %d", len(samples), w.channels)
	}
	frame := make([]int16, w.channels)
	for i := range samples[0] {
		for c := range samples {
			frame[c] = samples[c][i]
		}
		if err := binary.Write(w.WS, binary.LittleEndian, frame); err != nil {
			return err
		}
	}
	return nil
}

// Finish back-patches the RIFF and data chunk sizes now that the total
// sample count is known, and returns the final file length.
func (w *Writer) Finish() (int64, error) {
	wlen, err := w.WS.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, err
	}

	offset, err := w.WS.Seek(4, io.SeekStart)
	if offset != 4 || err != nil {
		return 0, err
	}
	if err := binary.Write(w.WS, binary.LittleEndian, int32(wlen-8)); err != nil {
		return 0, err
	}
	offset, err = w.WS.Seek(40, io.SeekStart)
	if offset != 40 || err != nil {
		return 0, err
	}
	if err := binary.Write(w.WS, binary.LittleEndian, int32(wlen-44)); err != nil {
		return 0, err
	}

	return wlen, nil
}

// NewWriter opens a streaming WAV writer for channels of 16-bit PCM at
// sampleRate. Chunk sizes are written as zero and back-patched by Finish,
// so the caller never needs to know the sample count up front.
func NewWriter(ws io.WriteSeeker, sampleRate, channels int) (*Writer, error) {
	if channels < 1 {
		return nil, fmt.Errorf("wav: channels must be >= 1, got %d", channels)
	}
	writer := &Writer{WS: ws, channels: channels}

	if _, err := ws.Write([]byte("RIFF")); err != nil {
		return nil, err
	}

	// Write out zero for now, come back and fill this later
	if err := binary.Write(ws, binary.LittleEndian, int32(0)); err != nil {
		return nil, err
	}

	if _, err := ws.Write([]byte("WAVE")); err != nil {
		return nil, err
	}

	// Write format chunk
	if _, err := ws.Write([]byte("fmt ")); err != nil {
		return nil, err
	}
	if err := binary.Write(ws, binary.LittleEndian, int32(16)); err != nil {
		return nil, err
	}
	format := Format{AudioFormat: PCM, Channels: uint16(channels), SampleRate: uint32(sampleRate), BitsPerSample: 16}
	format.ByteRate = uint32(sampleRate) * uint32(channels) * (16 / 8)
	format.BlockAlign = uint16(channels) * (16 / 8)
	if err := binary.Write(ws, binary.LittleEndian, format); err != nil {
		return nil, err
	}

	// Write data chunk header
	if _, err := ws.Write([]byte("data")); err != nil {
		return nil, err
	}
	// Write out zero for the data size for now, come back and fill this later
	if err := binary.Write(ws, binary.LittleEndian, int32(0)); err != nil {
		return nil, err
	}

	return writer, nil
}
