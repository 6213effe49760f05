// Package config turns CLI flag values into wired-up components for
// trigbench.
package config

import (
	"fmt"

	"github.com/benchmodular/trigseq/internal/monitor"
)

// MonitorFromFlag builds a monitor.Renderer according to the command-line
// coloration preset, applied to a trigger-click signal rather than
// sampled instrument audio.
func MonitorFromFlag(coloration string, sampleRate int) (r monitor.Renderer, err error) {
	rf := float32(0.2)
	rd := 150
	switch coloration {
	case "medium":
		rf = 0.3
		rd = 250
	case "silly":
		rf = 0.5
		rd = 2500
	case "none":
		rd = 0
		rf = 0
	case "light":
	default:
		err = fmt.Errorf("unrecognized monitor coloration %q", coloration)
	}

	if rf == 0 {
		r = monitor.NewPassThrough(10 * 1024)
	} else {
		r = monitor.NewClick(10*1024, rf, rd, sampleRate)
	}

	return r, err
}
