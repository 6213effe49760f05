// Package scenario parses the text fixture format used by tests, the CLI
// tools and demos to describe a clock/trigger timeline without hand-coding
// sample arrays. It is the module's one real parsing surface; everything
// else in the package tree consumes already-decoded data.
//
// A scenario is a header line followed by one or more blank-line-separated
// channel blocks:
//
//	ppqn=16 barlength=1
//
//	X...X...X...X...
//	X.......X.......
//
//	..X...X...X...X.
//	........X.......
//
// Each block is one channel; each line within a block is one bar's hit-row,
// PPQN*BarLength characters of 'X' (hit) or '.' (rest).
package scenario

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Scenario is a fully decoded clock/trigger timeline, ready to be fed to
// Engine.Step one frame at a time by a caller that owns the sample-rate
// conversion (a scenario deals in ticks and bars, not samples).
type Scenario struct {
	PPQN      int
	BarLength int

	// Channels[c][bar] is the set of tick-in-bar positions channel c hits
	// in that bar.
	Channels [][]Bar
}

// Bar is one bar's hit-tick positions in ascending order.
type Bar struct {
	Ticks []int
}

// TicksPerBar is the derived bar length in ticks.
func (s *Scenario) TicksPerBar() int {
	return s.PPQN * s.BarLength
}

// ParseScenario reads a scenario from r. Malformed input is reported as an
// error, never a panic, per this module's host-boundary validation policy.
func ParseScenario(r io.Reader) (*Scenario, error) {
	sc := bufio.NewScanner(r)

	var ppqn, barLength int
	var headerSeen bool

	var blocks [][]string
	var current []string

	flush := func() {
		if len(current) > 0 {
			blocks = append(blocks, current)
			current = nil
		}
	}

	lineNum := 0
	for sc.Scan() {
		lineNum++
		line := strings.TrimRight(sc.Text(), "\r")

		if !headerSeen {
			if strings.TrimSpace(line) == "" {
				continue
			}
			var err error
			ppqn, barLength, err = parseHeader(line)
			if err != nil {
				return nil, fmt.Errorf("scenario: line %d: %w", lineNum, err)
			}
			headerSeen = true
			continue
		}

		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		current = append(current, line)
	}
	flush()
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scenario: %w", err)
	}
	if !headerSeen {
		return nil, fmt.Errorf("scenario: missing header line")
	}
	if len(blocks) == 0 {
		return nil, fmt.Errorf("scenario: no channel blocks found")
	}

	ticksPerBar := ppqn * barLength
	channels := make([][]Bar, len(blocks))
	for c, block := range blocks {
		bars := make([]Bar, len(block))
		for b, row := range block {
			bar, err := parseBarRow(row, ticksPerBar)
			if err != nil {
				return nil, fmt.Errorf("scenario: channel %d bar %d: %w", c, b, err)
			}
			bars[b] = bar
		}
		channels[c] = bars
	}

	return &Scenario{PPQN: ppqn, BarLength: barLength, Channels: channels}, nil
}

func parseHeader(line string) (ppqn, barLength int, err error) {
	fields := strings.Fields(line)
	vals := map[string]int{}
	for _, f := range fields {
		kv := strings.SplitN(f, "=", 2)
		if len(kv) != 2 {
			return 0, 0, fmt.Errorf("malformed header field %q", f)
		}
		n, err := strconv.Atoi(kv[1])
		if err != nil {
			return 0, 0, fmt.Errorf("malformed header value %q: %w", f, err)
		}
		vals[kv[0]] = n
	}

	ppqn, ok := vals["ppqn"]
	if !ok || ppqn <= 0 {
		return 0, 0, fmt.Errorf("header missing valid ppqn=")
	}
	barLength, ok = vals["barlength"]
	if !ok || barLength <= 0 {
		return 0, 0, fmt.Errorf("header missing valid barlength=")
	}
	return ppqn, barLength, nil
}

func parseBarRow(row string, ticksPerBar int) (Bar, error) {
	if len(row) != ticksPerBar {
		return Bar{}, fmt.Errorf("row length %d, want %d (ppqn*barlength)", len(row), ticksPerBar)
	}

	var ticks []int
	for i, ch := range row {
		switch ch {
		case 'X':
			ticks = append(ticks, i)
		case '.':
		default:
			return Bar{}, fmt.Errorf("unknown character %q at tick %d", ch, i)
		}
	}
	return Bar{Ticks: ticks}, nil
}
