// Package monitor detects the connected display layout by parsing an xrandr-style query report.
package monitor

import (
	"bufio"
	"cmp"
	"context"
	"errors"
	"fmt"
	"image"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/dixieflatline76/nitrohydra/config"
	"github.com/dixieflatline76/nitrohydra/util"
	"github.com/dixieflatline76/nitrohydra/util/log"
)

var (
	// ErrToolInvocation is returned when the query command cannot be launched.
	ErrToolInvocation = errors.New("failed to run monitor query")
	// ErrNoMonitorsFound is returned when the report lists no connected output with a geometry.
	ErrNoMonitorsFound = errors.New("no connected monitors found")
)

// ToolFailureError is returned when the query command ran but exited non-zero.
type ToolFailureError struct {
	Command string
	Output  string
}

func (e *ToolFailureError) Error() string {
	return fmt.Sprintf("%s failed: %s", e.Command, strings.TrimSpace(e.Output))
}

// Monitor represents a connected display and its position in the virtual screen.
type Monitor struct {
	Name   string // Output name (e.g. "DP-1")
	Width  int
	Height int
	X      int
	Y      int
}

// Rect returns the monitor's rectangle in virtual screen coordinates.
func (m Monitor) Rect() image.Rectangle {
	return image.Rect(m.X, m.Y, m.X+m.Width, m.Y+m.Height)
}

func (m Monitor) String() string {
	return fmt.Sprintf("%s %dx%d+%d+%d", m.Name, m.Width, m.Height, m.X, m.Y)
}

// geometryRE matches a WIDTHxHEIGHT+X+Y token.
var geometryRE = regexp.MustCompile(`^(\d+)x(\d+)\+(\d+)\+(\d+)$`)

// Detector queries the display server for connected outputs.
type Detector struct {
	runner  util.CommandRunner
	command []string
}

// NewDetector creates a Detector running the configured monitor command.
func NewDetector(cfg *config.Config, runner util.CommandRunner) *Detector {
	command := cfg.MonitorCommand
	if len(command) == 0 {
		command = config.DefaultMonitorCommand
	}
	return &Detector{runner: runner, command: command}
}

// Detect runs the query command once and returns the connected monitors ordered left to right.
func (d *Detector) Detect(ctx context.Context) ([]Monitor, error) {
	out, err := d.runner.Output(ctx, d.command[0], d.command[1:]...)
	if err != nil {
		var cmdErr *util.CommandError
		if errors.As(err, &cmdErr) {
			return nil, &ToolFailureError{Command: d.command[0], Output: cmdErr.Stderr}
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrToolInvocation, d.command[0], err)
	}

	monitors := Parse(string(out))
	if len(monitors) == 0 {
		return nil, ErrNoMonitorsFound
	}
	log.Debugf("Monitor: detected %d monitors: %v", len(monitors), monitors)
	return monitors, nil
}

// Parse extracts connected outputs from a query report, sorted ascending by X offset.
// Lines for disconnected outputs and connected lines without a geometry token are skipped.
func Parse(report string) []Monitor {
	var monitors []Monitor

	sc := bufio.NewScanner(strings.NewReader(report))
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 2 || fields[1] != "connected" {
			continue
		}
		for _, tok := range fields[2:] {
			if m, ok := parseGeometry(fields[0], tok); ok {
				monitors = append(monitors, m)
				break
			}
		}
	}

	slices.SortStableFunc(monitors, func(a, b Monitor) int {
		return cmp.Compare(a.X, b.X)
	})
	return monitors
}

func parseGeometry(name, tok string) (Monitor, bool) {
	parts := geometryRE.FindStringSubmatch(tok)
	if parts == nil {
		return Monitor{}, false
	}
	var vals [4]int
	for i := range vals {
		v, err := strconv.Atoi(parts[i+1])
		if err != nil {
			return Monitor{}, false
		}
		vals[i] = v
	}
	return Monitor{Name: name, Width: vals[0], Height: vals[1], X: vals[2], Y: vals[3]}, true
}
