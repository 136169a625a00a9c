//go:build linux

package gpio

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"

	"github.com/sweeney/pipboy-mini/internal/logic"
)

// RealReader reads buttons from actual hardware using the Linux GPIO character device.
type RealReader struct {
	lines *gpiocdev.Lines
	pins  Pins
}

// NewRealReader requests the eight button lines on chip as inputs with pull-up.
func NewRealReader(chip string, pins Pins) (*RealReader, error) {
	offsets := make([]int, len(pins))
	copy(offsets, pins[:])

	// The HAT buttons short to ground, so bias the lines high.
	lines, err := gpiocdev.RequestLines(chip, offsets,
		gpiocdev.AsInput,
		gpiocdev.WithPullUp,
		gpiocdev.WithConsumer("pipboy-mini"),
	)
	if err != nil {
		return nil, fmt.Errorf("request button lines %v on %s: %w", offsets, chip, err)
	}

	return &RealReader{lines: lines, pins: pins}, nil
}

// Read returns the pressed state of every button.
// Inverts raw GPIO: raw inactive (0) = pressed, raw active (1) = released.
func (r *RealReader) Read() (logic.Levels, error) {
	var levels logic.Levels
	values := make([]int, len(r.pins))
	if err := r.lines.Values(values); err != nil {
		return levels, fmt.Errorf("read button lines: %w", err)
	}
	for i, v := range values {
		levels[i] = v == 0
	}
	return levels, nil
}

// Close releases GPIO resources.
// Reconfigures lines to input with pull-up (matching the HAT's idle state)
// before closing so the buttons do not float during shutdown.
func (r *RealReader) Close() error {
	if r.lines == nil {
		return nil
	}

	var errs []error
	if err := r.lines.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullUp); err != nil {
		errs = append(errs, fmt.Errorf("reconfigure button lines: %w", err))
	}
	if err := r.lines.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close button lines: %w", err))
	}
	r.lines = nil

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
