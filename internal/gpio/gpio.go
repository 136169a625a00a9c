// Package gpio provides button input reading with hardware abstraction.
// The real implementation uses the Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

import "github.com/sweeney/pipboy-mini/internal/logic"

// Reader samples the raw levels of all eight inputs.
type Reader interface {
	// Read returns one raw sample, true = pressed.
	// The lines are active-low: raw 0 = pressed.
	Read() (logic.Levels, error)

	// Close releases GPIO resources.
	Close() error
}

// Default line numbers (BCM) of the Waveshare 1.44" LCD HAT.
const (
	DefaultPinUp    = 6
	DefaultPinDown  = 19
	DefaultPinLeft  = 5
	DefaultPinRight = 26
	DefaultPinPress = 13
	DefaultPinKey1  = 21
	DefaultPinKey2  = 20
	DefaultPinKey3  = 16
)

// Pins maps each logical button to a GPIO line offset, indexed by logic.Button.
type Pins [logic.NumButtons]int

// DefaultPins returns the HAT wiring.
func DefaultPins() Pins {
	var p Pins
	p[logic.ButtonUp] = DefaultPinUp
	p[logic.ButtonDown] = DefaultPinDown
	p[logic.ButtonLeft] = DefaultPinLeft
	p[logic.ButtonRight] = DefaultPinRight
	p[logic.ButtonSelect] = DefaultPinPress
	p[logic.ButtonKey1] = DefaultPinKey1
	p[logic.ButtonKey2] = DefaultPinKey2
	p[logic.ButtonKey3] = DefaultPinKey3
	return p
}
