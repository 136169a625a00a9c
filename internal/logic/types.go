// Package logic contains the pure state machines of the device control loop.
// This package has NO hardware dependencies (no GPIO, SPI, audio, OS, or time.Sleep).
// Time is always injectable via time.Time and time.Duration parameters.
package logic

import (
	"path/filepath"
	"time"
)

// Button identifies one of the eight logical inputs.
type Button int

const (
	ButtonUp Button = iota
	ButtonDown
	ButtonLeft
	ButtonRight
	ButtonSelect // joystick press
	ButtonKey1
	ButtonKey2
	ButtonKey3
)

// NumButtons is the number of logical inputs sampled each tick.
const NumButtons = 8

var buttonNames = [NumButtons]string{"UP", "DOWN", "LEFT", "RIGHT", "SELECT", "KEY1", "KEY2", "KEY3"}

func (b Button) String() string {
	if b < 0 || int(b) >= NumButtons {
		return "UNKNOWN"
	}
	return buttonNames[b]
}

// Levels is one raw sample of every input, indexed by Button.
// true = pressed (already inverted from the active-low line).
type Levels [NumButtons]bool

// EventKind tags an InputEvent.
type EventKind string

const (
	EventPressed   EventKind = "PRESSED"
	EventReleased  EventKind = "RELEASED"
	EventComboHeld EventKind = "COMBO_HELD"
)

// InputEvent is a debounced input transition.
type InputEvent struct {
	Kind   EventKind
	Button Button // not meaningful for EventComboHeld
	// Held is how long the button was down (Released) or how long
	// Key1 and Key2 have been co-held (ComboHeld).
	Held time.Duration
	// Combo is set on Released when the press took part in a fired combo.
	Combo bool
	Time  time.Time
}

// ButtonState tracks debounce state for a single input.
type ButtonState struct {
	Button Button
	// Last raw sample
	Raw bool
	// Debounced logical level
	Pressed bool
	// Consecutive raw samples that disagree with Pressed
	Count int
	// Time of the last committed transition
	Since time.Time
	// Accumulated time held while Pressed
	Held time.Duration
	// Whether the current press has been absorbed by a combo hold
	ComboUsed bool
}

// ScreenID identifies one of the menu screens.
type ScreenID int

const (
	ScreenStat ScreenID = iota
	ScreenInv
	ScreenData
	ScreenRadio
)

// NumScreens is the number of screens in the navigation cycle.
const NumScreens = 4

var screenNames = [NumScreens]string{"STAT", "INV", "DATA", "RADIO"}

func (s ScreenID) String() string {
	if s < 0 || int(s) >= NumScreens {
		return "UNKNOWN"
	}
	return screenNames[s]
}

// Next returns the following screen, wrapping from the last to the first.
func (s ScreenID) Next() ScreenID {
	return (s + 1) % NumScreens
}

// Prev returns the preceding screen, wrapping from the first to the last.
func (s ScreenID) Prev() ScreenID {
	return (s + NumScreens - 1) % NumScreens
}

// PlaybackStatus is the transport state of the audio player.
type PlaybackStatus string

const (
	StatusStopped PlaybackStatus = "STOPPED"
	StatusPlaying PlaybackStatus = "PLAYING"
	StatusPaused  PlaybackStatus = "PAUSED"
)

// PlaybackState is a read-only view of the audio player.
// Cursor is -1 when Tracks is empty; NowPlaying is -1 when no track is loaded.
type PlaybackState struct {
	Tracks     []string
	Cursor     int
	NowPlaying int
	Status     PlaybackStatus
}

// HasNowPlaying reports whether a track is associated with the transport.
func (p PlaybackState) HasNowPlaying() bool {
	return p.NowPlaying >= 0 && p.NowPlaying < len(p.Tracks)
}

// TrackName returns the file name of track i, or "" if out of range.
func (p PlaybackState) TrackName(i int) string {
	if i < 0 || i >= len(p.Tracks) {
		return ""
	}
	return filepath.Base(p.Tracks[i])
}

// MetricsSnapshot is an immutable point-in-time reading of the system.
type MetricsSnapshot struct {
	Time time.Time
	// CPUValid is false until two counter readings exist.
	CPUPercent float64
	CPUValid   bool
	RAMUsed    uint64
	RAMTotal   uint64
	DiskUsed   uint64
	DiskTotal  uint64
	IP         string
	HasIP      bool
	Uptime     time.Duration
	TempC      float64
	HasTemp    bool
	Hostname   string
}

// ShutdownPhase is the state of the shutdown confirmation sequence.
type ShutdownPhase string

const (
	ShutdownInactive ShutdownPhase = "INACTIVE"
	ShutdownCounting ShutdownPhase = "COUNTING"
	ShutdownDone     ShutdownPhase = "DONE"
)

// ShutdownState holds the countdown. The zero value is inactive.
type ShutdownState struct {
	Phase      ShutdownPhase
	Start      time.Time
	Remaining  time.Duration
	Total      time.Duration
	PrevScreen ScreenID
}

// Counting reports whether the confirmation overlay is active.
func (s ShutdownState) Counting() bool {
	return s.Phase == ShutdownCounting
}

// Tick is one iteration of the main loop.
type Tick struct {
	Index   uint64
	Now     time.Time
	Elapsed time.Duration
}

// AppState is the whole state of the device, owned by the main loop.
type AppState struct {
	Screen   ScreenID
	Inv      InvView
	Playback PlaybackState
	Shutdown ShutdownState
	Metrics  MetricsSnapshot
	Tick     Tick
}
