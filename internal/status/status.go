// Package status builds the JSON status document published with lifecycle
// events. It reads an AppState snapshot taken on the main loop, so no locking
// is needed.
package status

import (
	"time"

	"github.com/sweeney/pipboy-mini/internal/logic"
)

// Config contains process configuration for display.
type Config struct {
	TickMs          int64
	DebounceSamples int
	ComboHoldMs     int64
	CountdownMs     int64
	MetricsMs       int64
	HeartbeatMs     int64
	Broker          string
	Inventory       string
	Music           string
	Fonts           string // font source actually loaded
}

// Snapshot is a point-in-time view of the device.
type Snapshot struct {
	Screen        logic.ScreenID
	Playback      logic.PlaybackState
	InvLines      int
	InvOffset     int
	Shutdown      logic.ShutdownState
	Metrics       logic.MetricsSnapshot
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Config        Config
}

// NewSnapshot copies the fields of state needed for a status document.
func NewSnapshot(state *logic.AppState, start, now time.Time, mqttConnected bool, cfg Config) Snapshot {
	return Snapshot{
		Screen:        state.Screen,
		Playback:      state.Playback,
		InvLines:      len(state.Inv.Lines),
		InvOffset:     state.Inv.Offset,
		Shutdown:      state.Shutdown,
		Metrics:       state.Metrics,
		StartTime:     start,
		Now:           now,
		MQTTConnected: mqttConnected,
		Config:        cfg,
	}
}

// Uptime returns the duration since the process started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}
