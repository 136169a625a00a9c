// Package mqtt publishes device lifecycle and playback telemetry.
// Publishing is outbound only: nothing is subscribed and no command is accepted.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/sweeney/pipboy-mini/internal/logic"
)

// TopicSystem is the MQTT topic for lifecycle events.
const TopicSystem = "pipboy/mini/system"

// TopicPlayback is the MQTT topic for playback changes.
const TopicPlayback = "pipboy/mini/playback"

// Publisher publishes events to MQTT.
// Implementations must not block the caller on network I/O.
type Publisher interface {
	// PublishSystem sends a lifecycle event.
	PublishSystem(event SystemEvent) error

	// PublishPlayback sends a playback change.
	PublishPlayback(event PlaybackEvent) error

	// Close flushes what it can and disconnects.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent represents a lifecycle event (STARTUP, SHUTDOWN, HEARTBEAT).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason     string // e.g., "SIGTERM", "COMBO" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool
}

// PlaybackEvent is emitted when the playback status or now-playing track changes.
type PlaybackEvent struct {
	Timestamp time.Time
	Status    logic.PlaybackStatus
	Track     string // file name, empty when stopped
	Index     int    // -1 when stopped
	Tracks    int
}

// NewPlaybackEvent builds the event for state.
func NewPlaybackEvent(now time.Time, state logic.PlaybackState) PlaybackEvent {
	return PlaybackEvent{
		Timestamp: now,
		Status:    state.Status,
		Track:     state.TrackName(state.NowPlaying),
		Index:     state.NowPlaying,
		Tracks:    len(state.Tracks),
	}
}

// PlaybackChanged reports whether cur differs from prev in a way worth publishing.
func PlaybackChanged(prev, cur logic.PlaybackState) bool {
	if prev.Status != cur.Status {
		return true
	}
	return prev.TrackName(prev.NowPlaying) != cur.TrackName(cur.NowPlaying)
}

// SystemPayload is the payload for simple events (LWT) that don't carry a
// full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly.
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}

// PlaybackPayload is the MQTT message for a playback change.
type PlaybackPayload struct {
	Playback PlaybackPayloadInner `json:"playback"`
}

// PlaybackPayloadInner contains the playback details.
type PlaybackPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Status    string `json:"status"`
	Track     string `json:"track,omitempty"`
	Index     int    `json:"index"`
	Tracks    int    `json:"tracks"`
}

// FormatPlaybackPayload creates the JSON payload for a playback event.
func FormatPlaybackPayload(event PlaybackEvent) ([]byte, error) {
	return json.Marshal(PlaybackPayload{
		Playback: PlaybackPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Status:    string(event.Status),
			Track:     event.Track,
			Index:     event.Index,
			Tracks:    event.Tracks,
		},
	})
}

// willPayload is registered as the last will, published by the broker when
// the device drops off without a clean disconnect.
func willPayload() []byte {
	data, _ := json.Marshal(SystemPayload{System: SystemPayloadInner{Event: "OFFLINE"}})
	return data
}
