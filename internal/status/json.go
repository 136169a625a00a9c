package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string       `json:"event,omitempty"`
	Reason        string       `json:"reason,omitempty"`
	Screen        string       `json:"screen"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	StartTime     string       `json:"start_time"`
	Timestamp     string       `json:"timestamp"`
	Playback      PlaybackJSON `json:"playback"`
	Inventory     InvJSON      `json:"inventory"`
	Shutdown      string       `json:"shutdown"`
	System        *SystemJSON  `json:"system,omitempty"`
	MQTT          MQTTStatus   `json:"mqtt"`
	Config        ConfigJSON   `json:"config"`
}

// PlaybackJSON reports the audio player.
type PlaybackJSON struct {
	Status string `json:"status"`
	Track  string `json:"track,omitempty"`
	Tracks int    `json:"tracks"`
}

// InvJSON reports the inventory view.
type InvJSON struct {
	Lines  int `json:"lines"`
	Offset int `json:"offset"`
}

// SystemJSON is the latest metrics sample. Unavailable values are omitted.
type SystemJSON struct {
	Hostname      string   `json:"hostname,omitempty"`
	CPUPercent    *float64 `json:"cpu_percent,omitempty"`
	RAMUsedBytes  uint64   `json:"ram_used_bytes,omitempty"`
	RAMTotalBytes uint64   `json:"ram_total_bytes,omitempty"`
	DiskUsedBytes uint64   `json:"disk_used_bytes,omitempty"`
	DiskTotal     uint64   `json:"disk_total_bytes,omitempty"`
	IP            string   `json:"ip,omitempty"`
	TempC         *float64 `json:"temp_c,omitempty"`
	UptimeSeconds int64    `json:"uptime_seconds,omitempty"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// ConfigJSON is the JSON representation of process config.
type ConfigJSON struct {
	TickMs          int64  `json:"tick_ms"`
	DebounceSamples int    `json:"debounce_samples"`
	ComboHoldMs     int64  `json:"combo_hold_ms"`
	CountdownMs     int64  `json:"countdown_ms"`
	MetricsMs       int64  `json:"metrics_ms"`
	HeartbeatMs     int64  `json:"heartbeat_ms"`
	Broker          string `json:"broker"`
	Inventory       string `json:"inventory"`
	Music           string `json:"music"`
	Fonts           string `json:"fonts,omitempty"`
}

func buildInner(snap Snapshot) StatusInner {
	inner := StatusInner{
		Screen:        snap.Screen.String(),
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		Playback: PlaybackJSON{
			Status: string(snap.Playback.Status),
			Track:  snap.Playback.TrackName(snap.Playback.NowPlaying),
			Tracks: len(snap.Playback.Tracks),
		},
		Inventory: InvJSON{Lines: snap.InvLines, Offset: snap.InvOffset},
		Shutdown:  string(snap.Shutdown.Phase),
		MQTT:      MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Config: ConfigJSON{
			TickMs:          snap.Config.TickMs,
			DebounceSamples: snap.Config.DebounceSamples,
			ComboHoldMs:     snap.Config.ComboHoldMs,
			CountdownMs:     snap.Config.CountdownMs,
			MetricsMs:       snap.Config.MetricsMs,
			HeartbeatMs:     snap.Config.HeartbeatMs,
			Broker:          snap.Config.Broker,
			Inventory:       snap.Config.Inventory,
			Music:           snap.Config.Music,
			Fonts:           snap.Config.Fonts,
		},
	}
	if inner.Playback.Status == "" {
		inner.Playback.Status = "STOPPED"
	}
	if inner.Shutdown == "" {
		inner.Shutdown = "INACTIVE"
	}
	return inner
}

func buildSystem(snap Snapshot, inner *StatusInner) {
	m := snap.Metrics
	if m.Time.IsZero() {
		return
	}
	sys := &SystemJSON{
		Hostname:      m.Hostname,
		RAMUsedBytes:  m.RAMUsed,
		RAMTotalBytes: m.RAMTotal,
		DiskUsedBytes: m.DiskUsed,
		DiskTotal:     m.DiskTotal,
		UptimeSeconds: int64(m.Uptime.Seconds()),
	}
	if m.CPUValid {
		cpu := m.CPUPercent
		sys.CPUPercent = &cpu
	}
	if m.HasIP {
		sys.IP = m.IP
	}
	if m.HasTemp {
		temp := m.TempC
		sys.TempC = &temp
	}
	inner.System = sys
}

// FormatJSON returns the indented status document (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	inner := buildInner(snap)
	buildSystem(snap, &inner)

	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}

// FormatStatusEvent returns the compact status document for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	buildSystem(snap, &inner)

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
