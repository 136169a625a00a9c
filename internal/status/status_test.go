package status

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/sweeney/pipboy-mini/internal/logic"
)

var start = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func testState() *logic.AppState {
	return &logic.AppState{
		Screen: logic.ScreenRadio,
		Inv:    logic.InvView{Lines: []string{"a", "b", "c"}, Offset: 1, VisibleRows: 9},
		Playback: logic.PlaybackState{
			Tracks:     []string{"/music/a.mp3", "/music/b.mp3"},
			Cursor:     1,
			NowPlaying: 1,
			Status:     logic.StatusPlaying,
		},
	}
}

func testConfig() Config {
	return Config{TickMs: 50, DebounceSamples: 2, ComboHoldMs: 500, CountdownMs: 3000, MetricsMs: 2000, Broker: "tcp://localhost:1883", Inventory: "/opt/pipboy/inv.txt", Music: "/opt/pipboy/music"}
}

func parse(t *testing.T, data []byte) StatusInner {
	t.Helper()
	var parsed StatusJSON
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	return parsed.Status
}

func TestNewSnapshot(t *testing.T) {
	now := start.Add(90 * time.Second)
	snap := NewSnapshot(testState(), start, now, true, testConfig())
	if snap.Screen != logic.ScreenRadio || snap.InvLines != 3 || snap.InvOffset != 1 {
		t.Errorf("unexpected snapshot %+v", snap)
	}
	if snap.Uptime() != 90*time.Second {
		t.Errorf("Uptime: got %v", snap.Uptime())
	}
	if !snap.MQTTConnected {
		t.Error("expected MQTTConnected")
	}
}

func TestFormatStatusEvent(t *testing.T) {
	snap := NewSnapshot(testState(), start, start.Add(90*time.Second), true, testConfig())
	s := parse(t, FormatStatusEvent(snap, "SHUTDOWN", "COMBO"))

	if s.Event != "SHUTDOWN" || s.Reason != "COMBO" {
		t.Errorf("event/reason: got %q/%q", s.Event, s.Reason)
	}
	if s.Screen != "RADIO" {
		t.Errorf("screen: got %s", s.Screen)
	}
	if s.UptimeSeconds != 90 {
		t.Errorf("uptime: got %d", s.UptimeSeconds)
	}
	if s.Playback.Status != "PLAYING" || s.Playback.Track != "b.mp3" || s.Playback.Tracks != 2 {
		t.Errorf("playback: got %+v", s.Playback)
	}
	if s.Inventory.Lines != 3 || s.Inventory.Offset != 1 {
		t.Errorf("inventory: got %+v", s.Inventory)
	}
	if s.Shutdown != "INACTIVE" {
		t.Errorf("shutdown: got %s", s.Shutdown)
	}
	if s.StartTime != "2026-01-01T00:00:00Z" || s.Timestamp != "2026-01-01T00:01:30Z" {
		t.Errorf("times: got %s %s", s.StartTime, s.Timestamp)
	}
	if !s.MQTT.Connected || s.MQTT.Broker != "tcp://localhost:1883" {
		t.Errorf("mqtt: got %+v", s.MQTT)
	}
	if s.Config.TickMs != 50 || s.Config.DebounceSamples != 2 || s.Config.CountdownMs != 3000 {
		t.Errorf("config: got %+v", s.Config)
	}
	if s.System != nil {
		t.Error("system should be omitted before the first metrics sample")
	}
}

func TestFormatStatusEventStartupOmitsReason(t *testing.T) {
	data := FormatStatusEvent(NewSnapshot(testState(), start, start, false, testConfig()), "STARTUP", "")
	if strings.Contains(string(data), `"reason"`) {
		t.Errorf("reason should be omitted: %s", data)
	}
}

func TestFormatJSONIncludesSystem(t *testing.T) {
	state := testState()
	state.Metrics = logic.MetricsSnapshot{
		Time:       start,
		CPUPercent: 12.5, CPUValid: true,
		RAMUsed: 100, RAMTotal: 200,
		Hostname: "pipboy",
	}
	data := FormatJSON(NewSnapshot(state, start, start, false, testConfig()))
	if !strings.Contains(string(data), "\n  ") {
		t.Error("FormatJSON should be indented")
	}
	s := parse(t, data)
	if s.Event != "" {
		t.Errorf("FormatJSON should not set event, got %q", s.Event)
	}
	if s.System == nil {
		t.Fatal("expected system block")
	}
	if s.System.CPUPercent == nil || *s.System.CPUPercent != 12.5 {
		t.Errorf("cpu: got %v", s.System.CPUPercent)
	}
	if s.System.TempC != nil || s.System.IP != "" {
		t.Error("unavailable fields should be omitted")
	}
	if s.System.Hostname != "pipboy" || s.System.RAMTotalBytes != 200 {
		t.Errorf("system: got %+v", s.System)
	}
}

func TestFormatJSONZeroState(t *testing.T) {
	s := parse(t, FormatJSON(NewSnapshot(&logic.AppState{}, start, start, false, Config{})))
	if s.Playback.Status != "STOPPED" {
		t.Errorf("expected STOPPED default, got %q", s.Playback.Status)
	}
	if s.Screen != "STAT" {
		t.Errorf("expected STAT, got %s", s.Screen)
	}
}
