package internal

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/sweeney/pipboy-mini/internal/audio"
	"github.com/sweeney/pipboy-mini/internal/display"
	"github.com/sweeney/pipboy-mini/internal/gpio"
	"github.com/sweeney/pipboy-mini/internal/logic"
	"github.com/sweeney/pipboy-mini/internal/mqtt"
	"github.com/sweeney/pipboy-mini/internal/render"
	"github.com/sweeney/pipboy-mini/internal/status"
)

const tickInterval = 50 * time.Millisecond

var startTime = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

// rig is the logic stack wired over fakes, driven one scripted sample per tick.
type rig struct {
	reader    *gpio.FakeReader
	input     *logic.InputReader
	machine   *logic.Machine
	player    *audio.Player
	transport *audio.FakeTransport
	publisher *mqtt.FakePublisher
	renderer  *render.Renderer
	canvas    *display.Canvas
	panel     *display.FakePanel
	sched     *logic.Scheduler
	ticks     int
	powerOffs int
	errors    []error
}

func newRig(samples []logic.Levels, tracks []string, inv []string) *rig {
	r := &rig{
		reader:    gpio.NewFakeReader(samples),
		input:     logic.NewInputReader(2, 500*time.Millisecond),
		transport: audio.NewFakeTransport(),
		publisher: mqtt.NewFakePublisher(),
		renderer:  render.NewRenderer(display.BuiltinFaces()),
		canvas:    display.NewCanvas(),
		panel:     display.NewFakePanel(),
		sched:     logic.NewScheduler(),
	}
	r.player = audio.NewPlayer(r.transport, tracks)
	state := logic.AppState{
		Screen: logic.ScreenStat,
		Inv:    logic.InvView{Path: "inv.txt", Lines: inv, VisibleRows: render.InvRows},
	}
	r.machine = logic.NewMachine(state,
		logic.NewScreenController(r.player, func(string) ([]string, error) { return nil, errors.New("read only") }),
		logic.NewShutdownSequencer(time.Second),
		r.player)
	return r
}

// run simulates n iterations of the main loop.
func (r *rig) run(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		now := startTime.Add(time.Duration(r.ticks) * tickInterval)
		r.ticks++
		tk := r.sched.Advance(now)

		levels, err := r.reader.Read()
		if err != nil {
			t.Fatalf("tick %d: gpio read error: %v", r.ticks, err)
		}
		events := r.input.Process(levels, now)

		before := r.machine.State.Playback
		res := r.machine.Step(events, tk)
		r.errors = append(r.errors, res.Errors...)
		if res.PowerOff {
			r.powerOffs++
		}
		if mqtt.PlaybackChanged(before, r.machine.State.Playback) {
			if err := r.publisher.PublishPlayback(mqtt.NewPlaybackEvent(now, r.machine.State.Playback)); err != nil {
				t.Fatalf("tick %d: publish error: %v", r.ticks, err)
			}
		}

		r.renderer.Render(r.canvas, &r.machine.State)
		if err := r.canvas.Present(r.panel); err != nil {
			t.Fatalf("tick %d: present error: %v", r.ticks, err)
		}
	}
}

// press returns a debounced press followed by a debounced release of b.
func press(b logic.Button) []logic.Levels {
	return append(gpio.Hold(2, b), gpio.Hold(2)...)
}

func script(parts ...[]logic.Levels) []logic.Levels {
	var out []logic.Levels
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func tracks(names ...string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = filepath.Join("/music", n)
	}
	return out
}

func TestIntegrationRadioPlaythrough(t *testing.T) {
	samples := script(
		press(logic.ButtonLeft),   // STAT -> RADIO
		press(logic.ButtonSelect), // play a
		press(logic.ButtonKey2),   // next -> b
		press(logic.ButtonKey1),   // pause
		press(logic.ButtonKey1),   // resume
		press(logic.ButtonKey3),   // stop
	)
	r := newRig(samples, tracks("a.mp3", "b.mp3", "c.mp3"), nil)
	r.run(t, len(samples))

	if r.machine.State.Screen != logic.ScreenRadio {
		t.Fatalf("expected RADIO, got %s", r.machine.State.Screen)
	}
	wantPlayed := tracks("a.mp3", "b.mp3")
	if len(r.transport.Played) != len(wantPlayed) {
		t.Fatalf("expected played %v, got %v", wantPlayed, r.transport.Played)
	}
	for i := range wantPlayed {
		if r.transport.Played[i] != wantPlayed[i] {
			t.Errorf("play %d: expected %s, got %s", i, wantPlayed[i], r.transport.Played[i])
		}
	}

	want := []logic.PlaybackStatus{
		logic.StatusPlaying, // a
		logic.StatusPlaying, // b
		logic.StatusPaused,
		logic.StatusPlaying,
		logic.StatusStopped,
	}
	if len(r.publisher.PlaybackEvents) != len(want) {
		t.Fatalf("expected %d playback events, got %d", len(want), len(r.publisher.PlaybackEvents))
	}
	for i, s := range want {
		if r.publisher.PlaybackEvents[i].Status != s {
			t.Errorf("event %d: expected %s, got %s", i, s, r.publisher.PlaybackEvents[i].Status)
		}
	}
	if r.publisher.PlaybackEvents[1].Track != "b.mp3" {
		t.Errorf("expected b.mp3 after next, got %q", r.publisher.PlaybackEvents[1].Track)
	}
	if r.machine.State.Playback.Cursor != 1 {
		t.Errorf("cursor should have followed next to 1, got %d", r.machine.State.Playback.Cursor)
	}
	if len(r.panel.Frames) != len(samples) {
		t.Errorf("expected a frame per tick, got %d", len(r.panel.Frames))
	}
}

func TestIntegrationAutoAdvanceWraps(t *testing.T) {
	samples := script(
		press(logic.ButtonLeft),
		press(logic.ButtonDown),
		press(logic.ButtonDown),
		press(logic.ButtonSelect), // play c
		gpio.Hold(4),
	)
	r := newRig(samples, tracks("a.mp3", "b.mp3", "c.mp3"), nil)
	r.run(t, len(samples)-4)

	if r.machine.State.Playback.NowPlaying != 2 {
		t.Fatalf("expected c playing, got %+v", r.machine.State.Playback)
	}
	r.transport.Finish()
	r.run(t, 1)

	pb := r.machine.State.Playback
	if pb.NowPlaying != 0 || pb.Status != logic.StatusPlaying || pb.Cursor != 0 {
		t.Errorf("expected wrap to a with cursor following, got %+v", pb)
	}
}

func TestIntegrationBounceRejection(t *testing.T) {
	// Single-sample glitches never reach the debounce threshold
	samples := script(
		gpio.Hold(1, logic.ButtonRight), gpio.Hold(1),
		gpio.Hold(1, logic.ButtonRight), gpio.Hold(1),
		gpio.Hold(1, logic.ButtonLeft), gpio.Hold(1),
	)
	r := newRig(samples, nil, nil)
	r.run(t, len(samples))

	if r.machine.State.Screen != logic.ScreenStat {
		t.Errorf("bounces changed the screen to %s", r.machine.State.Screen)
	}
}

func TestIntegrationInventoryScrollAndReloadFailure(t *testing.T) {
	inv := make([]string, 15)
	for i := range inv {
		inv[i] = "item"
	}
	samples := script(press(logic.ButtonRight))
	for i := 0; i < 10; i++ {
		samples = append(samples, press(logic.ButtonDown)...)
	}
	samples = append(samples, press(logic.ButtonSelect)...)

	r := newRig(samples, nil, inv)
	r.run(t, len(samples))

	if r.machine.State.Screen != logic.ScreenInv {
		t.Fatalf("expected INV, got %s", r.machine.State.Screen)
	}
	if want := 15 - render.InvRows; r.machine.State.Inv.Offset != want {
		t.Errorf("expected offset clamped to %d, got %d", want, r.machine.State.Inv.Offset)
	}
	if len(r.errors) != 1 {
		t.Fatalf("expected 1 reload error, got %d", len(r.errors))
	}
	if len(r.machine.State.Inv.Lines) != 15 {
		t.Errorf("reload failure should keep cached lines, got %d", len(r.machine.State.Inv.Lines))
	}
}

func TestIntegrationComboDoesNotTouchPlayback(t *testing.T) {
	// Start a track on RADIO, then hold the shutdown chord and cancel it
	samples := script(
		press(logic.ButtonLeft),
		press(logic.ButtonSelect),
		gpio.Hold(14, logic.ButtonKey1, logic.ButtonKey2),
		gpio.Hold(2),
		press(logic.ButtonUp), // cancel
	)
	r := newRig(samples, tracks("a.mp3", "b.mp3"), nil)
	r.run(t, len(samples))

	if r.powerOffs != 0 {
		t.Fatalf("cancelled countdown powered off")
	}
	if r.machine.State.Shutdown.Phase != logic.ShutdownInactive {
		t.Errorf("expected INACTIVE after cancel, got %s", r.machine.State.Shutdown.Phase)
	}
	if r.machine.State.Screen != logic.ScreenRadio {
		t.Errorf("expected RADIO restored, got %s", r.machine.State.Screen)
	}
	pb := r.machine.State.Playback
	if pb.Status != logic.StatusPlaying || pb.NowPlaying != 0 {
		t.Errorf("chord changed playback: %+v", pb)
	}
	if len(r.transport.Played) != 1 {
		t.Errorf("chord restarted or skipped: %v", r.transport.Played)
	}
}

func TestIntegrationComboPowerOff(t *testing.T) {
	samples := gpio.Hold(60, logic.ButtonKey1, logic.ButtonKey2)
	r := newRig(samples, nil, nil)
	r.run(t, len(samples))

	if r.powerOffs != 1 {
		t.Fatalf("expected exactly 1 power-off, got %d", r.powerOffs)
	}
	if r.machine.State.Shutdown.Phase != logic.ShutdownDone {
		t.Errorf("expected DONE, got %s", r.machine.State.Shutdown.Phase)
	}
}

func TestIntegrationShutdownPayload(t *testing.T) {
	samples := script(press(logic.ButtonLeft), press(logic.ButtonSelect))
	r := newRig(samples, tracks("a.mp3"), []string{"x"})
	r.run(t, len(samples))

	now := startTime.Add(time.Minute)
	snap := status.NewSnapshot(&r.machine.State, startTime, now, true, status.Config{Broker: "tcp://localhost:1883"})
	ev := mqtt.SystemEvent{
		Timestamp:  now,
		Event:      "SHUTDOWN",
		Reason:     "SIGTERM",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "SHUTDOWN", "SIGTERM"),
	}
	if err := r.publisher.PublishSystem(ev); err != nil {
		t.Fatalf("publish error: %v", err)
	}

	var payload struct {
		Status struct {
			Event    string `json:"event"`
			Reason   string `json:"reason"`
			Screen   string `json:"screen"`
			Playback struct {
				Status string `json:"status"`
				Track  string `json:"track"`
			} `json:"playback"`
			MQTT struct {
				Connected bool `json:"connected"`
			} `json:"mqtt"`
		} `json:"status"`
	}
	if err := json.Unmarshal(r.publisher.SystemPayloads[0], &payload); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	s := payload.Status
	if s.Event != "SHUTDOWN" || s.Reason != "SIGTERM" {
		t.Errorf("unexpected event %q/%q", s.Event, s.Reason)
	}
	if s.Screen != "RADIO" || s.Playback.Status != "PLAYING" || s.Playback.Track != "a.mp3" {
		t.Errorf("unexpected state in payload: %+v", s)
	}
	if !s.MQTT.Connected {
		t.Error("expected connected=true")
	}
}

func TestIntegrationPublishFailureDoesNotCrash(t *testing.T) {
	r := newRig(script(press(logic.ButtonLeft)), tracks("a.mp3"), nil)
	r.publisher.PublishSystemError = errors.New("broker down")

	err := r.publisher.PublishSystem(mqtt.SystemEvent{Event: "HEARTBEAT"})
	if err == nil {
		t.Fatal("expected publish error")
	}
	// The loop keeps going regardless
	r.run(t, 4)
	if r.machine.State.Screen != logic.ScreenRadio {
		t.Errorf("expected RADIO, got %s", r.machine.State.Screen)
	}
}

func TestIntegrationCancelWithTransportKey(t *testing.T) {
	for _, key := range []logic.Button{logic.ButtonKey1, logic.ButtonKey2} {
		t.Run(key.String(), func(t *testing.T) {
			samples := script(
				press(logic.ButtonLeft),
				press(logic.ButtonSelect),
				gpio.Hold(14, logic.ButtonKey1, logic.ButtonKey2),
				gpio.Hold(2),
				press(key), // cancel
			)
			r := newRig(samples, tracks("a.mp3", "b.mp3"), nil)
			r.run(t, len(samples))

			if r.machine.State.Shutdown.Phase != logic.ShutdownInactive {
				t.Fatalf("expected INACTIVE after cancel, got %s", r.machine.State.Shutdown.Phase)
			}
			pb := r.machine.State.Playback
			if pb.Status != logic.StatusPlaying || pb.NowPlaying != 0 {
				t.Errorf("cancelling with %s changed playback: %+v (calls %v)", key, pb, r.transport.Calls)
			}
			if len(r.publisher.PlaybackEvents) != 1 {
				t.Errorf("expected only the initial play event, got %d", len(r.publisher.PlaybackEvents))
			}
		})
	}
}
