package main

import (
	"fmt"
	"log"
	"os"
	"syscall"
	"time"

	"github.com/sweeney/pipboy-mini/internal/audio"
	"github.com/sweeney/pipboy-mini/internal/display"
	"github.com/sweeney/pipboy-mini/internal/gpio"
	"github.com/sweeney/pipboy-mini/internal/logic"
	"github.com/sweeney/pipboy-mini/internal/metrics"
	"github.com/sweeney/pipboy-mini/internal/mqtt"
	"github.com/sweeney/pipboy-mini/internal/power"
	"github.com/sweeney/pipboy-mini/internal/render"
	"github.com/sweeney/pipboy-mini/internal/status"
)

// app holds everything the main loop owns. Only the main loop goroutine
// touches it.
type app struct {
	reader   gpio.Reader
	input    *logic.InputReader
	machine  *logic.Machine
	player   *audio.Player
	watcher  *audio.Watcher
	sampler  *metrics.Sampler
	renderer *render.Renderer
	canvas   *display.Canvas
	panel    display.Panel
	power    power.PowerOff

	publisher  mqtt.Publisher
	mqttStatus mqtt.ConnectionStatus
	statusCfg  status.Config

	musicDir  string
	heartbeat time.Duration
	start     time.Time

	released bool
}

func runLoop(a *app, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	sched := logic.NewScheduler()
	lastHeartbeat := a.start

	for {
		select {
		case s := <-sig:
			if s == syscall.SIGUSR1 {
				log.Printf("status:\n%s", status.FormatJSON(a.snapshot(now())))
				continue
			}
			log.Printf("received %v, shutting down", s)
			a.teardown(now(), signalName(s))
			log.Printf("shutdown complete")
			return nil

		case <-tick:
			t := now()
			tk := sched.Advance(t)

			var events []logic.InputEvent
			levels, err := a.reader.Read()
			if err != nil {
				log.Printf("gpio read error: %v", err)
			} else {
				events = a.input.Process(levels, t)
			}

			if a.watcher != nil && a.watcher.Drain(t) {
				a.rescan()
			}

			before := a.machine.State.Playback
			res := a.machine.Step(events, tk)
			for _, err := range res.Errors {
				log.Printf("inventory: %v", err)
			}
			if mqtt.PlaybackChanged(before, a.machine.State.Playback) {
				a.publishPlayback(t)
			}

			if snap, ok := a.sampler.MaybeSample(t); ok {
				a.machine.SetMetrics(snap)
			}

			a.renderer.Render(a.canvas, &a.machine.State)
			if err := a.canvas.Present(a.panel); err != nil {
				log.Printf("display: %v", err)
			}

			if res.PowerOff {
				log.Printf("power-off confirmed, shutting down")
				a.teardown(t, "COMBO")
				if err := a.power.PowerOff(); err != nil {
					return err
				}
				log.Printf("shutdown complete")
				return nil
			}

			if a.heartbeat > 0 && t.Sub(lastHeartbeat) >= a.heartbeat {
				lastHeartbeat = t
				a.publishSystem(t, "HEARTBEAT", "")
			}
		}
	}
}

func (a *app) rescan() {
	tracks, err := audio.ScanTracks(a.musicDir)
	if err != nil {
		log.Printf("audio: %v", err)
	}
	a.player.SetTracks(tracks)
	a.machine.RefreshPlayback()
	log.Printf("audio: track list updated, %d tracks", len(tracks))
}

// teardown publishes SHUTDOWN, stops audio and releases the hardware.
func (a *app) teardown(now time.Time, reason string) {
	a.publishSystem(now, "SHUTDOWN", reason)
	a.release()
}

// release stops audio, then closes the display, the GPIO lines and the
// publisher. Safe to call more than once.
func (a *app) release() {
	if a.released {
		return
	}
	a.released = true

	if a.player != nil {
		if err := a.player.Close(); err != nil {
			log.Printf("audio: close: %v", err)
		}
	}
	if a.watcher != nil {
		if err := a.watcher.Close(); err != nil {
			log.Printf("audio: close watcher: %v", err)
		}
	}
	if a.panel != nil {
		if err := a.panel.Close(); err != nil {
			log.Printf("display: close: %v", err)
		}
	}
	if a.reader != nil {
		if err := a.reader.Close(); err != nil {
			log.Printf("gpio: close: %v", err)
		}
	}
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			log.Printf("mqtt: close: %v", err)
		}
	}
}

func (a *app) snapshot(now time.Time) status.Snapshot {
	connected := a.mqttStatus != nil && a.mqttStatus.IsConnected()
	return status.NewSnapshot(&a.machine.State, a.start, now, connected, a.statusCfg)
}

func (a *app) publishSystem(now time.Time, event, reason string) {
	if a.publisher == nil {
		return
	}
	ev := mqtt.SystemEvent{
		Timestamp:  now,
		Event:      event,
		Reason:     reason,
		Retained:   event != "HEARTBEAT",
		RawPayload: status.FormatStatusEvent(a.snapshot(now), event, reason),
	}
	if err := a.publisher.PublishSystem(ev); err != nil {
		log.Printf("failed to publish %s event: %v", event, err)
	}
}

func (a *app) publishPlayback(now time.Time) {
	if a.publisher == nil {
		return
	}
	if err := a.publisher.PublishPlayback(mqtt.NewPlaybackEvent(now, a.machine.State.Playback)); err != nil {
		log.Printf("playback publish error: %v", err)
	}
}

func signalName(s os.Signal) string {
	switch s {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	}
	return fmt.Sprintf("%v", s)
}
