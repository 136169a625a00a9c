// Package audio owns the track list and the playback state machine.
// Decoding and output are delegated to a Transport that runs on its own
// goroutine; the player only ever polls it.
package audio

import (
	"log"

	"github.com/samber/lo"

	"github.com/sweeney/pipboy-mini/internal/logic"
)

// Transport plays one file at a time.
type Transport interface {
	// Play starts path from the beginning, replacing whatever was loaded.
	Play(path string) error
	Pause()
	Resume()
	// Stop releases the current track.
	Stop()
	// Ended reports, once, that the current track finished on its own.
	Ended() bool
	Close() error
}

// Player is the Stopped/Playing/Paused state machine over a track list.
// It is not safe for concurrent use; the main loop owns it.
type Player struct {
	transport Transport
	state     logic.PlaybackState
	// failures counts consecutive tracks the transport could not start.
	failures int
}

// NewPlayer creates a stopped player over tracks.
func NewPlayer(transport Transport, tracks []string) *Player {
	p := &Player{
		transport: transport,
		state: logic.PlaybackState{
			NowPlaying: -1,
			Cursor:     -1,
			Status:     logic.StatusStopped,
		},
	}
	p.setTracks(tracks)
	return p
}

// State returns a read-only view of the player.
func (p *Player) State() logic.PlaybackState {
	return p.state
}

// MoveCursor moves the navigation cursor by delta, clamped to the list.
func (p *Player) MoveCursor(delta int) {
	if len(p.state.Tracks) == 0 {
		return
	}
	p.state.Cursor = lo.Clamp(p.state.Cursor+delta, 0, len(p.state.Tracks)-1)
}

// Play starts track index from the beginning. Out-of-range indexes are ignored.
func (p *Player) Play(index int) {
	if index < 0 || index >= len(p.state.Tracks) {
		return
	}
	p.state.NowPlaying = index
	p.state.Status = logic.StatusPlaying
	err := p.transport.Play(p.state.Tracks[index])
	if err == nil {
		p.failures = 0
		return
	}
	log.Printf("audio: play %s: %v", p.state.TrackName(index), err)
	p.failures++
	if p.failures >= len(p.state.Tracks) {
		log.Printf("audio: no playable tracks after %d attempts, stopping", p.failures)
		p.Stop()
	}
	// Otherwise the transport reports the track as ended, so it is skipped on the next poll
}

// TogglePlayPause pauses or resumes. No-op when stopped.
func (p *Player) TogglePlayPause() {
	switch p.state.Status {
	case logic.StatusPlaying:
		p.transport.Pause()
		p.state.Status = logic.StatusPaused
	case logic.StatusPaused:
		p.transport.Resume()
		p.state.Status = logic.StatusPlaying
	}
}

// Next plays the track after now-playing, wrapping to the first.
// No-op when nothing is loaded. The cursor follows.
func (p *Player) Next() {
	if p.state.Status == logic.StatusStopped || !p.state.HasNowPlaying() {
		return
	}
	next := (p.state.NowPlaying + 1) % len(p.state.Tracks)
	p.Play(next)
	p.state.Cursor = next
}

// Stop releases the transport and clears now-playing.
func (p *Player) Stop() {
	p.transport.Stop()
	p.state.NowPlaying = -1
	p.state.Status = logic.StatusStopped
	p.failures = 0
}

// Poll handles an end-of-track notification as an implicit Next.
func (p *Player) Poll() {
	if p.state.Status != logic.StatusPlaying {
		return
	}
	if p.transport.Ended() {
		p.Next()
	}
}

// SetTracks replaces the track list after a re-scan. The current track keeps
// playing if it is still present, otherwise playback stops.
func (p *Player) SetTracks(tracks []string) {
	playing := ""
	if p.state.HasNowPlaying() {
		playing = p.state.Tracks[p.state.NowPlaying]
	}
	p.setTracks(tracks)
	if playing == "" {
		return
	}
	if idx := lo.IndexOf(p.state.Tracks, playing); idx >= 0 {
		p.state.NowPlaying = idx
		return
	}
	p.Stop()
}

func (p *Player) setTracks(tracks []string) {
	under := ""
	if p.state.Cursor >= 0 && p.state.Cursor < len(p.state.Tracks) {
		under = p.state.Tracks[p.state.Cursor]
	}

	p.state.Tracks = tracks
	p.state.NowPlaying = -1
	switch {
	case len(tracks) == 0:
		p.state.Cursor = -1
	case lo.Contains(tracks, under):
		p.state.Cursor = lo.IndexOf(tracks, under)
	default:
		p.state.Cursor = lo.Clamp(p.state.Cursor, 0, len(tracks)-1)
	}
}

// Close stops playback and releases the output device.
func (p *Player) Close() error {
	p.Stop()
	return p.transport.Close()
}
