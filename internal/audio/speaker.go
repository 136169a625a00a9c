//go:build (linux && cgo) || windows || darwin

package audio

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"
)

// OutputAvailable indicates whether this build can drive a sound device.
const OutputAvailable = true

// SpeakerTransport plays files through the default sound device.
// Methods are called from the main loop only; the speaker goroutine touches
// nothing but the atomic end-of-track flag.
type SpeakerTransport struct {
	sampleRate beep.SampleRate
	streamer   beep.StreamSeekCloser
	ctrl       *beep.Ctrl

	gen   atomic.Uint64
	ended atomic.Bool
}

// NewSpeakerTransport opens the sound device at 44.1kHz with a 100ms buffer.
func NewSpeakerTransport() (*SpeakerTransport, error) {
	sr := beep.SampleRate(44100)
	if err := speaker.Init(sr, sr.N(time.Second/10)); err != nil {
		return nil, fmt.Errorf("init speaker: %w", err)
	}
	return &SpeakerTransport{sampleRate: sr}, nil
}

// Play decodes path and starts it. A file that fails to decode is reported
// as ended so the player moves past it.
func (t *SpeakerTransport) Play(path string) error {
	t.Stop()

	f, err := os.Open(path)
	if err != nil {
		t.ended.Store(true)
		return fmt.Errorf("open: %w", err)
	}
	streamer, format, err := decode(path, f)
	if err != nil {
		f.Close()
		t.ended.Store(true)
		return fmt.Errorf("decode: %w", err)
	}

	gen := t.gen.Add(1)
	t.streamer = streamer
	t.ctrl = &beep.Ctrl{Streamer: beep.Resample(4, format.SampleRate, t.sampleRate, streamer)}

	speaker.Play(beep.Seq(t.ctrl, beep.Callback(func() {
		// Ignore callbacks from a stream that has since been replaced
		if t.gen.Load() == gen {
			t.ended.Store(true)
		}
	})))
	return nil
}

func decode(path string, f *os.File) (beep.StreamSeekCloser, beep.Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		return mp3.Decode(f)
	case ".ogg":
		return vorbis.Decode(f)
	case ".wav":
		return wav.Decode(f)
	}
	return nil, beep.Format{}, fmt.Errorf("unsupported format %q", filepath.Ext(path))
}

// Pause suspends output, keeping the position.
func (t *SpeakerTransport) Pause() {
	t.setPaused(true)
}

// Resume continues from the paused position.
func (t *SpeakerTransport) Resume() {
	t.setPaused(false)
}

func (t *SpeakerTransport) setPaused(paused bool) {
	if t.ctrl == nil {
		return
	}
	speaker.Lock()
	t.ctrl.Paused = paused
	speaker.Unlock()
}

// Stop drops the current stream and closes its file.
func (t *SpeakerTransport) Stop() {
	speaker.Clear()
	if t.streamer != nil {
		t.streamer.Close()
	}
	t.streamer = nil
	t.ctrl = nil
	t.gen.Add(1)
	t.ended.Store(false)
}

// Ended reports and clears the end-of-track flag.
func (t *SpeakerTransport) Ended() bool {
	return t.ended.Swap(false)
}

// Close stops playback and releases the sound device.
func (t *SpeakerTransport) Close() error {
	t.Stop()
	speaker.Close()
	return nil
}
