//go:build !((linux && cgo) || windows || darwin)

package audio

import "errors"

// OutputAvailable indicates whether this build can drive a sound device.
// Sound output on Linux needs cgo for ALSA.
const OutputAvailable = false

// SpeakerTransport is unavailable in this build.
type SpeakerTransport struct {
	NullTransport
}

// NewSpeakerTransport always fails in builds without cgo.
func NewSpeakerTransport() (*SpeakerTransport, error) {
	return nil, errors.New("audio: sound output not supported in this build (requires cgo)")
}
