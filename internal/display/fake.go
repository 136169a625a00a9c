package display

import (
	"image"
)

// FakePanel records frames for test assertions.
type FakePanel struct {
	// Frames contains a copy of every frame shown.
	Frames []*image.RGBA

	// ShowError, if set, will be returned by Show.
	ShowError error

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakePanel creates a FakePanel for testing.
func NewFakePanel() *FakePanel {
	return &FakePanel{}
}

// Show records a copy of img.
func (f *FakePanel) Show(img *image.RGBA) error {
	if f.ShowError != nil {
		return f.ShowError
	}
	cp := image.NewRGBA(img.Bounds())
	copy(cp.Pix, img.Pix)
	f.Frames = append(f.Frames, cp)
	return nil
}

// Close marks the panel as closed.
func (f *FakePanel) Close() error {
	f.Closed = true
	return nil
}

// Last returns the most recent frame, or nil.
func (f *FakePanel) Last() *image.RGBA {
	if len(f.Frames) == 0 {
		return nil
	}
	return f.Frames[len(f.Frames)-1]
}
