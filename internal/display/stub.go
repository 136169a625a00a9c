//go:build !linux

package display

import (
	"errors"
	"image"
)

// ST7735 is a stub for non-Linux platforms.
type ST7735 struct{}

// NewST7735 returns an error on non-Linux platforms.
func NewST7735(cfg Config) (*ST7735, error) {
	return nil, errors.New("ST7735 panel only supported on Linux")
}

// Show is a no-op stub.
func (d *ST7735) Show(img *image.RGBA) error {
	return errors.New("not supported")
}

// Close is a no-op stub.
func (d *ST7735) Close() error {
	return nil
}
