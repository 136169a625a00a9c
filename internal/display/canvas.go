package display

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// Canvas is an off-screen frame the renderer draws on.
type Canvas struct {
	img *image.RGBA
}

// NewCanvas creates a black Width x Height canvas.
func NewCanvas() *Canvas {
	return &Canvas{img: image.NewRGBA(image.Rect(0, 0, Width, Height))}
}

// Image returns the backing frame.
func (c *Canvas) Image() *image.RGBA {
	return c.img
}

// Clear fills the whole frame.
func (c *Canvas) Clear(col color.RGBA) {
	draw.Draw(c.img, c.img.Bounds(), image.NewUniform(col), image.Point{}, draw.Src)
}

// FillRect fills w x h pixels at (x, y), clipped to the frame.
func (c *Canvas) FillRect(x, y, w, h int, col color.RGBA) {
	r := image.Rect(x, y, x+w, y+h).Intersect(c.img.Bounds())
	if r.Empty() {
		return
	}
	draw.Draw(c.img, r, image.NewUniform(col), image.Point{}, draw.Src)
}

// DrawText draws s with its top-left corner at (x, y).
func (c *Canvas) DrawText(x, y int, s string, face font.Face, col color.RGBA) {
	d := font.Drawer{
		Dst:  c.img,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.P(x, y+face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(s)
}

// Present pushes the frame to p.
func (c *Canvas) Present(p Panel) error {
	return p.Show(c.img)
}
