// Package display drives the 128x128 ST7735S panel and provides the canvas
// frames are composed on before being pushed over SPI.
package display

import (
	"image"
)

// Panel geometry in pixels.
const (
	Width  = 128
	Height = 128
)

// Default wiring of the Waveshare 1.44" LCD HAT (BCM numbering).
const (
	DefaultPinRST = 27
	DefaultPinDC  = 25
	DefaultPinBL  = 24

	DefaultSPIPort = "SPI0.0"
	DefaultSPIHz   = 40_000_000
)

// Config describes how the panel is attached.
type Config struct {
	Chip    string // GPIO character device for RST/DC/BL, e.g. "gpiochip0"
	SPIPort string
	SPIHz   int64
	PinRST  int
	PinDC   int
	PinBL   int
}

// DefaultConfig returns the wiring of the stock HAT.
func DefaultConfig(chip string) Config {
	return Config{
		Chip:    chip,
		SPIPort: DefaultSPIPort,
		SPIHz:   DefaultSPIHz,
		PinRST:  DefaultPinRST,
		PinDC:   DefaultPinDC,
		PinBL:   DefaultPinBL,
	}
}

// Panel shows full frames.
type Panel interface {
	// Show pushes img to the panel. img must be Width x Height.
	Show(img *image.RGBA) error
	// Close blanks the panel, turns the backlight off and releases the hardware.
	Close() error
}

// ST7735 command bytes.
const (
	cmdSWRESET = 0x01
	cmdSLPOUT  = 0x11
	cmdINVON   = 0x21
	cmdDISPON  = 0x29
	cmdCASET   = 0x2A
	cmdRASET   = 0x2B
	cmdRAMWR   = 0x2C
	cmdMADCTL  = 0x36
	cmdCOLMOD  = 0x3A

	madctlMX  = 0x40
	madctlMV  = 0x20
	madctlRGB = 0x00

	colmod16bit = 0x55
)

// spiChunk is the largest transfer spidev accepts by default.
const spiChunk = 4096

// RGB565 packs img into big-endian RGB565, row-major.
func RGB565(img *image.RGBA) []byte {
	b := img.Bounds()
	out := make([]byte, 0, b.Dx()*b.Dy()*2)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			i := img.PixOffset(x, y)
			r, g, bl := img.Pix[i], img.Pix[i+1], img.Pix[i+2]
			px := uint16(r>>3)<<11 | uint16(g>>2)<<5 | uint16(bl>>3)
			out = append(out, byte(px>>8), byte(px))
		}
	}
	return out
}

// chunks splits buf into transfers of at most size bytes.
func chunks(buf []byte, size int) [][]byte {
	var out [][]byte
	for len(buf) > size {
		out = append(out, buf[:size])
		buf = buf[size:]
	}
	if len(buf) > 0 {
		out = append(out, buf)
	}
	return out
}

// window returns the CASET and RASET arguments for a full-frame write.
// Columns start at 1 on this panel.
func window() (caset, raset []byte) {
	return []byte{0x00, 0x01, 0x00, Width}, []byte{0x00, 0x00, 0x00, Height - 1}
}
