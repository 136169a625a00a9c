//go:build linux

package display

import (
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/warthog618/go-gpiocdev"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

// ST7735 is a panel attached over spidev with GPIO control lines.
type ST7735 struct {
	port spi.PortCloser
	conn spi.Conn
	rst  *gpiocdev.Line
	dc   *gpiocdev.Line
	bl   *gpiocdev.Line
}

// NewST7735 opens the SPI port and control lines and runs the init sequence.
func NewST7735(cfg Config) (*ST7735, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("init periph host: %w", err)
	}

	d := &ST7735{}
	var err error
	if d.port, err = spireg.Open(cfg.SPIPort); err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.SPIPort, err)
	}
	if d.conn, err = d.port.Connect(physic.Frequency(cfg.SPIHz)*physic.Hertz, spi.Mode0, 8); err != nil {
		d.release()
		return nil, fmt.Errorf("connect %s: %w", cfg.SPIPort, err)
	}

	if d.rst, err = outputLine(cfg.Chip, cfg.PinRST, 1); err != nil {
		d.release()
		return nil, err
	}
	if d.dc, err = outputLine(cfg.Chip, cfg.PinDC, 0); err != nil {
		d.release()
		return nil, err
	}
	if d.bl, err = outputLine(cfg.Chip, cfg.PinBL, 0); err != nil {
		d.release()
		return nil, err
	}

	if err := d.init(); err != nil {
		d.release()
		return nil, fmt.Errorf("init panel: %w", err)
	}
	return d, nil
}

func outputLine(chip string, offset, value int) (*gpiocdev.Line, error) {
	l, err := gpiocdev.RequestLine(chip, offset,
		gpiocdev.AsOutput(value),
		gpiocdev.WithConsumer("pipboy-mini"),
	)
	if err != nil {
		return nil, fmt.Errorf("request gpio %d: %w", offset, err)
	}
	return l, nil
}

func (d *ST7735) init() error {
	steps := []func() error{
		func() error { return d.rst.SetValue(0) },
		func() error { time.Sleep(100 * time.Millisecond); return d.rst.SetValue(1) },
		func() error { time.Sleep(100 * time.Millisecond); return d.command(cmdSWRESET) },
		func() error { time.Sleep(150 * time.Millisecond); return d.command(cmdSLPOUT) },
		func() error { time.Sleep(150 * time.Millisecond); return d.command(cmdCOLMOD, colmod16bit) },
		func() error { return d.command(cmdMADCTL, madctlMX|madctlMV|madctlRGB) },
		func() error { return d.command(cmdINVON) },
		func() error { return d.command(cmdDISPON) },
		func() error { return d.bl.SetValue(1) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

func (d *ST7735) command(cmd byte, data ...byte) error {
	if err := d.dc.SetValue(0); err != nil {
		return fmt.Errorf("dc low: %w", err)
	}
	if err := d.conn.Tx([]byte{cmd}, nil); err != nil {
		return fmt.Errorf("command 0x%02x: %w", cmd, err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := d.dc.SetValue(1); err != nil {
		return fmt.Errorf("dc high: %w", err)
	}
	if err := d.conn.Tx(data, nil); err != nil {
		return fmt.Errorf("data 0x%02x: %w", cmd, err)
	}
	return nil
}

// Show pushes a full frame.
func (d *ST7735) Show(img *image.RGBA) error {
	caset, raset := window()
	if err := d.command(cmdCASET, caset...); err != nil {
		return err
	}
	if err := d.command(cmdRASET, raset...); err != nil {
		return err
	}
	if err := d.command(cmdRAMWR); err != nil {
		return err
	}
	if err := d.dc.SetValue(1); err != nil {
		return fmt.Errorf("dc high: %w", err)
	}
	for _, c := range chunks(RGB565(img), spiChunk) {
		if err := d.conn.Tx(c, nil); err != nil {
			return fmt.Errorf("write frame: %w", err)
		}
	}
	return nil
}

// Close blanks the panel, turns the backlight off and releases the SPI port
// and lines. All steps are attempted; errors are accumulated.
func (d *ST7735) Close() error {
	var errs []error
	if err := d.Show(image.NewRGBA(image.Rect(0, 0, Width, Height))); err != nil {
		errs = append(errs, fmt.Errorf("blank: %w", err))
	}
	if err := d.bl.SetValue(0); err != nil {
		errs = append(errs, fmt.Errorf("backlight off: %w", err))
	}
	if err := d.release(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

func (d *ST7735) release() error {
	var errs []error
	for _, l := range []*gpiocdev.Line{d.bl, d.dc, d.rst} {
		if l == nil {
			continue
		}
		if err := l.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if d.port != nil {
		if err := d.port.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
