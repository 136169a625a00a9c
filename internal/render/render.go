// Package render composes one frame per tick from an AppState.
// Rendering is a pure read: nothing in AppState is modified.
package render

import (
	"fmt"
	"image/color"
	"time"

	"github.com/mattn/go-runewidth"
	"golang.org/x/image/font"

	"github.com/sweeney/pipboy-mini/internal/display"
	"github.com/sweeney/pipboy-mini/internal/logic"
)

// Surface is what frames are drawn on.
type Surface interface {
	Clear(c color.RGBA)
	FillRect(x, y, w, h int, c color.RGBA)
	// DrawText draws s with its top-left corner at (x, y).
	DrawText(x, y int, s string, face font.Face, c color.RGBA)
}

// Palette.
var (
	ColorBG        = color.RGBA{0, 0, 0, 255}
	ColorGreen     = color.RGBA{0, 255, 0, 255}
	ColorGreenDim  = color.RGBA{0, 140, 0, 255}
	ColorGreenMid  = color.RGBA{0, 200, 0, 255}
	ColorAmber     = color.RGBA{255, 191, 0, 255}
	ColorCyan      = color.RGBA{0, 200, 200, 255}
	ColorRowShade  = color.RGBA{0, 12, 0, 255}
	ColorSelected  = color.RGBA{0, 30, 10, 255}
	ColorNoteFill  = color.RGBA{20, 10, 0, 255}
	ColorOverlayBG = color.RGBA{10, 10, 0, 255}
)

// Layout, in pixels, for the 128x128 panel.
const (
	W = display.Width
	H = display.Height

	headerH   = 15
	footerH   = 13
	footerTop = H - footerH
	bodyTop   = 18
	bodyBot   = H - 15

	invLineH  = 10
	listLineH = 10
	statLineH = 11

	// InvColumns is the clip width of inventory lines.
	InvColumns = 20
	// TrackColumns is the clip width of track names.
	TrackColumns = 18
)

// InvRows is how many inventory lines fit in the body.
const InvRows = (bodyBot - bodyTop + 1) / invLineH

// Renderer draws screens with a fixed set of faces.
type Renderer struct {
	faces display.Faces
}

// NewRenderer creates a Renderer.
func NewRenderer(faces display.Faces) *Renderer {
	return &Renderer{faces: faces}
}

// Render draws the frame for state onto s.
func (r *Renderer) Render(s Surface, state *logic.AppState) {
	s.Clear(ColorBG)

	switch state.Screen {
	case logic.ScreenStat:
		r.stat(s, state)
	case logic.ScreenInv:
		r.inv(s, state)
	case logic.ScreenData:
		r.data(s, state)
	case logic.ScreenRadio:
		r.radio(s, state)
	}

	switch state.Shutdown.Phase {
	case logic.ShutdownCounting:
		r.countdown(s, state.Shutdown)
	case logic.ShutdownDone:
		r.poweringOff(s)
	}
}

func (r *Renderer) header(s Surface, screen logic.ScreenID) {
	s.FillRect(0, 0, W, headerH, ColorGreenDim)
	s.DrawText(3, 1, screen.String(), r.faces.Title, ColorGreen)
	nav := fmt.Sprintf("%d/%d", int(screen)+1, logic.NumScreens)
	s.DrawText(W-r.width(nav, r.faces.Small)-3, 2, nav, r.faces.Small, ColorGreenMid)
}

func (r *Renderer) footer(s Surface, hints string) {
	s.FillRect(0, footerTop, W, footerH, ColorGreenDim)
	if hints != "" {
		s.DrawText(2, footerTop+1, hints, r.faces.Small, ColorGreenMid)
	}
}

func (r *Renderer) width(text string, face font.Face) int {
	return font.MeasureString(face, text).Ceil()
}

func divider(s Surface, y int) {
	s.FillRect(0, y, W, 1, ColorGreenDim)
}

func outline(s Surface, x, y, w, h int, c color.RGBA) {
	s.FillRect(x, y, w, 1, c)
	s.FillRect(x, y+h-1, w, 1, c)
	s.FillRect(x, y, 1, h, c)
	s.FillRect(x+w-1, y, 1, h, c)
}

// scrollbar draws a track on the right edge with a thumb at pos of span.
func scrollbar(s Surface, top, bottom, visible, total, pos, span, minThumb int) {
	trackH := bottom - top
	thumbH := max(minThumb, trackH*visible/total)
	thumbY := top + (trackH-thumbH)*pos/max(1, span)
	s.FillRect(W-4, top, 3, trackH+1, ColorGreenDim)
	s.FillRect(W-4, thumbY, 3, thumbH+1, ColorGreen)
}

func (r *Renderer) stat(s Surface, state *logic.AppState) {
	r.header(s, logic.ScreenStat)

	m := state.Metrics
	rows := []struct{ label, value string }{
		{"CPU", FormatCPU(m)},
		{"RAM", FormatMemory(m.RAMUsed, m.RAMTotal)},
		{"DISK", FormatDisk(m.DiskUsed, m.DiskTotal)},
		{"IP", FormatIP(m)},
		{"UP", FormatUptime(m.Uptime)},
		{"TEMP", FormatTemp(m)},
		{"BATT", "SEE X306 LEDS"},
	}
	y := bodyTop
	for _, row := range rows {
		label := row.label + ":"
		s.DrawText(4, y, label, r.faces.Body, ColorGreenDim)
		s.DrawText(6+r.width(label, r.faces.Body), y, row.value, r.faces.Body, ColorGreen)
		y += statLineH
	}

	divider(s, y-1)
	y += 2
	s.FillRect(2, y, W-4, 16, ColorNoteFill)
	outline(s, 2, y, W-4, 16, ColorAmber)
	s.DrawText(5, y+1, "BATT: Read X306", r.faces.Small, ColorAmber)
	s.DrawText(5, y+8, "4 blue LEDs on board", r.faces.Small, ColorAmber)

	r.footer(s, "<> switch screen")
}

func (r *Renderer) inv(s Surface, state *logic.AppState) {
	r.header(s, logic.ScreenInv)

	v := state.Inv
	y := bodyTop
	for i, line := range v.Visible() {
		if i%2 == 0 {
			s.FillRect(1, y-1, W-2, invLineH-1, ColorRowShade)
		}
		s.DrawText(3, y, runewidth.Truncate(line, InvColumns, ""), r.faces.Body, ColorGreen)
		y += invLineH
	}

	if len(v.Lines) > v.VisibleRows && v.VisibleRows > 0 {
		scrollbar(s, bodyTop, bodyBot, v.VisibleRows, len(v.Lines), v.Offset, v.MaxOffset(), 8)
	}

	r.footer(s, "^v scroll  SEL reload")
}

func (r *Renderer) data(s Surface, state *logic.AppState) {
	r.header(s, logic.ScreenData)

	m := state.Metrics
	gauges := []struct {
		label string
		frac  float64
		ok    bool
		text  string
	}{
		{"CPU", m.CPUPercent / 100, m.CPUValid, FormatCPU(m)},
		{"RAM", ratio(m.RAMUsed, m.RAMTotal), m.RAMTotal > 0, percent(m.RAMUsed, m.RAMTotal)},
		{"DSK", ratio(m.DiskUsed, m.DiskTotal), m.DiskTotal > 0, percent(m.DiskUsed, m.DiskTotal)},
		{"TMP", m.TempC / 100, m.HasTemp, FormatTemp(m)},
	}
	y := bodyTop + 1
	for _, g := range gauges {
		r.gauge(s, y, g.label, g.frac, g.ok, g.text)
		y += 14
	}

	divider(s, y)
	host := m.Hostname
	if host == "" {
		host = "unknown host"
	}
	s.DrawText(4, y+3, runewidth.Truncate(host, InvColumns, ""), r.faces.Body, ColorGreenMid)
	if !state.Tick.Now.IsZero() {
		clock := state.Tick.Now.Format("15:04:05")
		s.DrawText((W-r.width(clock, r.faces.Big))/2, y+15, clock, r.faces.Big, ColorGreen)
	}

	r.footer(s, "<> switch screen")
}

// gauge draws a label, a bar filled to frac and the value text.
func (r *Renderer) gauge(s Surface, y int, label string, frac float64, ok bool, text string) {
	const barX, barW, barH = 28, 60, 8
	s.DrawText(4, y, label, r.faces.Small, ColorGreenDim)
	outline(s, barX, y, barW, barH, ColorGreenDim)
	if ok {
		fill := int(min(max(frac, 0), 1) * float64(barW-2))
		c := ColorGreen
		if frac >= 0.85 {
			c = ColorAmber
		}
		s.FillRect(barX+1, y+1, fill, barH-2, c)
	}
	s.DrawText(barX+barW+4, y, text, r.faces.Small, ColorGreen)
}

func (r *Renderer) radio(s Surface, state *logic.AppState) {
	r.header(s, logic.ScreenRadio)

	pb := state.Playback
	if len(pb.Tracks) == 0 {
		s.DrawText(8, 40, "No audio files found", r.faces.Body, ColorGreenDim)
		s.DrawText(8, 52, "Put .mp3/.ogg/.wav", r.faces.Body, ColorGreenDim)
		s.DrawText(8, 64, "into ./music/", r.faces.Body, ColorGreenDim)
		r.footer(s, "")
		return
	}

	y := bodyTop
	statusColor := ColorGreenDim
	switch pb.Status {
	case logic.StatusPlaying:
		statusColor = ColorGreen
	case logic.StatusPaused:
		statusColor = ColorAmber
	}
	s.DrawText(4, y, "["+string(pb.Status)+"]", r.faces.Body, statusColor)
	if pb.HasNowPlaying() {
		s.DrawText(4, y+10, TruncateTrack(pb.TrackName(pb.NowPlaying)), r.faces.Body, ColorCyan)
	}
	divider(s, y+22)

	listTop := y + 25
	visible := RadioRows
	scroll := ListScroll(pb.Cursor, visible)
	for i := 0; i < visible; i++ {
		idx := scroll + i
		if idx >= len(pb.Tracks) {
			break
		}
		ty := listTop + i*listLineH
		playing := idx == pb.NowPlaying
		selected := idx == pb.Cursor

		if selected {
			s.FillRect(1, ty-1, W-2, listLineH-1, ColorSelected)
		}
		prefix, c := "  ", ColorGreenDim
		switch {
		case playing:
			prefix, c = "> ", ColorCyan
		case selected:
			prefix, c = "* ", ColorGreen
		}
		s.DrawText(3, ty, prefix+TruncateTrack(pb.TrackName(idx)), r.faces.Small, c)
	}

	if len(pb.Tracks) > visible {
		scrollbar(s, listTop, bodyBot, visible, len(pb.Tracks), scroll, len(pb.Tracks)-visible, 6)
	}

	r.footer(s, "K1:play K2:next K3:stop")
}

// RadioRows is how many tracks fit below the now-playing block.
const RadioRows = (bodyBot - (bodyTop + 25)) / listLineH

// ListScroll returns the first visible row that keeps cursor on screen.
func ListScroll(cursor, visible int) int {
	if cursor >= visible {
		return cursor - visible + 1
	}
	return 0
}

func (r *Renderer) countdown(s Surface, sh logic.ShutdownState) {
	const x, y, w, h = 10, 30, W - 20, 66
	s.FillRect(x, y, w, h, ColorOverlayBG)
	outline(s, x, y, w, h, ColorAmber)

	title := "POWER OFF?"
	s.DrawText((W-r.width(title, r.faces.Big))/2, y+4, title, r.faces.Big, ColorAmber)

	secs := CountdownSeconds(sh.Remaining)
	n := fmt.Sprintf("%d", secs)
	s.DrawText((W-r.width(n, r.faces.Big))/2, y+22, n, r.faces.Big, ColorGreen)

	const barX, barY, barW, barH = x + 8, y + 42, w - 16, 7
	outline(s, barX, barY, barW, barH, ColorGreenDim)
	s.FillRect(barX+1, barY+1, ProgressWidth(sh.Remaining, sh.Total, barW-2), barH-2, ColorGreen)

	hint := "any key cancels"
	s.DrawText((W-r.width(hint, r.faces.Small))/2, y+53, hint, r.faces.Small, ColorGreenMid)
}

func (r *Renderer) poweringOff(s Surface) {
	s.Clear(ColorBG)
	msg := "POWERING OFF"
	s.DrawText((W-r.width(msg, r.faces.Big))/2, H/2-6, msg, r.faces.Big, ColorAmber)
}

// CountdownSeconds rounds remaining up to whole seconds.
func CountdownSeconds(remaining time.Duration) int {
	if remaining <= 0 {
		return 0
	}
	return int((remaining + time.Second - 1) / time.Second)
}

// ProgressWidth is the filled width of a bar draining from full to empty.
func ProgressWidth(remaining, total time.Duration, width int) int {
	if total <= 0 || remaining <= 0 {
		return 0
	}
	if remaining >= total {
		return width
	}
	return int(int64(width) * int64(remaining) / int64(total))
}

// TruncateTrack shortens a track name to TrackColumns, ending in "...".
func TruncateTrack(name string) string {
	return runewidth.Truncate(name, TrackColumns, "...")
}
