package logic

import "fmt"

// Playback is the audio player as seen by the screen controller.
// Invalid requests (out-of-range index, pause while stopped) are no-ops.
type Playback interface {
	State() PlaybackState
	MoveCursor(delta int)
	Play(index int)
	TogglePlayPause()
	Next()
	Stop()
	// Poll consumes the transport's end-of-track flag, advancing if set.
	Poll()
}

// ScreenController is the navigation state machine over the four screens.
// It owns scroll and cursor movement and dispatches playback intents.
type ScreenController struct {
	playback Playback
	load     LineLoader
}

// NewScreenController creates a controller. load is used for inventory reloads.
func NewScreenController(playback Playback, load LineLoader) *ScreenController {
	return &ScreenController{playback: playback, load: load}
}

// Handle applies one event to state. The only error is a failed inventory
// reload, in which case the previously cached lines are kept.
func (c *ScreenController) Handle(state *AppState, ev InputEvent) error {
	switch ev.Kind {
	case EventPressed:
		switch ev.Button {
		case ButtonLeft:
			state.Screen = state.Screen.Prev()
			return nil
		case ButtonRight:
			state.Screen = state.Screen.Next()
			return nil
		}
		return c.handlePress(state, ev.Button)
	case EventReleased:
		c.handleRelease(state, ev)
	}
	return nil
}

func (c *ScreenController) handlePress(state *AppState, b Button) error {
	switch state.Screen {
	case ScreenInv:
		switch b {
		case ButtonUp:
			state.Inv.Scroll(-1)
		case ButtonDown:
			state.Inv.Scroll(1)
		case ButtonSelect:
			return c.reload(state)
		}
	case ScreenRadio:
		switch b {
		case ButtonUp:
			c.playback.MoveCursor(-1)
		case ButtonDown:
			c.playback.MoveCursor(1)
		case ButtonSelect:
			if cur := c.playback.State().Cursor; cur >= 0 {
				c.playback.Play(cur)
			}
		case ButtonKey3:
			c.playback.Stop()
		}
	}
	return nil
}

// handleRelease runs the Key1/Key2 transport actions. They act on release so
// that the shutdown chord never toggles or skips playback.
func (c *ScreenController) handleRelease(state *AppState, ev InputEvent) {
	if state.Screen != ScreenRadio || ev.Combo {
		return
	}
	switch ev.Button {
	case ButtonKey1:
		c.playback.TogglePlayPause()
	case ButtonKey2:
		c.playback.Next()
	}
}

func (c *ScreenController) reload(state *AppState) error {
	if c.load == nil {
		return nil
	}
	lines, err := c.load(state.Inv.Path)
	if err != nil {
		return fmt.Errorf("reload %s: %w", state.Inv.Path, err)
	}
	state.Inv.Replace(lines)
	return nil
}
