package logic

import "time"

// ShutdownSequencer runs the cancelable power-off countdown.
// While counting it takes priority over screen dispatch.
type ShutdownSequencer struct {
	duration time.Duration
}

// NewShutdownSequencer creates a sequencer with the given countdown length.
func NewShutdownSequencer(duration time.Duration) *ShutdownSequencer {
	return &ShutdownSequencer{duration: duration}
}

// Step applies this tick's events and elapsed time to state.
// It returns the events that should still reach the screen controller and
// whether the countdown completed on this tick. Completion is reported once.
func (s *ShutdownSequencer) Step(state *AppState, events []InputEvent, tick Tick) ([]InputEvent, bool) {
	sh := &state.Shutdown
	switch sh.Phase {
	case ShutdownDone:
		return nil, false

	case ShutdownCounting:
		for _, ev := range events {
			if ev.Kind == EventPressed {
				state.Screen = sh.PrevScreen
				*sh = ShutdownState{Phase: ShutdownInactive}
				return nil, false
			}
		}
		if tick.Elapsed > 0 {
			sh.Remaining -= tick.Elapsed
		}
		if sh.Remaining <= 0 {
			sh.Remaining = 0
			sh.Phase = ShutdownDone
			return nil, true
		}
		return nil, false

	default:
		for _, ev := range events {
			if ev.Kind == EventComboHeld {
				*sh = ShutdownState{
					Phase:      ShutdownCounting,
					Start:      tick.Now,
					Remaining:  s.duration,
					Total:      s.duration,
					PrevScreen: state.Screen,
				}
				// Events sharing the tick with the combo belong to the chord
				return nil, false
			}
		}
		return events, false
	}
}
