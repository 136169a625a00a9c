package logic

// StepResult reports what happened during one tick.
type StepResult struct {
	// PowerOff is set on the single tick the shutdown countdown completes.
	PowerOff bool
	// Errors are recovered failures worth logging.
	Errors []error
}

// Machine dispatches one tick of input events through the shutdown
// sequencer and the screen controller and keeps AppState current.
type Machine struct {
	State AppState

	screens  *ScreenController
	shutdown *ShutdownSequencer
	playback Playback

	// consumed marks buttons whose current press cancelled the countdown.
	// Their release is swallowed so Key1/Key2 do not act on it.
	consumed [NumButtons]bool
}

// NewMachine creates a machine starting from state.
func NewMachine(state AppState, screens *ScreenController, shutdown *ShutdownSequencer, playback Playback) *Machine {
	m := &Machine{
		State:    state,
		screens:  screens,
		shutdown: shutdown,
		playback: playback,
	}
	m.State.Playback = playback.State()
	return m
}

// Step processes the events of one tick.
func (m *Machine) Step(events []InputEvent, tick Tick) StepResult {
	var res StepResult
	m.State.Tick = tick

	counting := m.State.Shutdown.Counting()
	forward, done := m.shutdown.Step(&m.State, events, tick)
	if counting && !m.State.Shutdown.Counting() && !done {
		for _, ev := range events {
			if ev.Kind == EventPressed {
				m.consumed[ev.Button] = true
			}
		}
	}

	for _, ev := range forward {
		if !m.claim(ev) {
			continue
		}
		if err := m.screens.Handle(&m.State, ev); err != nil {
			res.Errors = append(res.Errors, err)
		}
	}

	m.playback.Poll()
	m.State.Playback = m.playback.State()

	res.PowerOff = done
	return res
}

// claim reports whether ev should reach the screen controller, dropping the
// release of a press that was spent cancelling the countdown.
func (m *Machine) claim(ev InputEvent) bool {
	if ev.Button < 0 || int(ev.Button) >= NumButtons {
		return true
	}
	switch ev.Kind {
	case EventPressed:
		m.consumed[ev.Button] = false
	case EventReleased:
		if m.consumed[ev.Button] {
			m.consumed[ev.Button] = false
			return false
		}
	}
	return true
}

// SetMetrics replaces the metrics snapshot wholesale.
func (m *Machine) SetMetrics(snap MetricsSnapshot) {
	m.State.Metrics = snap
}

// RefreshPlayback re-reads the player after an out-of-band change such as a re-scan.
func (m *Machine) RefreshPlayback() {
	m.State.Playback = m.playback.State()
}
