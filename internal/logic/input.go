package logic

import "time"

// InputReader debounces raw input samples into discrete events.
type InputReader struct {
	threshold  int
	comboHold  time.Duration
	buttons    [NumButtons]ButtonState
	comboFired bool
}

// NewInputReader creates a reader that commits a level change after threshold
// consecutive identical raw samples and fires ComboHeld once Key1 and Key2 have
// been co-held for comboHold.
func NewInputReader(threshold int, comboHold time.Duration) *InputReader {
	if threshold < 1 {
		threshold = 1
	}
	r := &InputReader{
		threshold: threshold,
		comboHold: comboHold,
	}
	for i := range r.buttons {
		r.buttons[i].Button = Button(i)
	}
	return r
}

// Process takes a new raw sample and returns the events committed on this tick.
// Button events come first in Button order, followed by ComboHeld if it fired.
func (r *InputReader) Process(levels Levels, now time.Time) []InputEvent {
	var events []InputEvent
	for i := range r.buttons {
		if ev, ok := r.processButton(&r.buttons[i], levels[i], now); ok {
			events = append(events, ev)
		}
	}
	if ev, ok := r.processCombo(now); ok {
		events = append(events, ev)
	}
	return events
}

// processButton advances the debounce counter for one input.
func (r *InputReader) processButton(b *ButtonState, raw bool, now time.Time) (InputEvent, bool) {
	b.Raw = raw
	if b.Pressed {
		b.Held = now.Sub(b.Since)
	}

	if raw == b.Pressed {
		// Agrees with the stable level, any pending change was a bounce
		b.Count = 0
		return InputEvent{}, false
	}

	b.Count++
	if b.Count < r.threshold {
		return InputEvent{}, false
	}
	b.Count = 0

	if raw {
		b.Pressed = true
		b.Since = now
		b.Held = 0
		b.ComboUsed = false
		return InputEvent{Kind: EventPressed, Button: b.Button, Time: now}, true
	}

	ev := InputEvent{
		Kind:   EventReleased,
		Button: b.Button,
		Held:   now.Sub(b.Since),
		Combo:  b.ComboUsed,
		Time:   now,
	}
	b.Pressed = false
	b.Since = now
	b.Held = 0
	b.ComboUsed = false
	return ev, true
}

// processCombo fires ComboHeld once per continuous co-hold of Key1 and Key2.
func (r *InputReader) processCombo(now time.Time) (InputEvent, bool) {
	k1 := &r.buttons[ButtonKey1]
	k2 := &r.buttons[ButtonKey2]
	if !k1.Pressed || !k2.Pressed {
		r.comboFired = false
		return InputEvent{}, false
	}
	if r.comboFired {
		return InputEvent{}, false
	}

	since := k1.Since
	if k2.Since.After(since) {
		since = k2.Since
	}
	held := now.Sub(since)
	if held < r.comboHold {
		return InputEvent{}, false
	}

	r.comboFired = true
	k1.ComboUsed = true
	k2.ComboUsed = true
	return InputEvent{Kind: EventComboHeld, Held: held, Time: now}, true
}

// HeldFor returns how long b has been logically pressed.
// Returns false if b is not currently pressed.
func (r *InputReader) HeldFor(b Button, now time.Time) (time.Duration, bool) {
	if b < 0 || int(b) >= NumButtons {
		return 0, false
	}
	s := r.buttons[b]
	if !s.Pressed {
		return 0, false
	}
	return now.Sub(s.Since), true
}

// State returns a copy of the debounce state of b.
func (r *InputReader) State(b Button) ButtonState {
	if b < 0 || int(b) >= NumButtons {
		return ButtonState{Button: b}
	}
	return r.buttons[b]
}
