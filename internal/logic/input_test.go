package logic

import (
	"testing"
	"time"
)

var t0 = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

const tickStep = 50 * time.Millisecond

// at returns the time of tick i.
func at(i int) time.Time {
	return t0.Add(time.Duration(i) * tickStep)
}

// press returns a sample with only the given buttons pressed.
func press(buttons ...Button) Levels {
	var l Levels
	for _, b := range buttons {
		l[b] = true
	}
	return l
}

func TestNewInputReaderClampsThreshold(t *testing.T) {
	r := NewInputReader(0, 500*time.Millisecond)
	if r.threshold != 1 {
		t.Errorf("expected threshold clamped to 1, got %d", r.threshold)
	}
	for i := 0; i < NumButtons; i++ {
		if r.State(Button(i)).Button != Button(i) {
			t.Errorf("button %d: identity not initialised", i)
		}
	}
}

func TestPressCommitsAfterThreshold(t *testing.T) {
	r := NewInputReader(3, 500*time.Millisecond)

	for i := 0; i < 2; i++ {
		events := r.Process(press(ButtonUp), at(i))
		if len(events) != 0 {
			t.Fatalf("sample %d: expected no events before threshold, got %v", i, events)
		}
		if r.State(ButtonUp).Pressed {
			t.Fatalf("sample %d: should not be pressed yet", i)
		}
	}

	events := r.Process(press(ButtonUp), at(2))
	if len(events) != 1 {
		t.Fatalf("expected 1 event at threshold, got %d", len(events))
	}
	if events[0].Kind != EventPressed || events[0].Button != ButtonUp {
		t.Errorf("expected UP pressed, got %s %s", events[0].Button, events[0].Kind)
	}
	if !events[0].Time.Equal(at(2)) {
		t.Errorf("unexpected timestamp: %v", events[0].Time)
	}

	// Holding produces nothing further
	for i := 3; i < 10; i++ {
		if events := r.Process(press(ButtonUp), at(i)); len(events) != 0 {
			t.Errorf("sample %d: expected no events while held, got %v", i, events)
		}
	}
}

func TestReleaseCarriesHeldDuration(t *testing.T) {
	r := NewInputReader(2, 500*time.Millisecond)
	r.Process(press(ButtonSelect), at(0))
	r.Process(press(ButtonSelect), at(1)) // pressed at tick 1
	r.Process(press(ButtonSelect), at(2))
	r.Process(press(ButtonSelect), at(3))

	if held, ok := r.HeldFor(ButtonSelect, at(3)); !ok || held != 2*tickStep {
		t.Errorf("HeldFor: expected (%v, true), got (%v, %v)", 2*tickStep, held, ok)
	}
	if got := r.State(ButtonSelect).Held; got != 2*tickStep {
		t.Errorf("State.Held: expected %v, got %v", 2*tickStep, got)
	}

	r.Process(Levels{}, at(4))
	events := r.Process(Levels{}, at(5))
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	ev := events[0]
	if ev.Kind != EventReleased || ev.Button != ButtonSelect {
		t.Errorf("expected SELECT released, got %s %s", ev.Button, ev.Kind)
	}
	if ev.Held != 4*tickStep {
		t.Errorf("expected held %v, got %v", 4*tickStep, ev.Held)
	}
	if ev.Combo {
		t.Error("plain release should not be marked as combo")
	}
	if _, ok := r.HeldFor(ButtonSelect, at(5)); ok {
		t.Error("HeldFor should report false after release")
	}
}

func TestSingleSampleGlitchIgnored(t *testing.T) {
	r := NewInputReader(2, 500*time.Millisecond)

	// Released line with one-sample spikes
	samples := []Levels{{}, press(ButtonDown), {}, {}, press(ButtonDown), {}, press(ButtonDown), {}}
	for i, s := range samples {
		if events := r.Process(s, at(i)); len(events) != 0 {
			t.Errorf("sample %d: glitch produced events %v", i, events)
		}
	}
	if r.State(ButtonDown).Pressed {
		t.Error("DOWN should still be released")
	}

	// Pressed line with one-sample drop-outs
	r.Process(press(ButtonDown), at(10))
	r.Process(press(ButtonDown), at(11))
	if !r.State(ButtonDown).Pressed {
		t.Fatal("DOWN should be pressed")
	}
	samples = []Levels{{}, press(ButtonDown), {}, press(ButtonDown)}
	for i, s := range samples {
		if events := r.Process(s, at(12+i)); len(events) != 0 {
			t.Errorf("sample %d: drop-out produced events %v", i, events)
		}
	}
	if !r.State(ButtonDown).Pressed {
		t.Error("DOWN should still be pressed")
	}
}

// TestDebounceExhaustive checks every raw sequence of a fixed length: a logical
// change happens only after threshold consecutive samples at the new level.
func TestDebounceExhaustive(t *testing.T) {
	const n = 10
	for _, threshold := range []int{2, 3} {
		for mask := 0; mask < 1<<n; mask++ {
			r := NewInputReader(threshold, time.Hour)
			raw := make([]bool, n)
			for i := range raw {
				raw[i] = mask&(1<<i) != 0
			}

			prev := false
			for i := 0; i < n; i++ {
				var l Levels
				l[ButtonLeft] = raw[i]
				events := r.Process(l, at(i))
				cur := r.State(ButtonLeft).Pressed

				if cur != prev {
					if len(events) != 1 {
						t.Fatalf("threshold %d mask %b tick %d: expected 1 event on change, got %d", threshold, mask, i, len(events))
					}
					if i+1 < threshold {
						t.Fatalf("threshold %d mask %b: changed at tick %d before threshold", threshold, mask, i)
					}
					for j := i - threshold + 1; j <= i; j++ {
						if raw[j] != cur {
							t.Fatalf("threshold %d mask %b: changed at tick %d without %d stable samples", threshold, mask, i, threshold)
						}
					}
				} else if len(events) != 0 {
					t.Fatalf("threshold %d mask %b tick %d: events without a change: %v", threshold, mask, i, events)
				}
				prev = cur
			}
		}
	}
}

func TestComboFiresOncePerHold(t *testing.T) {
	r := NewInputReader(2, 500*time.Millisecond)
	both := press(ButtonKey1, ButtonKey2)

	fired := 0
	firedAt := -1
	for i := 0; i < 40; i++ {
		for _, ev := range r.Process(both, at(i)) {
			if ev.Kind == EventComboHeld {
				fired++
				firedAt = i
				if ev.Held < 500*time.Millisecond {
					t.Errorf("combo fired after only %v", ev.Held)
				}
			}
		}
	}
	if fired != 1 {
		t.Fatalf("expected combo to fire once, fired %d times", fired)
	}
	// Both keys commit at tick 1, hold window is 10 ticks
	if firedAt != 11 {
		t.Errorf("expected combo at tick 11, got %d", firedAt)
	}
}

func TestComboRearmsAfterRelease(t *testing.T) {
	r := NewInputReader(1, 200*time.Millisecond)
	both := press(ButtonKey1, ButtonKey2)

	count := func(from, to int, l Levels) int {
		n := 0
		for i := from; i < to; i++ {
			for _, ev := range r.Process(l, at(i)) {
				if ev.Kind == EventComboHeld {
					n++
				}
			}
		}
		return n
	}

	if got := count(0, 20, both); got != 1 {
		t.Fatalf("first hold: expected 1 combo, got %d", got)
	}
	// Release only Key2, keep Key1 down
	if got := count(20, 22, press(ButtonKey1)); got != 0 {
		t.Fatalf("partial release: expected 0 combos, got %d", got)
	}
	if got := count(22, 40, both); got != 1 {
		t.Fatalf("second hold: expected 1 combo, got %d", got)
	}
}

func TestComboShorterThanHoldDoesNotFire(t *testing.T) {
	r := NewInputReader(1, 500*time.Millisecond)
	for i := 0; i < 5; i++ {
		for _, ev := range r.Process(press(ButtonKey1, ButtonKey2), at(i)) {
			if ev.Kind == EventComboHeld {
				t.Fatalf("combo fired after %d ticks", i)
			}
		}
	}
	events := r.Process(Levels{}, at(5))
	if len(events) != 2 {
		t.Fatalf("expected 2 releases, got %d", len(events))
	}
	for _, ev := range events {
		if ev.Combo {
			t.Errorf("%s release should not be marked combo", ev.Button)
		}
	}
}

func TestComboMarksReleases(t *testing.T) {
	r := NewInputReader(1, 100*time.Millisecond)
	for i := 0; i < 5; i++ {
		r.Process(press(ButtonKey1, ButtonKey2), at(i))
	}
	events := r.Process(Levels{}, at(5))
	if len(events) != 2 {
		t.Fatalf("expected 2 releases, got %d", len(events))
	}
	for _, ev := range events {
		if ev.Kind != EventReleased || !ev.Combo {
			t.Errorf("expected combo release, got %+v", ev)
		}
	}

	// The next plain press is not affected
	r.Process(press(ButtonKey1), at(6))
	events = r.Process(Levels{}, at(7))
	if len(events) != 1 || events[0].Combo {
		t.Errorf("expected plain release after combo, got %+v", events)
	}
}

func TestComboStartsFromSecondKey(t *testing.T) {
	r := NewInputReader(1, 300*time.Millisecond)
	// Key1 held for a long time first
	for i := 0; i < 20; i++ {
		r.Process(press(ButtonKey1), at(i))
	}
	for i := 20; i < 40; i++ {
		for _, ev := range r.Process(press(ButtonKey1, ButtonKey2), at(i)) {
			if ev.Kind == EventComboHeld && i != 26 {
				t.Errorf("combo fired at tick %d, expected 26", i)
			}
		}
	}
}

func TestMultipleButtonsSameTick(t *testing.T) {
	r := NewInputReader(1, time.Second)
	events := r.Process(press(ButtonKey3, ButtonUp), at(0))
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Button != ButtonUp || events[1].Button != ButtonKey3 {
		t.Errorf("expected events in button order, got %s then %s", events[0].Button, events[1].Button)
	}
}

func TestButtonString(t *testing.T) {
	if ButtonSelect.String() != "SELECT" {
		t.Errorf("unexpected name %q", ButtonSelect.String())
	}
	if Button(42).String() != "UNKNOWN" {
		t.Errorf("unexpected name %q", Button(42).String())
	}
	if _, ok := NewInputReader(1, time.Second).HeldFor(Button(-1), t0); ok {
		t.Error("HeldFor on invalid button should report false")
	}
}
