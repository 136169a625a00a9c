package logic

import "time"

// Scheduler numbers main-loop iterations and measures the time between them.
// The loop feeds it wall-clock times; tests feed it simulated ones.
type Scheduler struct {
	started bool
	last    time.Time
	index   uint64
}

// NewScheduler creates a scheduler whose first Advance is tick 0.
func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// Advance records a tick at now. The first tick has index 0 and no elapsed time.
// Elapsed is never negative, so a clock step backwards cannot rewind a countdown.
func (s *Scheduler) Advance(now time.Time) Tick {
	if !s.started {
		s.started = true
		s.last = now
		return Tick{Index: 0, Now: now}
	}
	s.index++
	elapsed := now.Sub(s.last)
	if elapsed < 0 {
		elapsed = 0
	}
	s.last = now
	return Tick{Index: s.index, Now: now, Elapsed: elapsed}
}
