package logic

// fakePlayback records the intents dispatched to it and keeps a minimal
// cursor/now-playing model so controller tests can assert on state.
type fakePlayback struct {
	state PlaybackState
	calls []string
	ended bool
}

func newFakePlayback(tracks ...string) *fakePlayback {
	cursor := -1
	if len(tracks) > 0 {
		cursor = 0
	}
	return &fakePlayback{state: PlaybackState{
		Tracks:     tracks,
		Cursor:     cursor,
		NowPlaying: -1,
		Status:     StatusStopped,
	}}
}

func (f *fakePlayback) State() PlaybackState { return f.state }

func (f *fakePlayback) MoveCursor(delta int) {
	f.calls = append(f.calls, "cursor")
	if f.state.Cursor < 0 {
		return
	}
	f.state.Cursor = min(max(f.state.Cursor+delta, 0), len(f.state.Tracks)-1)
}

func (f *fakePlayback) Play(index int) {
	f.calls = append(f.calls, "play")
	f.state.NowPlaying = index
	f.state.Status = StatusPlaying
}

func (f *fakePlayback) TogglePlayPause() {
	f.calls = append(f.calls, "toggle")
	switch f.state.Status {
	case StatusPlaying:
		f.state.Status = StatusPaused
	case StatusPaused:
		f.state.Status = StatusPlaying
	}
}

func (f *fakePlayback) Next() {
	f.calls = append(f.calls, "next")
	if f.state.NowPlaying < 0 {
		return
	}
	f.Play((f.state.NowPlaying + 1) % len(f.state.Tracks))
}

func (f *fakePlayback) Stop() {
	f.calls = append(f.calls, "stop")
	f.state.NowPlaying = -1
	f.state.Status = StatusStopped
}

func (f *fakePlayback) Poll() {
	if f.ended {
		f.ended = false
		f.Next()
	}
}
