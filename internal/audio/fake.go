package audio

// FakeTransport records transport calls for test assertions.
type FakeTransport struct {
	// Played contains every path passed to Play, in order.
	Played []string

	// Calls contains the name of every call, in order.
	Calls []string

	// Paused reports whether the current track is paused.
	Paused bool

	// PlayError, if set, will be returned by Play.
	PlayError error

	// Closed tracks if Close was called.
	Closed bool

	ended bool
}

// NewFakeTransport creates a FakeTransport for testing.
func NewFakeTransport() *FakeTransport {
	return &FakeTransport{}
}

// Play records the path.
func (f *FakeTransport) Play(path string) error {
	f.Calls = append(f.Calls, "play")
	f.Played = append(f.Played, path)
	f.Paused = false
	// Like the speaker transport, a track that cannot start reports as ended
	f.ended = f.PlayError != nil
	return f.PlayError
}

// Pause records the call.
func (f *FakeTransport) Pause() {
	f.Calls = append(f.Calls, "pause")
	f.Paused = true
}

// Resume records the call.
func (f *FakeTransport) Resume() {
	f.Calls = append(f.Calls, "resume")
	f.Paused = false
}

// Stop records the call.
func (f *FakeTransport) Stop() {
	f.Calls = append(f.Calls, "stop")
	f.Paused = false
	f.ended = false
}

// Finish simulates the current track reaching its end.
func (f *FakeTransport) Finish() {
	f.ended = true
}

// Ended reports and clears the simulated end-of-track flag.
func (f *FakeTransport) Ended() bool {
	e := f.ended
	f.ended = false
	return e
}

// Close marks the transport as closed.
func (f *FakeTransport) Close() error {
	f.Calls = append(f.Calls, "close")
	f.Closed = true
	return nil
}
