package audio

// NullTransport is used when no audio output is available.
// Every operation succeeds and nothing is heard.
type NullTransport struct{}

func (NullTransport) Play(string) error { return nil }
func (NullTransport) Pause()            {}
func (NullTransport) Resume()           {}
func (NullTransport) Stop()             {}
func (NullTransport) Ended() bool       { return false }
func (NullTransport) Close() error      { return nil }
