package audio

import (
	"fmt"
	"log"
	"time"

	"github.com/fsnotify/fsnotify"
)

// rescanDelay is the quiet period after the last change before re-scanning,
// so a file still being copied is not scanned half-written.
const rescanDelay = time.Second

// Watcher reports changes to the track directory.
// Events are queued by fsnotify and drained by the main loop without blocking.
type Watcher struct {
	fs    *fsnotify.Watcher
	dirty rescanTimer
}

// NewWatcher starts watching dir.
func NewWatcher(dir string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	return &Watcher{fs: fw, dirty: rescanTimer{quiet: rescanDelay}}, nil
}

// Drain consumes pending filesystem events and reports whether a re-scan is due.
func (w *Watcher) Drain(now time.Time) bool {
	for {
		select {
		case ev, ok := <-w.fs.Events:
			if !ok {
				return false
			}
			if relevant(ev) {
				w.dirty.touch(now)
			}
		case err, ok := <-w.fs.Errors:
			if ok {
				log.Printf("audio: watcher: %v", err)
			}
		default:
			return w.dirty.due(now)
		}
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.fs.Close()
}

func relevant(ev fsnotify.Event) bool {
	if ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
		return true
	}
	return IsSupported(ev.Name) && (ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write))
}

// rescanTimer fires once after changes have stopped for quiet.
type rescanTimer struct {
	quiet   time.Duration
	pending bool
	last    time.Time
}

func (r *rescanTimer) touch(now time.Time) {
	r.pending = true
	r.last = now
}

func (r *rescanTimer) due(now time.Time) bool {
	if !r.pending || now.Sub(r.last) < r.quiet {
		return false
	}
	r.pending = false
	return true
}
