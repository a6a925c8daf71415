package touch

import "github.com/northvolt/go-tokenhal/pkg/spin"

// Result holds the last published event.
//
// It is written by the poll loop and read by the application from another
// context. Events are not queued: a new event replaces an unconsumed one.
type Result struct {
	w spin.Word
}

// Set publishes ev.
func (r *Result) Set(ev Event) {
	for {
		old := r.w.Load()
		if spin.CompareAndSwap(&r.w, old, uint32(ev)) {
			return
		}
	}
}

// Get returns the published event without consuming it.
func (r *Result) Get() Event {
	return Event(r.w.Load())
}

// Take consumes the published event.
func (r *Result) Take() Event {
	for {
		old := r.w.Load()
		if spin.CompareAndSwap(&r.w, old, uint32(EventNone)) {
			return Event(old)
		}
	}
}
