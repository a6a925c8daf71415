package tokenhal

import (
	"time"

	"github.com/northvolt/go-tokenhal/pkg/spin"
)

// maxPeriod is the largest auto-reload value of the 16-bit timer.
const maxPeriod = 65535

// Timer runs a callback once after a timeout.
//
// The callback runs on its own goroutine, which stands in for the timer
// interrupt. It should be short.
type Timer struct {
	cfg TimerConfig
	log Logger

	mu  spin.Mutex
	t   *time.Timer
	cb  func()
	gen uint64
}

// Timer defaults used when TimerConfig leaves a field zero.
const (
	defaultTimerClock     = 48000000
	defaultTimerPrescaler = 4000
)

func newTimer(cfg TimerConfig, log Logger) *Timer {
	if cfg.Clock == 0 {
		cfg.Clock = defaultTimerClock
	}
	if cfg.Prescaler == 0 {
		cfg.Prescaler = defaultTimerPrescaler
	}
	return &Timer{cfg: cfg, log: log}
}

// Period returns the auto-reload value for a timeout of ms milliseconds,
// clamped to the 16-bit counter.
func (t *Timer) Period(ms uint16) uint32 {
	counts := uint64(t.cfg.Clock/t.cfg.Prescaler/1000) * uint64(ms)
	if counts == 0 {
		return 0
	}
	period := counts - 1
	if period > maxPeriod {
		t.log.Printf("timer: period %d overflow", period)
		period = maxPeriod
	}
	return uint32(period)
}

// Duration returns the time until the counter reaches period.
func (t *Timer) Duration(period uint32) time.Duration {
	counts := uint64(period) + 1
	return time.Duration(counts * uint64(t.cfg.Prescaler) * uint64(time.Second) / uint64(t.cfg.Clock))
}

// SetTimeout arms the timer to call cb once after ms milliseconds,
// replacing any pending timeout. A zero timeout stops the timer.
func (t *Timer) SetTimeout(cb func(), ms uint16) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stopLocked()
	if ms == 0 {
		return
	}

	t.cb = cb
	t.gen++
	gen := t.gen
	t.t = time.AfterFunc(t.Duration(t.Period(ms)), func() {
		t.fire(gen)
	})
}

// Stop disarms the timer.
func (t *Timer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
}

func (t *Timer) stopLocked() {
	if t.t != nil {
		t.t.Stop()
		t.t = nil
	}
	t.cb = nil
}

func (t *Timer) fire(gen uint64) {
	t.mu.Lock()
	if gen != t.gen || t.t == nil {
		t.mu.Unlock()
		return
	}
	cb := t.cb
	t.t, t.cb = nil, nil
	t.mu.Unlock()

	if cb != nil {
		cb()
	}
}
