package spin

import (
	"runtime"
	"sync/atomic"
)

// Word values.
const (
	Free uint32 = 0
	Held uint32 = 1
)

// Word is a shared 32 bit memory location.
//
// The zero value is a free lock.
type Word struct {
	v atomic.Uint32
}

// Load returns the current value of w.
func (w *Word) Load() uint32 {
	return w.v.Load()
}

// Reservation is an open exclusive access to a word.
type Reservation struct {
	w    *Word
	seen uint32
}

// Value returns the value observed by the exclusive load.
func (r Reservation) Value() uint32 {
	return r.seen
}

// Monitor is the exclusive load/store capability of the platform.
type Monitor interface {
	// LoadExclusive reads w and opens a reservation on it.
	LoadExclusive(w *Word) Reservation
	// StoreExclusive writes v if the reservation is still valid. It returns
	// false when exclusivity was lost, in which case memory is unchanged.
	StoreExclusive(r Reservation, v uint32) bool
	// Barrier completes all outstanding memory accesses.
	Barrier()
}

type nativeMonitor struct{}

func (nativeMonitor) LoadExclusive(w *Word) Reservation {
	return Reservation{w, w.v.Load()}
}

// StoreExclusive fails if any agent changed the word since the load. A write
// of the same value in between goes unnoticed, unlike a hardware monitor.
func (nativeMonitor) StoreExclusive(r Reservation, v uint32) bool {
	return r.w.v.CompareAndSwap(r.seen, v)
}

// Barrier is empty: sync/atomic operations are sequentially consistent.
func (nativeMonitor) Barrier() {}

// Native is the monitor backed by sync/atomic.
var Native Monitor = nativeMonitor{}

// Sync implements the primitives on top of a monitor.
type Sync struct {
	m Monitor
}

// New returns primitives using m. A nil monitor selects Native.
func New(m Monitor) *Sync {
	if m == nil {
		m = Native
	}
	return &Sync{m}
}

// CompareAndSwap stores update into w if w holds expected.
//
// It returns false only on a value mismatch, in which case w is not written.
// A store that loses exclusivity is retried from the load.
func (s *Sync) CompareAndSwap(w *Word, expected, update uint32) bool {
	for {
		r := s.m.LoadExclusive(w)
		if r.Value() != expected {
			return false
		}
		if s.m.StoreExclusive(r, update) {
			break
		}
	}
	s.m.Barrier()
	return true
}

// Lock acquires the spinlock in w.
//
// When blocking is false and the lock is observed held, Lock returns false
// without spinning.
func (s *Sync) Lock(w *Word, blocking bool) bool {
	for {
		r := s.m.LoadExclusive(w)
		for r.Value() != Free {
			if !blocking {
				return false
			}
			runtime.Gosched()
			r = s.m.LoadExclusive(w)
		}
		if s.m.StoreExclusive(r, Held) {
			break
		}
	}
	s.m.Barrier()
	return true
}

// Unlock releases the spinlock in w.
//
// The caller is not checked to be the holder.
func (s *Sync) Unlock(w *Word) {
	s.m.Barrier()
	w.v.Store(Free)
}

var native = New(Native)

// CompareAndSwap runs Sync.CompareAndSwap on the native monitor.
func CompareAndSwap(w *Word, expected, update uint32) bool {
	return native.CompareAndSwap(w, expected, update)
}

// Lock runs Sync.Lock on the native monitor.
func Lock(w *Word, blocking bool) bool {
	return native.Lock(w, blocking)
}

// Unlock runs Sync.Unlock on the native monitor.
func Unlock(w *Word) {
	native.Unlock(w)
}

// Mutex is a spinlock usable as a sync.Locker.
//
// It is not reentrant.
type Mutex struct {
	w Word
}

func (m *Mutex) Lock() {
	Lock(&m.w, true)
}

func (m *Mutex) TryLock() bool {
	return Lock(&m.w, false)
}

func (m *Mutex) Unlock() {
	Unlock(&m.w)
}
