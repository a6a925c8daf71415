package spin

import (
	"sync"
	"sync/atomic"
	"testing"
)

// flakyMonitor loses exclusivity on the first fail stores.
type flakyMonitor struct {
	fail   int
	stores int
	loads  int
}

func (m *flakyMonitor) LoadExclusive(w *Word) Reservation {
	m.loads++
	return Native.LoadExclusive(w)
}

func (m *flakyMonitor) StoreExclusive(r Reservation, v uint32) bool {
	m.stores++
	if m.fail > 0 {
		m.fail--
		return false
	}
	return Native.StoreExclusive(r, v)
}

func (m *flakyMonitor) Barrier() {}

func TestCompareAndSwap(t *testing.T) {
	testCases := []struct {
		name     string
		initial  uint32
		expected uint32
		update   uint32
		ok       bool
		want     uint32
	}{
		{"match", 0, 0, 7, true, 7},
		{"mismatch", 3, 0, 7, false, 3},
		{"same", 5, 5, 5, true, 5},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var w Word
			w.v.Store(tc.initial)
			if ok := CompareAndSwap(&w, tc.expected, tc.update); ok != tc.ok {
				t.Errorf("got %v want %v", ok, tc.ok)
			}
			if got := w.Load(); got != tc.want {
				t.Errorf("got %d want %d", got, tc.want)
			}
		})
	}
}

func TestCompareAndSwapRetriesLostExclusivity(t *testing.T) {
	m := &flakyMonitor{fail: 3}
	s := New(m)

	var w Word
	if !s.CompareAndSwap(&w, 0, 1) {
		t.Fatal("contention reported as failure")
	}
	if w.Load() != 1 {
		t.Errorf("got %d want 1", w.Load())
	}
	if m.loads != 4 || m.stores != 4 {
		t.Errorf("got %d loads %d stores, want 4 and 4", m.loads, m.stores)
	}
}

func TestCompareAndSwapMismatchDoesNotStore(t *testing.T) {
	m := &flakyMonitor{}
	s := New(m)

	var w Word
	w.v.Store(9)
	if s.CompareAndSwap(&w, 1, 2) {
		t.Fatal("mismatch succeeded")
	}
	if m.stores != 0 {
		t.Errorf("got %d stores want 0", m.stores)
	}
}

func TestCompareAndSwapRace(t *testing.T) {
	const racers = 64

	var (
		w    Word
		wins atomic.Int32
		wg   sync.WaitGroup
	)
	start := make(chan struct{})
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			if CompareAndSwap(&w, 0, uint32(i+1)) {
				wins.Add(1)
			}
		}(i)
	}
	close(start)
	wg.Wait()

	if wins.Load() != 1 {
		t.Errorf("got %d winners want 1", wins.Load())
	}
	if w.Load() == 0 {
		t.Error("word was never updated")
	}
}

func TestCompareAndSwapCounter(t *testing.T) {
	const (
		workers = 8
		rounds  = 1000
	)

	var (
		w  Word
		wg sync.WaitGroup
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for n := 0; n < rounds; n++ {
				for {
					v := w.Load()
					if CompareAndSwap(&w, v, v+1) {
						break
					}
				}
			}
		}()
	}
	wg.Wait()

	if got := w.Load(); got != workers*rounds {
		t.Errorf("got %d want %d", got, workers*rounds)
	}
}

func TestLockNonBlocking(t *testing.T) {
	var w Word
	if !Lock(&w, false) {
		t.Fatal("lock on free word failed")
	}
	if Lock(&w, false) {
		t.Fatal("non-blocking lock on held word succeeded")
	}
	Unlock(&w)
	if w.Load() != Free {
		t.Errorf("got %d want free", w.Load())
	}
	if !Lock(&w, false) {
		t.Fatal("lock after unlock failed")
	}
}

func TestLockRetriesLostExclusivity(t *testing.T) {
	m := &flakyMonitor{fail: 2}
	s := New(m)

	var w Word
	if !s.Lock(&w, false) {
		t.Fatal("contention reported as failure")
	}
	if w.Load() != Held {
		t.Errorf("got %d want held", w.Load())
	}
	if m.stores != 3 {
		t.Errorf("got %d stores want 3", m.stores)
	}
}

func TestUnlockWithoutOwnership(t *testing.T) {
	var w Word
	Lock(&w, true)

	done := make(chan struct{})
	go func() {
		Unlock(&w)
		close(done)
	}()
	<-done

	if w.Load() != Free {
		t.Errorf("got %d want free", w.Load())
	}
}

func TestMutualExclusion(t *testing.T) {
	const (
		workers = 8
		rounds  = 500
	)

	var (
		mu      Mutex
		inside  atomic.Int32
		counter int
		wg      sync.WaitGroup
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for n := 0; n < rounds; n++ {
				mu.Lock()
				if inside.Add(1) != 1 {
					t.Error("two holders inside the critical section")
				}
				counter++
				inside.Add(-1)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if counter != workers*rounds {
		t.Errorf("got %d want %d", counter, workers*rounds)
	}
}

func TestMutexTryLock(t *testing.T) {
	var mu Mutex
	if !mu.TryLock() {
		t.Fatal("TryLock on free mutex failed")
	}
	if mu.TryLock() {
		t.Fatal("TryLock on held mutex succeeded")
	}
	mu.Unlock()
}
