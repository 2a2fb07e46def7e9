package async

import (
	"sync"
	"time"
)

// timerEntry is one pending [MockTimerHost] timer. It doubles as that
// timer's [TimerID]. Entries order by (deadline, arrival): the same rule
// [Executor] applies to same-tick work, reused here via [priorityqueue] so
// that Advance fires timers in exactly the order a real host would.
type timerEntry struct {
	deadline int64
	seq      int64
	cb       func()
	cleared  bool
}

func (a *timerEntry) less(b *timerEntry) bool {
	if a.deadline != b.deadline {
		return a.deadline < b.deadline
	}
	return a.seq < b.seq
}

// MockTimerHost is a deterministic, virtually-clocked [TimerHost] for
// tests. Nothing fires on its own: a test drives time forward explicitly
// with Advance, and every timer whose deadline the new time reaches or
// passes fires, in (deadline, arrival) order.
type MockTimerHost struct {
	mu  sync.Mutex
	now int64
	seq int64
	pq  priorityqueue[*timerEntry]
}

// NewMockTimerHost returns a MockTimerHost whose clock starts at zero.
func NewMockTimerHost() *MockTimerHost {
	return &MockTimerHost{}
}

// Now reports the host's current virtual time.
func (h *MockTimerHost) Now() time.Duration {
	h.mu.Lock()
	defer h.mu.Unlock()
	return time.Duration(h.now) * time.Millisecond
}

// Pending reports how many timers have neither fired nor been cleared.
func (h *MockTimerHost) Pending() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	n := 0
	for _, e := range h.pq.head {
		if !e.cleared {
			n++
		}
	}
	for _, e := range h.pq.tail {
		if !e.cleared {
			n++
		}
	}
	return n
}

func (h *MockTimerHost) SetTimeout(cb func(), ms int64) TimerID {
	h.mu.Lock()
	e := &timerEntry{deadline: h.now + ms, seq: h.seq, cb: cb}
	h.seq++
	h.pq.Push(e)
	h.mu.Unlock()
	return e
}

func (h *MockTimerHost) SetTimeout1(cb func(any), ms int64, arg any) TimerID {
	return h.SetTimeout(func() { cb(arg) }, ms)
}

func (h *MockTimerHost) SetImmediate(cb func()) {
	h.SetTimeout(cb, 0)
}

func (h *MockTimerHost) SetImmediate1(cb func(any), arg any) {
	h.SetTimeout1(cb, 0, arg)
}

func (h *MockTimerHost) ClearTimeout(id TimerID) {
	e, ok := id.(*timerEntry)
	if !ok {
		return
	}

	h.mu.Lock()
	e.cleared = true
	h.mu.Unlock()
}

// Advance moves the virtual clock forward by d and fires every timer whose
// deadline is now due, in (deadline, arrival) order, dropping any that were
// cleared in the meantime. A timer's own callback may itself schedule new
// timers; their deadline is relative to the post-advance clock, so one
// with a positive delay is only eligible on a later Advance, while a
// zero-delay one (SetImmediate) is already due and fires in this one.
func (h *MockTimerHost) Advance(d time.Duration) {
	h.mu.Lock()
	h.now += d.Milliseconds()
	target := h.now
	h.mu.Unlock()

	for {
		h.mu.Lock()
		if h.pq.Empty() {
			h.mu.Unlock()
			return
		}

		e := h.pq.Pop()
		if e.deadline > target {
			h.pq.Push(e)
			h.mu.Unlock()
			return
		}
		h.mu.Unlock()

		if !e.cleared {
			e.cb()
		}
	}
}
