package async

import "time"

// A TimerID is an opaque handle returned by [TimerHost.SetTimeout] and
// [TimerHost.SetTimeout1], used only to call ClearTimeout. Whoever receives
// one must clear it exactly once if the timeout is to be canceled before it
// fires.
type TimerID interface{}

// TimerHost is the one primitive this package needs from its embedding
// host: schedule a callback to run after a delay, schedule one to run on
// the next tick, and cancel a pending one. Every suspension this package
// offers -- [Wait], [Yield], [CancelableWait], and everything built on
// them -- bottoms out in calls to a TimerHost.
//
// A TimerHost implementation may call its callbacks from any goroutine; it
// does not need to know about this package's single-threaded scheduling --
// every callback reaches user code through an [Executor], which serializes
// it regardless of which goroutine fired it.
type TimerHost interface {
	SetTimeout(cb func(), ms int64) TimerID
	SetTimeout1(cb func(any), ms int64, arg any) TimerID
	SetImmediate(cb func())
	SetImmediate1(cb func(any), arg any)

	// ClearTimeout cancels a pending id. It is idempotent: clearing an
	// already-fired or already-cleared id is a no-op.
	ClearTimeout(id TimerID)
}

// RealTimerHost is the default [TimerHost], backed by the standard
// library's [time.AfterFunc]. SetImmediate schedules with a zero delay,
// since the host has no separate microtask queue to fall back to.
type RealTimerHost struct{}

// NewRealTimerHost returns a [TimerHost] backed by real wall-clock timers.
func NewRealTimerHost() *RealTimerHost { return &RealTimerHost{} }

func (*RealTimerHost) SetTimeout(cb func(), ms int64) TimerID {
	return time.AfterFunc(time.Duration(ms)*time.Millisecond, cb)
}

func (h *RealTimerHost) SetTimeout1(cb func(any), ms int64, arg any) TimerID {
	return h.SetTimeout(func() { cb(arg) }, ms)
}

func (h *RealTimerHost) SetImmediate(cb func()) {
	h.SetTimeout(cb, 0)
}

func (h *RealTimerHost) SetImmediate1(cb func(any), arg any) {
	h.SetTimeout1(cb, 0, arg)
}

func (*RealTimerHost) ClearTimeout(id TimerID) {
	if t, ok := id.(*time.Timer); ok {
		t.Stop()
	}
}
