package async

import "sync/atomic"

// Strand is one logical thread of execution: a body function running on its
// own goroutine, cooperatively suspended and resumed through exactly two
// channels. Only one strand belonging to a given [Executor] ever runs user
// code at a time -- not because of a lock held across that code, but
// because every asynchronous resume is routed through the Executor's queue,
// and the queue dispatches one entry at a time.
//
//   - ctl is buffered with capacity one. It carries a resume value from
//     whichever goroutine calls deliver into park's receive.
//   - yield is the acknowledgement that park has taken control back, or
//     that the strand's body has returned: deliver and start both block on
//     it so the goroutine that resumed the strand does not race ahead of
//     it.
//
// inSetup is true only while the body is inside a [SetupFunc] passed to
// [Capability.Await]. A setup that calls its resume callback synchronously,
// before returning, does so on the strand's own goroutine: deliver must not
// wait on yield in that case, since nothing has parked to send it, and
// ctl's buffer absorbs the value until park reaches its receive a few
// frames up the same stack. It is an atomic.Bool rather than a bare bool
// because a [TimerHost] (or any other setup source) may call the resume
// callback from a goroutine of its own choosing, well after the strand that
// registered it has moved on to setting up its next await.
type Strand struct {
	exec *Executor
	cap  Capability

	ctl   chan AwaitResult
	yield chan struct{}

	inSetup  atomic.Bool
	finished bool
	panics   panicstack
}

func newStrand(exec *Executor) *Strand {
	return &Strand{
		exec:  exec,
		cap:   exec.root,
		ctl:   make(chan AwaitResult, 1),
		yield: make(chan struct{}),
	}
}

// Cap returns the Capability the strand currently awaits and cancels
// through. A nested scope such as [Cancelable] swaps it for the duration of
// its callback and restores it on return; see withCap.
func (s *Strand) Cap() Capability { return s.cap }

func (s *Strand) withCap(c Capability, f func()) {
	prev := s.cap
	s.cap = c
	defer func() { s.cap = prev }()
	f()
}

// park blocks until a delivery for wid arrives on ctl, then returns it. If
// that delivery is already sitting buffered in ctl -- the synchronous-setup
// case -- park takes it without publishing to yield, since no deliver call
// is waiting on it.
func (s *Strand) park(wid Wid) AwaitResult {
	select {
	case r := <-s.ctl:
		return r
	default:
	}

	s.yield <- struct{}{}
	return <-s.ctl
}

// deliver hands r to whichever park call is waiting for it, or buffers it
// for the park call about to happen a few frames up the strand's own call
// stack. Callers outside a synchronous setup must reach deliver only
// through their owning [Executor]'s queue (see [Executor.schedule]), which
// is what bounds the whole package to one running strand at a time.
func (s *Strand) deliver(r AwaitResult) {
	s.ctl <- r
	if s.inSetup.Load() {
		return
	}

	<-s.yield
	s.repanicIfFinished()
}

// start runs body on a new goroutine and blocks until it either parks for
// the first time or returns, mirroring deliver's handoff so the Executor's
// queue can dispatch a freshly spawned strand exactly like a resume.
func (s *Strand) start(body func(s *Strand)) {
	go func() {
		s.panics.Try(func() {
			body(s)
		})
		s.finished = true
		s.yield <- struct{}{}
	}()

	<-s.yield
	s.repanicIfFinished()
}

// repanicIfFinished re-raises a root strand's captured panic on the calling
// goroutine -- the Executor's Run loop, for every path except a strand that
// panics before its first park -- so that an unrecovered panic in spawned
// code surfaces as an unrecovered panic in Run, never as a silently
// swallowed goroutine crash.
func (s *Strand) repanicIfFinished() {
	if s.finished && len(s.panics) != 0 {
		s.panics.Repanic()
	}
}
