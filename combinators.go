package async

import (
	"errors"
	"fmt"
	"runtime/debug"
)

// Wait suspends for secs seconds, picking a strategy by duration: long
// waits are worth the bookkeeping a cancelable timer needs, short ones
// are not.
func Wait(s *Strand, secs float64) error {
	switch {
	case secs > 0.2:
		return CancelableWait(s, secs)
	case secs <= 0:
		return Yield(s, 0)
	default:
		return Yield(s, secs)
	}
}

// Yield suspends for secs seconds (0 means "next tick") using a plain,
// non-cancelable timeout. Canceling the enclosing scope while a Yield is
// pending still delivers [ErrCancel] to it -- only CancelableWait owns a
// timer id worth clearing.
func Yield(s *Strand, secs float64) error {
	ms := int64(secs * 1000)

	return Await0(s, func(resume func()) {
		host := s.exec.timerHost
		if ms <= 0 {
			host.SetImmediate(resume)
			return
		}
		host.SetTimeout(resume, ms)
	})
}

// CancelableWait suspends for secs seconds, clearing its underlying host
// timer on every exit path -- normal expiry, cancellation, or a panic
// propagating past it -- so that no timer outlives the call. The timer id,
// handed back synchronously by [TimerHost.SetTimeout], is captured inside
// setup, before the strand ever suspends.
func CancelableWait(s *Strand, secs float64) error {
	ms := int64(secs * 1000)

	var timerID TimerID
	defer func() {
		s.exec.timerHost.ClearTimeout(timerID)
	}()

	r := AwaitX(s, 1, func(resume func(AwaitResult)) {
		timerID = s.exec.timerHost.SetTimeout(func() {
			resume(AwaitResult{})
		}, ms)
	})

	return r.Err
}

// Cancelable runs action under a fresh cancellation scope: any [Cancel]
// call made with action's strand while action is on the stack targets only
// the awaits action (or anything it forks) opens, never an enclosing
// scope's.
func Cancelable[T any](s *Strand, action func(s *Strand) (T, error)) (T, error) {
	h := newCancelableHandler(s.Cap())

	var value T
	var err error
	s.withCap(h, func() {
		value, err = action(s)
	})

	return value, err
}

// Cancel cancels exactly the given targets, whichever scope registered
// them, or every await currently live in s's current scope if no targets
// are given.
func Cancel(s *Strand, targets ...Wid) {
	if len(targets) == 0 {
		s.Cap().Cancel(nil)
		return
	}
	s.Cap().Cancel(targets)
}

// Exit suspends the calling strand forever. There is no wrapper around
// this call that can resume it; code after Exit never runs.
func Exit(s *Strand) {
	s.Cap().Await(s, func(func(AwaitResult)) {}, WidExit)
}

// OnCancel runs action and, if it fails with [ErrCancel], additionally
// runs h before returning action's error unchanged.
func OnCancel(s *Strand, h func(), action func(s *Strand) error) error {
	err := action(s)
	if IsCancel(err) {
		h()
	}
	return err
}

// forkPanicError is what a panicking action under [fork] turns into: an
// ordinary error carrying the recovered value and a stack trace, so it
// flows through the same paths -- [Fork]'s log line, an [InterleavedX]
// [Result], a [FirstOf] race outcome -- as any error the action could
// have returned instead.
type forkPanicError struct {
	value any
	stack []byte
}

func (e *forkPanicError) Error() string {
	return fmt.Sprintf("panic: %v\n\n%s", e.value, e.stack)
}

// recoverAction wraps action so that a panic it raises is recovered and
// reported as a [forkPanicError] return instead of propagating out of the
// strand's own goroutine -- where it would otherwise surface as an
// unrecovered panic on whatever goroutine happens to be driving that
// strand's current leg, per [Strand.repanicIfFinished]. Every [fork]
// caller applies this so that no forked strand's panic can ever escape
// its own isolated collector.
func recoverAction[T any](action func(s *Strand) (T, error)) func(s *Strand) (T, error) {
	return func(s *Strand) (v T, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = &forkPanicError{value: r, stack: debug.Stack()}
			}
		}()
		return action(s)
	}
}

// recoverAction0 is [recoverAction] for an action with no value to return,
// [Fork]'s own shape.
func recoverAction0(action func(s *Strand) error) func(s *Strand) error {
	return func(s *Strand) (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = &forkPanicError{value: r, stack: debug.Stack()}
			}
		}()
		return action(s)
	}
}

// fork starts child running body on a new goroutine, sharing cap as its
// initial [Capability], and blocks until it parks for the first time or
// finishes -- the same handoff [Strand.start] gives any dispatch. Calling
// it inline, rather than through the Executor's queue, is what lets a
// child's first await register under cap before the caller's own next
// statement runs; see [Fork] and the package's cancel-scoping tests for why
// that ordering matters.
func fork(cap Capability, exec *Executor, body func(child *Strand)) *Strand {
	child := newStrand(exec)
	child.cap = cap
	child.start(body)
	return child
}

// Fork splits off action as an independent, fire-and-forget strand sharing
// the calling strand's current cancellation scope, then returns. A
// canceled action is expected, not logged; any other error -- including a
// panic action raises, recovered by [recoverAction0] -- is logged and the
// forked strand otherwise vanishes without disturbing its spawner.
func Fork(s *Strand, action func(s *Strand) error) {
	action = recoverAction0(action)
	fork(s.Cap(), s.exec, func(child *Strand) {
		if err := action(child); err != nil && !IsCancel(err) {
			Logger.Error("async: forked strand failed", "error", err)
		}
	})
}

// Result is one strand's outcome as collected by [InterleavedX].
type Result[T any] struct {
	Value T
	Err   error
}

// InterleavedX runs each of actions as its own strand, sharing the calling
// strand's current cancellation scope, and returns every outcome in actions
// order once all have finished -- a raised error in one does not stop or
// cancel the others.
func InterleavedX[T any](s *Strand, actions ...func(s *Strand) (T, error)) []Result[T] {
	results := make([]Result[T], len(actions))
	done := make([]*Promise[struct{}], len(actions))

	for i, action := range actions {
		i, action := i, recoverAction(action)
		p := NewPromise[struct{}]()
		done[i] = p

		fork(s.Cap(), s.exec, func(child *Strand) {
			v, err := action(child)
			results[i] = Result[T]{Value: v, Err: err}
			p.Resolve(struct{}{}, nil)
		})
	}

	for _, p := range done {
		_, _ = p.Await(s)
	}

	return results
}

// Interleaved runs each of actions as its own strand and returns their
// values in order, or the first error encountered, in actions order.
func Interleaved[T any](s *Strand, actions ...func(s *Strand) (T, error)) ([]T, error) {
	results := InterleavedX(s, actions...)

	values := make([]T, len(results))
	for i, r := range results {
		if r.Err != nil {
			return nil, r.Err
		}
		values[i] = r.Value
	}

	return values, nil
}

// FirstOf runs a and b concurrently, each sharing a cancellation scope
// created just for this call. Whichever finishes first -- successfully or
// with a non-Cancel error -- cancels the scope (and so, the other) before
// its result is returned; the loser's own outcome, including a Cancel it
// picks up from that, is discarded. If both end with a Cancel error,
// FirstOf returns that error.
func FirstOf[T any](s *Strand, a, b func(s *Strand) (T, error)) (T, error) {
	type outcome struct {
		value T
		err   error
	}

	scope := newCancelableHandler(s.Cap())
	winner := NewPromise[outcome]()
	canceled := 0

	race := func(action func(s *Strand) (T, error)) func(child *Strand) {
		action = recoverAction(action)
		return func(child *Strand) {
			v, err := action(child)
			if IsCancel(err) {
				canceled++
				if canceled < 2 {
					return // The other strand's outcome decides the race.
				}
			}
			scope.Cancel(nil)
			winner.Resolve(outcome{v, err}, nil)
		}
	}

	fork(scope, s.exec, race(a))
	fork(scope, s.exec, race(b))

	o, _ := winner.Await(s)
	return o.value, o.err
}

// ErrTimeout is returned by [Timeout] when action did not finish within
// secs seconds.
var ErrTimeout = errors.New("async: timed out")

// Timeout runs action, racing it against a secs-second wait. If the wait
// wins, action's strand is canceled and Timeout returns ErrTimeout; action
// never gets a partial result back.
func Timeout[T any](s *Strand, secs float64, action func(s *Strand) (T, error)) (T, error) {
	timedOut := func(s *Strand) (T, error) {
		var zero T
		if err := Wait(s, secs); err != nil {
			return zero, err
		}
		return zero, ErrTimeout
	}

	return FirstOf(s, timedOut, action)
}
