package async

// awaitLoop allocates a wid, then calls s.Cap().Await repeatedly with it
// until a delivery comes back with Done true, returning that delivery.
// setup only actually runs on the first call -- see [rootHandler.Await] --
// so wrappers whose host API invokes its callback more than once before
// completion (see [Await1]'s rcount) can let later, non-final deliveries
// simply loop back around rather than returning to the caller.
func awaitLoop(s *Strand, setup SetupFunc) AwaitResult {
	wid := s.Cap().AwaitID()
	for {
		r := s.Cap().Await(s, setup, wid)
		if r.Done {
			return r
		}
	}
}

// Await0 suspends until setup's callback -- a host API of shape
// func() -- is invoked, then returns any error delivered by a
// cancellation.
func Await0(s *Strand, setup func(resume func())) error {
	r := awaitLoop(s, func(resume func(AwaitResult)) {
		setup(func() {
			resume(AwaitResult{Done: true})
		})
	})
	return r.Err
}

// Await1 suspends until setup's callback -- a host API of shape
// func(T) -- has been invoked rcount times (default 1), returning the
// value from the final invocation.
//
// rcount greater than one models a host API that invokes its callback
// more than once before the operation is actually complete, e.g. once
// synchronously with a handle and again later with the real result.
// Intermediate invocations are opaque to the caller: only the final
// invocation's value is returned.
func Await1[T any](s *Strand, setup func(resume func(T)), rcount ...int) (T, error) {
	n := 1
	if len(rcount) > 0 && rcount[0] > 0 {
		n = rcount[0]
	}

	remaining := n

	r := awaitLoop(s, func(resume func(AwaitResult)) {
		setup(func(v T) {
			remaining--
			resume(AwaitResult{Value: v, Done: remaining <= 0})
		})
	})

	if r.Err != nil {
		var zero T
		return zero, r.Err
	}

	return r.Value.(T), nil
}

// AwaitX suspends until setup's callback -- which takes an explicit
// [AwaitResult] carrying its own outcome -- has been invoked resumeCount
// times, treating the resumeCount-th invocation as final regardless of
// what Done it was given. Each invocation's Value and Err pass through
// unchanged; only Done is overridden. Only the final invocation's
// AwaitResult is returned; earlier ones are consumed by the wait.
//
// Unlike [Await1], each invocation carries its own Err. [CancelableWait]
// uses AwaitX with a resumeCount of one.
func AwaitX(s *Strand, resumeCount int, setup func(resume func(AwaitResult))) AwaitResult {
	remaining := resumeCount

	return awaitLoop(s, func(resume func(AwaitResult)) {
		setup(func(outcome AwaitResult) {
			remaining--
			outcome.Done = remaining <= 0
			resume(outcome)
		})
	})
}

// AwaitErr0 suspends until setup's callback -- a host API of shape
// func(error) -- is invoked, returning that error (nil on success).
func AwaitErr0(s *Strand, setup func(resume func(error))) error {
	r := awaitLoop(s, func(resume func(AwaitResult)) {
		setup(func(err error) {
			resume(AwaitResult{Err: err, Done: true})
		})
	})
	return r.Err
}

// AwaitErr1 suspends until setup's callback -- a host API of shape
// func(T, error) -- is invoked, returning its (value, error) pair.
func AwaitErr1[T any](s *Strand, setup func(resume func(T, error))) (T, error) {
	r := awaitLoop(s, func(resume func(AwaitResult)) {
		setup(func(v T, err error) {
			resume(AwaitResult{Value: v, Err: err, Done: true})
		})
	})

	if r.Err != nil {
		var zero T
		return zero, r.Err
	}

	return r.Value.(T), nil
}
