package async

// AwaitResult is the triple (outcome, done, wid) of an await's resumption.
// A nil Err means Value carries the success outcome; a non-nil Err means
// the await failed (possibly with [ErrCancel]). Done is sticky: once an
// await entry has been resumed with Done true, no further delivery for the
// same Wid has any effect.
type AwaitResult struct {
	Value any
	Err   error
	Done  bool
	Wid   Wid
}

func errResult(err error, done bool, wid Wid) AwaitResult {
	return AwaitResult{Err: err, Done: done, Wid: wid}
}

// SetupFunc registers a host callback. It must call resume at most once
// with the final (Done-true) delivery expected by the caller of
// [Capability.Await]; intermediate, non-final deliveries are a concern of
// the wrapper that built setup (see [AwaitX]), not of setup itself.
type SetupFunc func(resume func(AwaitResult))
