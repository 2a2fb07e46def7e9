package async

// A WaitGroup tracks a counter and lets strands suspend until it returns to
// zero. Unlike [sync.WaitGroup], Wait is itself a suspension point: it
// parks the calling strand on a [Promise] rather than blocking a goroutine,
// so it composes with [Cancel] like any other await in this package.
//
// A WaitGroup must not be shared across more than one [Executor].
type WaitGroup struct {
	n    int
	zero *Promise[struct{}]
}

// NewWaitGroup returns a WaitGroup with a zero counter.
func NewWaitGroup() *WaitGroup {
	return &WaitGroup{zero: NewPromise[struct{}]()}
}

// Add adds delta, which may be negative, to the counter. If the counter
// becomes zero, every strand parked in Wait resumes. Add panics if the
// counter goes negative.
func (wg *WaitGroup) Add(delta int) {
	wg.n += delta
	if wg.n < 0 {
		panic("async(WaitGroup): negative counter")
	}

	if wg.n == 0 && delta != 0 {
		zero := wg.zero
		wg.zero = NewPromise[struct{}]()
		zero.Resolve(struct{}{}, nil)
	}
}

// Done decrements the counter by one.
func (wg *WaitGroup) Done() {
	wg.Add(-1)
}

// Wait suspends the calling strand until the counter is zero. It returns
// immediately if the counter is already zero when called.
func (wg *WaitGroup) Wait(s *Strand) error {
	if wg.n == 0 {
		return nil
	}
	_, err := wg.zero.Await(s)
	return err
}
