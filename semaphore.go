package async

import "slices"

// Semaphore bounds concurrent access to a resource with weighted,
// suspending acquisition: Acquire parks the calling strand, via a
// [Promise], rather than blocking a goroutine, so a pending Acquire is
// cancelable like any other await in this package.
//
// A Semaphore must not be shared across more than one [Executor].
type Semaphore struct {
	size    int64
	cur     int64
	waiters []*semWaiter
}

type semWaiter struct {
	n int64
	p *Promise[struct{}]
}

// NewSemaphore creates a weighted semaphore with the given maximum combined
// weight.
func NewSemaphore(n int64) *Semaphore {
	return &Semaphore{size: n}
}

// Acquire suspends the calling strand until a weight of n is available,
// then reserves it. If the await is canceled before that happens, Acquire
// returns the cancellation error and reserves nothing.
func (sem *Semaphore) Acquire(s *Strand, n int64) error {
	if n < 0 {
		panic("async(Semaphore): negative weight")
	}

	if sem.size-sem.cur >= n {
		sem.cur += n
		return nil
	}

	w := &semWaiter{n: n, p: NewPromise[struct{}]()}
	sem.waiters = append(sem.waiters, w)

	_, err := w.p.Await(s)
	if err != nil {
		sem.removeWaiter(w)
	}

	return err
}

// Release releases a weight of n, waking any waiter whose request now
// fits, in FIFO order, until the next one in line does not.
func (sem *Semaphore) Release(n int64) {
	if n < 0 {
		panic("async(Semaphore): negative weight")
	}

	sem.cur -= n
	if sem.cur < 0 {
		panic("async(Semaphore): released more than held")
	}

	sem.notifyWaiters()
}

func (sem *Semaphore) notifyWaiters() {
	woken := 0
	for _, w := range sem.waiters {
		if sem.size-sem.cur < w.n {
			break
		}
		sem.cur += w.n
		w.p.Resolve(struct{}{}, nil)
		woken++
	}
	sem.waiters = slices.Delete(sem.waiters, 0, woken)
}

func (sem *Semaphore) removeWaiter(w *semWaiter) {
	if i := slices.Index(sem.waiters, w); i != -1 {
		sem.waiters = slices.Delete(sem.waiters, i, i+1)
	}
}
