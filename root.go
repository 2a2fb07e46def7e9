package async

import "sync"

// rootHandler is the outermost implementation of [Capability]. It owns
// the global await registry for one [Executor] and
// converts Cancel into delivery of [ErrCancel] to each targeted pending
// await.
type rootHandler struct {
	exec *Executor

	mu     sync.Mutex
	awaits map[Wid]func(AwaitResult)
}

func newRootHandler(exec *Executor) *rootHandler {
	return &rootHandler{exec: exec, awaits: make(map[Wid]func(AwaitResult))}
}

func (root *rootHandler) AwaitID() Wid {
	return nextWid()
}

// Await implements the registry side of the handoff protocol described in
// [Strand]. It must be called from strand's own goroutine.
//
// setup is invoked exactly once per wid: the first call to Await for a
// given wid registers it and runs setup; every later call for the same
// still-pending wid (the await-wrapper retry loop used for rcount > 1, see
// [awaitLoop]) finds the entry already there and just parks again.
func (root *rootHandler) Await(strand *Strand, setup SetupFunc, wid Wid) AwaitResult {
	if wid == WidExit {
		return strand.park(wid)
	}

	root.mu.Lock()
	_, already := root.awaits[wid]
	if !already {
		root.awaits[wid] = root.callbackFor(strand, wid)
	}
	root.mu.Unlock()

	if !already {
		prevInSetup := strand.inSetup.Load()
		strand.inSetup.Store(true)
		setup(root.awaits[wid])
		strand.inSetup.Store(prevInSetup)
	}

	return strand.park(wid)
}

// callbackFor builds the registry entry for wid: dropping late deliveries
// for an already-removed wid, removing the entry once a delivery carries
// Done, and routing the actual resume through strand's handoff protocol --
// directly if the call arrived synchronously from within strand's own
// setup, otherwise through the owning Executor's queue.
func (root *rootHandler) callbackFor(strand *Strand, wid Wid) func(AwaitResult) {
	return func(r AwaitResult) {
		r.Wid = wid

		root.mu.Lock()
		_, ok := root.awaits[wid]
		if !ok {
			root.mu.Unlock()
			return // Late callback for an already-completed or canceled wid: drop it.
		}
		if r.Done {
			delete(root.awaits, wid)
		}
		root.mu.Unlock()

		if strand.inSetup.Load() {
			strand.deliver(r)
			return
		}

		root.exec.schedule(func() { strand.deliver(r) })
	}
}

// Cancel invokes the registered callback of every targeted, still-pending
// wid with (ErrCancel, done=true, wid). Registry removal happens inside the
// callback (see Await's cb), not here.
func (root *rootHandler) Cancel(targets []Wid) {
	root.mu.Lock()
	var list []Wid
	if targets == nil {
		list = make([]Wid, 0, len(root.awaits))
		for w := range root.awaits {
			list = append(list, w)
		}
	} else {
		list = targets
	}

	cbs := make([]func(AwaitResult), 0, len(list))
	wids := make([]Wid, 0, len(list))
	for _, w := range list {
		if cb, ok := root.awaits[w]; ok {
			cbs = append(cbs, cb)
			wids = append(wids, w)
		}
	}
	root.mu.Unlock()

	for i, cb := range cbs {
		cb(errResult(ErrCancel, true, wids[i]))
	}
}
