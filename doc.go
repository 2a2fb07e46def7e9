// Package async is a structured-concurrency core for asynchronous code built
// on top of a host that only knows how to defer a callback and cancel a
// pending one.
//
// The host is abstracted as a [TimerHost]: setTimeout/setImmediate/
// clearTimeout, nothing more. Everything else — suspending a strand of
// execution while it waits for a callback, cancelling a scoped group of
// pending waits, running several strands concurrently on a single logical
// thread, joining their results — is built on top of that one primitive.
//
// # Strands
//
// A [Strand] is this package's unit of execution: a goroutine running
// direct-style Go code that happens to suspend, via [Capability.Await] and
// the wrappers built on it ([Await0], [Await1], [AwaitX]), whenever it needs
// a callback-based result. Strands are cheap to create ([Fork], [Interleaved])
// but, unlike plain goroutines, they come with structured cancellation: a
// [Cancelable] scope remembers every await that suspended inside it, and
// calling [Cancel] from within that scope cancels exactly those, leaving
// anything suspended in an outer scope untouched.
//
// # Single-threaded cooperative scheduling
//
// Although each strand is backed by a real goroutine, at most one strand's
// user code is ever running at a time. An [Executor] is the single point
// through which every host-originated resume (a timer firing, a call to
// [TimerHost.SetImmediate]) is dispatched, one at a time, and each dispatch
// blocks until the resumed strand suspends again or terminates before the
// next one runs. The effect is exactly the run-to-completion semantics of a
// single-threaded event loop, without a lock held across user code.
//
// # Promises and joins
//
// A [Promise] is a single-assignment, multi-listener future with FIFO
// notification order. [Interleaved] and [InterleavedX] use one internally
// per forked strand to collect results in strand order regardless of which
// one actually finishes first; [FirstOf] races two strands against each
// other and cancels whichever one loses.
//
// # What this package does not do
//
// No parallelism across OS threads, no preemption, no fairness guarantee
// beyond FIFO delivery of ready callbacks, nothing persisted, nothing
// distributed. There is no CLI and no file format: this is a library meant
// to be embedded in something else's event loop.
package async
