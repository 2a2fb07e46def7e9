package async

import "sync/atomic"

// A Wid identifies one suspended await. Two Wids are equal iff their
// underlying integers match.
//
// The allocator backing [Wid] is process-wide: Wids are only ever compared
// for equality within a single [Executor]'s registries, so sharing one
// counter across unrelated executors is harmless.
type Wid int64

// WidExit is a reserved Wid. A [Strand] that awaits on WidExit suspends
// forever: the registry never holds an entry for it, so nothing can ever
// resume it. See [Exit].
const WidExit Wid = -1

var widSeq atomic.Int64

func nextWid() Wid {
	for {
		w := Wid(widSeq.Add(1))
		if w != WidExit {
			return w
		}
	}
}
