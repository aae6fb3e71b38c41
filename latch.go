// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package async

import "sync/atomic"

// Latch is a one-shot compare-and-swap gate. TryAcquire returns true
// exactly once across any number of concurrent callers; every subsequent
// call returns false. It is the building block for the "only the first
// caller wins" races in this package: result delivery in the bridges,
// choice settlement, and one-shot continuation guards.
type Latch struct {
	acquired atomic.Bool
}

// TryAcquire attempts to win the latch. Returns true for exactly one
// caller.
func (l *Latch) TryAcquire() bool {
	return l.acquired.CompareAndSwap(false, true)
}

// Acquired reports whether the latch has already been won, without trying
// to win it.
func (l *Latch) Acquired() bool {
	return l.acquired.Load()
}

// Once guards a thunk so it runs at most once, regardless of how many
// goroutines call it concurrently. Unlike [sync.Once], callers that lose
// the race do not block until the winner's thunk completes — Once is built
// for fire-and-forget dispose/cleanup actions where callers only care that
// the thunk runs at most once, not that it has finished by the time they
// return.
type Once struct {
	latch Latch
}

// Do runs f if this is the first call; otherwise it is a no-op.
func (o *Once) Do(f func()) {
	if o.latch.TryAcquire() {
		f()
	}
}

// Fired reports whether Do has already run (or begun running) f.
func (o *Once) Fired() bool {
	return o.latch.Acquired()
}

// VolatileBarrier is a single-writer, multiple-reader flag with acquire and
// release memory ordering suitable for signalling "state X has settled"
// between a completion path and concurrent readers that only poll — for
// example a result cell's filled flag.
type VolatileBarrier struct {
	raised atomic.Bool
}

// Raise sets the barrier. Safe to call more than once.
func (b *VolatileBarrier) Raise() { b.raised.Store(true) }

// IsRaised reports whether Raise has been called.
func (b *VolatileBarrier) IsRaised() bool { return b.raised.Load() }
