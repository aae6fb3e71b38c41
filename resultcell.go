// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package async

import (
	"sync"
	"time"
)

type cellState uint8

const (
	cellEmpty cellState = iota
	cellFilled
	cellClosed
)

// ResultCell is a one-shot rendezvous between a producer and any number of
// waiters. All state transitions are serialized by a single mutex; waiter
// resumption always happens after the lock is released, so a resumption
// that runs synchronously on the releasing goroutine can never reenter the
// cell's own lock.
type ResultCell[T any] struct {
	mu      sync.Mutex
	filled  VolatileBarrier
	state   cellState
	value   T
	waiters []*SuspendedContinuation[T]
	handle  *ManualResetEvent
}

// NewResultCell creates an empty cell.
func NewResultCell[T any]() *ResultCell[T] { return &ResultCell[T]{} }

// RegisterResult stores v as the cell's result, unless the cell is already
// filled or closed, in which case the call is a no-op. reuseThread allows
// the caller's own goroutine to run the sole waiter's resumption
// synchronously when there is exactly one; with more than one waiter, or
// reuseThread false, every waiter is resumed via post-or-queue.
func (c *ResultCell[T]) RegisterResult(v T, reuseThread bool) {
	c.mu.Lock()
	if c.state != cellEmpty {
		c.mu.Unlock()
		return
	}
	c.state = cellFilled
	c.value = v
	if c.handle != nil {
		c.handle.Set()
	}
	waiters := c.waiters
	c.waiters = nil
	c.filled.Raise()
	c.mu.Unlock()

	if len(waiters) == 0 {
		return
	}
	if len(waiters) == 1 && reuseThread {
		waiters[0].Resume(v)
		return
	}
	for _, w := range waiters {
		w.activation.Aux.Trampoline.PostOrQueueWithTrampoline(w.syncCtx, func() Step { return w.activation.Success(v) })
	}
}

// AwaitResult returns a computation that resolves with the cell's value
// once one is stored, resuming immediately if the value is already present
// or registering as a waiter otherwise. The already-filled check is a
// lock-free [VolatileBarrier] poll so the common "result already landed"
// case never touches the mutex.
func (c *ResultCell[T]) AwaitResult() Computation[T] {
	return func(a *Activation[T]) Step {
		if c.filled.IsRaised() {
			return HijackCheckThenCall(activeTrampoline(), a.Success, c.value)
		}
		c.mu.Lock()
		if c.state == cellFilled {
			v := c.value
			c.mu.Unlock()
			return HijackCheckThenCall(activeTrampoline(), a.Success, v)
		}
		c.waiters = append(c.waiters, captureSuspendedContinuation(a))
		c.mu.Unlock()
		return done
	}
}

// TryWaitForResultSynchronously blocks the caller, per [WaitHandle]'s
// timeout convention, until a result is stored or the timeout elapses.
func (c *ResultCell[T]) TryWaitForResultSynchronously(timeout time.Duration) (T, bool) {
	handle := c.GetWaitHandle()
	if !handle.Wait(timeout) {
		var zero T
		return zero, false
	}
	c.mu.Lock()
	v, ok := c.value, c.state == cellFilled
	c.mu.Unlock()
	return v, ok
}

// GetWaitHandle lazily materializes a wait handle already signalled iff a
// result is already present. Idempotent.
func (c *ResultCell[T]) GetWaitHandle() *ManualResetEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.handle == nil {
		c.handle = NewManualResetEvent(c.state == cellFilled)
	}
	return c.handle
}

// Close disposes the wait handle, if one was materialized, and marks an
// empty cell closed so any further RegisterResult is a no-op.
func (c *ResultCell[T]) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.handle != nil {
		c.handle.Close()
	}
	if c.state == cellEmpty {
		c.state = cellClosed
	}
}

// SuspendedContinuation captures an activation together with the sync
// context and goroutine recorded at suspension time, so the cell that owns
// it can later decide whether resuming it may run synchronously on the
// resuming goroutine or must hop back through post-or-queue.
type SuspendedContinuation[T any] struct {
	activation  *Activation[T]
	syncCtx     SyncContext
	goroutineID string
}

func captureSuspendedContinuation[T any](a *Activation[T]) *SuspendedContinuation[T] {
	return &SuspendedContinuation[T]{
		activation:  a,
		syncCtx:     ambientSyncContext(),
		goroutineID: goroutineID(),
	}
}

// Resume delivers v to the captured activation, running synchronously under
// a fresh trampoline when the resuming goroutine's ambient sync context and
// identity match what was captured (including the doubly-null case of no
// context on a goroutine with no ambient context), and falling back to
// post-or-queue through the captured sync context otherwise.
func (s *SuspendedContinuation[T]) Resume(v T) {
	holder := s.activation.Aux.Trampoline
	if s.canResumeImmediately() {
		holder.ExecuteWithTrampoline(func() Step { return s.activation.Success(v) })
		return
	}
	holder.PostOrQueueWithTrampoline(s.syncCtx, func() Step { return s.activation.Success(v) })
}

func (s *SuspendedContinuation[T]) canResumeImmediately() bool {
	curCtx := ambientSyncContext()
	curThread := goroutineID()
	if s.syncCtx == nil && curCtx == nil {
		return true
	}
	return curCtx == s.syncCtx && curThread == s.goroutineID
}
