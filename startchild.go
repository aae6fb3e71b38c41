// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package async

import "time"

// StartChild eagerly queues c on the default worker pool under a
// cancellation source linked to the activation's token, and returns a
// computation that awaits its result. A positive timeout cancels the child
// and raises a [TimeoutError] if it has not settled in time; the child
// still runs to completion in the background afterward, and its eventual
// result is discarded.
func StartChild[T any](c Computation[T], timeout time.Duration) Computation[T] {
	return func(a *Activation[T]) Step {
		return cancelCheck(a, func() Step {
			source := Linked(a.Aux.Token)
			cell := NewResultCell[AsyncResult[T]]()
			holder := NewTrampolineHolder()
			childA := newTopActivation[T](source.Token(), holder,
				func(v T) Step { cell.RegisterResult(OkResult(v), true); return done },
				func(err error) Step { cell.RegisterResult(ErrorResult[T](err), true); return done },
				func(ce *CanceledError) Step { cell.RegisterResult(CanceledResult[T](ce), true); return done },
			)
			holder.QueueWorkItemWithTrampoline(func() Step { return c(childA) })

			var timedOut, settled Latch
			if timeout > 0 {
				capturedCtx := ambientSyncContext()
				time.AfterFunc(timeout, func() {
					if timedOut.TryAcquire() {
						source.Cancel()
						if settled.TryAcquire() {
							a.Aux.Trampoline.PostOrQueueWithTrampoline(capturedCtx, func() Step {
								return a.Aux.Exception(&TimeoutError{Timeout: timeout})
							})
						}
					}
				})
			}

			inner := &Activation[AsyncResult[T]]{
				Success: func(r AsyncResult[T]) Step {
					defer source.Dispose()
					if !settled.TryAcquire() {
						return done
					}
					if timedOut.Acquired() {
						return a.Aux.Exception(&TimeoutError{Timeout: timeout})
					}
					return MatchResult(r,
						func(v T) Step { return a.Success(v) },
						func(err error) Step { return a.Aux.Exception(err) },
						func(ce *CanceledError) Step { return a.Aux.Cancel(ce) },
					)
				},
				Aux: a.Aux,
			}
			return HijackCheckThenCall(activeTrampoline(), cell.AwaitResult(), inner)
		})
	}
}
