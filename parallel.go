// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package async

import "sync"

// Parallel fans cs out onto the default worker pool under a shared linked
// cancellation sub-source. It delivers the index-ordered result slice once
// every child succeeds. The first failure (exception or cancellation) is
// recorded and cancels the sub-source, so the remaining children wind down
// instead of racing to a success that would be discarded anyway; that
// failure is delivered once every child has finished.
func Parallel[T any](cs []Computation[T]) Computation[[]T] {
	return func(a *Activation[[]T]) Step {
		return cancelCheck(a, func() Step {
			n := len(cs)
			if n == 0 {
				return HijackCheckThenCall(activeTrampoline(), a.Success, []T{})
			}

			source := Linked(a.Aux.Token)
			results := make([]T, n)
			remaining := n
			capturedCtx := ambientSyncContext()

			var mu sync.Mutex
			var failErr error
			var failCe *CanceledError
			hasFailed := false

			finish := func() Step {
				mu.Lock()
				remaining--
				allDone := remaining == 0
				fe, fc, hf := failErr, failCe, hasFailed
				mu.Unlock()
				if !allDone {
					return done
				}
				source.Dispose()
				a.Aux.Trampoline.PostOrQueueWithTrampoline(capturedCtx, func() Step {
					switch {
					case hf && fc != nil:
						return a.Aux.Cancel(fc)
					case hf:
						return a.Aux.Exception(fe)
					default:
						return HijackCheckThenCall(activeTrampoline(), a.Success, results)
					}
				})
				return done
			}

			recordFailure := func(err error, ce *CanceledError) {
				mu.Lock()
				won := !hasFailed
				if won {
					hasFailed = true
					failErr, failCe = err, ce
				}
				mu.Unlock()
				if won {
					source.Cancel()
				}
			}

			for i, c := range cs {
				i, c := i, c
				holder := NewTrampolineHolder()
				childAux := &Aux{Token: source.Token(), Trampoline: holder}
				childAux.Exception = func(err error) Step {
					recordFailure(err, nil)
					return finish()
				}
				childAux.Cancel = func(ce *CanceledError) Step {
					recordFailure(nil, ce)
					return finish()
				}
				childA := &Activation[T]{
					Success: func(v T) Step {
						results[i] = v
						return finish()
					},
					Aux: childAux,
				}
				holder.QueueWorkItemWithTrampoline(func() Step { return c(childA) })
			}
			return done
		})
	}
}
