// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package async

import "sync"

// Choice races cs under a shared linked cancellation sub-source: the first
// child to yield Some wins, cancelling the rest and delivering that value.
// If every child yields None, the Nth None delivers None. The first
// exception or cancellation from any child also settles the race.
func Choice[T any](cs []Computation[Option[T]]) Computation[Option[T]] {
	return func(a *Activation[Option[T]]) Step {
		return cancelCheck(a, func() Step {
			n := len(cs)
			if n == 0 {
				return HijackCheckThenCall(activeTrampoline(), a.Success, None[T]())
			}

			source := Linked(a.Aux.Token)
			var settled Latch
			var mu sync.Mutex
			remaining := n

			deliverOnce := func(f func() Step) Step {
				if !settled.TryAcquire() {
					return done
				}
				source.Cancel()
				return f()
			}

			noneExhausted := func() Step {
				mu.Lock()
				remaining--
				allNone := remaining == 0
				mu.Unlock()
				if !allNone {
					return done
				}
				return deliverOnce(func() Step { return HijackCheckThenCall(activeTrampoline(), a.Success, None[T]()) })
			}

			for _, c := range cs {
				c := c
				holder := NewTrampolineHolder()
				childAux := &Aux{Token: source.Token(), Trampoline: holder}
				childAux.Exception = func(err error) Step {
					return deliverOnce(func() Step { return a.Aux.Exception(err) })
				}
				childAux.Cancel = func(ce *CanceledError) Step {
					return deliverOnce(func() Step { return a.Aux.Cancel(ce) })
				}
				childA := &Activation[Option[T]]{
					Success: func(opt Option[T]) Step {
						if v, ok := opt.Get(); ok {
							return deliverOnce(func() Step { return HijackCheckThenCall(activeTrampoline(), a.Success, Some(v)) })
						}
						return noneExhausted()
					},
					Aux: childAux,
				}
				holder.QueueWorkItemWithTrampoline(func() Step { return c(childA) })
			}
			return done
		})
	}
}
