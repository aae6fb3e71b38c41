// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package async

import (
	"sync"
	"time"
)

// FromContinuations adapts an arbitrary three-continuation callback into a
// computation. callback receives succeed/fail/cancel; invoking more than
// one, or any one more than once, panics. A continuation invoked
// synchronously within callback is parked and run in tail position after
// callback returns, rather than recursing into the trampoline immediately.
func FromContinuations[T any](callback func(succeed func(T), fail func(error), cancel func(*CanceledError))) Computation[T] {
	return func(a *Activation[T]) Step {
		return cancelCheck(a, func() Step {
			var gate Latch
			var pending func() Step
			callerID := goroutineID()
			capturedCtx := ambientSyncContext()

			settle := func(step func() Step) {
				if !gate.TryAcquire() {
					panic("async: fromContinuations: continuation invoked more than once")
				}
				if goroutineID() == callerID {
					pending = step
					return
				}
				if hasActiveTrampoline() {
					a.Aux.Trampoline.PostOrQueueWithTrampoline(capturedCtx, step)
				} else {
					a.Aux.Trampoline.ExecuteWithTrampoline(step)
				}
			}

			func() {
				defer func() {
					if r := recover(); r != nil {
						if gate.TryAcquire() {
							pending = func() Step { return a.Aux.Exception(panicToError(r)) }
						}
					}
				}()
				callback(
					func(v T) { settle(func() Step { return a.Success(v) }) },
					func(err error) { settle(func() Step { return a.Aux.Exception(err) }) },
					func(ce *CanceledError) { settle(func() Step { return a.Aux.Cancel(ce) }) },
				)
			}()

			if pending != nil {
				p := pending
				return HijackCheckThenCall(activeTrampoline(), func(struct{}) Step { return p() }, struct{}{})
			}
			return done
		})
	}
}

// Sleep suspends for d, cancellable. The timer fire and the cancellation
// registration race for a shared latch so only the first to observe it acts.
func Sleep(d time.Duration) Computation[struct{}] {
	return func(a *Activation[struct{}]) Step {
		return cancelCheck(a, func() Step {
			var fired Latch
			capturedCtx := ambientSyncContext()
			timer := time.AfterFunc(d, func() {
				if fired.TryAcquire() {
					a.Aux.Trampoline.PostOrQueueWithTrampoline(capturedCtx, func() Step { return a.Success(struct{}{}) })
				}
			})
			a.Aux.Token.Register(func() {
				if fired.TryAcquire() {
					timer.Stop()
					a.Aux.Trampoline.PostOrQueueWithTrampoline(capturedCtx, func() Step { return a.Aux.Cancel(NewCanceledError(a.Aux.Token)) })
				}
			})
			return done
		})
	}
}

type onCancelDisposable struct {
	aff        *Affine
	unregister func()
}

func (d *onCancelDisposable) Dispose() error {
	d.aff.Discard()
	d.unregister()
	return nil
}

// OnCancel registers f to run exactly once if the activation's token is
// cancelled before the returned [Disposable] is disposed. f is wrapped in
// an [Affine] so the cancellation handler and Disposal race for the same
// one-shot slot: whichever reaches it first wins, the other is a no-op.
func OnCancel(f func()) Computation[Disposable] {
	return func(a *Activation[Disposable]) Step {
		return cancelCheck(a, func() Step {
			aff := NewAffine(f)
			unregister := a.Aux.Token.Register(func() { aff.TryResume() })
			d := &onCancelDisposable{aff: aff, unregister: unregister}
			return HijackCheckThenCall(activeTrampoline(), a.Success, Disposable(d))
		})
	}
}

// AwaitWaitHandle waits on wh. A zero timeout polls without blocking;
// otherwise the wait runs on a dedicated goroutine and races a token
// registration for a shared latch, so cancellation can preempt an
// in-progress wait.
func AwaitWaitHandle(wh WaitHandle, timeout time.Duration) Computation[bool] {
	return func(a *Activation[bool]) Step {
		return cancelCheck(a, func() Step {
			if timeout == 0 {
				return HijackCheckThenCall(activeTrampoline(), a.Success, wh.Wait(0))
			}
			var gate Latch
			capturedCtx := ambientSyncContext()
			go func() {
				signalled := wh.Wait(timeout)
				if gate.TryAcquire() {
					a.Aux.Trampoline.PostOrQueueWithTrampoline(capturedCtx, func() Step { return a.Success(signalled) })
				}
			}()
			a.Aux.Token.Register(func() {
				if gate.TryAcquire() {
					a.Aux.Trampoline.PostOrQueueWithTrampoline(capturedCtx, func() Step { return a.Aux.Cancel(NewCanceledError(a.Aux.Token)) })
				}
			})
			return done
		})
	}
}

// AwaitEvent waits for ev to fire once, unsubscribing immediately whether
// it is delivered the event value or preempted by cancellation. cancel, if
// non-nil, runs in addition to the unsubscribe when the token fires first —
// a hook for hosts whose event sources need more than plain unsubscription
// to release (for example, disarming a hardware interrupt).
func AwaitEvent[T any](ev *EventSource[T], cancel func()) Computation[T] {
	return func(a *Activation[T]) Step {
		return cancelCheck(a, func() Step {
			var gate Latch
			var unsubscribe func()
			capturedCtx := ambientSyncContext()
			unsubscribe = ev.Subscribe(func(v T) {
				if gate.TryAcquire() {
					unsubscribe()
					a.Aux.Trampoline.PostOrQueueWithTrampoline(capturedCtx, func() Step { return a.Success(v) })
				}
			})
			a.Aux.Token.Register(func() {
				if gate.TryAcquire() {
					unsubscribe()
					if cancel != nil {
						cancel()
					}
					a.Aux.Trampoline.PostOrQueueWithTrampoline(capturedCtx, func() Step { return a.Aux.Cancel(NewCanceledError(a.Aux.Token)) })
				}
			})
			return done
		})
	}
}

// IOResult is the ambient asynchronous-result contract an asBeginEnd triple
// exchanges: begin returns one, end blocks on it, cancel requests its
// cancellation.
type IOResult interface {
	IsCompleted() bool
	CompletedSynchronously() bool
	WaitHandle() WaitHandle
	AsyncState() any
}

type ioResultImpl struct {
	mu        sync.Mutex
	completed bool
	sync      bool
	handle    *ManualResetEvent
	state     any
}

func (r *ioResultImpl) IsCompleted() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.completed
}

func (r *ioResultImpl) CompletedSynchronously() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sync
}

func (r *ioResultImpl) WaitHandle() WaitHandle { return r.handle }
func (r *ioResultImpl) AsyncState() any        { return r.state }

// FromBeginEnd bridges a begin/end pair: begin starts the operation and is
// handed a callback to invoke on completion; end extracts the result from
// the IOResult begin returned. If begin reports synchronous completion, end
// runs immediately and the result cell is bypassed. Otherwise a token
// registration races the completion callback for a shared latch, calling
// cancel (if supplied) on the losing path.
func FromBeginEnd[T any](
	begin func(callback func(IOResult), state any) IOResult,
	end func(IOResult) (T, error),
	cancel func(IOResult),
) Computation[T] {
	return func(a *Activation[T]) Step {
		return cancelCheck(a, func() Step {
			var gate Latch
			var iar IOResult
			var syncResult func() Step

			cell := NewResultCell[AsyncResult[T]]()
			callback := func(r IOResult) {
				if !gate.TryAcquire() {
					return
				}
				v, err := protectCall(func() (T, error) { return end(r) })
				if err != nil {
					cell.RegisterResult(ErrorResult[T](err), true)
					return
				}
				cell.RegisterResult(OkResult(v), true)
			}

			iar = begin(callback, nil)

			if iar != nil && iar.CompletedSynchronously() {
				gate.TryAcquire()
				v, err := protectCall(func() (T, error) { return end(iar) })
				syncResult = func() Step {
					if err != nil {
						return a.Aux.Exception(err)
					}
					return a.Success(v)
				}
			} else {
				a.Aux.Token.Register(func() {
					if gate.TryAcquire() {
						if cancel != nil {
							cancel(iar)
						}
						cell.RegisterResult(CanceledResult[T](NewCanceledError(a.Aux.Token)), true)
					}
				})
			}

			if syncResult != nil {
				return HijackCheckThenCall(activeTrampoline(), func(struct{}) Step { return syncResult() }, struct{}{})
			}

			inner := &Activation[AsyncResult[T]]{
				Success: func(r AsyncResult[T]) Step {
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

// FromBeginEnd1 curries a single extra argument into begin before handing
// off to [FromBeginEnd].
func FromBeginEnd1[Arg1, T any](
	begin func(arg1 Arg1, callback func(IOResult), state any) IOResult,
	end func(IOResult) (T, error),
	cancel func(IOResult),
	arg1 Arg1,
) Computation[T] {
	return FromBeginEnd(func(callback func(IOResult), state any) IOResult {
		return begin(arg1, callback, state)
	}, end, cancel)
}

// FromBeginEnd2 curries two extra arguments into begin before handing off
// to [FromBeginEnd].
func FromBeginEnd2[Arg1, Arg2, T any](
	begin func(arg1 Arg1, arg2 Arg2, callback func(IOResult), state any) IOResult,
	end func(IOResult) (T, error),
	cancel func(IOResult),
	arg1 Arg1, arg2 Arg2,
) Computation[T] {
	return FromBeginEnd(func(callback func(IOResult), state any) IOResult {
		return begin(arg1, arg2, callback, state)
	}, end, cancel)
}

// FromBeginEnd3 curries three extra arguments into begin before handing off
// to [FromBeginEnd].
func FromBeginEnd3[Arg1, Arg2, Arg3, T any](
	begin func(arg1 Arg1, arg2 Arg2, arg3 Arg3, callback func(IOResult), state any) IOResult,
	end func(IOResult) (T, error),
	cancel func(IOResult),
	arg1 Arg1, arg2 Arg2, arg3 Arg3,
) Computation[T] {
	return FromBeginEnd(func(callback func(IOResult), state any) IOResult {
		return begin(arg1, arg2, arg3, callback, state)
	}, end, cancel)
}

// AwaitIOResult awaits an IOResult obtained independently of [FromBeginEnd],
// polling its wait handle on a dedicated goroutine and racing a token
// registration exactly like [AwaitWaitHandle]. A timeout of zero or less
// waits indefinitely.
func AwaitIOResult[T any](iar IOResult, end func(IOResult) (T, error), timeout time.Duration) Computation[T] {
	return func(a *Activation[T]) Step {
		return cancelCheck(a, func() Step {
			deliver := func() Step {
				v, err := protectCall(func() (T, error) { return end(iar) })
				if err != nil {
					return a.Aux.Exception(err)
				}
				return a.Success(v)
			}
			if iar.IsCompleted() {
				return HijackCheckThenCall(activeTrampoline(), func(struct{}) Step { return deliver() }, struct{}{})
			}
			wait := timeout
			if wait == 0 {
				wait = -1
			}
			var gate Latch
			capturedCtx := ambientSyncContext()
			go func() {
				signalled := iar.WaitHandle().Wait(wait)
				if gate.TryAcquire() {
					a.Aux.Trampoline.PostOrQueueWithTrampoline(capturedCtx, func() Step {
						if !signalled {
							return a.Aux.Exception(&TimeoutError{Timeout: timeout})
						}
						return deliver()
					})
				}
			}()
			a.Aux.Token.Register(func() {
				if gate.TryAcquire() {
					a.Aux.Trampoline.PostOrQueueWithTrampoline(capturedCtx, func() Step { return a.Aux.Cancel(NewCanceledError(a.Aux.Token)) })
				}
			})
			return done
		})
	}
}

// AsBeginEnd is the inverse of [FromBeginEnd]: it turns a computation into
// a (begin, end, cancel) triple, running c on the default worker pool under
// a source derived via [NewCancellationTokenSource] for each invocation of
// begin.
func AsBeginEnd[T any](c Computation[T]) (
	begin func(callback func(IOResult), state any) IOResult,
	end func(IOResult) (T, error),
	cancel func(IOResult),
) {
	type entry struct {
		task   *Task[T]
		source *CancellationTokenSource
	}
	var mu sync.Mutex
	entries := map[*ioResultImpl]*entry{}

	begin = func(callback func(IOResult), state any) IOResult {
		source := NewCancellationTokenSource()
		task := StartAsTask(c, source.Token())
		ior := &ioResultImpl{state: state, handle: NewManualResetEvent(false)}

		mu.Lock()
		entries[ior] = &entry{task: task, source: source}
		mu.Unlock()

		task.OnComplete(func(AsyncResult[T]) {
			ior.mu.Lock()
			ior.completed = true
			ior.mu.Unlock()
			ior.handle.Set()
			if callback != nil {
				callback(ior)
			}
		})
		return ior
	}

	end = func(r IOResult) (T, error) {
		ior := r.(*ioResultImpl)
		ior.handle.Wait(-1)
		mu.Lock()
		e := entries[ior]
		delete(entries, ior)
		mu.Unlock()
		res, _ := e.task.TryResult()
		return commitResult(res)
	}

	cancel = func(r IOResult) {
		ior := r.(*ioResultImpl)
		mu.Lock()
		e := entries[ior]
		mu.Unlock()
		if e != nil {
			e.source.Cancel()
		}
	}
	return
}
