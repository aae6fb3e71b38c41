// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package async

import "iter"

// Return lifts a pure value into a computation. The resulting computation
// cancel-checks, then tail-calls the success continuation through the
// trampoline.
func Return[T any](v T) Computation[T] {
	return func(a *Activation[T]) Step {
		return cancelCheck(a, func() Step {
			return HijackCheckThenCall(activeTrampoline(), a.Success, v)
		})
	}
}

// Delay defers construction of a computation until it is run, cancel-
// checking and protecting the constructor call itself so a panicking or
// erroring constructor flows through the exception continuation like any
// other user code.
func Delay[T any](f func() Computation[T]) Computation[T] {
	return func(a *Activation[T]) Step {
		return cancelCheck(a, func() Step {
			next, err := protectCall(func() (Computation[T], error) { return f(), nil })
			if err != nil {
				return a.Aux.Exception(err)
			}
			return HijackCheckThenCall(activeTrampoline(), next, a)
		})
	}
}

// Bind sequences two computations: run c, and on success pass the result
// to f to obtain the next computation, which runs against the same
// activation (same Aux block, same T->U continuation chain).
func Bind[T, U any](c Computation[T], f func(T) Computation[U]) Computation[U] {
	return func(a *Activation[U]) Step {
		return cancelCheck(a, func() Step {
			inner := &Activation[T]{
				Success: func(v T) Step {
					next, err := protectCall(func() (Computation[U], error) { return f(v), nil })
					if err != nil {
						return a.Aux.Exception(err)
					}
					return HijackCheckThenCall(activeTrampoline(), next, a)
				},
				Aux: a.Aux,
			}
			return HijackCheckThenCall(activeTrampoline(), c, inner)
		})
	}
}

// Map applies a pure transformation to the result of c, without giving the
// transformation the opportunity to branch into a new computation. Provided
// as a convenience on top of Bind.
func Map[T, U any](c Computation[T], f func(T) U) Computation[U] {
	return Bind(c, func(v T) Computation[U] { return Return(f(v)) })
}

// Sequential runs c1, discards its result, then runs c2.
func Sequential[T, U any](c1 Computation[T], c2 Computation[U]) Computation[U] {
	return Bind(c1, func(T) Computation[U] { return c2 })
}

// Zero is the builder-surface identity for an empty computation body.
func Zero() Computation[struct{}] { return Return(struct{}{}) }

// Combine sequences two unit-returning computations, as a builder's
// implicit statement separator would.
func Combine(c1, c2 Computation[struct{}]) Computation[struct{}] {
	return Sequential(c1, c2)
}

// Ignore discards the result of c, producing a unit computation. Useful for
// running a computation purely for its effects.
func Ignore[T any](c Computation[T]) Computation[struct{}] {
	return Map(c, func(T) struct{} { return struct{}{} })
}

// TryFinally runs c, and runs fin on every exit path (success, exception,
// or cancellation) before delivering the original outcome. If fin panics
// or returns an error, that exception takes priority on the success and
// exception paths, but is dropped in favor of cancellation if cancellation
// is the path that triggered fin.
func TryFinally[T any](c Computation[T], fin func() error) Computation[T] {
	return func(a *Activation[T]) Step {
		runFinally := func() error {
			_, err := protectCall(func() (struct{}, error) { return struct{}{}, fin() })
			return err
		}
		inner := &Activation[T]{
			Success: func(v T) Step {
				if err := runFinally(); err != nil {
					return a.Aux.Exception(err)
				}
				return a.Success(v)
			},
			Aux: &Aux{
				Exception: func(err error) Step {
					if finErr := runFinally(); finErr != nil {
						return a.Aux.Exception(finErr)
					}
					return a.Aux.Exception(err)
				},
				Cancel: func(ce *CanceledError) Step {
					runFinally()
					return a.Aux.Cancel(ce)
				},
				Token:      a.Aux.Token,
				Trampoline: a.Aux.Trampoline,
			},
		}
		return HijackCheckThenCall(activeTrampoline(), c, inner)
	}
}

// TryWith runs c, routing any exception it raises to handler, which
// produces a replacement computation run under the original activation. An
// exception raised by handler itself flows to the outer exception
// continuation.
func TryWith[T any](c Computation[T], handler func(error) Computation[T]) Computation[T] {
	return func(a *Activation[T]) Step {
		inner := &Activation[T]{
			Success: a.Success,
			Aux: &Aux{
				Exception: func(err error) Step {
					next, hErr := protectCall(func() (Computation[T], error) { return handler(err), nil })
					if hErr != nil {
						return a.Aux.Exception(hErr)
					}
					return HijackCheckThenCall(activeTrampoline(), next, a)
				},
				Cancel:     a.Aux.Cancel,
				Token:      a.Aux.Token,
				Trampoline: a.Aux.Trampoline,
			},
		}
		return HijackCheckThenCall(activeTrampoline(), c, inner)
	}
}

// Disposable is any resource that can be released. Dispose must be
// idempotent-safe to call from [Using]'s perspective: Using itself
// guarantees it calls Dispose at most once regardless of which exit path
// is taken.
type Disposable interface {
	Dispose() error
}

// Using binds resource for the scope of body(resource), guaranteeing
// Dispose is called exactly once on every exit path (success, exception,
// or cancellation), via [TryFinally] plus a compare-and-swap guard.
func Using[R Disposable, T any](resource R, body func(R) Computation[T]) Computation[T] {
	var disposeOnce Once
	dispose := func() error {
		var err error
		disposeOnce.Do(func() { err = resource.Dispose() })
		return err
	}
	return TryFinally(Delay(func() Computation[T] { return body(resource) }), dispose)
}

// While repeatedly runs body while guard returns true. guard itself runs
// under the same protection as user code inside a computation.
func While(guard func() bool, body Computation[struct{}]) Computation[struct{}] {
	return Delay(func() Computation[struct{}] {
		if !guard() {
			return Zero()
		}
		return Sequential(body, While(guard, body))
	})
}

// For iterates seq, running body(v) for each element in turn.
func For[T any](seq iter.Seq[T], body func(T) Computation[struct{}]) Computation[struct{}] {
	next, stop := iter.Pull(seq)
	return TryFinally(forLoop(next, body), func() error { stop(); return nil })
}

func forLoop[T any](next func() (T, bool), body func(T) Computation[struct{}]) Computation[struct{}] {
	return Delay(func() Computation[struct{}] {
		v, ok := next()
		if !ok {
			return Zero()
		}
		return Sequential(Delay(func() Computation[struct{}] { return body(v) }), forLoop(next, body))
	})
}

// SwitchToContext migrates the remainder of the computation onto sc. If sc
// is nil, it queues onto the default worker pool instead.
func SwitchToContext(sc SyncContext) Computation[struct{}] {
	return func(a *Activation[struct{}]) Step {
		return cancelCheck(a, func() Step {
			a.Aux.Trampoline.PostOrQueueWithTrampoline(sc, func() Step {
				return a.Success(struct{}{})
			})
			return done
		})
	}
}

// SwitchToThreadPool migrates the remainder of the computation onto the
// default worker pool.
func SwitchToThreadPool() Computation[struct{}] { return SwitchToContext(nil) }

// SwitchToNewThread migrates the remainder of the computation onto a fresh,
// dedicated goroutine.
func SwitchToNewThread() Computation[struct{}] {
	return func(a *Activation[struct{}]) Step {
		return cancelCheck(a, func() Step {
			a.Aux.Trampoline.StartThreadWithTrampoline(func() Step {
				return a.Success(struct{}{})
			})
			return done
		})
	}
}

// Catch converts c into a computation that always succeeds with an
// [AsyncResult], capturing any exception as [ErrorResult] instead of
// propagating it through the exception continuation. Cancellation is not
// captured — it still flows through the activation's cancellation
// continuation, matching the design's "Choice<T, Exception>" semantics.
func Catch[T any](c Computation[T]) Computation[AsyncResult[T]] {
	return func(a *Activation[AsyncResult[T]]) Step {
		inner := &Activation[T]{
			Success: func(v T) Step { return a.Success(OkResult(v)) },
			Aux: &Aux{
				Exception:  func(err error) Step { return a.Success(ErrorResult[T](err)) },
				Cancel:     a.Aux.Cancel,
				Token:      a.Aux.Token,
				Trampoline: a.Aux.Trampoline,
			},
		}
		return HijackCheckThenCall(activeTrampoline(), c, inner)
	}
}

// TryCancelled runs comp as a side effect if-and-only-if c's cancellation
// continuation fires, without consuming the cancellation — it still
// propagates to the outer activation once comp completes.
func TryCancelled[T any](c Computation[T], comp func(*CanceledError)) Computation[T] {
	return func(a *Activation[T]) Step {
		inner := &Activation[T]{
			Success: a.Success,
			Aux: &Aux{
				Exception: a.Aux.Exception,
				Cancel: func(ce *CanceledError) Step {
					protectCall(func() (struct{}, error) { comp(ce); return struct{}{}, nil })
					return a.Aux.Cancel(ce)
				},
				Token:      a.Aux.Token,
				Trampoline: a.Aux.Trampoline,
			},
		}
		return HijackCheckThenCall(activeTrampoline(), c, inner)
	}
}
