// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package async

// Resource safety primitives for exception-safe resource management.
// These provide the minimal interface for bracketed resource handling.

// Bracket provides exception-safe resource acquisition and release: acquire
// runs first, then use(resource), and release(resource) is guaranteed to
// run on every exit path (success, exception, or cancellation) before the
// outcome reaches the caller. Unlike [Using], release is itself a
// computation rather than a synchronous Dispose call, so it may hop
// schedulers or await further completions before the bracket closes.
func Bracket[R, T any](
	acquire Computation[R],
	release func(R) Computation[struct{}],
	use func(R) Computation[T],
) Computation[T] {
	return Bind(acquire, func(r R) Computation[T] {
		return bracketUse(r, release, use)
	})
}

func bracketUse[R, T any](r R, release func(R) Computation[struct{}], use func(R) Computation[T]) Computation[T] {
	return func(a *Activation[T]) Step {
		runRelease := func(after func() Step) Step {
			relInner := &Activation[struct{}]{
				Success: func(struct{}) Step { return after() },
				Aux:     a.Aux,
			}
			return HijackCheckThenCall(activeTrampoline(), release(r), relInner)
		}
		inner := &Activation[T]{
			Success: func(v T) Step {
				return runRelease(func() Step { return a.Success(v) })
			},
			Aux: &Aux{
				Exception: func(err error) Step {
					return runRelease(func() Step { return a.Aux.Exception(err) })
				},
				Cancel: func(ce *CanceledError) Step {
					return runRelease(func() Step { return a.Aux.Cancel(ce) })
				},
				Token:      a.Aux.Token,
				Trampoline: a.Aux.Trampoline,
			},
		}
		return HijackCheckThenCall(activeTrampoline(), use(r), inner)
	}
}

// OnError runs cleanup only if body raises an exception, then re-raises the
// original error once cleanup completes. Cancellation and success bypass
// cleanup entirely.
func OnError[T any](body Computation[T], cleanup func(error) Computation[struct{}]) Computation[T] {
	return TryWith(body, func(err error) Computation[T] {
		return Bind(cleanup(err), func(struct{}) Computation[T] {
			return func(a *Activation[T]) Step { return a.Aux.Exception(err) }
		})
	})
}
