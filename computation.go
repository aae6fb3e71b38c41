// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package async

// Step is the completion marker returned by every continuation invocation.
// It carries no information; its only purpose is to make every combinator
// boundary a provably tail call — a void return would let a caller ignore
// the contract that exactly one continuation must be invoked before a
// [Computation] returns.
type Step struct{}

// done is the single Step value. Continuations return it, never construct
// their own, so every call site reads as "this was a tail call" rather than
// "a new marker was built here".
var done Step

// SyncContext posts a callback back onto a host-provided execution context
// (for example a UI event loop or a test harness's single-threaded driver).
// A nil SyncContext means "no ambient context" — scheduling falls back to
// the default worker pool.
type SyncContext interface {
	Post(f func())
}

// Aux is the rarely-mutating portion of an [Activation]: the exception and
// cancellation continuations, the cancellation token, and the trampoline
// holder. It is shared by pointer across nested combinators; only the
// success continuation changes as a computation sequences forward.
//
// Aux carries no sync-context field: "what context is the current goroutine
// running under" is ambient, tracked by [ambientSyncContext] and set by
// [TrampolineHolder.PostWithTrampoline] when a posted callback begins
// running, not threaded through the activation.
type Aux struct {
	Exception  func(error) Step
	Cancel     func(*CanceledError) Step
	Token      CancellationToken
	Trampoline *TrampolineHolder
}

// Activation carries everything a [Computation] step needs: the success
// continuation for this step plus the shared [Aux] block. Combinators
// replace Success as control passes through them; Aux is carried unchanged
// unless a combinator substitutes its own exception or cancellation
// continuation (for example [TryFinally], [TryWith], [Catch]) or links a
// new cancellation source (for example [Parallel], [Choice]).
type Activation[T any] struct {
	Success func(T) Step
	Aux     *Aux
}

// Computation is an opaque deferred computation. Given an activation, it
// runs zero or more synchronous steps and invokes exactly one of the three
// continuations in the activation's aux block (or the activation's own
// Success), or it registers the activation to be resumed later by an
// external event and returns without invoking anything yet.
type Computation[T any] func(a *Activation[T]) Step

// protectCall runs f, converting any panic it raises into an error via
// [panicToError]. It is the building block every combinator that calls
// into user code must use so synchronous exceptions never escape the
// trampoline.
func protectCall[T any](f func() (T, error)) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = panicToError(r)
		}
	}()
	return f()
}

// panicToError normalizes a recovered panic value into an error, capturing
// the original call site via [CaptureExceptionInfo].
func panicToError(r any) error {
	if err, ok := r.(error); ok {
		return CaptureExceptionInfo(err)
	}
	return CaptureExceptionInfo(&PanicError{Value: r})
}

// PanicError wraps a non-error panic value so it can flow through the
// exception continuation like any other error.
type PanicError struct{ Value any }

func (e *PanicError) Error() string {
	return "async: recovered panic: " + formatPanic(e.Value)
}

func formatPanic(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	if err, ok := v.(error); ok {
		return err.Error()
	}
	return "non-error panic value"
}

// cancelCheck invokes cont() unless the activation's token is already
// cancelled, in which case it invokes the cancellation continuation
// instead. Every primitive combinator must call this before running user
// code.
func cancelCheck[T any](a *Activation[T], cont func() Step) Step {
	if a.Aux.Token.IsCancellationRequested() {
		return a.Aux.Cancel(NewCanceledError(a.Aux.Token))
	}
	return cont()
}
