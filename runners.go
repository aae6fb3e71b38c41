// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package async

import (
	"sync/atomic"
	"time"
)

func newTopActivation[T any](
	token CancellationToken,
	holder *TrampolineHolder,
	success func(T) Step,
	exception func(error) Step,
	cancel func(*CanceledError) Step,
) *Activation[T] {
	return &Activation[T]{
		Success: success,
		Aux: &Aux{
			Exception:  exception,
			Cancel:     cancel,
			Token:      token,
			Trampoline: holder,
		},
	}
}

func commitResult[T any](r AsyncResult[T]) (T, error) {
	if v, ok := r.Get(); ok {
		return v, nil
	}
	var zero T
	return zero, r.Err()
}

// RunSynchronously blocks the caller until c completes, dispatching to the
// current-thread runner when there is no ambient sync context and no
// timeout, and to the other-thread runner otherwise. A timeout of zero or
// less means "no timeout".
func RunSynchronously[T any](c Computation[T], token CancellationToken, timeout time.Duration) (T, error) {
	if ambientSyncContext() == nil && timeout <= 0 {
		return runSynchronouslyInCurrentThread(c, token)
	}
	return runSynchronouslyInAnotherThread(c, token, timeout)
}

func runSynchronouslyInCurrentThread[T any](c Computation[T], token CancellationToken) (T, error) {
	holder := NewTrampolineHolder()
	cell := NewResultCell[AsyncResult[T]]()
	a := newTopActivation[T](token, holder,
		func(v T) Step { cell.RegisterResult(OkResult(v), true); return done },
		func(err error) Step { cell.RegisterResult(ErrorResult[T](err), true); return done },
		func(ce *CanceledError) Step { cell.RegisterResult(CanceledResult[T](ce), true); return done },
	)
	holder.ExecuteWithTrampoline(func() Step { return c(a) })
	r, _ := cell.TryWaitForResultSynchronously(-1)
	return commitResult(r)
}

func runSynchronouslyInAnotherThread[T any](c Computation[T], token CancellationToken, timeout time.Duration) (T, error) {
	source := Linked(token)
	defer source.Dispose()

	var timedOut atomic.Bool
	if timeout > 0 {
		timer := time.AfterFunc(timeout, func() {
			timedOut.Store(true)
			source.Cancel()
		})
		defer timer.Stop()
	}

	holder := NewTrampolineHolder()
	cell := NewResultCell[AsyncResult[T]]()
	a := newTopActivation[T](source.Token(), holder,
		func(v T) Step { cell.RegisterResult(OkResult(v), true); return done },
		func(err error) Step { cell.RegisterResult(ErrorResult[T](err), true); return done },
		func(ce *CanceledError) Step { cell.RegisterResult(CanceledResult[T](ce), true); return done },
	)
	holder.QueueWorkItemWithTrampoline(func() Step { return c(a) })

	r, _ := cell.TryWaitForResultSynchronously(-1)
	if timedOut.Load() {
		var zero T
		return zero, &TimeoutError{Timeout: timeout}
	}
	return commitResult(r)
}

// Start queues c on the default worker pool with no-op success and
// swallowed cancellation; an exception escapes onto the worker goroutine by
// panicking there, matching the design's "exceptions escape onto the
// worker thread via re-raise".
func Start[T any](c Computation[T], token CancellationToken) {
	holder := NewTrampolineHolder()
	a := newTopActivation[T](token, holder,
		func(T) Step { return done },
		func(err error) Step { panic(err) },
		func(*CanceledError) Step { return done },
	)
	holder.QueueWorkItemWithTrampoline(func() Step { return c(a) })
}

// StartAsTask queues c on the default worker pool, wiring its three
// outcomes into the returned [Task].
func StartAsTask[T any](c Computation[T], token CancellationToken) *Task[T] {
	task := NewTask[T]()
	holder := NewTrampolineHolder()
	a := newTopActivation[T](token, holder,
		func(v T) Step { task.Complete(OkResult(v)); return done },
		func(err error) Step { task.Complete(ErrorResult[T](err)); return done },
		func(ce *CanceledError) Step { task.Complete(CanceledResult[T](ce)); return done },
	)
	holder.QueueWorkItemWithTrampoline(func() Step { return c(a) })
	return task
}

// StartWithContinuations runs c inline on the caller's goroutine under a
// fresh trampoline, routing its three outcomes to the supplied callbacks.
// No exception escapes the runner itself.
func StartWithContinuations[T any](c Computation[T], token CancellationToken, onSuccess func(T), onException func(error), onCancel func(*CanceledError)) {
	holder := NewTrampolineHolder()
	a := newTopActivation[T](token, holder,
		func(v T) Step { onSuccess(v); return done },
		func(err error) Step { onException(err); return done },
		func(ce *CanceledError) Step { onCancel(ce); return done },
	)
	holder.ExecuteWithTrampoline(func() Step { return c(a) })
}

// StartWithContinuationsUsingDispatchInfo is [StartWithContinuations] with
// the exception path receiving the preserved [ExceptionInfo] capture point
// instead of a bare error.
func StartWithContinuationsUsingDispatchInfo[T any](c Computation[T], token CancellationToken, onSuccess func(T), onException func(*ExceptionInfo), onCancel func(*CanceledError)) {
	StartWithContinuations(c, token, onSuccess, func(err error) {
		captured := CaptureExceptionInfo(err)
		info, _ := GetExceptionInfo(captured)
		onException(info)
	}, onCancel)
}

// StartImmediate is [Start], except c begins running inline on the caller's
// goroutine under a fresh trampoline instead of being queued.
func StartImmediate[T any](c Computation[T], token CancellationToken) {
	holder := NewTrampolineHolder()
	a := newTopActivation[T](token, holder,
		func(T) Step { return done },
		func(err error) Step { panic(err) },
		func(*CanceledError) Step { return done },
	)
	holder.ExecuteWithTrampoline(func() Step { return c(a) })
}

// StartImmediateAsTask is [StartAsTask], except c begins running inline on
// the caller's goroutine under a fresh trampoline instead of being queued.
func StartImmediateAsTask[T any](c Computation[T], token CancellationToken) *Task[T] {
	task := NewTask[T]()
	holder := NewTrampolineHolder()
	a := newTopActivation[T](token, holder,
		func(v T) Step { task.Complete(OkResult(v)); return done },
		func(err error) Step { task.Complete(ErrorResult[T](err)); return done },
		func(ce *CanceledError) Step { task.Complete(CanceledResult[T](ce)); return done },
	)
	holder.ExecuteWithTrampoline(func() Step { return c(a) })
	return task
}
