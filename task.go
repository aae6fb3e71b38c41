// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package async

import "sync"

// Task is a minimal external completion source: an opaque, host-agnostic
// stand-in for a "task of T", letting an arbitrary completion source plug
// into [AwaitTask] without this module depending on any concrete task or
// I/O reactor implementation.
type Task[T any] struct {
	mu         sync.Mutex
	done       bool
	result     AsyncResult[T]
	onComplete []func(AsyncResult[T])
}

// NewTask creates an incomplete task.
func NewTask[T any]() *Task[T] { return &Task[T]{} }

// Complete settles the task with r, notifying every registered callback.
// A second call is a no-op.
func (t *Task[T]) Complete(r AsyncResult[T]) {
	t.mu.Lock()
	if t.done {
		t.mu.Unlock()
		return
	}
	t.done = true
	t.result = r
	cbs := t.onComplete
	t.onComplete = nil
	t.mu.Unlock()

	for _, cb := range cbs {
		cb(r)
	}
}

// OnComplete registers f to run once the task settles, or immediately if it
// already has.
func (t *Task[T]) OnComplete(f func(AsyncResult[T])) {
	t.mu.Lock()
	if t.done {
		r := t.result
		t.mu.Unlock()
		f(r)
		return
	}
	t.onComplete = append(t.onComplete, f)
	t.mu.Unlock()
}

// TryResult returns the settled result and true, or the zero result and
// false if the task has not completed yet.
func (t *Task[T]) TryResult() (AsyncResult[T], bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.result, t.done
}

// AwaitTask attaches a continuation to task that, once it settles, runs
// under a fresh trampoline and delivers its outcome to the activation.
// cancellationAsCancel selects whether a canceled task result is routed to
// the cancellation continuation (true) or the exception continuation
// (false).
func AwaitTask[T any](task *Task[T], cancellationAsCancel bool) Computation[T] {
	return func(a *Activation[T]) Step {
		return cancelCheck(a, func() Step {
			task.OnComplete(func(r AsyncResult[T]) {
				a.Aux.Trampoline.ExecuteWithTrampoline(func() Step {
					return MatchResult(r,
						func(v T) Step { return a.Success(v) },
						func(err error) Step { return a.Aux.Exception(err) },
						func(ce *CanceledError) Step {
							if cancellationAsCancel {
								return a.Aux.Cancel(ce)
							}
							return a.Aux.Exception(ce)
						},
					)
				})
			})
			return done
		})
	}
}
