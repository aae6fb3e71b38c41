// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package async

import "errors"

// workItemQueue is the type of [defaultWorkQueue], the worker pool used by
// [TrampolineHolder.QueueWorkItemWithTrampoline]. It is a simple unbounded
// goroutine-per-task pool, matching Go's own runtime scheduler model — there
// is no analogue to a bounded .NET ThreadPool queue to reject work, so queue
// can only fail if f itself is nil.
type workItemQueue struct{}

func (workItemQueue) queue(f func()) error {
	if f == nil {
		return errors.New("async: nil work item")
	}
	go f()
	return nil
}

var defaultWorkQueue workItemQueue

// TrampolineHolder exposes the scheduling primitives every bridge and
// runner uses to move work across goroutines. It holds no state of its own:
// each execution step it starts runs under a fresh [Trampoline] allocated
// by [TrampolineHolder.ExecuteWithTrampoline].
type TrampolineHolder struct{}

// NewTrampolineHolder creates a holder. Holders are cheap and stateless;
// one is created per top-level execution (see [RunSynchronously], [Start],
// [StartWithContinuations]).
func NewTrampolineHolder() *TrampolineHolder { return &TrampolineHolder{} }

// ExecuteWithTrampoline allocates a fresh [Trampoline] and runs firstAction
// under it via [Trampoline.Execute].
func (h *TrampolineHolder) ExecuteWithTrampoline(firstAction func() Step) Step {
	t := &Trampoline{}
	return t.Execute(firstAction)
}

// PostWithTrampoline posts a work item to sc which, when it runs, executes
// f under a fresh trampoline.
func (h *TrampolineHolder) PostWithTrampoline(sc SyncContext, f func() Step) {
	sc.Post(func() {
		setAmbientSyncContext(sc)
		defer clearAmbientSyncContext()
		h.ExecuteWithTrampoline(f)
	})
}

// QueueWorkItemWithTrampoline enqueues f on the default worker pool, to run
// under a fresh trampoline. Panics if the pool rejects the item.
func (h *TrampolineHolder) QueueWorkItemWithTrampoline(f func() Step) {
	err := defaultWorkQueue.queue(func() {
		h.ExecuteWithTrampoline(f)
	})
	if err != nil {
		panic(err)
	}
}

// PostOrQueueWithTrampoline posts to sc if it is non-nil, otherwise queues
// on the default worker pool.
func (h *TrampolineHolder) PostOrQueueWithTrampoline(sc SyncContext, f func() Step) {
	if sc == nil {
		h.QueueWorkItemWithTrampoline(f)
		return
	}
	h.PostWithTrampoline(sc, f)
}

// StartThreadWithTrampoline starts a dedicated goroutine that executes f
// under a fresh trampoline. Unlike QueueWorkItemWithTrampoline, the
// goroutine is not drawn from the shared default pool — it exists solely
// to run f.
func (h *TrampolineHolder) StartThreadWithTrampoline(f func() Step) {
	go func() {
		h.ExecuteWithTrampoline(f)
	}()
}
