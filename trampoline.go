// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package async

import (
	"runtime"
	"sync"
)

// HijackThreshold is the number of binds a [Trampoline] allows to run
// synchronously before detaching the pending continuation into its
// storage slot and returning control to the run loop. Reference value per
// the design: 300.
const HijackThreshold = 300

// Trampoline bounds synchronous recursion for one top-level execution step.
// It counts bind steps and, once the threshold is reached, stores the
// pending continuation instead of calling it, so the run loop in
// [Trampoline.Execute] can invoke it iteratively instead of growing the
// goroutine stack.
//
// A Trampoline is confined to the goroutine that owns it: currentTrampoline
// reports, per goroutine, whether a Trampoline is already installed,
// mirroring a thread-local flag. Go has no public goroutine-local storage,
// so this is approximated with a registry keyed by goroutine id (see
// goroutineID); every real caller reaches a Trampoline through
// [TrampolineHolder], whose Trampoline's [Trampoline.Execute] always installs
// and tears down the registry entry itself, so the approximation never
// leaks past the call that owns it.
type Trampoline struct {
	bindCount int
	pending   func() Step
}

// IncrementBindCount increments the bind counter and reports whether it has
// reached [HijackThreshold].
func (t *Trampoline) IncrementBindCount() bool {
	t.bindCount++
	if t.bindCount >= HijackThreshold {
		t.bindCount = 0
		return true
	}
	return false
}

// Set stores action as the pending continuation, to be run by the owning
// Execute loop. It is a programming error to call Set while a continuation
// is already pending — at most one continuation may be stored at a time.
func (t *Trampoline) Set(action func() Step) {
	if t.pending != nil {
		panic("async: trampoline already has a pending continuation")
	}
	t.pending = action
}

// HijackCheckThenCall is the central hijack point used by every combinator
// that is about to invoke a continuation. If the bind counter has reached
// the threshold, the call is deferred by storing it and returning
// immediately; otherwise it is a direct tail call.
func HijackCheckThenCall[A any](t *Trampoline, cont func(A) Step, value A) Step {
	if t == nil {
		return cont(value)
	}
	if t.IncrementBindCount() {
		t.Set(func() Step { return cont(value) })
		return done
	}
	return cont(value)
}

// Execute installs t as the current goroutine's trampoline (unless one is
// already installed, in which case it runs action directly under the
// existing trampoline and leaves installation to the outer Execute), runs
// firstAction, then drains the pending-continuation slot iteratively until
// it is empty.
func (t *Trampoline) Execute(firstAction func() Step) Step {
	installed := installTrampoline(t)
	if installed {
		defer clearTrampoline()
	}
	_ = firstAction()
	for t.pending != nil {
		next := t.pending
		t.pending = nil
		next()
	}
	return done
}

var (
	trampolineRegistryMu sync.Mutex
	trampolineRegistry   = map[string]*Trampoline{}
)

// goroutineID extracts the numeric goroutine id from the current
// goroutine's stack trace header ("goroutine 123 [running]: ..."). This is
// the standard, if informally documented, technique Go programs use to
// approximate thread-local storage when no explicit context is threaded
// through a call — used here to key the trampoline and sync-context
// registries, and to compare goroutines in [FromContinuations] and
// [SuspendedContinuation] when deciding whether to run a continuation inline.
func goroutineID() string {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	b := buf[:n]
	// b starts with "goroutine <id> ["
	const prefix = "goroutine "
	if len(b) <= len(prefix) {
		return ""
	}
	b = b[len(prefix):]
	i := 0
	for i < len(b) && b[i] != ' ' {
		i++
	}
	return string(b[:i])
}

// currentTrampoline returns the trampoline installed on the calling
// goroutine, if any.
func currentTrampoline() (*Trampoline, bool) {
	id := goroutineID()
	if id == "" {
		return nil, false
	}
	trampolineRegistryMu.Lock()
	defer trampolineRegistryMu.Unlock()
	tr, ok := trampolineRegistry[id]
	return tr, ok
}

// installTrampoline registers t as the calling goroutine's current
// trampoline unless one is already installed. Returns true if it performed
// the installation (and therefore owns clearing it).
func installTrampoline(t *Trampoline) bool {
	id := goroutineID()
	if id == "" {
		return false
	}
	trampolineRegistryMu.Lock()
	defer trampolineRegistryMu.Unlock()
	if _, ok := trampolineRegistry[id]; ok {
		return false
	}
	trampolineRegistry[id] = t
	return true
}

// clearTrampoline removes the calling goroutine's registry entry. Only the
// goroutine that performed the installation should call this.
func clearTrampoline() {
	id := goroutineID()
	if id == "" {
		return
	}
	trampolineRegistryMu.Lock()
	delete(trampolineRegistry, id)
	trampolineRegistryMu.Unlock()
}

// hasActiveTrampoline reports whether the calling goroutine currently has a
// trampoline installed, used by bridges that must decide between resuming
// inline and posting/queuing.
func hasActiveTrampoline() bool {
	_, ok := currentTrampoline()
	return ok
}

// activeTrampoline returns the trampoline installed on the calling
// goroutine, or nil if none is installed (in which case combinators fall
// back to direct calls with no hijacking).
func activeTrampoline() *Trampoline {
	t, _ := currentTrampoline()
	return t
}

var (
	syncContextRegistryMu sync.Mutex
	syncContextRegistry   = map[string]SyncContext{}
)

// setAmbientSyncContext records sc as the sync context the calling
// goroutine is currently executing a posted callback on, so a later
// [SuspendedContinuation.Resume] on the same goroutine can tell whether it
// is still running under the context it was captured on.
func setAmbientSyncContext(sc SyncContext) {
	id := goroutineID()
	if id == "" {
		return
	}
	syncContextRegistryMu.Lock()
	syncContextRegistry[id] = sc
	syncContextRegistryMu.Unlock()
}

func clearAmbientSyncContext() {
	id := goroutineID()
	if id == "" {
		return
	}
	syncContextRegistryMu.Lock()
	delete(syncContextRegistry, id)
	syncContextRegistryMu.Unlock()
}

// ambientSyncContext returns the sync context currently active on the
// calling goroutine, or nil if none.
func ambientSyncContext() SyncContext {
	id := goroutineID()
	if id == "" {
		return nil
	}
	syncContextRegistryMu.Lock()
	defer syncContextRegistryMu.Unlock()
	return syncContextRegistry[id]
}
