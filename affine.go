// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package async

// Affine wraps a zero-argument thunk with one-shot enforcement: it may be
// invoked at most once. The design calls this out repeatedly — the three
// terminating callbacks of [FromContinuations], a wait-handle registration
// racing a token registration, the handler removed by [AwaitEvent] — as
// something that must fail hard rather than silently double-deliver.
type Affine struct {
	latch Latch
	run   func()
}

// NewAffine creates an affine thunk from f. The returned value invokes f on
// the first call to Resume or TryResume and never again.
func NewAffine(f func()) *Affine {
	return &Affine{run: f}
}

// Resume invokes the thunk. Panics if it has already been used.
func (a *Affine) Resume() {
	if !a.latch.TryAcquire() {
		panic("async: affine continuation resumed twice")
	}
	a.run()
}

// TryResume attempts to invoke the thunk. Returns true on success, false if
// already used.
func (a *Affine) TryResume() bool {
	if !a.latch.TryAcquire() {
		return false
	}
	a.run()
	return true
}

// Discard marks the thunk as used without invoking it.
func (a *Affine) Discard() {
	a.latch.TryAcquire()
}
