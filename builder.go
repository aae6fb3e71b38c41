// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package async

// CurrentCancellationToken returns a computation that succeeds with the
// cancellation token carried by its own activation — the builder-surface
// primitive for user code that wants to read, store, or forward the
// ambient token without otherwise touching it.
func CurrentCancellationToken() Computation[CancellationToken] {
	return func(a *Activation[CancellationToken]) Step {
		return cancelCheck(a, func() Step {
			return HijackCheckThenCall(activeTrampoline(), a.Success, a.Aux.Token)
		})
	}
}
