// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package async_test

import (
	"testing"

	"code.hybscloud.com/async"
)

func TestTrampolineIncrementBindCount(t *testing.T) {
	tr := &async.Trampoline{}
	hijacked := false
	for i := 0; i < async.HijackThreshold; i++ {
		if tr.IncrementBindCount() {
			hijacked = true
			break
		}
	}
	if !hijacked {
		t.Fatalf("expected hijack within %d increments", async.HijackThreshold)
	}
}

func TestTrampolineSetPanicsWhenAlreadyPending(t *testing.T) {
	tr := &async.Trampoline{}
	tr.Set(func() async.Step { return async.Step{} })

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on second Set")
		}
	}()
	tr.Set(func() async.Step { return async.Step{} })
}

func TestTrampolineExecuteDrainsPending(t *testing.T) {
	tr := &async.Trampoline{}
	order := []int{}
	tr.Execute(func() async.Step {
		order = append(order, 1)
		tr.Set(func() async.Step {
			order = append(order, 2)
			return async.Step{}
		})
		return async.Step{}
	})
	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Fatalf("unexpected execution order: %v", order)
	}
}

func TestHijackCheckThenCallRunsDirectlyBelowThreshold(t *testing.T) {
	tr := &async.Trampoline{}
	called := false
	step := async.HijackCheckThenCall(tr, func(v int) async.Step {
		called = true
		return async.Step{}
	}, 7)
	if !called {
		t.Fatal("expected direct call below threshold")
	}
	_ = step
}

func TestHijackCheckThenCallNilTrampolineIsDirectCall(t *testing.T) {
	called := false
	async.HijackCheckThenCall[int](nil, func(v int) async.Step {
		called = true
		return async.Step{}
	}, 1)
	if !called {
		t.Fatal("expected direct call with nil trampoline")
	}
}
