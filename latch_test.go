// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package async_test

import (
	"sync"
	"testing"

	"code.hybscloud.com/async"
)

func TestLatchTryAcquireOnce(t *testing.T) {
	var l async.Latch
	if !l.TryAcquire() {
		t.Fatal("expected first TryAcquire to succeed")
	}
	if l.TryAcquire() {
		t.Fatal("expected second TryAcquire to fail")
	}
	if !l.Acquired() {
		t.Fatal("expected Acquired to report true")
	}
}

func TestLatchConcurrentWinnerIsUnique(t *testing.T) {
	var l async.Latch
	var wg sync.WaitGroup
	wins := make([]bool, 100)
	for i := range wins {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			wins[i] = l.TryAcquire()
		}(i)
	}
	wg.Wait()

	count := 0
	for _, w := range wins {
		if w {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected exactly one winner, got %d", count)
	}
}

func TestOnceRunsExactlyOnce(t *testing.T) {
	var o async.Once
	runs := 0
	o.Do(func() { runs++ })
	o.Do(func() { runs++ })
	if runs != 1 {
		t.Fatalf("expected 1 run, got %d", runs)
	}
	if !o.Fired() {
		t.Fatal("expected Fired to report true")
	}
}

func TestVolatileBarrier(t *testing.T) {
	var b async.VolatileBarrier
	if b.IsRaised() {
		t.Fatal("expected barrier to start lowered")
	}
	b.Raise()
	if !b.IsRaised() {
		t.Fatal("expected barrier to be raised")
	}
	b.Raise() // idempotent
}
