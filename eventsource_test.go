// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package async_test

import (
	"testing"

	"code.hybscloud.com/async"
)

func TestEventSourceFireReachesSubscribers(t *testing.T) {
	ev := &async.EventSource[int]{}
	got := []int{}
	ev.Subscribe(func(v int) { got = append(got, v) })
	ev.Subscribe(func(v int) { got = append(got, v*10) })

	ev.Fire(3)
	if len(got) != 2 {
		t.Fatalf("expected 2 handlers to fire, got %d", len(got))
	}
}

func TestEventSourceUnsubscribe(t *testing.T) {
	ev := &async.EventSource[int]{}
	fired := false
	unsubscribe := ev.Subscribe(func(int) { fired = true })
	unsubscribe()

	ev.Fire(1)
	if fired {
		t.Fatal("expected unsubscribed handler to not fire")
	}
}

func TestAwaitEventResolvesOnFire(t *testing.T) {
	ev := &async.EventSource[int]{}
	go ev.Fire(7)

	v, err := async.RunSynchronously(async.AwaitEvent(ev, nil), async.DefaultCancellationToken(), -1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 7 {
		t.Fatalf("got %d, want 7", v)
	}
}
