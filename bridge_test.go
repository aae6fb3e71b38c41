// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package async_test

import (
	"errors"
	"testing"
	"time"

	"code.hybscloud.com/async"
	"github.com/stretchr/testify/require"
)

func TestFromContinuationsSynchronousSuccess(t *testing.T) {
	c := async.FromContinuations(func(succeed func(int), fail func(error), cancel func(*async.CanceledError)) {
		succeed(5)
	})
	v, err := async.RunSynchronously(c, async.DefaultCancellationToken(), 0)
	require.NoError(t, err)
	require.Equal(t, 5, v)
}

func TestFromContinuationsAsynchronousSuccess(t *testing.T) {
	c := async.FromContinuations(func(succeed func(int), fail func(error), cancel func(*async.CanceledError)) {
		go succeed(9)
	})
	v, err := async.RunSynchronously(c, async.DefaultCancellationToken(), -1)
	require.NoError(t, err)
	require.Equal(t, 9, v)
}

func TestFromContinuationsDoubleInvokeKeepsFirstWinner(t *testing.T) {
	c := async.FromContinuations(func(succeed func(int), fail func(error), cancel func(*async.CanceledError)) {
		succeed(1)
		succeed(2)
	})
	v, err := async.RunSynchronously(c, async.DefaultCancellationToken(), 0)
	require.NoError(t, err)
	require.Equal(t, 1, v)
}

func TestSleepCompletesAfterDuration(t *testing.T) {
	start := time.Now()
	_, err := async.RunSynchronously(async.Sleep(20*time.Millisecond), async.DefaultCancellationToken(), -1)
	require.NoError(t, err)
	require.GreaterOrEqual(t, time.Since(start), 15*time.Millisecond)
}

func TestSleepCancellable(t *testing.T) {
	src := async.NewCancellationTokenSource()
	go func() {
		time.Sleep(5 * time.Millisecond)
		src.Cancel()
	}()
	_, err := async.RunSynchronously(async.Sleep(time.Second), src.Token(), -1)
	var ce *async.CanceledError
	require.ErrorAs(t, err, &ce)
}

func TestOnCancelFiresOnTokenCancellation(t *testing.T) {
	src := async.NewCancellationTokenSource()
	fired := make(chan struct{})
	c := async.OnCancel(func() { close(fired) })
	_, err := async.RunSynchronously(c, src.Token(), 0)
	require.NoError(t, err)

	src.Cancel()
	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("expected OnCancel callback to fire")
	}
}

func TestAwaitWaitHandlePollsWithoutBlocking(t *testing.T) {
	e := async.NewManualResetEvent(false)
	v, err := async.RunSynchronously(async.AwaitWaitHandle(e, 0), async.DefaultCancellationToken(), 0)
	require.NoError(t, err)
	require.False(t, v)

	e.Set()
	v, err = async.RunSynchronously(async.AwaitWaitHandle(e, 0), async.DefaultCancellationToken(), 0)
	require.NoError(t, err)
	require.True(t, v)
}

func TestAwaitWaitHandleBlocksUntilSignalled(t *testing.T) {
	e := async.NewManualResetEvent(false)
	go func() {
		time.Sleep(10 * time.Millisecond)
		e.Set()
	}()
	v, err := async.RunSynchronously(async.AwaitWaitHandle(e, time.Second), async.DefaultCancellationToken(), -1)
	require.NoError(t, err)
	require.True(t, v)
}

type fakeIOResult struct {
	completed bool
	handle    *async.ManualResetEvent
}

func (r *fakeIOResult) IsCompleted() bool            { return r.completed }
func (r *fakeIOResult) CompletedSynchronously() bool { return r.completed }
func (r *fakeIOResult) WaitHandle() async.WaitHandle { return r.handle }
func (r *fakeIOResult) AsyncState() any              { return nil }

func TestFromBeginEndSynchronousCompletion(t *testing.T) {
	begin := func(callback func(async.IOResult), state any) async.IOResult {
		return &fakeIOResult{completed: true, handle: async.NewManualResetEvent(true)}
	}
	end := func(r async.IOResult) (int, error) { return 7, nil }

	c := async.FromBeginEnd(begin, end, nil)
	v, err := async.RunSynchronously(c, async.DefaultCancellationToken(), 0)
	require.NoError(t, err)
	require.Equal(t, 7, v)
}

func TestFromBeginEndAsynchronousCompletion(t *testing.T) {
	begin := func(callback func(async.IOResult), state any) async.IOResult {
		ior := &fakeIOResult{handle: async.NewManualResetEvent(false)}
		go func() {
			time.Sleep(10 * time.Millisecond)
			ior.completed = true
			ior.handle.Set()
			callback(ior)
		}()
		return ior
	}
	end := func(r async.IOResult) (int, error) { return 11, nil }

	c := async.FromBeginEnd(begin, end, nil)
	v, err := async.RunSynchronously(c, async.DefaultCancellationToken(), -1)
	require.NoError(t, err)
	require.Equal(t, 11, v)
}

func TestFromBeginEndPropagatesEndError(t *testing.T) {
	boom := errors.New("boom")
	begin := func(callback func(async.IOResult), state any) async.IOResult {
		return &fakeIOResult{completed: true, handle: async.NewManualResetEvent(true)}
	}
	end := func(r async.IOResult) (int, error) { return 0, boom }

	c := async.FromBeginEnd(begin, end, nil)
	_, err := async.RunSynchronously(c, async.DefaultCancellationToken(), 0)
	require.ErrorIs(t, err, boom)
}

func TestAsBeginEndRoundTrip(t *testing.T) {
	begin, end, _ := async.AsBeginEnd(async.Return(21))
	ior := begin(nil, nil)
	v, err := end(ior)
	require.NoError(t, err)
	require.Equal(t, 21, v)
}

func TestAwaitIOResultDeliversCompletedResult(t *testing.T) {
	begin, end, _ := async.AsBeginEnd(async.Return(99))
	ior := begin(nil, nil)
	ior.WaitHandle().(*async.ManualResetEvent).Wait(-1)

	c := async.AwaitIOResult(ior, end, -1)
	v, err := async.RunSynchronously(c, async.DefaultCancellationToken(), 0)
	require.NoError(t, err)
	require.Equal(t, 99, v)
}
