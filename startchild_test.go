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

func TestStartChildReturnsChildResult(t *testing.T) {
	c := async.StartChild(async.Return(5), 0)
	v, err := async.RunSynchronously(c, async.DefaultCancellationToken(), -1)
	require.NoError(t, err)
	require.Equal(t, 5, v)
}

func TestStartChildPropagatesChildException(t *testing.T) {
	boom := errors.New("boom")
	child := func(a *async.Activation[int]) async.Step { return a.Aux.Exception(boom) }
	_, err := async.RunSynchronously(async.StartChild(child, 0), async.DefaultCancellationToken(), -1)
	require.ErrorIs(t, err, boom)
}

func TestStartChildTimesOut(t *testing.T) {
	slow := func(a *async.Activation[int]) async.Step {
		time.AfterFunc(time.Second, func() { a.Success(1) })
		return async.Step{}
	}
	_, err := async.RunSynchronously(async.StartChild(slow, 10*time.Millisecond), async.DefaultCancellationToken(), -1)
	var te *async.TimeoutError
	require.ErrorAs(t, err, &te)
}
