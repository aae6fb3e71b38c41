// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package async_test

import (
	"errors"
	"testing"

	"code.hybscloud.com/async"
	"github.com/stretchr/testify/require"
)

func TestParallelEmptyYieldsEmptySlice(t *testing.T) {
	v, err := async.RunSynchronously(async.Parallel[int](nil), async.DefaultCancellationToken(), 0)
	require.NoError(t, err)
	require.Empty(t, v)
}

func TestParallelCollectsAllResultsInOrder(t *testing.T) {
	cs := []async.Computation[int]{async.Return(1), async.Return(2), async.Return(3)}
	v, err := async.RunSynchronously(async.Parallel(cs), async.DefaultCancellationToken(), -1)
	require.NoError(t, err)
	require.Equal(t, []int{1, 2, 3}, v)
}

func TestParallelFirstFailureWins(t *testing.T) {
	boom := errors.New("boom")
	cs := []async.Computation[int]{
		async.Return(1),
		func(a *async.Activation[int]) async.Step { return a.Aux.Exception(boom) },
	}
	_, err := async.RunSynchronously(async.Parallel(cs), async.DefaultCancellationToken(), -1)
	require.ErrorIs(t, err, boom)
}
