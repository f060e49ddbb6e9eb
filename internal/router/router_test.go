package router

import (
	goerrors "errors"
	"testing"

	"github.com/go-sif/sjoin/errors"
	"github.com/stretchr/testify/require"
)

func TestRouteModulo(t *testing.T) {
	keys := []int32{0, 1, 1, 2, 1, 0}
	layout, perm, err := Route(keys, 2, ModuloPartitioner)
	require.Nil(t, err)
	require.Equal(t, []int32{3, 3}, layout.SendCounts)
	require.Equal(t, []int32{0, 3}, layout.SendDispls)
	require.Equal(t, 6, layout.NumSend())
	// stable within each destination
	require.Equal(t, []int{0, 3, 5, 1, 2, 4}, perm)
	require.Equal(t, []int32{0, 2, 0, 1, 1, 1}, Permute(keys, perm))
}

func TestRouteKeepsPayloadsCorrelated(t *testing.T) {
	keys := []int32{5, -3, 12, 7, 7, 0, 99, -3}
	tags := []int64{0, 1, 2, 3, 4, 5, 6, 7}
	layout, perm, err := Route(keys, 3, HashPartitioner)
	require.Nil(t, err)
	pk := Permute(keys, perm)
	pt := Permute(tags, perm)
	for i := range pk {
		require.Equal(t, keys[pt[i]], pk[i])
	}
	// every block only holds keys for its destination
	for r := 0; r < 3; r++ {
		start := layout.SendDispls[r]
		for _, k := range pk[start : start+layout.SendCounts[r]] {
			require.Equal(t, r, HashPartitioner(k, 3))
		}
	}
}

func TestRouteEmpty(t *testing.T) {
	layout, perm, err := Route(nil, 4, nil)
	require.Nil(t, err)
	require.Equal(t, []int32{0, 0, 0, 0}, layout.SendCounts)
	require.Equal(t, []int32{0, 0, 0, 0}, layout.SendDispls)
	require.Empty(t, perm)
}

func TestRouteRejectsOutOfRangeDestination(t *testing.T) {
	_, _, err := Route([]int32{1}, 2, func(key int32, size int) int { return size })
	var ierr errors.InvariantError
	require.True(t, goerrors.As(err, &ierr))
}

func TestRouteRecoversPartitionerPanic(t *testing.T) {
	_, _, err := Route([]int32{1}, 2, func(key int32, size int) int { panic("boom") })
	require.NotNil(t, err)
	require.Contains(t, err.Error(), "boom")
	var ierr errors.InvariantError
	require.True(t, goerrors.As(err, &ierr))
}

func TestRouteRejectsEmptyGroup(t *testing.T) {
	_, _, err := Route([]int32{1}, 0, nil)
	var cerr errors.ConfigurationError
	require.True(t, goerrors.As(err, &cerr))
}

func TestPartitionersStayInRange(t *testing.T) {
	for _, size := range []int{1, 2, 3, 7} {
		for k := int32(-50); k < 50; k++ {
			h := HashPartitioner(k, size)
			m := ModuloPartitioner(k, size)
			require.True(t, h >= 0 && h < size)
			require.True(t, m >= 0 && m < size)
			require.Equal(t, h, HashPartitioner(k, size), "deterministic")
		}
	}
	require.Equal(t, 1, ModuloPartitioner(-3, 2))
}

func TestSetRecvCounts(t *testing.T) {
	l := &Layout{}
	l.SetRecvCounts([]int32{1, 0, 4})
	require.Equal(t, []int32{0, 1, 1}, l.RecvDispls)
	require.Equal(t, 5, l.NumRecv())
}
