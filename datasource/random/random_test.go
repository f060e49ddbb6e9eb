package random

import (
	"testing"

	"github.com/go-sif/sjoin"
	"github.com/stretchr/testify/require"
)

func TestGenerateDefaults(t *testing.T) {
	size := 3
	var rows []int32
	for rank := 0; rank < size; rank++ {
		build, probe, err := Generate(sjoin.Comm{Rank: rank, Size: size}, &Options{Seed: 1})
		require.Nil(t, err)
		require.Nil(t, probe.Validate())
		require.Equal(t, build.NumRows(), probe.NumRows())
		for _, k := range append(build.Keys, probe.Keys...) {
			require.True(t, k >= 0 && k <= 6)
		}
		for _, a := range probe.PayloadA {
			require.True(t, a >= 0 && a < 1)
		}
		rows = append(rows, probe.PayloadB...)
	}
	// ceil(10/3) = 4, so ranks hold 4, 4 and 2 rows; PayloadB is the global row index
	require.Equal(t, []int32{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, rows)
}

func TestGenerateIsReproducible(t *testing.T) {
	comm := sjoin.Comm{Rank: 1, Size: 2}
	b1, p1, err := Generate(comm, &Options{Rows: 100, MaxKey: 1000, Seed: 42})
	require.Nil(t, err)
	b2, p2, err := Generate(comm, &Options{Rows: 100, MaxKey: 1000, Seed: 42})
	require.Nil(t, err)
	require.Equal(t, b1, b2)
	require.Equal(t, p1, p2)
	require.Len(t, b1.Keys, 50)
}

func TestGenerateRejectsBadOptions(t *testing.T) {
	_, _, err := Generate(sjoin.Comm{Rank: 0, Size: 1}, &Options{Rows: -1})
	require.NotNil(t, err)
	_, _, err = Generate(sjoin.Comm{Rank: 2, Size: 1}, nil)
	require.NotNil(t, err)
}
