package hashjoin

import (
	"context"
	"math/rand"
	"sort"
	"testing"

	"github.com/go-sif/sjoin"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type row struct {
	key int32
	a   float64
	b   int32
}

func rows(out *sjoin.OutputChunk) []row {
	res := make([]row, out.NumRows())
	for i := range res {
		res[i] = row{out.Keys[i], out.PayloadA[i], out.PayloadB[i]}
	}
	return res
}

// naiveJoin is the nested-loop reference the hash join must agree with
func naiveJoin(build []int32, probe *sjoin.ProbeChunk) []row {
	res := make([]row, 0)
	for i, pk := range probe.Keys {
		for _, bk := range build {
			if bk == pk {
				res = append(res, row{pk, probe.PayloadA[i], probe.PayloadB[i]})
			}
		}
	}
	return res
}

func exampleProbe() *sjoin.ProbeChunk {
	return &sjoin.ProbeChunk{
		Keys:     []int32{1, 0, 4, 2, 5, 3},
		PayloadA: []float64{1.0, 2.0, 3.0, 4.0, 5.0, 6.0},
		PayloadB: []int32{4, 1, 2, 3, 0, 5},
	}
}

func TestJoinExample(t *testing.T) {
	out, err := Join(&sjoin.BuildChunk{Keys: []int32{0, 1, 1, 2, 1, 0}}, exampleProbe())
	require.Nil(t, err)
	require.Equal(t, []row{
		{1, 1.0, 4}, {1, 1.0, 4}, {1, 1.0, 4},
		{0, 2.0, 1}, {0, 2.0, 1},
		{2, 4.0, 3},
	}, rows(out))
}

func TestDuplicateKeysMultiply(t *testing.T) {
	build := []int32{7, 7, 7, 8}
	probe := &sjoin.ProbeChunk{
		Keys:     []int32{7, 7, 9},
		PayloadA: []float64{0.1, 0.2, 0.3},
		PayloadB: []int32{1, 2, 3},
	}
	table := Build(build)
	require.Equal(t, 4, table.NumRows())
	require.Equal(t, 2, table.NumKeys())
	require.Equal(t, []int32{0, 1, 2}, table.Lookup(7))
	out, err := table.Probe(probe)
	require.Nil(t, err)
	require.Equal(t, 6, out.NumRows())
}

func TestEmptySides(t *testing.T) {
	out, err := Join(&sjoin.BuildChunk{}, exampleProbe())
	require.Nil(t, err)
	require.Equal(t, 0, out.NumRows())
	out, err = Join(&sjoin.BuildChunk{Keys: []int32{1}}, &sjoin.ProbeChunk{})
	require.Nil(t, err)
	require.Equal(t, 0, out.NumRows())
}

func TestProbeRejectsMismatchedPayloads(t *testing.T) {
	_, err := Build([]int32{1}).Probe(&sjoin.ProbeChunk{Keys: []int32{1}, PayloadA: []float64{}, PayloadB: []int32{1}})
	require.NotNil(t, err)
}

func TestMatchesNestedLoop(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	build := make([]int32, 300)
	for i := range build {
		build[i] = int32(rng.Intn(30))
	}
	probe := &sjoin.ProbeChunk{}
	for i := 0; i < 400; i++ {
		probe.Keys = append(probe.Keys, int32(rng.Intn(40)))
		probe.PayloadA = append(probe.PayloadA, rng.Float64())
		probe.PayloadB = append(probe.PayloadB, int32(i))
	}
	out, err := Join(&sjoin.BuildChunk{Keys: build}, probe)
	require.Nil(t, err)
	got, want := rows(out), naiveJoin(build, probe)
	sortRows(got)
	sortRows(want)
	require.Equal(t, want, got)
}

func TestProbeParallelMatchesSequential(t *testing.T) {
	defer goleak.VerifyNone(t)

	rng := rand.New(rand.NewSource(11))
	table := Build([]int32{0, 1, 1, 2, 3, 3, 3})
	probe := &sjoin.ProbeChunk{}
	for i := 0; i < 1000; i++ {
		probe.Keys = append(probe.Keys, int32(rng.Intn(6)))
		probe.PayloadA = append(probe.PayloadA, float64(i))
		probe.PayloadB = append(probe.PayloadB, int32(i))
	}
	seq, err := table.Probe(probe)
	require.Nil(t, err)
	for _, workers := range []int{1, 2, 3, 8} {
		par, err := table.ProbeParallel(context.Background(), probe, workers)
		require.Nil(t, err)
		require.Equal(t, rows(seq), rows(par), "workers=%d", workers)
	}
	_, err = table.ProbeParallel(context.Background(), probe, 0)
	require.NotNil(t, err)
}

func TestProbeParallelCancelled(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	probe := &sjoin.ProbeChunk{Keys: []int32{1, 2, 3, 4}, PayloadA: make([]float64, 4), PayloadB: make([]int32, 4)}
	_, err := Build([]int32{1}).ProbeParallel(ctx, probe, 2)
	require.ErrorIs(t, err, context.Canceled)
}

func sortRows(r []row) {
	sort.Slice(r, func(i, j int) bool {
		if r[i].key != r[j].key {
			return r[i].key < r[j].key
		}
		if r[i].b != r[j].b {
			return r[i].b < r[j].b
		}
		return r[i].a < r[j].a
	})
}
