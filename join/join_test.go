package join

import (
	"context"
	goerrors "errors"
	"fmt"
	"math/rand"
	"sort"
	"testing"

	"github.com/go-sif/sjoin"
	"github.com/go-sif/sjoin/errors"
	"github.com/go-sif/sjoin/local"
	"github.com/go-sif/sjoin/partition"
	"github.com/go-sif/sjoin/stats"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type row struct {
	key int32
	a   float64
	b   int32
}

func sortedRows(outs []*sjoin.OutputChunk) []row {
	res := make([]row, 0)
	for _, out := range outs {
		for i := range out.Keys {
			res = append(res, row{out.Keys[i], out.PayloadA[i], out.PayloadB[i]})
		}
	}
	sort.Slice(res, func(i, j int) bool {
		if res[i].key != res[j].key {
			return res[i].key < res[j].key
		}
		if res[i].a != res[j].a {
			return res[i].a < res[j].a
		}
		return res[i].b < res[j].b
	})
	return res
}

type relations struct {
	build    []int32
	probe    []int32
	payloadA []float64
	payloadB []int32
}

func exampleRelations() relations {
	return relations{
		build:    []int32{0, 1, 1, 2, 1, 0},
		probe:    []int32{1, 0, 4, 2, 5, 3},
		payloadA: []float64{1.0, 2.0, 3.0, 4.0, 5.0, 6.0},
		payloadB: []int32{4, 1, 2, 3, 0, 5},
	}
}

// runJoin splits rel over size ranks following the geometry contract and joins it
func runJoin(t *testing.T, size int, rel relations, opts *Options) []*sjoin.OutputChunk {
	outs, errs, err := local.Run(context.Background(), size, func(ctx context.Context, tr sjoin.Transport) (*sjoin.OutputChunk, error) {
		r := tr.Comm().Rank
		build := &sjoin.BuildChunk{Keys: partition.Slice(rel.build, size, r)}
		probe := &sjoin.ProbeChunk{
			Keys:     partition.Slice(rel.probe, size, r),
			PayloadA: partition.Slice(rel.payloadA, size, r),
			PayloadB: partition.Slice(rel.payloadB, size, r),
		}
		return Run(ctx, tr, build, probe, opts)
	})
	require.Nil(t, err)
	for r, err := range errs {
		require.Nil(t, err, "rank %d", r)
	}
	return outs
}

func TestJoinExample(t *testing.T) {
	defer goleak.VerifyNone(t)
	for _, size := range []int{1, 2, 3, 4} {
		outs := runJoin(t, size, exampleRelations(), nil)
		require.Equal(t, []row{
			{0, 2.0, 1}, {0, 2.0, 1},
			{1, 1.0, 4}, {1, 1.0, 4}, {1, 1.0, 4},
			{2, 4.0, 3},
		}, sortedRows(outs), "%d ranks", size)
	}
}

func TestOutputIsPartitionedByKey(t *testing.T) {
	defer goleak.VerifyNone(t)
	outs := runJoin(t, 4, exampleRelations(), &Options{Partitioner: ModuloPartitioner})
	for r, out := range outs {
		require.Nil(t, out.Validate())
		for _, k := range out.Keys {
			require.Equal(t, r, ModuloPartitioner(k, 4))
		}
	}
}

func TestDuplicateKeysMultiply(t *testing.T) {
	defer goleak.VerifyNone(t)
	rel := relations{
		build:    []int32{9, 9, 9, 9, 3},
		probe:    []int32{9, 9, 9, 4},
		payloadA: []float64{0.5, 1.5, 2.5, 3.5},
		payloadB: []int32{0, 1, 2, 3},
	}
	outs := runJoin(t, 3, rel, nil)
	require.Len(t, sortedRows(outs), 4*3)
}

func TestIndependentOfParticipantCount(t *testing.T) {
	defer goleak.VerifyNone(t)
	rnd := rand.New(rand.NewSource(42))
	rel := relations{}
	for i := 0; i < 200; i++ {
		rel.build = append(rel.build, int32(rnd.Intn(40)))
	}
	for i := 0; i < 300; i++ {
		rel.probe = append(rel.probe, int32(rnd.Intn(50)))
		rel.payloadA = append(rel.payloadA, rnd.Float64())
		rel.payloadB = append(rel.payloadB, int32(i))
	}
	expected := sortedRows(runJoin(t, 1, rel, nil))
	require.NotEmpty(t, expected)
	for _, size := range []int{2, 4} {
		require.Equal(t, expected, sortedRows(runJoin(t, size, rel, nil)), "%d ranks", size)
		require.Equal(t, expected, sortedRows(runJoin(t, size, rel, &Options{Partitioner: ModuloPartitioner, ProbeParallelism: 3})), "%d ranks", size)
	}
}

func TestEmptyRelations(t *testing.T) {
	defer goleak.VerifyNone(t)
	ex := exampleRelations()
	emptyBuild := ex
	emptyBuild.build = nil
	emptyProbe := ex
	emptyProbe.probe, emptyProbe.payloadA, emptyProbe.payloadB = nil, nil, nil
	for _, rel := range []relations{emptyBuild, emptyProbe, {}} {
		outs := runJoin(t, 3, rel, nil)
		for _, out := range outs {
			require.Equal(t, 0, out.NumRows())
		}
	}
}

func TestFewerRowsThanRanks(t *testing.T) {
	defer goleak.VerifyNone(t)
	rel := relations{
		build:    []int32{5, 6},
		probe:    []int32{6},
		payloadA: []float64{7.5},
		payloadB: []int32{1},
	}
	outs := runJoin(t, 5, rel, nil)
	require.Equal(t, []row{{6, 7.5, 1}}, sortedRows(outs))
}

func TestCountGlobal(t *testing.T) {
	defer goleak.VerifyNone(t)
	rel := exampleRelations()
	counts, errs, err := local.Run(context.Background(), 3, func(ctx context.Context, tr sjoin.Transport) (int64, error) {
		r := tr.Comm().Rank
		out, err := Run(ctx, tr, &sjoin.BuildChunk{Keys: partition.Slice(rel.build, 3, r)}, &sjoin.ProbeChunk{
			Keys:     partition.Slice(rel.probe, 3, r),
			PayloadA: partition.Slice(rel.payloadA, 3, r),
			PayloadB: partition.Slice(rel.payloadB, 3, r),
		}, nil)
		if err != nil {
			return 0, err
		}
		return CountGlobal(ctx, tr, out)
	})
	require.Nil(t, err)
	for r := range counts {
		require.Nil(t, errs[r])
		require.Equal(t, int64(6), counts[r])
	}
}

func TestConfigurationErrorsPrecedeCommunication(t *testing.T) {
	defer goleak.VerifyNone(t)
	group, err := local.NewGroup(2)
	require.Nil(t, err)
	// only rank 0 calls Run; it must fail without waiting on rank 1
	_, err = Run(context.Background(), group[0], nil, &sjoin.ProbeChunk{
		Keys:     []int32{1, 2},
		PayloadA: []float64{1.0},
		PayloadB: []int32{1, 2},
	}, &Options{ProbeParallelism: -1})
	require.NotNil(t, err)
	var cerr errors.ConfigurationError
	require.True(t, goerrors.As(err, &cerr))
	require.Contains(t, err.Error(), "probe.PayloadA")
	require.Contains(t, err.Error(), "ProbeParallelism")
}

type badComm struct{}

func (badComm) Comm() sjoin.Comm { return sjoin.Comm{Rank: 2, Size: 2} }
func (badComm) Exchange(ctx context.Context, parts [][]byte) ([][]byte, error) {
	return nil, fmt.Errorf("must not be called")
}

func TestInvalidComm(t *testing.T) {
	_, err := Run(context.Background(), badComm{}, nil, nil, nil)
	var cerr errors.ConfigurationError
	require.True(t, goerrors.As(err, &cerr))
	require.Equal(t, "Rank", cerr.Field)
}

func TestCancelledRunIsTransportError(t *testing.T) {
	defer goleak.VerifyNone(t)
	group, err := local.NewGroup(2)
	require.Nil(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	// rank 1 never participates, so rank 0 blocks in the first collective until cancelled
	_, err = Run(ctx, group[0], &sjoin.BuildChunk{Keys: []int32{1, 2, 3}}, nil, nil)
	var terr *errors.TransportError
	require.True(t, goerrors.As(err, &terr))
	require.True(t, goerrors.Is(err, context.Canceled))
}

func TestStatisticsAreRecorded(t *testing.T) {
	defer goleak.VerifyNone(t)
	rel := exampleRelations()
	trackers := []*stats.RunStatistics{{}, {}}
	_, errs, err := local.Run(context.Background(), 2, func(ctx context.Context, tr sjoin.Transport) (*sjoin.OutputChunk, error) {
		r := tr.Comm().Rank
		return Run(ctx, tr, &sjoin.BuildChunk{Keys: partition.Slice(rel.build, 2, r)}, &sjoin.ProbeChunk{
			Keys:     partition.Slice(rel.probe, 2, r),
			PayloadA: partition.Slice(rel.payloadA, 2, r),
			PayloadB: partition.Slice(rel.payloadB, 2, r),
		}, &Options{Stats: trackers[r]})
	})
	require.Nil(t, err)
	var sent, received, output int64
	for r, tracker := range trackers {
		require.Nil(t, errs[r])
		require.Equal(t, sjoin.Done, tracker.GetCurrentPhase())
		s, rcv := tracker.GetBuildRows()
		sent += s
		received += rcv
		output += tracker.GetOutputRows()
	}
	require.Equal(t, int64(6), sent)
	require.Equal(t, int64(6), received)
	require.Equal(t, int64(6), output)
}
