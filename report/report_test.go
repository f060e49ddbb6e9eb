package report

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-sif/sjoin"
	"github.com/go-sif/sjoin/cluster"
	"github.com/go-sif/sjoin/local"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestWriteInput(t *testing.T) {
	var buf bytes.Buffer
	WriteInput(&buf, 2, &sjoin.BuildChunk{Keys: []int32{5, 6, 7}}, &sjoin.ProbeChunk{
		Keys:     []int32{1},
		PayloadA: []float64{0.5},
		PayloadB: []int32{9},
	})
	out := buf.String()
	require.True(t, strings.HasPrefix(out, "Rank 2, input:\n"))
	require.Contains(t, out, "keys1")
	require.Contains(t, out, "0.500000")
	// header, three data rows and four borders
	require.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 1+1+3+3)
}

func TestWriteOutput(t *testing.T) {
	var buf bytes.Buffer
	out := sjoin.NewOutputChunk(2)
	out.Append(1, 1.0, 4)
	out.Append(1, 1.0, 4)
	WriteOutput(&buf, 0, out)
	require.Contains(t, buf.String(), "Rank 0, output:")
	require.Contains(t, buf.String(), "1.000000")
	require.Contains(t, buf.String(), "(2 rows)")
}

func TestWriteStatistics(t *testing.T) {
	var buf bytes.Buffer
	WriteStatistics(&buf, []*cluster.RankStatistics{
		{Rank: 0, Runtime: time.Second, BuildRowsSent: 3, BuildRowsReceived: 2, OutputRows: 4},
		{Rank: 1, Runtime: 2 * time.Second, BuildRowsSent: 3, BuildRowsReceived: 4, OutputRows: 2},
	})
	out := buf.String()
	require.Contains(t, out, "build sent")
	require.Contains(t, out, "2s")
	require.Contains(t, strings.ToLower(out), "total")
	require.Contains(t, out, " 6 ")
}

func TestPrintOrdered(t *testing.T) {
	defer goleak.VerifyNone(t)
	var lock sync.Mutex
	var order []int
	_, errs, err := local.Run(context.Background(), 4, func(ctx context.Context, tr sjoin.Transport) (struct{}, error) {
		return struct{}{}, PrintOrdered(ctx, tr, func() error {
			lock.Lock()
			defer lock.Unlock()
			order = append(order, tr.Comm().Rank)
			return nil
		})
	})
	require.Nil(t, err)
	for _, e := range errs {
		require.Nil(t, e)
	}
	require.Equal(t, []int{0, 1, 2, 3}, order)
}

func TestPrintOrderedReturnsWriteError(t *testing.T) {
	defer goleak.VerifyNone(t)
	_, errs, err := local.Run(context.Background(), 2, func(ctx context.Context, tr sjoin.Transport) (struct{}, error) {
		return struct{}{}, PrintOrdered(ctx, tr, func() error {
			if tr.Comm().Rank == 1 {
				return fmt.Errorf("disk full")
			}
			return nil
		})
	})
	require.Nil(t, err)
	require.Nil(t, errs[0])
	require.ErrorContains(t, errs[1], "disk full")
}
