// Package hashjoin joins two co-located relation chunks on an int32 key with an in-memory hash
// table built over the build side and probed with the probe side.
package hashjoin

import (
	"context"
	"fmt"

	"github.com/go-sif/sjoin"
	"github.com/go-sif/sjoin/errors"
	"github.com/go-sif/sjoin/partition"
	"golang.org/x/sync/errgroup"
)

// Table indexes build rows by key. Every occurrence of a key is retained.
type Table struct {
	rows    map[int32][]int32 // key -> build row positions
	numRows int
}

// Build creates a Table over the given build keys
func Build(keys []int32) *Table {
	t := &Table{rows: make(map[int32][]int32, len(keys)), numRows: len(keys)}
	for i, k := range keys {
		t.rows[k] = append(t.rows[k], int32(i))
	}
	return t
}

// NumRows returns the number of build rows indexed
func (t *Table) NumRows() int {
	return t.numRows
}

// NumKeys returns the number of distinct build keys
func (t *Table) NumKeys() int {
	return len(t.rows)
}

// Lookup returns the positions of all build rows with the given key
func (t *Table) Lookup(key int32) []int32 {
	return t.rows[key]
}

// Probe emits one output row, carrying the probe payloads, for every pair of build and probe rows
// with equal keys. Output rows appear in probe order.
func (t *Table) Probe(probe *sjoin.ProbeChunk) (*sjoin.OutputChunk, error) {
	if err := probe.Validate(); err != nil {
		return nil, err
	}
	return t.probeRange(probe, 0, probe.NumRows()), nil
}

func (t *Table) probeRange(probe *sjoin.ProbeChunk, start, end int) *sjoin.OutputChunk {
	out := sjoin.NewOutputChunk(end - start)
	for i := start; i < end; i++ {
		k := probe.Keys[i]
		for range t.rows[k] {
			out.Append(k, probe.PayloadA[i], probe.PayloadB[i])
		}
	}
	return out
}

// ProbeParallel behaves like Probe, but splits the probe rows into contiguous ranges which are
// probed by up to workers goroutines. The output is identical to that of Probe.
func (t *Table) ProbeParallel(ctx context.Context, probe *sjoin.ProbeChunk, workers int) (*sjoin.OutputChunk, error) {
	if workers <= 0 {
		return nil, errors.ConfigurationError{Field: "workers", Reason: fmt.Sprintf("must be positive, got %d", workers)}
	}
	if err := probe.Validate(); err != nil {
		return nil, err
	}
	n := int64(probe.NumRows())
	if workers == 1 || n < int64(workers) {
		return t.probeRange(probe, 0, int(n)), nil
	}
	parts := make([]*sjoin.OutputChunk, workers)
	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		w := w
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			start, end := partition.Range(n, workers, w)
			parts[w] = t.probeRange(probe, int(start), int(end))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	total := 0
	for _, p := range parts {
		total += p.NumRows()
	}
	out := sjoin.NewOutputChunk(total)
	for _, p := range parts {
		out.Concat(p)
	}
	return out, nil
}

// Join builds a Table over build and probes it with probe
func Join(build *sjoin.BuildChunk, probe *sjoin.ProbeChunk) (*sjoin.OutputChunk, error) {
	return Build(build.Keys).Probe(probe)
}
