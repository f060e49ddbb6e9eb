// Package router decides which rank owns each row of a relation and lays rows out for a
// variable-size all-to-all exchange.
package router

import (
	"encoding/binary"
	"fmt"

	xxhash "github.com/cespare/xxhash/v2"
	"github.com/go-sif/sjoin/collective"
	"github.com/go-sif/sjoin/errors"
	iutil "github.com/go-sif/sjoin/internal/util"
)

// A Partitioner maps a join key to a destination rank in [0, size). Both relations of a join must
// be routed with the same Partitioner, or matching rows will not meet.
type Partitioner = iutil.PartitionFunc

// HashPartitioner routes by the xxhash64 of the key's little-endian bytes
func HashPartitioner(key int32, size int) int {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], uint32(key))
	return int(xxhash.Sum64(buf[:]) % uint64(size))
}

// ModuloPartitioner routes key to key mod size, mapping negative keys into [0, size)
func ModuloPartitioner(key int32, size int) int {
	s := int64(size)
	return int(((int64(key) % s) + s) % s)
}

// Layout describes one rank's side of a variable-size all-to-all exchange
type Layout struct {
	SendCounts []int32 // rows sent to each rank
	SendDispls []int32 // offset of each rank's rows in the send buffer
	RecvCounts []int32 // rows received from each rank, known after the count exchange
	RecvDispls []int32 // offset of each rank's rows in the receive buffer
}

// NumSend returns the number of rows leaving this rank
func (l *Layout) NumSend() int {
	return collective.Total(l.SendCounts)
}

// NumRecv returns the number of rows arriving at this rank
func (l *Layout) NumRecv() int {
	return collective.Total(l.RecvCounts)
}

// SetRecvCounts completes the Layout with the counts obtained from the count exchange
func (l *Layout) SetRecvCounts(recvCounts []int32) {
	l.RecvCounts = recvCounts
	l.RecvDispls = collective.Displacements(recvCounts)
}

// Route computes the destination of every key and returns the send side of the Layout, along with
// a permutation grouping rows by destination. perm[i] is the original index of the row placed at
// position i of the send buffer; rows bound for the same rank keep their relative order.
func Route(keys []int32, size int, fn Partitioner) (*Layout, []int, error) {
	if size <= 0 {
		return nil, nil, errors.ConfigurationError{Field: "size", Reason: fmt.Sprintf("participant count must be positive, got %d", size)}
	}
	if fn == nil {
		fn = HashPartitioner
	}
	safeFn := iutil.SafePartitionFunc(fn)
	dests := make([]int32, len(keys))
	counts := make([]int32, size)
	for i, k := range keys {
		d, err := safeFn(k, size)
		if err != nil {
			return nil, nil, errors.InvariantError{Message: err.Error()}
		}
		if d < 0 || d >= size {
			return nil, nil, errors.InvariantError{Message: fmt.Sprintf("key %d routed to rank %d, outside [0, %d)", k, d, size)}
		}
		dests[i] = int32(d)
		counts[d]++
	}
	displs := collective.Displacements(counts)
	next := make([]int32, size)
	copy(next, displs)
	perm := make([]int, len(keys))
	for i, d := range dests {
		perm[next[d]] = i
		next[d]++
	}
	return &Layout{SendCounts: counts, SendDispls: displs}, perm, nil
}

// Permute returns values reordered so that element i of the result is values[perm[i]]
func Permute[T any](values []T, perm []int) []T {
	out := make([]T, len(perm))
	for i, p := range perm {
		out[i] = values[p]
	}
	return out
}
