package collective

import (
	"context"
	goerrors "errors"
	"fmt"

	"github.com/go-sif/sjoin"
	"github.com/go-sif/sjoin/errors"
)

// Displacements returns the exclusive prefix sum of counts, i.e. the offset at which each rank's
// block begins in a buffer laid out by rank
func Displacements(counts []int32) []int32 {
	displs := make([]int32, len(counts))
	var offset int32
	for i, c := range counts {
		displs[i] = offset
		offset += c
	}
	return displs
}

// Total returns the sum of counts
func Total(counts []int32) int {
	total := 0
	for _, c := range counts {
		total += int(c)
	}
	return total
}

// Sum contributes v from this rank and returns the sum of all ranks' contributions. Every rank
// adds the contributions in rank order, so floating-point results are identical on all ranks.
func Sum[T Element](ctx context.Context, t sjoin.Transport, v T) (T, error) {
	size := t.Comm().Size
	part := encode([]T{v})
	parts := make([][]byte, size)
	for r := range parts {
		parts[r] = part
	}
	recv, err := exchange(ctx, t, "Sum", parts)
	if err != nil {
		return 0, err
	}
	var total T
	one := make([]T, 1)
	for r, b := range recv {
		n, err := decodeInto(one, b)
		if err != nil || n != 1 {
			return 0, malformed("Sum", r, err)
		}
		total += one[0]
	}
	return total, nil
}

// Barrier blocks until every rank has entered it
func Barrier(ctx context.Context, t sjoin.Transport) error {
	_, err := Sum[int32](ctx, t, 0)
	return err
}

// AllToAll sends send[r] to rank r and returns, at index r, the value rank r sent to this rank.
// Every rank sends and receives exactly one value per rank.
func AllToAll(ctx context.Context, t sjoin.Transport, send []int32) ([]int32, error) {
	size := t.Comm().Size
	if len(send) != size {
		return nil, errors.InvariantError{Message: fmt.Sprintf("AllToAll needs %d values, got %d", size, len(send))}
	}
	parts := make([][]byte, size)
	for r := range parts {
		parts[r] = encode(send[r : r+1])
	}
	recv, err := exchange(ctx, t, "AllToAll", parts)
	if err != nil {
		return nil, err
	}
	result := make([]int32, size)
	for r, b := range recv {
		n, err := decodeInto(result[r:r+1], b)
		if err != nil || n != 1 {
			return nil, malformed("AllToAll", r, err)
		}
	}
	return result, nil
}

// AllToAllV sends the block send[sendDispls[r]:sendDispls[r]+sendCounts[r]] to each rank r, and
// returns a buffer of Total(recvCounts) values where the block received from rank r begins at
// recvDispls[r]. recvCounts must have been obtained by exchanging sendCounts with AllToAll.
func AllToAllV[T Element](ctx context.Context, t sjoin.Transport, send []T, sendCounts, sendDispls, recvCounts, recvDispls []int32) ([]T, error) {
	size := t.Comm().Size
	if len(sendCounts) != size || len(sendDispls) != size || len(recvCounts) != size || len(recvDispls) != size {
		return nil, errors.InvariantError{Message: fmt.Sprintf("AllToAllV layout must have %d entries per array", size)}
	}
	parts := make([][]byte, size)
	for r := 0; r < size; r++ {
		start := int(sendDispls[r])
		end := start + int(sendCounts[r])
		if start < 0 || end < start || end > len(send) {
			return nil, errors.InvariantError{Message: fmt.Sprintf("send block [%d, %d) for rank %d exceeds buffer of %d", start, end, r, len(send))}
		}
		parts[r] = encode(send[start:end])
	}
	// the receive buffer is sized before the exchange
	recvBuf := make([]T, Total(recvCounts))
	recv, err := exchange(ctx, t, "AllToAllV", parts)
	if err != nil {
		return nil, err
	}
	for r, b := range recv {
		start := int(recvDispls[r])
		end := start + int(recvCounts[r])
		if start < 0 || end < start || end > len(recvBuf) {
			return nil, errors.InvariantError{Message: fmt.Sprintf("receive block [%d, %d) for rank %d exceeds buffer of %d", start, end, r, len(recvBuf))}
		}
		got, err := countValues[T](b)
		if err != nil || got != int(recvCounts[r]) {
			if err == nil {
				err = fmt.Errorf("expected %d values, received %d", recvCounts[r], got)
			}
			return nil, malformed("AllToAllV", r, err)
		}
		if _, err := decodeInto(recvBuf[start:end], b); err != nil {
			return nil, malformed("AllToAllV", r, err)
		}
	}
	return recvBuf, nil
}

func exchange(ctx context.Context, t sjoin.Transport, op string, parts [][]byte) ([][]byte, error) {
	recv, err := t.Exchange(ctx, parts)
	if err != nil {
		var terr *errors.TransportError
		if goerrors.As(err, &terr) {
			return nil, err
		}
		return nil, &errors.TransportError{Op: op, Peer: -1, Cause: err}
	}
	if len(recv) != len(parts) {
		return nil, &errors.TransportError{Op: op, Peer: -1, Cause: fmt.Errorf("received %d parts from a group of %d", len(recv), len(parts))}
	}
	return recv, nil
}

func malformed(op string, peer int, cause error) error {
	if cause == nil {
		cause = fmt.Errorf("malformed part")
	}
	return &errors.TransportError{Op: op, Peer: peer, Cause: cause}
}
