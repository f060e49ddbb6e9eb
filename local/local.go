// Package local connects a group of ranks living in the same process, for example one goroutine
// per rank, through buffered channels. It is the simplest sjoin.Transport and is mostly useful for
// tests and single-process runs.
package local

import (
	"context"
	"fmt"

	"github.com/go-sif/sjoin"
	"github.com/go-sif/sjoin/errors"
)

// a rank can be at most one round ahead of any peer, so every link holds at most two parts
const linkCapacity = 2

type endpoint struct {
	comm  sjoin.Comm
	links [][]chan []byte // links[from][to]
}

// NewGroup creates size connected Transports, one per rank, in rank order
func NewGroup(size int) ([]sjoin.Transport, error) {
	if size <= 0 {
		return nil, errors.ConfigurationError{Field: "size", Reason: fmt.Sprintf("group size must be positive, got %d", size)}
	}
	links := make([][]chan []byte, size)
	for from := range links {
		links[from] = make([]chan []byte, size)
		for to := range links[from] {
			links[from][to] = make(chan []byte, linkCapacity)
		}
	}
	group := make([]sjoin.Transport, size)
	for r := range group {
		group[r] = &endpoint{comm: sjoin.Comm{Rank: r, Size: size}, links: links}
	}
	return group, nil
}

// Comm returns the rank and size of this endpoint
func (e *endpoint) Comm() sjoin.Comm {
	return e.comm
}

// Exchange delivers parts[r] to rank r and collects one part from every rank
func (e *endpoint) Exchange(ctx context.Context, parts [][]byte) ([][]byte, error) {
	if len(parts) != e.comm.Size {
		return nil, errors.InvariantError{Message: fmt.Sprintf("Exchange needs %d parts, got %d", e.comm.Size, len(parts))}
	}
	for to, part := range parts {
		select {
		case e.links[e.comm.Rank][to] <- part:
		case <-ctx.Done():
			return nil, &errors.TransportError{Op: "Exchange", Peer: to, Cause: ctx.Err()}
		}
	}
	recv := make([][]byte, e.comm.Size)
	for from := range recv {
		select {
		case part := <-e.links[from][e.comm.Rank]:
			recv[from] = part
		case <-ctx.Done():
			return nil, &errors.TransportError{Op: "Exchange", Peer: from, Cause: ctx.Err()}
		}
	}
	return recv, nil
}

// Run executes fn once per rank, each on its own goroutine, and waits for all of them. Results
// and errors are returned in rank order.
func Run[R any](ctx context.Context, size int, fn func(ctx context.Context, t sjoin.Transport) (R, error)) ([]R, []error, error) {
	group, err := NewGroup(size)
	if err != nil {
		return nil, nil, err
	}
	results := make([]R, size)
	errs := make([]error, size)
	done := make(chan int, size)
	for r := range group {
		go func(r int) {
			results[r], errs[r] = fn(ctx, group[r])
			done <- r
		}(r)
	}
	for i := 0; i < size; i++ {
		<-done
	}
	return results, errs, nil
}
