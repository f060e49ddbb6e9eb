package cluster

import (
	"context"
	"fmt"
	"io"
	"net"
	"strconv"

	"github.com/go-sif/sjoin"
	"github.com/go-sif/sjoin/errors"
	"github.com/go-sif/sjoin/internal/codec"
	pb "github.com/go-sif/sjoin/internal/rpc"
	"github.com/go-sif/sjoin/logging"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
	"google.golang.org/grpc"
)

// grpcTransport is an sjoin.Transport between Workers. Each round, a part is streamed to every
// peer's ExchangeService, and the parts addressed to this rank are gathered in its mailbox.
type grpcTransport struct {
	comm     sjoin.Comm
	conns    []*grpc.ClientConn // nil for this rank
	clients  []pb.ExchangeServiceClient
	mailbox  *mailbox
	codec    *codec.Codec
	inFlight *semaphore.Weighted
	logger   logging.Logger
	seq      uint64
}

func workerAddress(w *pb.MWorkerDescriptor) string {
	return net.JoinHostPort(w.Host, strconv.Itoa(int(w.Port)))
}

// dialWorker opens a connection to a worker
func dialWorker(w *pb.MWorkerDescriptor) (*grpc.ClientConn, error) {
	conn, err := pb.Dial(workerAddress(w))
	if err != nil {
		return nil, fmt.Errorf("fail to dial worker %s: %v", w.Id, err)
	}
	return conn, nil
}

// dialWorkers opens a connection to every worker, skipping the one at index skip (use -1 to skip none)
func dialWorkers(workers []*pb.MWorkerDescriptor, skip int) ([]*grpc.ClientConn, error) {
	conns := make([]*grpc.ClientConn, len(workers))
	for i, w := range workers {
		if i == skip {
			continue
		}
		conn, err := dialWorker(w)
		if err != nil {
			closeGRPCConnections(conns)
			return nil, err
		}
		conns[i] = conn
	}
	return conns, nil
}

func closeGRPCConnections(conns []*grpc.ClientConn) {
	for _, conn := range conns {
		if conn != nil {
			conn.Close()
		}
	}
}

func createTransport(comm sjoin.Comm, workers []*pb.MWorkerDescriptor, mailbox *mailbox, codec *codec.Codec, maxInFlight int, logger logging.Logger) (*grpcTransport, error) {
	if len(workers) != comm.Size {
		return nil, errors.InvariantError{Message: fmt.Sprintf("roster lists %d workers for a group of %d", len(workers), comm.Size)}
	}
	conns, err := dialWorkers(workers, comm.Rank)
	if err != nil {
		return nil, &errors.TransportError{Op: "Dial", Peer: -1, Cause: err}
	}
	if maxInFlight <= 0 {
		maxInFlight = comm.Size
	}
	clients := make([]pb.ExchangeServiceClient, len(conns))
	for i, conn := range conns {
		if conn != nil {
			clients[i] = pb.NewExchangeServiceClient(conn)
		}
	}
	return &grpcTransport{
		comm:     comm,
		conns:    conns,
		clients:  clients,
		mailbox:  mailbox,
		codec:    codec,
		inFlight: semaphore.NewWeighted(int64(maxInFlight)),
		logger:   logger,
	}, nil
}

// Comm returns the rank and size of this Worker's group
func (t *grpcTransport) Comm() sjoin.Comm {
	return t.comm
}

// Exchange runs one collective round. Rounds must not overlap on a single rank.
func (t *grpcTransport) Exchange(ctx context.Context, parts [][]byte) ([][]byte, error) {
	if len(parts) != t.comm.Size {
		return nil, errors.InvariantError{Message: fmt.Sprintf("Exchange needs %d parts, got %d", t.comm.Size, len(parts))}
	}
	seq := t.seq
	t.seq++
	if err := t.mailbox.deliver(seq, t.comm.Rank, parts[t.comm.Rank]); err != nil {
		return nil, err
	}
	g, gctx := errgroup.WithContext(ctx)
	for peer := range parts {
		if peer == t.comm.Rank {
			continue
		}
		if err := t.inFlight.Acquire(gctx, 1); err != nil {
			break
		}
		peer := peer
		g.Go(func() error {
			defer t.inFlight.Release(1)
			return t.send(gctx, seq, peer, parts[peer])
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if ctx.Err() != nil {
		return nil, &errors.TransportError{Op: "Exchange", Peer: -1, Cause: ctx.Err()}
	}
	recv, err := t.mailbox.collect(ctx, seq)
	if err != nil {
		return nil, &errors.TransportError{Op: "Exchange", Peer: -1, Cause: err}
	}
	t.logger.Logf(logging.TraceLevel, "%s: finished round %d", t.comm, seq)
	return recv, nil
}

// send streams one part to a peer in chunks
func (t *grpcTransport) send(ctx context.Context, seq uint64, peer int, part []byte) error {
	frame, err := t.codec.Encode(part)
	if err != nil {
		return &errors.TransportError{Op: "Exchange", Peer: peer, Cause: err}
	}
	// peers may not be serving yet during the first round
	stream, err := t.clients[peer].Deliver(ctx, grpc.WaitForReady(true))
	if err != nil {
		return &errors.TransportError{Op: "Exchange", Peer: peer, Cause: err}
	}
	for i := 0; i < len(frame); i += maxChunkBytes {
		end := i + maxChunkBytes
		if end > len(frame) {
			end = len(frame)
		}
		err = stream.Send(&pb.MExchangeChunk{Seq: seq, From: int32(t.comm.Rank), Data: frame[i:end]})
		if err == io.EOF {
			// the server has aborted the stream, and the actual error is available from CloseAndRecv
			_, err = stream.CloseAndRecv()
		}
		if err != nil {
			return &errors.TransportError{Op: "Exchange", Peer: peer, Cause: err}
		}
	}
	if _, err := stream.CloseAndRecv(); err != nil {
		return &errors.TransportError{Op: "Exchange", Peer: peer, Cause: err}
	}
	return nil
}

// Close releases the connections to all peers
func (t *grpcTransport) Close() {
	closeGRPCConnections(t.conns)
}
