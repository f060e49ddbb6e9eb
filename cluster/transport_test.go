package cluster

import (
	"context"
	"fmt"
	"net"
	"testing"

	"github.com/go-sif/sjoin"
	"github.com/go-sif/sjoin/collective"
	"github.com/go-sif/sjoin/internal/codec"
	pb "github.com/go-sif/sjoin/internal/rpc"
	"github.com/go-sif/sjoin/logging"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"google.golang.org/grpc"
)

// exchangeGroup starts an ExchangeService per rank on localhost and connects a transport to each
func exchangeGroup(t *testing.T, size int, alg codec.Algorithm) ([]*grpcTransport, func()) {
	servers := make([]*grpc.Server, size)
	codecs := make([]*codec.Codec, size)
	mailboxes := make([]*mailbox, size)
	workers := make([]*pb.MWorkerDescriptor, size)
	done := make(chan struct{}, size)
	for r := 0; r < size; r++ {
		lis, err := net.Listen("tcp", "127.0.0.1:0")
		require.Nil(t, err)
		codecs[r], err = codec.New(alg, 0)
		require.Nil(t, err)
		mailboxes[r] = newMailbox(size)
		servers[r] = grpc.NewServer()
		pb.RegisterExchangeServiceServer(servers[r], createExchangeServer(mailboxes[r], codecs[r]))
		workers[r] = &pb.MWorkerDescriptor{Id: fmt.Sprintf("w%d", r), Host: "127.0.0.1", Port: int32(lis.Addr().(*net.TCPAddr).Port)}
		go func(s *grpc.Server) {
			s.Serve(lis)
			done <- struct{}{}
		}(servers[r])
	}
	transports := make([]*grpcTransport, size)
	for r := range transports {
		tr, err := createTransport(sjoin.Comm{Rank: r, Size: size}, workers, mailboxes[r], codecs[r], 2, logging.Nop())
		require.Nil(t, err)
		transports[r] = tr
	}
	return transports, func() {
		for r := range transports {
			transports[r].Close()
			servers[r].Stop()
			<-done
			codecs[r].Destroy()
		}
	}
}

func runOnGroup[R any](t *testing.T, transports []*grpcTransport, fn func(ctx context.Context, tr sjoin.Transport) (R, error)) []R {
	results := make([]R, len(transports))
	errs := make([]error, len(transports))
	finished := make(chan struct{}, len(transports))
	for r := range transports {
		go func(r int) {
			results[r], errs[r] = fn(context.Background(), transports[r])
			finished <- struct{}{}
		}(r)
	}
	for range transports {
		<-finished
	}
	for r, err := range errs {
		require.Nil(t, err, "rank %d", r)
	}
	return results
}

func TestTransportSum(t *testing.T) {
	defer goleak.VerifyNone(t)
	transports, shutdown := exchangeGroup(t, 3, codec.LZ4)
	defer shutdown()
	sums := runOnGroup(t, transports, func(ctx context.Context, tr sjoin.Transport) (int64, error) {
		return collective.Sum(ctx, tr, int64(tr.Comm().Rank+1))
	})
	require.Equal(t, []int64{6, 6, 6}, sums)
}

func TestTransportLargeParts(t *testing.T) {
	defer goleak.VerifyNone(t)
	for _, alg := range []codec.Algorithm{codec.None, codec.LZ4, codec.Zstd} {
		transports, shutdown := exchangeGroup(t, 2, alg)
		// 100000 int64s per part span several chunks
		const n = 100000
		received := runOnGroup(t, transports, func(ctx context.Context, tr sjoin.Transport) ([]int64, error) {
			send := make([]int64, 2*n)
			for i := range send {
				send[i] = int64(tr.Comm().Rank*10*n + i)
			}
			counts := []int32{n, n}
			displs := collective.Displacements(counts)
			recvCounts, err := collective.AllToAll(ctx, tr, counts)
			if err != nil {
				return nil, err
			}
			return collective.AllToAllV(ctx, tr, send, counts, displs, recvCounts, collective.Displacements(recvCounts))
		})
		shutdown()
		for r, values := range received {
			require.Len(t, values, 2*n, alg.String())
			// first the part from rank 0, then the part from rank 1
			require.Equal(t, int64(r*n), values[0], alg.String())
			require.Equal(t, int64(10*n+r*n), values[n], alg.String())
			require.Equal(t, int64(10*n+r*n+n-1), values[2*n-1], alg.String())
		}
	}
}

func TestTransportManyRounds(t *testing.T) {
	defer goleak.VerifyNone(t)
	transports, shutdown := exchangeGroup(t, 4, codec.None)
	defer shutdown()
	runOnGroup(t, transports, func(ctx context.Context, tr sjoin.Transport) (struct{}, error) {
		for i := 0; i < 20; i++ {
			if err := collective.Barrier(ctx, tr); err != nil {
				return struct{}{}, err
			}
		}
		return struct{}{}, nil
	})
	for _, tr := range transports {
		require.Equal(t, uint64(20), tr.seq)
		require.Equal(t, 0, tr.mailbox.pending())
	}
}

func TestTransportRejectsWrongPartCount(t *testing.T) {
	defer goleak.VerifyNone(t)
	transports, shutdown := exchangeGroup(t, 2, codec.None)
	defer shutdown()
	_, err := transports[0].Exchange(context.Background(), [][]byte{{1}})
	require.NotNil(t, err)
}

func TestTransportCancelled(t *testing.T) {
	defer goleak.VerifyNone(t)
	transports, shutdown := exchangeGroup(t, 2, codec.None)
	defer shutdown()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	// rank 1 never takes part
	_, err := transports[0].Exchange(ctx, [][]byte{{1}, {2}})
	require.NotNil(t, err)
}
