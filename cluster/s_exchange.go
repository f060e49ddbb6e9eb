package cluster

import (
	"fmt"
	"io"
	"time"

	"github.com/go-sif/sjoin/errors"
	"github.com/go-sif/sjoin/internal/codec"
	pb "github.com/go-sif/sjoin/internal/rpc"
)

// 16-64kb is the ideal stream chunk size according to https://jbrandhorst.com/post/grpc-binary-blob-stream/
const maxChunkBytes = 63 * 1024 // leave room for 1kb of other things

type exchangeServer struct {
	mailbox *mailbox
	codec   *codec.Codec
}

// createExchangeServer creates a new exchangeServer
func createExchangeServer(mailbox *mailbox, codec *codec.Codec) *exchangeServer {
	return &exchangeServer{mailbox: mailbox, codec: codec}
}

// Deliver receives one part of a collective round from a peer, in chunks
func (s *exchangeServer) Deliver(stream pb.ExchangeService_DeliverServer) error {
	var seq uint64
	from := int32(-1)
	var frame []byte
	for {
		chunk, err := stream.Recv()
		if err == io.EOF {
			break
		} else if err != nil {
			return err
		}
		if from < 0 {
			seq, from = chunk.Seq, chunk.From
		} else if chunk.Seq != seq || chunk.From != from {
			return errors.InvariantError{Message: fmt.Sprintf("delivery of round %d from rank %d contained a chunk of round %d from rank %d", seq, from, chunk.Seq, chunk.From)}
		}
		frame = append(frame, chunk.Data...)
	}
	if from < 0 {
		return fmt.Errorf("Delivery contained no chunks")
	}
	data, err := s.codec.Decode(frame)
	if err != nil {
		return err
	}
	if err := s.mailbox.deliver(seq, int(from), data); err != nil {
		return err
	}
	return stream.SendAndClose(&pb.MExchangeAck{Time: time.Now().Unix(), Bytes: int64(len(frame))})
}
