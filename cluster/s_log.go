package cluster

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	pb "github.com/go-sif/sjoin/internal/rpc"
	"github.com/go-sif/sjoin/logging"
)

type logServer struct {
	logger logging.Logger
}

// createLogServer creates a log server
func createLogServer(logger logging.Logger) *logServer {
	return &logServer{logger: logger}
}

// Log messages to the console coming from workers
func (s *logServer) Log(stream pb.LogService_LogServer) error {
	var count int32
	for {
		message, err := stream.Recv()
		if err == io.EOF {
			// Then we're out of messages to print and no errors have occurred, so Ack
			return stream.SendAndClose(&pb.MLogMsgAck{Time: time.Now().Unix(), Count: count})
		} else if err != nil {
			return err
		}
		count++
		s.logger.Logf(int(message.GetLevel()), "%s: %s", message.GetSource(), message.GetMessage())
	}
}

// remoteLogger forwards messages to the Coordinator's LogService, one stream per message
type remoteLogger struct {
	source   string
	client   pb.LogServiceClient
	timeout  time.Duration
	minLevel int
}

func (l *remoteLogger) Logf(level int, format string, args ...interface{}) {
	if level < l.minLevel {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
	defer cancel()
	stream, err := l.client.Log(ctx)
	if err != nil {
		log.Printf("Unable to forward log message to coordinator: %v", err)
		return
	}
	err = stream.Send(&pb.MLogMsg{
		Source:  l.source,
		Level:   int32(level),
		Message: fmt.Sprintf(format, args...),
	})
	if err == nil {
		_, err = stream.CloseAndRecv()
	}
	if err != nil {
		log.Printf("Unable to forward log message to coordinator: %v", err)
	}
}
