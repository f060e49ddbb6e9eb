package cluster

import (
	"context"
	"log"
	"time"

	pb "github.com/go-sif/sjoin/internal/rpc"
)

type lifecycleServer struct {
	node *worker
}

// createLifecycleServer creates a new lifecycleServer
func createLifecycleServer(node *worker) *lifecycleServer {
	return &lifecycleServer{node: node}
}

func (s *lifecycleServer) GracefulStop(ctx context.Context, req *pb.MWorkerDescriptor) (*pb.MStopResponse, error) {
	log.Println("Received request to stop gracefully...")
	// we can't wait for the error to respond, because this counts as an open RPC, which blocks GracefulStop
	go s.node.GracefulStop()
	return &pb.MStopResponse{Time: time.Now().Unix()}, nil
}

func (s *lifecycleServer) Stop(ctx context.Context, req *pb.MWorkerDescriptor) (*pb.MStopResponse, error) {
	log.Println("Received request to stop...")
	go s.node.Stop()
	return &pb.MStopResponse{Time: time.Now().Unix()}, nil
}

// ProvideStatistics reports the run statistics of this worker's job
func (s *lifecycleServer) ProvideStatistics(ctx context.Context, req *pb.MStatisticsRequest) (*pb.MStatisticsResponse, error) {
	return statisticsToMessage(s.node.Rank(), s.node.statsTracker), nil
}
