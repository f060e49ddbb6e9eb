package cluster

import (
	"fmt"
	"net"
	"sync"
	"time"

	pb "github.com/go-sif/sjoin/internal/rpc"
	"github.com/go-sif/sjoin/logging"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/net/context"
	"google.golang.org/grpc/peer"
)

// how often the coordinator re-checks registrations and completions
const clusterPollInterval = 100 * time.Millisecond

type clusterServer struct {
	numWorkers  int
	logger      logging.Logger
	lock        sync.Mutex
	workers     []*pb.MWorkerDescriptor // in rank order, which is registration order
	ranks       map[string]int
	completions map[int]*pb.MCompletionReport
}

// createClusterServer creates a new cluster server
func createClusterServer(numWorkers int, logger logging.Logger) *clusterServer {
	return &clusterServer{
		numWorkers:  numWorkers,
		logger:      logger,
		workers:     make([]*pb.MWorkerDescriptor, 0, numWorkers),
		ranks:       make(map[string]int),
		completions: make(map[int]*pb.MCompletionReport),
	}
}

// RegisterWorker registers new workers with the cluster, assigning ranks in order of arrival
func (s *clusterServer) RegisterWorker(ctx context.Context, req *pb.MRegisterRequest) (*pb.MRegisterResponse, error) {
	peer, ok := peer.FromContext(ctx)
	if !ok {
		return nil, fmt.Errorf("Unable to fetch peer data for connecting worker %s", req.Id)
	}
	tcpAddr, ok := peer.Addr.(*net.TCPAddr)
	if !ok {
		return nil, fmt.Errorf("Connecting worker %s is not using TCP", req.Id)
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	if _, exists := s.ranks[req.Id]; exists {
		return nil, fmt.Errorf("Worker %s is already registered", req.Id)
	}
	if len(s.workers) >= s.numWorkers {
		return nil, fmt.Errorf("Cluster already has %d workers", s.numWorkers)
	}
	wDescriptor := &pb.MWorkerDescriptor{
		Id:   req.Id,
		Host: tcpAddr.IP.String(),
		Port: req.Port,
	}
	rank := len(s.workers)
	s.workers = append(s.workers, wDescriptor)
	s.ranks[req.Id] = rank
	s.logger.Logf(logging.InfoLevel, "Registered worker %s at %s:%d as rank %d", wDescriptor.Id, wDescriptor.Host, wDescriptor.Port, rank)
	return &pb.MRegisterResponse{Time: time.Now().Unix(), Rank: int32(rank), Size: int32(s.numWorkers)}, nil
}

// Roster tells a worker whether every rank has joined, and if so where to find them
func (s *clusterServer) Roster(ctx context.Context, req *pb.MRosterRequest) (*pb.MRosterResponse, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	rank, ok := s.ranks[req.Id]
	if !ok {
		return nil, fmt.Errorf("Worker %s is not registered", req.Id)
	}
	if len(s.workers) < s.numWorkers {
		return &pb.MRosterResponse{Ready: false, Rank: int32(rank), Size: int32(s.numWorkers)}, nil
	}
	workers := make([]*pb.MWorkerDescriptor, len(s.workers))
	copy(workers, s.workers)
	return &pb.MRosterResponse{Ready: true, Rank: int32(rank), Size: int32(s.numWorkers), Workers: workers}, nil
}

// ReportCompletion records the outcome of a worker's job
func (s *clusterServer) ReportCompletion(ctx context.Context, req *pb.MCompletionReport) (*pb.MCompletionAck, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	rank, ok := s.ranks[req.Id]
	if !ok || rank != int(req.Rank) {
		return nil, fmt.Errorf("Worker %s is not registered as rank %d", req.Id, req.Rank)
	}
	s.completions[rank] = req
	if len(req.Error) > 0 {
		s.logger.Logf(logging.ErrorLevel, "Rank %d failed: %s", rank, req.Error)
	} else {
		s.logger.Logf(logging.InfoLevel, "Rank %d finished with %d output rows", rank, req.OutputRows)
	}
	return &pb.MCompletionAck{Time: time.Now().Unix()}, nil
}

// NumberOfWorkers returns the current worker count
func (s *clusterServer) NumberOfWorkers() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return len(s.workers)
}

// Workers retrieves the registered workers in rank order
func (s *clusterServer) Workers() []*pb.MWorkerDescriptor {
	s.lock.Lock()
	defer s.lock.Unlock()
	result := make([]*pb.MWorkerDescriptor, len(s.workers))
	copy(result, s.workers)
	return result
}

func (s *clusterServer) waitForWorkers(ctx context.Context) error {
	for {
		if s.NumberOfWorkers() == s.numWorkers {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(clusterPollInterval):
		}
	}
}

// checkCompletions returns the completion reports in rank order once every rank has reported.
// Any failure is returned as soon as it is reported, since the remaining ranks cannot finish.
func (s *clusterServer) checkCompletions() ([]*pb.MCompletionReport, bool, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	var multierr *multierror.Error
	for rank, report := range s.completions {
		if len(report.Error) > 0 {
			multierr = multierror.Append(multierr, fmt.Errorf("rank %d: %s", rank, report.Error))
		}
	}
	if err := multierr.ErrorOrNil(); err != nil {
		return nil, true, err
	}
	if len(s.completions) < s.numWorkers {
		return nil, false, nil
	}
	reports := make([]*pb.MCompletionReport, s.numWorkers)
	for rank, report := range s.completions {
		reports[rank] = report
	}
	return reports, true, nil
}

func (s *clusterServer) waitForCompletions(ctx context.Context) ([]*pb.MCompletionReport, error) {
	for {
		reports, done, err := s.checkCompletions()
		if err != nil {
			return nil, fmt.Errorf("join failed: %w", err)
		} else if done {
			return reports, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(clusterPollInterval):
		}
	}
}
