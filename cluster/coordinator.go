package cluster

import (
	"context"
	"fmt"
	"net"
	"sync"

	pb "github.com/go-sif/sjoin/internal/rpc"
	"github.com/go-sif/sjoin/logging"
	"golang.org/x/net/netutil"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
)

// coordinator is a Coordinator node which has lifecycle methods
type coordinator struct {
	opts              *NodeOptions
	logger            logging.Logger
	server            *grpc.Server
	clusterServer     *clusterServer
	bootstrappingLock sync.Mutex
	lifecycleLock     sync.Mutex
	startErr          error
}

func createCoordinator(opts *NodeOptions) (*coordinator, error) {
	// default certain options if not supplied
	ensureDefaultNodeOptionsValues(opts)
	if err := opts.Validate(Coordinator); err != nil {
		return nil, err
	}
	logger := logging.NewStdLogger("[coordinator] ", opts.logLevel())
	res := &coordinator{opts: opts, logger: logger, clusterServer: createClusterServer(opts.NumWorkers, logger)}
	res.bootstrappingLock.Lock() // lock node as bootstrapping immediately
	return res, nil
}

// IsCoordinator returns true for coordinators
func (c *coordinator) IsCoordinator() bool {
	return true
}

// Start the Coordinator - blocking unless run in a goroutine. Coordinators do not run Jobs, so job may be nil.
func (c *coordinator) Start(job Job) error {
	lis, err := net.Listen("tcp", c.opts.connectionString())
	if err != nil {
		c.startErr = fmt.Errorf("failed to listen: %v", err)
		c.bootstrappingLock.Unlock()
		return c.startErr
	}
	lis = netutil.LimitListener(lis, c.opts.MaxConnections)
	c.lifecycleLock.Lock()
	c.server = grpc.NewServer()
	// register rpc handlers
	pb.RegisterClusterServiceServer(c.server, c.clusterServer)
	pb.RegisterLogServiceServer(c.server, createLogServer(c.logger))
	server := c.server
	c.lifecycleLock.Unlock()
	// we're done bootstrapping
	c.bootstrappingLock.Unlock()
	c.logger.Logf(logging.InfoLevel, "Starting sjoin Coordinator at %s", c.opts.connectionString())
	if err = server.Serve(lis); err != nil && err != grpc.ErrServerStopped {
		return fmt.Errorf("failed to serve: %v", err)
	}
	return nil
}

// GracefulStop the Coordinator, waiting for RPCs to finish
func (c *coordinator) GracefulStop() error {
	c.lifecycleLock.Lock()
	defer c.lifecycleLock.Unlock()
	if c.server != nil {
		c.server.GracefulStop()
		c.server = nil
	}
	return nil
}

// Stop the Coordinator immediately
func (c *coordinator) Stop() error {
	c.lifecycleLock.Lock()
	defer c.lifecycleLock.Unlock()
	if c.server != nil {
		c.server.Stop()
		c.server = nil
	}
	return nil
}

// Run waits for every Worker to join and finish its Job, then stops the Workers. The Result
// holds the number of output rows and the run statistics of every rank.
func (c *coordinator) Run(ctx context.Context) (*Result, error) {
	c.bootstrappingLock.Lock()
	defer c.bootstrappingLock.Unlock()
	if c.startErr != nil {
		return nil, c.startErr
	}

	waitCtx, cancel := context.WithTimeout(ctx, c.opts.WorkerJoinTimeout)
	defer cancel()
	c.logger.Logf(logging.InfoLevel, "Waiting for %d workers to connect...", c.opts.NumWorkers)
	joinErr := c.clusterServer.waitForWorkers(waitCtx)
	workers := c.clusterServer.Workers()
	workerConns, err := dialWorkers(workers, -1)
	if err != nil {
		return nil, err
	}
	// now that worker connections are open, defer shutting them down
	defer func() {
		if err := c.stopWorkers(workers, workerConns); err != nil {
			c.logger.Logf(logging.WarnLevel, "%v", err)
		}
		closeGRPCConnections(workerConns)
	}()
	if joinErr != nil {
		return nil, fmt.Errorf("only %d of %d workers joined: %w", len(workers), c.opts.NumWorkers, joinErr)
	}
	c.logger.Logf(logging.InfoLevel, "Running join across %d ranks...", len(workers))
	reports, err := c.clusterServer.waitForCompletions(ctx)
	if err != nil {
		return nil, err
	}
	res := &Result{OutputRows: make([]int64, len(reports))}
	for rank, report := range reports {
		res.OutputRows[rank] = report.OutputRows
	}
	res.Stats, err = c.collectStatistics(ctx, workers, workerConns)
	if err != nil {
		c.logger.Logf(logging.WarnLevel, "Unable to collect statistics: %v", err)
	}
	c.logger.Logf(logging.InfoLevel, "Join produced %d output rows", res.TotalOutputRows())
	return res, nil
}

func (c *coordinator) collectStatistics(ctx context.Context, workers []*pb.MWorkerDescriptor, workerConns []*grpc.ClientConn) ([]*RankStatistics, error) {
	res := make([]*RankStatistics, len(workers))
	g, gctx := errgroup.WithContext(ctx)
	for i := range workers {
		i := i
		g.Go(func() error {
			rpcCtx, cancel := context.WithTimeout(gctx, c.opts.RPCTimeout)
			defer cancel()
			lifecycleClient := pb.NewLifecycleServiceClient(workerConns[i])
			m, err := lifecycleClient.ProvideStatistics(rpcCtx, &pb.MStatisticsRequest{Id: workers[i].Id})
			if err != nil {
				return fmt.Errorf("Unable to fetch statistics from worker %s: %w", workers[i].Id, err)
			}
			res[i] = statisticsFromMessage(m)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return res, nil
}

func (c *coordinator) stopWorkers(workers []*pb.MWorkerDescriptor, workerConns []*grpc.ClientConn) error {
	var g errgroup.Group
	for i := range workers {
		i := i
		c.logger.Logf(logging.DebugLevel, "Stopping worker %s...", workers[i].Id)
		g.Go(func() error {
			ctx, cancel := context.WithTimeout(context.Background(), c.opts.RPCTimeout)
			defer cancel()
			lifecycleClient := pb.NewLifecycleServiceClient(workerConns[i])
			if _, err := lifecycleClient.Stop(ctx, workers[i]); err != nil {
				return fmt.Errorf("Unable to stop worker %s: %w", workers[i].Id, err)
			}
			return nil
		})
	}
	return g.Wait()
}
