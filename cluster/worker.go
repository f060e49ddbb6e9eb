package cluster

import (
	"context"
	"fmt"
	"log"
	"net"
	"sync"
	"time"

	"github.com/go-sif/sjoin"
	"github.com/go-sif/sjoin/internal/codec"
	pb "github.com/go-sif/sjoin/internal/rpc"
	"github.com/go-sif/sjoin/logging"
	"github.com/go-sif/sjoin/stats"
	uuid "github.com/gofrs/uuid"
	"golang.org/x/net/netutil"
	"google.golang.org/grpc"
)

type worker struct {
	id            string
	opts          *NodeOptions
	logger        logging.Logger
	server        *grpc.Server
	lifecycleLock sync.Mutex
	clusterClient pb.ClusterServiceClient
	logClient     pb.LogServiceClient
	codec         *codec.Codec
	mailbox       *mailbox
	statsTracker  *stats.RunStatistics
	comm          sjoin.Comm
	jobCtx        context.Context
	jobCancel     context.CancelFunc
	jobDone       chan struct{}
	finished      chan struct{}
	resultLock    sync.Mutex
	result        *Result
	jobErr        error
}

// CreateWorker is a factory for Workers
func createWorker(opts *NodeOptions) (*worker, error) {
	// default certain options if not supplied
	ensureDefaultNodeOptionsValues(opts)
	if err := opts.Validate(Worker); err != nil {
		return nil, err
	}
	// generate worker ID
	id, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("failed to generate UUID: %v", err)
	}
	alg, _ := codec.ParseAlgorithm(opts.Compression)
	c, err := codec.New(alg, opts.CompressionThreshold)
	if err != nil {
		return nil, err
	}
	jobCtx, jobCancel := context.WithCancel(context.Background())
	return &worker{
		id:           id.String(),
		opts:         opts,
		logger:       logging.NewStdLogger(fmt.Sprintf("[worker %s] ", id.String()[:8]), opts.logLevel()),
		codec:        c,
		statsTracker: &stats.RunStatistics{},
		jobCtx:       jobCtx,
		jobCancel:    jobCancel,
		jobDone:      make(chan struct{}),
		finished:     make(chan struct{}),
	}, nil
}

func (w *worker) mconnect() (*grpc.ClientConn, error) {
	// start client
	conn, err := pb.Dial(w.opts.coordinatorConnectionString())
	if err != nil {
		return nil, fmt.Errorf("fail to dial: %v", err)
	}
	w.logClient = pb.NewLogServiceClient(conn)
	w.clusterClient = pb.NewClusterServiceClient(conn)
	if w.opts.ForwardLogs {
		w.logger = logging.Tee(w.logger, &remoteLogger{
			source:   w.id,
			client:   w.logClient,
			timeout:  w.opts.RPCTimeout,
			minLevel: w.opts.logLevel(),
		})
	}
	return conn, nil
}

func (w *worker) register() (*pb.MRegisterResponse, error) {
	ctx, cancel := context.WithTimeout(context.Background(), w.opts.RPCTimeout)
	defer cancel()
	req := pb.MRegisterRequest{
		Id:   w.id,
		Port: int32(w.opts.Port),
	}
	if w.clusterClient == nil {
		log.Fatalf("Cannot register before dialing coordinator with mconnect()")
	}
	return w.clusterClient.RegisterWorker(ctx, &req)
}

// ID returns the ID of this worker
func (w *worker) ID() string {
	return w.id
}

// Rank returns the rank assigned to this worker, or -1 before registration
func (w *worker) Rank() int {
	w.resultLock.Lock()
	defer w.resultLock.Unlock()
	if w.comm.Size == 0 {
		return -1
	}
	return w.comm.Rank
}

// IsCoordinator returns true for coordinators
func (w *worker) IsCoordinator() bool {
	return false
}

// Start the worker - will block the current thread until the worker is stopped
func (w *worker) Start(job Job) error {
	defer close(w.finished)
	defer w.codec.Destroy()
	if job == nil {
		close(w.jobDone)
		return fmt.Errorf("Job cannot be nil")
	}
	// connect to coordinator
	conn, err := w.mconnect()
	if err != nil {
		close(w.jobDone)
		return err
	}
	defer conn.Close()
	// listen before registering, so that peers can reach us as soon as they know of us
	lis, err := net.Listen("tcp", w.opts.connectionString())
	if err != nil {
		close(w.jobDone)
		return fmt.Errorf("failed to listen: %v", err)
	}
	lis = netutil.LimitListener(lis, w.opts.MaxConnections)
	res, err := w.registerWithCoordinator()
	if err != nil {
		lis.Close()
		close(w.jobDone)
		return err
	}
	w.resultLock.Lock()
	w.comm = sjoin.Comm{Rank: int(res.Rank), Size: int(res.Size)}
	w.resultLock.Unlock()
	w.mailbox = newMailbox(int(res.Size))
	w.lifecycleLock.Lock()
	w.server = grpc.NewServer()
	pb.RegisterLifecycleServiceServer(w.server, createLifecycleServer(w))
	pb.RegisterExchangeServiceServer(w.server, createExchangeServer(w.mailbox, w.codec))
	server := w.server
	w.lifecycleLock.Unlock()
	w.logger.Logf(logging.InfoLevel, "Registered as rank %d of %d", res.Rank, res.Size)
	go w.runJob(job)
	err = server.Serve(lis)
	// the job cannot make progress without our server, so cancel it and wait for it to wrap up
	w.jobCancel()
	<-w.jobDone
	if err != nil && err != grpc.ErrServerStopped {
		return fmt.Errorf("failed to serve: %v", err)
	}
	return nil
}

// GracefulStop the worker, waiting for RPCs to finish
func (w *worker) GracefulStop() error {
	w.lifecycleLock.Lock()
	defer w.lifecycleLock.Unlock()
	w.jobCancel()
	if w.server != nil {
		w.server.GracefulStop()
		w.server = nil
	}
	return nil
}

// Stop the worker immediately
func (w *worker) Stop() error {
	w.lifecycleLock.Lock()
	defer w.lifecycleLock.Unlock()
	w.jobCancel()
	if w.server != nil {
		w.server.Stop()
		w.server = nil
	}
	return nil
}

// Run blocks until the worker is shut down, and returns the output of its Job
func (w *worker) Run(ctx context.Context) (*Result, error) {
	select {
	case <-w.finished:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	w.resultLock.Lock()
	defer w.resultLock.Unlock()
	if w.result == nil && w.jobErr == nil {
		return nil, fmt.Errorf("worker stopped before completing its job")
	}
	return w.result, w.jobErr
}

// registerWithCoordinator retries registration at one second intervals
func (w *worker) registerWithCoordinator() (*pb.MRegisterResponse, error) {
	var err error
	for retries := 0; retries < w.opts.WorkerJoinRetries; retries++ {
		var res *pb.MRegisterResponse
		if res, err = w.register(); err == nil {
			return res, nil
		}
		w.logger.Logf(logging.DebugLevel, "Unable to register with coordinator: %v", err)
		time.Sleep(time.Second)
	}
	return nil, fmt.Errorf("unable to register with coordinator after %d attempts: %w", w.opts.WorkerJoinRetries, err)
}

// awaitRoster polls the coordinator until every worker has joined
func (w *worker) awaitRoster(ctx context.Context) (*pb.MRosterResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, w.opts.WorkerJoinTimeout)
	defer cancel()
	for {
		rpcCtx, rpcCancel := context.WithTimeout(ctx, w.opts.RPCTimeout)
		roster, err := w.clusterClient.Roster(rpcCtx, &pb.MRosterRequest{Id: w.id})
		rpcCancel()
		if err != nil {
			return nil, err
		} else if roster.Ready {
			return roster, nil
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("not all workers joined: %w", ctx.Err())
		case <-time.After(clusterPollInterval):
		}
	}
}

func (w *worker) runJob(job Job) {
	defer close(w.jobDone)
	roster, err := w.awaitRoster(w.jobCtx)
	if err != nil {
		w.finishJob(nil, err)
		return
	}
	comm := sjoin.Comm{Rank: int(roster.Rank), Size: int(roster.Size)}
	t, err := createTransport(comm, roster.GetWorkers(), w.mailbox, w.codec, w.opts.MaxInFlight, w.logger)
	if err != nil {
		w.finishJob(nil, err)
		return
	}
	defer t.Close()
	out, err := job(w.jobCtx, &JobEnv{Comm: comm, Transport: t, Logger: w.logger, Stats: w.statsTracker})
	if err == nil && out != nil {
		err = out.Validate()
	}
	w.finishJob(out, err)
}

// finishJob records the outcome of the job and reports it to the coordinator
func (w *worker) finishJob(out *sjoin.OutputChunk, jobErr error) {
	if jobErr == nil && out == nil {
		out = sjoin.NewOutputChunk(0)
	}
	w.resultLock.Lock()
	report := &pb.MCompletionReport{Id: w.id, Rank: int32(w.comm.Rank)}
	if jobErr != nil {
		w.jobErr = jobErr
		report.Error = jobErr.Error()
	} else {
		w.result = &Result{Rank: w.comm.Rank, Output: out, OutputRows: []int64{int64(out.NumRows())}}
		report.OutputRows = int64(out.NumRows())
	}
	w.resultLock.Unlock()
	if jobErr != nil {
		w.logger.Logf(logging.ErrorLevel, "Job failed: %v", jobErr)
	} else {
		w.logger.Logf(logging.InfoLevel, "Job finished with %d output rows", report.OutputRows)
	}
	ctx, cancel := context.WithTimeout(context.Background(), w.opts.RPCTimeout)
	defer cancel()
	if _, err := w.clusterClient.ReportCompletion(ctx, report); err != nil {
		log.Printf("Unable to report completion to coordinator: %v", err)
	}
}
