package testing

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/go-sif/sjoin/cluster"
	"github.com/hashicorp/go-multierror"
)

// LocalRunJoin runs a Job on a localhost test cluster with a certain number of workers. It returns
// the Coordinator's Result and the Result of every Worker, in rank order.
func LocalRunJoin(ctx context.Context, job cluster.Job, opts *cluster.NodeOptions, numWorkers int) (*cluster.Result, []*cluster.Result, error) {
	// configure and start coordinator
	opts.Host = "127.0.0.1"
	if opts.Port == 0 {
		opts.Port = 8080
	}
	opts.CoordinatorPort = opts.Port
	opts.CoordinatorHost = "127.0.0.1"
	opts.NumWorkers = numWorkers
	if opts.WorkerJoinTimeout == 0 {
		opts.WorkerJoinTimeout = time.Duration(10) * time.Second
	}
	opts.RPCTimeout = time.Duration(5) * time.Second

	coordinator, err := cluster.CreateNodeInRole(cluster.Coordinator, cluster.CloneNodeOptions(opts))
	if err != nil {
		return nil, nil, err
	}
	var coordinatorWg, workersWg sync.WaitGroup
	var errsLock sync.Mutex
	var multierr *multierror.Error
	appendErr := func(err error) {
		errsLock.Lock()
		defer errsLock.Unlock()
		multierr = multierror.Append(multierr, err)
	}
	coordinatorWg.Add(1)
	go func() {
		defer coordinatorWg.Done()
		if err := coordinator.Start(nil); err != nil {
			appendErr(err)
		}
	}()
	defer coordinatorWg.Wait()
	defer coordinator.GracefulStop()
	defer workersWg.Wait()
	time.Sleep(50 * time.Millisecond)

	// start workers
	results := make([]*cluster.Result, 0, numWorkers)
	var resultsLock sync.Mutex
	baseWorkerPort := opts.Port + 1
	for port := baseWorkerPort; port < baseWorkerPort+numWorkers; port++ {
		wopts := cluster.CloneNodeOptions(opts)
		wopts.Port = port
		worker, err := cluster.CreateNodeInRole(cluster.Worker, wopts)
		if err != nil {
			return nil, nil, err
		}
		workersWg.Add(2)
		go func() {
			defer workersWg.Done()
			if err := worker.Start(job); err != nil {
				appendErr(err)
			}
		}()
		go func() {
			defer workersWg.Done()
			res, err := worker.Run(ctx)
			if err != nil {
				appendErr(err)
				return
			}
			resultsLock.Lock()
			results = append(results, res)
			resultsLock.Unlock()
		}()
		defer worker.Stop()
	}
	res, err := coordinator.Run(ctx)
	if err != nil {
		return nil, nil, err
	}
	// workers are stopped by the coordinator once they have all finished
	workersWg.Wait()
	if err := multierr.ErrorOrNil(); err != nil {
		return res, nil, fmt.Errorf("workers failed: %w", err)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Rank < results[j].Rank })
	return res, results, nil
}
