package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/go-sif/sjoin"
	"github.com/go-sif/sjoin/cluster"
	"github.com/go-sif/sjoin/datasource/memory"
	"github.com/go-sif/sjoin/datasource/parser/jsonl"
	"github.com/go-sif/sjoin/datasource/random"
	"github.com/go-sif/sjoin/join"
	"github.com/go-sif/sjoin/report"
	"github.com/spf13/cobra"
)

// inputFlags select where a worker's portions of the two relations come from
type inputFlags struct {
	input     string
	build     string
	probe     string
	rows      int64
	seed      int64
	quiet     bool
	partition string
}

func newWorkerCmd() *cobra.Command {
	f := &nodeFlags{}
	in := &inputFlags{}
	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Join the cluster as one rank and run the join",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := f.nodeOptions(cmd)
			if err != nil {
				return err
			}
			job, err := in.job(os.Stdout)
			if err != nil {
				return err
			}
			return runWorker(cmd.Context(), opts, job)
		},
	}
	f.register(cmd)
	flags := cmd.Flags()
	flags.BoolVar(&f.forwardLogs, "forward-logs", false, "forward log messages to the coordinator")
	flags.StringVar(&in.input, "input", "example", "input relations: example, random or jsonl")
	flags.StringVar(&in.build, "build", "", "JSON Lines file of the build relation (--input jsonl)")
	flags.StringVar(&in.probe, "probe", "", "JSON Lines file of the probe relation (--input jsonl)")
	flags.Int64Var(&in.rows, "rows", 10, "global rows per relation (--input random)")
	flags.Int64Var(&in.seed, "seed", 0, "random seed, 0 for the current time (--input random)")
	flags.StringVar(&in.partition, "partitioner", "hash", "key partitioner: hash or modulo")
	flags.BoolVar(&in.quiet, "quiet", false, "do not print input and output tables")
	return cmd
}

func (in *inputFlags) load(comm sjoin.Comm) (*sjoin.BuildChunk, *sjoin.ProbeChunk, error) {
	switch in.input {
	case "example":
		build, probe := memory.Example(comm)
		return build, probe, nil
	case "random":
		return random.Generate(comm, &random.Options{Rows: in.rows, Seed: in.seed})
	case "jsonl":
		parser := jsonl.CreateParser(&jsonl.ParserConf{Comment: '#'})
		build, err := parser.ParseBuildFile(in.build, comm)
		if err != nil {
			return nil, nil, err
		}
		probe, err := parser.ParseProbeFile(in.probe, comm)
		if err != nil {
			return nil, nil, err
		}
		return build, probe, nil
	}
	return nil, nil, fmt.Errorf("unknown input %q", in.input)
}

// job validates the flags up front and returns the Job every worker runs
func (in *inputFlags) job(w io.Writer) (cluster.Job, error) {
	switch in.input {
	case "example", "random":
	case "jsonl":
		if in.build == "" || in.probe == "" {
			return nil, fmt.Errorf("--input jsonl requires --build and --probe")
		}
	default:
		return nil, fmt.Errorf("unknown input %q", in.input)
	}
	var partitioner join.Partitioner
	switch in.partition {
	case "hash":
		partitioner = join.HashPartitioner
	case "modulo":
		partitioner = join.ModuloPartitioner
	default:
		return nil, fmt.Errorf("unknown partitioner %q", in.partition)
	}
	return func(ctx context.Context, env *cluster.JobEnv) (*sjoin.OutputChunk, error) {
		build, probe, err := in.load(env.Comm)
		if err != nil {
			return nil, fmt.Errorf("rank %d could not load its input: %w", env.Comm.Rank, err)
		}
		// every rank takes part in the barrier rounds, quiet or not
		err = report.PrintOrdered(ctx, env.Transport, func() error {
			if !in.quiet {
				report.WriteInput(w, env.Comm.Rank, build, probe)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		out, err := join.Run(ctx, env.Transport, build, probe, &join.Options{
			Partitioner: partitioner,
			Logger:      env.Logger,
			Stats:       env.Stats,
		})
		if err != nil {
			return nil, err
		}
		err = report.PrintOrdered(ctx, env.Transport, func() error {
			if !in.quiet {
				report.WriteOutput(w, env.Comm.Rank, out)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		total, err := join.CountGlobal(ctx, env.Transport, out)
		if err != nil {
			return nil, err
		}
		if env.Comm.Rank == 0 {
			fmt.Fprintf(w, "Global output rows: %d\n", total)
		}
		return out, nil
	}, nil
}

func runWorker(ctx context.Context, opts *cluster.NodeOptions, job cluster.Job) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()
	node, err := cluster.CreateNodeInRole(cluster.Worker, opts)
	if err != nil {
		return err
	}
	go func() {
		<-ctx.Done()
		node.Stop()
	}()
	startErr := make(chan error, 1)
	go func() {
		startErr <- node.Start(job)
	}()
	_, runErr := node.Run(context.Background())
	if err := <-startErr; err != nil {
		return err
	}
	return runErr
}
