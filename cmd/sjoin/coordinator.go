package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/go-sif/sjoin/cluster"
	"github.com/go-sif/sjoin/report"
	"github.com/spf13/cobra"
)

func newCoordinatorCmd() *cobra.Command {
	f := &nodeFlags{}
	cmd := &cobra.Command{
		Use:   "coordinator",
		Short: "Assign ranks to workers and oversee a join",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := f.nodeOptions(cmd)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("coordinator-host") && f.config == "" {
				opts.CoordinatorHost = opts.Host
			}
			opts.CoordinatorPort = opts.Port
			return runCoordinator(cmd.Context(), opts)
		},
	}
	f.register(cmd)
	cmd.Flags().IntVar(&f.workers, "workers", 1, "number of workers, and therefore ranks, to wait for")
	return cmd
}

func runCoordinator(ctx context.Context, opts *cluster.NodeOptions) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()
	node, err := cluster.CreateNodeInRole(cluster.Coordinator, opts)
	if err != nil {
		return err
	}
	startErr := make(chan error, 1)
	go func() {
		startErr <- node.Start(nil)
	}()
	res, runErr := node.Run(ctx)
	node.GracefulStop()
	if err := <-startErr; err != nil {
		return err
	}
	if runErr != nil {
		return runErr
	}
	if len(res.Stats) > 0 {
		report.WriteStatistics(os.Stdout, res.Stats)
	}
	fmt.Fprintf(os.Stdout, "Total output rows: %d\n", res.TotalOutputRows())
	return nil
}
