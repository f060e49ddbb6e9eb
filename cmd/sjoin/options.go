package main

import (
	"github.com/go-sif/sjoin/cluster"
	"github.com/spf13/cobra"
)

// nodeFlags are the command line overrides of cluster.NodeOptions
type nodeFlags struct {
	config          string
	host            string
	port            int
	coordinatorHost string
	coordinatorPort int
	workers         int
	compression     string
	logLevel        string
	forwardLogs     bool
}

func (f *nodeFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.config, "config", "", "YAML file of node options; flags take precedence")
	flags.StringVar(&f.host, "host", "0.0.0.0", "host to bind to")
	flags.IntVar(&f.port, "port", 1643, "port to bind to")
	flags.StringVar(&f.coordinatorHost, "coordinator-host", "localhost", "host of the coordinator")
	flags.IntVar(&f.coordinatorPort, "coordinator-port", 1643, "port of the coordinator")
	flags.StringVar(&f.compression, "compression", "lz4", "compression of exchanged data: lz4, zstd or none")
	flags.StringVar(&f.logLevel, "log-level", "info", "minimum level of logged messages")
}

// nodeOptions loads the config file, if any, and applies every flag the user set explicitly
func (f *nodeFlags) nodeOptions(cmd *cobra.Command) (*cluster.NodeOptions, error) {
	opts := &cluster.NodeOptions{}
	if f.config != "" {
		loaded, err := cluster.LoadNodeOptions(f.config)
		if err != nil {
			return nil, err
		}
		opts = loaded
	}
	flags := cmd.Flags()
	set := func(name string, apply func()) {
		if flags.Changed(name) || f.config == "" {
			apply()
		}
	}
	set("host", func() { opts.Host = f.host })
	set("port", func() { opts.Port = f.port })
	set("coordinator-host", func() { opts.CoordinatorHost = f.coordinatorHost })
	set("coordinator-port", func() { opts.CoordinatorPort = f.coordinatorPort })
	set("compression", func() { opts.Compression = f.compression })
	set("log-level", func() { opts.LogLevel = f.logLevel })
	if flags.Lookup("workers") != nil {
		set("workers", func() { opts.NumWorkers = f.workers })
	}
	if flags.Lookup("forward-logs") != nil {
		set("forward-logs", func() { opts.ForwardLogs = f.forwardLogs })
	}
	return opts, nil
}
