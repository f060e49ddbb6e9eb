package cluster

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/go-sif/sjoin"
	"github.com/go-sif/sjoin/errors"
	"github.com/go-sif/sjoin/internal/codec"
	iutil "github.com/go-sif/sjoin/internal/util"
	"github.com/go-sif/sjoin/logging"
	"github.com/go-sif/sjoin/stats"
	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"
)

// NodeRole describes the intended role of a Node
type NodeRole = string

const (
	// Coordinator indicates that a node should assign ranks and oversee a join
	//   e.g. CreateNodeInRole(Coordinator, &NodeOptions{...})
	Coordinator NodeRole = "coordinator"
	// Worker indicates that a node should act as one rank of a join
	//   e.g. CreateNodeInRole(Worker, &NodeOptions{...})
	Worker NodeRole = "worker"
)

// JobEnv carries everything a Job receives from the Worker running it
type JobEnv struct {
	Comm      sjoin.Comm
	Transport sjoin.Transport
	Logger    logging.Logger       // logs locally and, if configured, on the Coordinator
	Stats     *stats.RunStatistics // reported to the Coordinator when the Job completes
}

// A Job is the work a Worker performs once it knows its rank and can reach its peers. It is
// typically a call to join.Run, and must be identical on every Worker. ctx is cancelled if the
// Worker is stopped, for example because another rank failed.
type Job func(ctx context.Context, env *JobEnv) (*sjoin.OutputChunk, error)

// RankStatistics summarizes the RunStatistics of one rank
type RankStatistics struct {
	Rank              int
	Runtime           time.Duration
	PhaseRuntimes     []time.Duration // indexed by sjoin.Phase
	BuildRowsSent     int64
	BuildRowsReceived int64
	ProbeRowsSent     int64
	ProbeRowsReceived int64
	OutputRows        int64
}

// Result summarizes a finished join. On the Coordinator, OutputRows and Stats hold one entry per
// rank. On a Worker, Rank and Output describe the local share of the output.
type Result struct {
	OutputRows []int64
	Stats      []*RankStatistics
	Rank       int
	Output     *sjoin.OutputChunk
}

// TotalOutputRows sums OutputRows
func (r *Result) TotalOutputRows() int64 {
	var total int64
	for _, n := range r.OutputRows {
		total += n
	}
	return total
}

// Node is a member of an sjoin cluster, either coordinating or acting as a rank.
// Nodes present several methods to control their lifecycle.
type Node interface {
	IsCoordinator() bool
	Start(job Job) error
	GracefulStop() error
	Stop() error
	Run(ctx context.Context) (*Result, error)
}

// NodeOptions are options for a Node, configuring elements of an sjoin cluster
type NodeOptions struct {
	Port                 int           `yaml:"port"`                 // port for this Node to bind to
	Host                 string        `yaml:"host"`                 // hostname for this Node to bind to
	CoordinatorPort      int           `yaml:"coordinatorPort"`      // port for the Coordinator Node (potentially identical to Port if this is the Coordinator)
	CoordinatorHost      string        `yaml:"coordinatorHost"`      // [REQUIRED] hostname of the Coordinator Node (potentially identical to Host if this is the Coordinator)
	NumWorkers           int           `yaml:"numWorkers"`           // [REQUIRED on the Coordinator] the number of Workers, and therefore ranks, to wait for
	WorkerJoinTimeout    time.Duration `yaml:"workerJoinTimeout"`    // how long to wait for all Workers to join
	WorkerJoinRetries    int           `yaml:"workerJoinRetries"`    // how many times a Worker should retry connecting to the Coordinator (at one second intervals)
	RPCTimeout           time.Duration `yaml:"rpcTimeout"`           // timeout for control RPC calls (not collective rounds, which wait as long as peers need)
	Compression          string        `yaml:"compression"`          // lz4, zstd or none
	CompressionThreshold int           `yaml:"compressionThreshold"` // parts smaller than this many bytes are sent uncompressed
	MaxInFlight          int           `yaml:"maxInFlight"`          // the number of peers a Worker sends to concurrently during a collective round
	MaxConnections       int           `yaml:"maxConnections"`       // the number of simultaneous connections a Node accepts
	LogLevel             string        `yaml:"logLevel"`             // minimum level of messages logged (and forwarded by Workers), e.g. "info"
	ForwardLogs          bool          `yaml:"forwardLogs"`          // iff true, Workers forward their log messages to the Coordinator
}

// CloneNodeOptions makes a copy of a NodeOptions
func CloneNodeOptions(opts *NodeOptions) *NodeOptions {
	res := *opts
	return &res
}

// LoadNodeOptions reads NodeOptions from a YAML file
func LoadNodeOptions(path string) (*NodeOptions, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read node options from %s: %w", path, err)
	}
	return ParseNodeOptions(data)
}

// ParseNodeOptions decodes YAML-encoded NodeOptions. Durations are written like "5s".
func ParseNodeOptions(data []byte) (*NodeOptions, error) {
	opts := &NodeOptions{}
	if err := yaml.Unmarshal(data, opts); err != nil {
		return nil, errors.ConfigurationError{Field: "NodeOptions", Reason: err.Error()}
	}
	return opts, nil
}

func ensureDefaultNodeOptionsValues(opts *NodeOptions) {
	if opts.Port == 0 {
		opts.Port = 1643
	}
	if len(opts.Host) == 0 {
		opts.Host = "0.0.0.0"
	}
	if opts.CoordinatorPort == 0 {
		opts.CoordinatorPort = 1643
	}
	if opts.RPCTimeout == 0 {
		opts.RPCTimeout = time.Duration(5) * time.Second
	}
	if opts.WorkerJoinTimeout == 0 {
		opts.WorkerJoinTimeout = time.Duration(30) * time.Second
	}
	if opts.WorkerJoinRetries == 0 {
		opts.WorkerJoinRetries = 5
	}
	if len(opts.Compression) == 0 {
		opts.Compression = codec.LZ4.String()
	}
	if opts.CompressionThreshold == 0 {
		opts.CompressionThreshold = 4 * 1024
	}
	if opts.MaxInFlight == 0 {
		opts.MaxInFlight = 8
	}
	if opts.MaxConnections == 0 {
		opts.MaxConnections = 1024
	}
	if len(opts.LogLevel) == 0 {
		opts.LogLevel = logging.LogLevelToString(logging.InfoLevel)
	}
}

// Validate checks NodeOptions for a Node in a particular role
func (o *NodeOptions) Validate(role NodeRole) error {
	var multierr *multierror.Error
	if len(o.CoordinatorHost) == 0 {
		multierr = multierror.Append(multierr, errors.ConfigurationError{Field: "CoordinatorHost", Reason: "must be the address of the sjoin Coordinator"})
	}
	if role == Coordinator && o.NumWorkers <= 0 {
		multierr = multierror.Append(multierr, errors.ConfigurationError{Field: "NumWorkers", Reason: fmt.Sprintf("must be greater than 0, got %d", o.NumWorkers)})
	}
	if _, err := codec.ParseAlgorithm(o.Compression); err != nil {
		multierr = multierror.Append(multierr, err)
	}
	if _, err := logging.ParseLogLevel(o.LogLevel); err != nil {
		multierr = multierror.Append(multierr, errors.ConfigurationError{Field: "LogLevel", Reason: err.Error()})
	}
	if o.CompressionThreshold < 0 {
		multierr = multierror.Append(multierr, errors.ConfigurationError{Field: "CompressionThreshold", Reason: "must be non-negative"})
	}
	if o.MaxInFlight < 0 || o.MaxConnections < 0 {
		multierr = multierror.Append(multierr, errors.ConfigurationError{Field: "MaxInFlight/MaxConnections", Reason: "must be non-negative"})
	}
	if multierr != nil {
		multierr.ErrorFormat = iutil.FormatMultiError
	}
	return multierr.ErrorOrNil()
}

// logLevel returns the parsed LogLevel, which Validate has already checked
func (o *NodeOptions) logLevel() int {
	level, _ := logging.ParseLogLevel(o.LogLevel)
	return level
}

// connectionString returns the connection string for this node
func (o *NodeOptions) connectionString() string {
	return fmt.Sprintf("%s:%d", o.Host, o.Port)
}

// coordinatorConnectionString returns the connection string for the coordinator
func (o *NodeOptions) coordinatorConnectionString() string {
	return fmt.Sprintf("%s:%d", o.CoordinatorHost, o.CoordinatorPort)
}

// CreateNodeInRole creates an sjoin node in a specific role (Coordinator or Worker)
func CreateNodeInRole(role NodeRole, opts *NodeOptions) (Node, error) {
	switch role {
	case Coordinator:
		return createCoordinator(opts)
	case Worker:
		return createWorker(opts)
	default:
		return nil, fmt.Errorf("%s is an unknown NodeRole", role)
	}
}

// CreateNode creates an sjoin node, deriving role from environment variables
func CreateNode(opts *NodeOptions) (Node, error) {
	role := os.Getenv("SJOIN_NODE_TYPE")
	if len(role) == 0 {
		return nil, fmt.Errorf("$SJOIN_NODE_TYPE is not set - must be \"%s\" or \"%s\"", Coordinator, Worker)
	}
	switch role {
	case Coordinator, Worker:
		return CreateNodeInRole(role, opts)
	default:
		return nil, fmt.Errorf("$SJOIN_NODE_TYPE=\"%s\" is an unknown NodeRole", role)
	}
}
