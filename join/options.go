package join

import (
	"fmt"
	"runtime"

	"github.com/go-sif/sjoin"
	"github.com/go-sif/sjoin/errors"
	"github.com/go-sif/sjoin/internal/router"
	"github.com/go-sif/sjoin/logging"
	"github.com/go-sif/sjoin/stats"
)

// A Partitioner maps a join key to a destination rank in [0, size). Every rank must use the same one.
type Partitioner = router.Partitioner

// HashPartitioner routes keys by their xxhash64, and is the default Partitioner
func HashPartitioner(key int32, size int) int {
	return router.HashPartitioner(key, size)
}

// ModuloPartitioner routes key to key mod size, which suits small dense key ranges
func ModuloPartitioner(key int32, size int) int {
	return router.ModuloPartitioner(key, size)
}

// Options configure a distributed join
type Options struct {
	Partitioner      Partitioner          // destination function for both relations (defaults to HashPartitioner)
	ProbeParallelism int                  // goroutines probing the local hash table (0 = runtime.NumCPU())
	Logger           logging.Logger       // receives phase transitions and a summary (defaults to discarding)
	Stats            *stats.RunStatistics // optional statistics tracker
}

func (o *Options) withDefaults() *Options {
	res := &Options{}
	if o != nil {
		*res = *o
	}
	if res.Partitioner == nil {
		res.Partitioner = router.HashPartitioner
	}
	if res.ProbeParallelism == 0 {
		res.ProbeParallelism = runtime.NumCPU()
	}
	if res.Logger == nil {
		res.Logger = logging.Nop()
	}
	return res
}

// Validate checks Options for consistency
func (o *Options) Validate() error {
	if o.ProbeParallelism < 0 {
		return errors.ConfigurationError{Field: "ProbeParallelism", Reason: fmt.Sprintf("must be non-negative, got %d", o.ProbeParallelism)}
	}
	return nil
}

// Phase is a step of the join state machine
type Phase = sjoin.Phase
