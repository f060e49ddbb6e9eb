package sjoin

import (
	"fmt"

	"github.com/go-sif/sjoin/errors"
	"github.com/hashicorp/go-multierror"
)

// BuildChunk is this rank's portion of the build relation, which carries only a key column
type BuildChunk struct {
	Keys []int32
}

// NumRows returns the number of rows held locally
func (c *BuildChunk) NumRows() int {
	return len(c.Keys)
}

// ProbeChunk is this rank's portion of the probe relation. Values at the same index of Keys,
// PayloadA and PayloadB belong to the same row.
type ProbeChunk struct {
	Keys     []int32
	PayloadA []float64
	PayloadB []int32
}

// NumRows returns the number of rows held locally
func (c *ProbeChunk) NumRows() int {
	return len(c.Keys)
}

// Validate checks that all columns of this chunk share the same length
func (c *ProbeChunk) Validate() error {
	return validateColumns("probe", len(c.Keys), len(c.PayloadA), len(c.PayloadB))
}

// OutputChunk is this rank's portion of the join result. It has the shape of a ProbeChunk,
// restricted to rows which matched at least one build row (once per match).
type OutputChunk struct {
	Keys     []int32
	PayloadA []float64
	PayloadB []int32
}

// NewOutputChunk allocates an empty OutputChunk with room for capacity rows
func NewOutputChunk(capacity int) *OutputChunk {
	return &OutputChunk{
		Keys:     make([]int32, 0, capacity),
		PayloadA: make([]float64, 0, capacity),
		PayloadB: make([]int32, 0, capacity),
	}
}

// NumRows returns the number of rows held locally
func (c *OutputChunk) NumRows() int {
	return len(c.Keys)
}

// Append adds a single row to the chunk
func (c *OutputChunk) Append(key int32, a float64, b int32) {
	c.Keys = append(c.Keys, key)
	c.PayloadA = append(c.PayloadA, a)
	c.PayloadB = append(c.PayloadB, b)
}

// Concat appends all rows of other to this chunk
func (c *OutputChunk) Concat(other *OutputChunk) {
	c.Keys = append(c.Keys, other.Keys...)
	c.PayloadA = append(c.PayloadA, other.PayloadA...)
	c.PayloadB = append(c.PayloadB, other.PayloadB...)
}

// Validate checks that all columns of this chunk share the same length
func (c *OutputChunk) Validate() error {
	return validateColumns("output", len(c.Keys), len(c.PayloadA), len(c.PayloadB))
}

func validateColumns(relation string, keys, a, b int) error {
	var multierr *multierror.Error
	if a != keys {
		multierr = multierror.Append(multierr, errors.ConfigurationError{
			Field:  relation + ".PayloadA",
			Reason: fmt.Sprintf("length %d does not match %d keys", a, keys),
		})
	}
	if b != keys {
		multierr = multierror.Append(multierr, errors.ConfigurationError{
			Field:  relation + ".PayloadB",
			Reason: fmt.Sprintf("length %d does not match %d keys", b, keys),
		})
	}
	return multierr.ErrorOrNil()
}
