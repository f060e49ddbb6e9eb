package sjoin

import (
	"fmt"

	"github.com/go-sif/sjoin/errors"
)

// Comm identifies this participant within a fixed-size group of ranks. It is supplied by the
// bootstrap collaborator and is read-only for the duration of a join.
type Comm struct {
	Rank int // this participant's rank, in [0, Size)
	Size int // the number of participants
}

// Validate checks that a Comm describes a legal participant
func (c Comm) Validate() error {
	if c.Size <= 0 {
		return errors.ConfigurationError{Field: "Size", Reason: fmt.Sprintf("participant count must be positive, got %d", c.Size)}
	}
	if c.Rank < 0 || c.Rank >= c.Size {
		return errors.ConfigurationError{Field: "Rank", Reason: fmt.Sprintf("rank %d is outside [0, %d)", c.Rank, c.Size)}
	}
	return nil
}

// String returns a textual representation of this Comm
func (c Comm) String() string {
	return fmt.Sprintf("rank %d/%d", c.Rank, c.Size)
}
