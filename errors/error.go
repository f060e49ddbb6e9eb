package errors

import (
	"fmt"
)

// ConfigurationError occurs when local input or options are inconsistent. It is always raised
// before a collective is entered.
type ConfigurationError struct {
	Field  string
	Reason string
}

// Error returns a textual representation of this ConfigurationError
func (e ConfigurationError) Error() string {
	return fmt.Sprintf("Invalid configuration for %s: %s", e.Field, e.Reason)
}

// TransportError occurs when a collective operation fails. It is fatal for the entire group of ranks.
type TransportError struct {
	Op    string // the collective which failed
	Peer  int    // the rank involved, or -1 if none in particular
	Cause error
}

// Error returns a textual representation of this TransportError
func (e *TransportError) Error() string {
	if e.Peer >= 0 {
		return fmt.Sprintf("Transport failure during %s with rank %d: %v", e.Op, e.Peer, e.Cause)
	}
	return fmt.Sprintf("Transport failure during %s: %v", e.Op, e.Cause)
}

// Unwrap returns the underlying cause of this TransportError
func (e *TransportError) Unwrap() error {
	return e.Cause
}

// InvariantError occurs when an internal invariant is violated, indicating a defect
type InvariantError struct{ Message string }

// Error returns a textual representation of this InvariantError
func (e InvariantError) Error() string {
	return "Invariant violated: " + e.Message
}
