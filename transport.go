package sjoin

import "context"

// A Transport moves bytes between the ranks of a fixed-size group. Exchange is a collective: every
// rank must call it the same number of times, in the same order, and each call blocks until all
// ranks have contributed. parts must have exactly Comm().Size elements; parts[r] is delivered to
// rank r (including this rank), and element r of the result is the part rank r addressed to this
// rank. Any error is fatal for the whole group.
type Transport interface {
	Comm() Comm
	Exchange(ctx context.Context, parts [][]byte) ([][]byte, error)
}
