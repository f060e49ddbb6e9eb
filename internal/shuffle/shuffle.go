// Package shuffle redistributes a relation across ranks so that every row ends up on the rank its
// key is routed to. A key column and any number of payload columns move together: they share one
// routing permutation and one exchange layout, so a payload value always lands at the same
// position as its key.
package shuffle

import (
	"context"
	"fmt"

	"github.com/go-sif/sjoin"
	"github.com/go-sif/sjoin/collective"
	"github.com/go-sif/sjoin/errors"
	"github.com/go-sif/sjoin/internal/router"
	"github.com/hashicorp/go-multierror"
)

// A Column is a payload column which travels alongside the keys of a Relation
type Column interface {
	Len() int
	permute(perm []int) Column
	exchange(ctx context.Context, t sjoin.Transport, l *router.Layout) (Column, error)
}

// Values is a typed payload Column
type Values[T collective.Element] []T

// Len returns the number of values in this Column
func (v Values[T]) Len() int {
	return len(v)
}

func (v Values[T]) permute(perm []int) Column {
	return Values[T](router.Permute([]T(v), perm))
}

func (v Values[T]) exchange(ctx context.Context, t sjoin.Transport, l *router.Layout) (Column, error) {
	recv, err := collective.AllToAllV(ctx, t, []T(v), l.SendCounts, l.SendDispls, l.RecvCounts, l.RecvDispls)
	if err != nil {
		return nil, err
	}
	return Values[T](recv), nil
}

// Relation is one rank's chunk of a relation: a key column plus positionally-correlated payload columns
type Relation struct {
	Keys    []int32
	Columns []Column
}

// NumRows returns the number of rows in this Relation
func (r *Relation) NumRows() int {
	return len(r.Keys)
}

// Validate checks that every payload column has as many values as there are keys
func (r *Relation) Validate(name string) error {
	var multierr *multierror.Error
	for i, c := range r.Columns {
		if c.Len() != len(r.Keys) {
			multierr = multierror.Append(multierr, errors.ConfigurationError{
				Field:  fmt.Sprintf("%s.Columns[%d]", name, i),
				Reason: fmt.Sprintf("length %d does not match %d keys", c.Len(), len(r.Keys)),
			})
		}
	}
	return multierr.ErrorOrNil()
}

// ColumnValues returns the i-th payload column as a typed slice
func ColumnValues[T collective.Element](r *Relation, i int) ([]T, error) {
	if i < 0 || i >= len(r.Columns) {
		return nil, errors.InvariantError{Message: fmt.Sprintf("relation has no column %d", i)}
	}
	v, ok := r.Columns[i].(Values[T])
	if !ok {
		return nil, errors.InvariantError{Message: fmt.Sprintf("column %d has type %T", i, r.Columns[i])}
	}
	return []T(v), nil
}

// Route is the local half of a shuffle: it computes the send layout and the permuted send buffers
// for every column, without communicating
func Route(rel *Relation, size int, fn router.Partitioner) (*router.Layout, *Relation, error) {
	layout, perm, err := router.Route(rel.Keys, size, fn)
	if err != nil {
		return nil, nil, err
	}
	routed := &Relation{
		Keys:    router.Permute(rel.Keys, perm),
		Columns: make([]Column, len(rel.Columns)),
	}
	for i, c := range rel.Columns {
		routed.Columns[i] = c.permute(perm)
	}
	return layout, routed, nil
}

// Exchange is the global half of a shuffle. It exchanges the send counts of layout with every rank,
// then moves the keys and each payload column of a routed Relation with the same layout. Ranks with
// no rows still take part with all-zero counts.
func Exchange(ctx context.Context, t sjoin.Transport, layout *router.Layout, routed *Relation) (*Relation, error) {
	recvCounts, err := collective.AllToAll(ctx, t, layout.SendCounts)
	if err != nil {
		return nil, err
	}
	layout.SetRecvCounts(recvCounts)
	keys, err := collective.AllToAllV(ctx, t, routed.Keys, layout.SendCounts, layout.SendDispls, layout.RecvCounts, layout.RecvDispls)
	if err != nil {
		return nil, err
	}
	result := &Relation{Keys: keys, Columns: make([]Column, len(routed.Columns))}
	for i, c := range routed.Columns {
		result.Columns[i], err = c.exchange(ctx, t, layout)
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

// Shuffle validates, routes and exchanges rel, returning the rows this rank now owns (grouped by
// sending rank) along with the Layout used to move them
func Shuffle(ctx context.Context, t sjoin.Transport, rel *Relation, fn router.Partitioner) (*Relation, *router.Layout, error) {
	if err := rel.Validate("relation"); err != nil {
		return nil, nil, err
	}
	layout, routed, err := Route(rel, t.Comm().Size, fn)
	if err != nil {
		return nil, nil, err
	}
	result, err := Exchange(ctx, t, layout, routed)
	if err != nil {
		return nil, nil, err
	}
	return result, layout, nil
}
