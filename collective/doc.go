// Package collective implements the typed collective operations a distributed join needs on top of
// the byte-level sjoin.Transport: an all-reduce sum of a scalar, a fixed-size all-to-all of counts,
// and a variable-size all-to-all of a column buffer laid out by counts and displacements. Column
// values travel as packed fixed-width protobuf fields.
package collective
