// Package memory supplies each rank with its portion of relations held entirely in memory, for
// example because every rank generated or received the same global arrays.
package memory

import (
	"github.com/go-sif/sjoin"
	"github.com/go-sif/sjoin/partition"
)

// LoadBuild returns this rank's portion of a global build key column
func LoadBuild(keys []int32, comm sjoin.Comm) *sjoin.BuildChunk {
	return &sjoin.BuildChunk{Keys: partition.Slice(keys, comm.Size, comm.Rank)}
}

// LoadProbe returns this rank's portion of a global probe relation. All three columns must have
// the same length.
func LoadProbe(keys []int32, payloadA []float64, payloadB []int32, comm sjoin.Comm) (*sjoin.ProbeChunk, error) {
	global := &sjoin.ProbeChunk{Keys: keys, PayloadA: payloadA, PayloadB: payloadB}
	if err := global.Validate(); err != nil {
		return nil, err
	}
	return &sjoin.ProbeChunk{
		Keys:     partition.Slice(keys, comm.Size, comm.Rank),
		PayloadA: partition.Slice(payloadA, comm.Size, comm.Rank),
		PayloadB: partition.Slice(payloadB, comm.Size, comm.Rank),
	}, nil
}

// Example returns this rank's portion of a small worked example, whose join yields 6 rows:
// (0, 2.0, 1) twice, (1, 1.0, 4) three times and (2, 4.0, 3) once.
func Example(comm sjoin.Comm) (*sjoin.BuildChunk, *sjoin.ProbeChunk) {
	build := LoadBuild([]int32{0, 1, 1, 2, 1, 0}, comm)
	probe, _ := LoadProbe(
		[]int32{1, 0, 4, 2, 5, 3},
		[]float64{1.0, 2.0, 3.0, 4.0, 5.0, 6.0},
		[]int32{4, 1, 2, 3, 0, 5},
		comm,
	)
	return build, probe
}
