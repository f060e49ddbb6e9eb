// Package random generates random relations directly on each rank. Only this rank's portion of
// each global column is generated.
package random

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/go-sif/sjoin"
	"github.com/go-sif/sjoin/errors"
	"github.com/go-sif/sjoin/partition"
)

// Options configure random generation
type Options struct {
	Rows   int64 // global number of rows in each relation. Defaults to 10.
	MaxKey int32 // keys are drawn uniformly from [0, MaxKey]. Defaults to 6.
	Seed   int64 // the same Seed and Comm reproduce the same portion. Defaults to the current time.
}

func (o *Options) withDefaults() *Options {
	res := &Options{}
	if o != nil {
		*res = *o
	}
	if res.Rows == 0 {
		res.Rows = 10
	}
	if res.MaxKey == 0 {
		res.MaxKey = 6
	}
	if res.Seed == 0 {
		res.Seed = time.Now().UnixNano()
	}
	return res
}

// Generate produces this rank's portion of a random build relation and a random probe relation.
// Keys and PayloadA are random, while PayloadB holds each probe row's global row index.
func Generate(comm sjoin.Comm, opts *Options) (*sjoin.BuildChunk, *sjoin.ProbeChunk, error) {
	if err := comm.Validate(); err != nil {
		return nil, nil, err
	}
	o := opts.withDefaults()
	if o.Rows < 0 || o.MaxKey < 0 {
		return nil, nil, errors.ConfigurationError{Field: "Options", Reason: fmt.Sprintf("Rows (%d) and MaxKey (%d) must be non-negative", o.Rows, o.MaxKey)}
	}
	r := rand.New(rand.NewSource(o.Seed + int64(comm.Rank)*7919))
	start, end := partition.Range(o.Rows, comm.Size, comm.Rank)
	n := int(end - start)
	build := &sjoin.BuildChunk{Keys: make([]int32, n)}
	for i := range build.Keys {
		build.Keys[i] = r.Int31n(o.MaxKey + 1)
	}
	probe := &sjoin.ProbeChunk{
		Keys:     make([]int32, n),
		PayloadA: make([]float64, n),
		PayloadB: make([]int32, n),
	}
	for i := range probe.Keys {
		probe.Keys[i] = r.Int31n(o.MaxKey + 1)
	}
	for i := range probe.PayloadA {
		probe.PayloadA[i] = r.Float64()
	}
	for i := range probe.PayloadB {
		probe.PayloadB[i] = int32(start) + int32(i)
	}
	return build, probe, nil
}
