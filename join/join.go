// Package join runs a distributed inner equi-join. Both relations are shuffled by key so that equal
// keys meet on the same rank, where a local hash join produces that rank's share of the output.
package join

import (
	"context"

	"github.com/go-sif/sjoin"
	"github.com/go-sif/sjoin/collective"
	"github.com/go-sif/sjoin/internal/hashjoin"
	"github.com/go-sif/sjoin/internal/shuffle"
	iutil "github.com/go-sif/sjoin/internal/util"
	"github.com/go-sif/sjoin/logging"
	"github.com/hashicorp/go-multierror"
)

type driver struct {
	comm  sjoin.Comm
	opts  *Options
	phase sjoin.Phase
}

func (d *driver) enter(p sjoin.Phase) {
	d.opts.Logger.Logf(logging.DebugLevel, "%s: %s -> %s", d.comm, d.phase, p)
	d.phase = p
	if d.opts.Stats != nil {
		d.opts.Stats.EnterPhase(p)
	}
}

// Run joins this rank's build and probe chunks with those of every other rank, and returns this
// rank's share of the output. It is a collective: all ranks must call it together, with the same
// Partitioner. Local inputs are validated before any communication takes place, so a
// ConfigurationError never leaves other ranks waiting. Any TransportError is fatal for the group.
func Run(ctx context.Context, t sjoin.Transport, build *sjoin.BuildChunk, probe *sjoin.ProbeChunk, opts *Options) (*sjoin.OutputChunk, error) {
	o := opts.withDefaults()
	if build == nil {
		build = &sjoin.BuildChunk{}
	}
	if probe == nil {
		probe = &sjoin.ProbeChunk{}
	}
	if err := validate(t.Comm(), probe, o); err != nil {
		return nil, err
	}
	d := &driver{comm: t.Comm(), opts: o, phase: sjoin.Idle}
	if o.Stats != nil {
		o.Stats.Start()
		defer o.Stats.Finish()
	}

	d.enter(sjoin.RoutingBuild)
	buildLayout, routedBuild, err := shuffle.Route(&shuffle.Relation{Keys: build.Keys}, d.comm.Size, o.Partitioner)
	if err != nil {
		return nil, err
	}
	d.enter(sjoin.ShufflingBuild)
	shuffledBuild, err := shuffle.Exchange(ctx, t, buildLayout, routedBuild)
	if err != nil {
		return nil, err
	}
	if o.Stats != nil {
		o.Stats.RecordBuildShuffle(buildLayout.NumSend(), buildLayout.NumRecv())
	}

	d.enter(sjoin.RoutingProbe)
	probeRel := &shuffle.Relation{
		Keys: probe.Keys,
		Columns: []shuffle.Column{
			shuffle.Values[float64](probe.PayloadA),
			shuffle.Values[int32](probe.PayloadB),
		},
	}
	probeLayout, routedProbe, err := shuffle.Route(probeRel, d.comm.Size, o.Partitioner)
	if err != nil {
		return nil, err
	}
	d.enter(sjoin.ShufflingProbe)
	shuffledProbe, err := shuffle.Exchange(ctx, t, probeLayout, routedProbe)
	if err != nil {
		return nil, err
	}
	if o.Stats != nil {
		o.Stats.RecordProbeShuffle(probeLayout.NumSend(), probeLayout.NumRecv())
	}

	d.enter(sjoin.Joining)
	payloadA, err := shuffle.ColumnValues[float64](shuffledProbe, 0)
	if err != nil {
		return nil, err
	}
	payloadB, err := shuffle.ColumnValues[int32](shuffledProbe, 1)
	if err != nil {
		return nil, err
	}
	table := hashjoin.Build(shuffledBuild.Keys)
	out, err := table.ProbeParallel(ctx, &sjoin.ProbeChunk{Keys: shuffledProbe.Keys, PayloadA: payloadA, PayloadB: payloadB}, o.ProbeParallelism)
	if err != nil {
		return nil, err
	}
	if o.Stats != nil {
		o.Stats.RecordOutput(out.NumRows())
	}
	d.enter(sjoin.Done)
	o.Logger.Logf(logging.InfoLevel, "%s: joined %d build rows (%d keys) with %d probe rows into %d output rows",
		d.comm, table.NumRows(), table.NumKeys(), shuffledProbe.NumRows(), out.NumRows())
	return out, nil
}

// CountGlobal returns the total number of output rows across all ranks. It is a collective.
func CountGlobal(ctx context.Context, t sjoin.Transport, out *sjoin.OutputChunk) (int64, error) {
	return collective.Sum(ctx, t, int64(out.NumRows()))
}

func validate(comm sjoin.Comm, probe *sjoin.ProbeChunk, o *Options) error {
	var multierr *multierror.Error
	if err := comm.Validate(); err != nil {
		multierr = multierror.Append(multierr, err)
	}
	if err := o.Validate(); err != nil {
		multierr = multierror.Append(multierr, err)
	}
	if err := probe.Validate(); err != nil {
		multierr = multierror.Append(multierr, err)
	}
	if multierr != nil {
		multierr.ErrorFormat = iutil.FormatMultiError
	}
	return multierr.ErrorOrNil()
}
