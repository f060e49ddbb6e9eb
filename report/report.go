// Package report renders per-rank input and output tables
package report

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/go-sif/sjoin"
	"github.com/go-sif/sjoin/cluster"
	"github.com/go-sif/sjoin/collective"
	"github.com/olekukonko/tablewriter"
)

func newTable(w io.Writer, cols []string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	table.SetHeader(cols)
	return table
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// WriteInput writes this rank's portions of both relations side by side. Rows beyond the end of
// the shorter relation are left blank on its side.
func WriteInput(w io.Writer, rank int, build *sjoin.BuildChunk, probe *sjoin.ProbeChunk) {
	fmt.Fprintf(w, "Rank %d, input:\n", rank)
	table := newTable(w, []string{"keys1", "keys2", "data0", "data1"})
	n := build.NumRows()
	if probe.NumRows() > n {
		n = probe.NumRows()
	}
	for i := 0; i < n; i++ {
		row := make([]string, 4)
		if i < build.NumRows() {
			row[0] = strconv.Itoa(int(build.Keys[i]))
		}
		if i < probe.NumRows() {
			row[1] = strconv.Itoa(int(probe.Keys[i]))
			row[2] = formatFloat(probe.PayloadA[i])
			row[3] = strconv.Itoa(int(probe.PayloadB[i]))
		}
		table.Append(row)
	}
	table.Render()
}

// WriteOutput writes this rank's portion of the join result
func WriteOutput(w io.Writer, rank int, out *sjoin.OutputChunk) {
	fmt.Fprintf(w, "Rank %d, output:\n", rank)
	table := newTable(w, []string{"key", "data0", "data1"})
	for i := range out.Keys {
		table.Append([]string{
			strconv.Itoa(int(out.Keys[i])),
			formatFloat(out.PayloadA[i]),
			strconv.Itoa(int(out.PayloadB[i])),
		})
	}
	table.Render()
	fmt.Fprintf(w, "(%d rows)\n", out.NumRows())
}

// WriteStatistics writes one row of run statistics per rank, plus a totals row
func WriteStatistics(w io.Writer, ranks []*cluster.RankStatistics) {
	table := newTable(w, []string{"rank", "runtime", "build sent", "build recv", "probe sent", "probe recv", "output"})
	var totals [5]int64
	for _, s := range ranks {
		counts := [5]int64{s.BuildRowsSent, s.BuildRowsReceived, s.ProbeRowsSent, s.ProbeRowsReceived, s.OutputRows}
		row := []string{strconv.Itoa(s.Rank), s.Runtime.String()}
		for i, c := range counts {
			totals[i] += c
			row = append(row, strconv.FormatInt(c, 10))
		}
		table.Append(row)
	}
	footer := []string{"total", ""}
	for _, c := range totals {
		footer = append(footer, strconv.FormatInt(c, 10))
	}
	table.SetFooter(footer)
	table.Render()
}

// PrintOrdered lets each rank call write in turn, rank 0 first, with a barrier between turns. All
// ranks must call it. Ordering is only guaranteed when every rank writes to the same destination
// synchronously.
func PrintOrdered(ctx context.Context, t sjoin.Transport, write func() error) error {
	comm := t.Comm()
	var writeErr error
	for r := 0; r < comm.Size; r++ {
		if r == comm.Rank {
			writeErr = write()
		}
		if err := collective.Barrier(ctx, t); err != nil {
			return err
		}
	}
	return writeErr
}
