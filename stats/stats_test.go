package stats

import (
	"testing"
	"time"

	"github.com/go-sif/sjoin"
	"github.com/stretchr/testify/require"
)

func TestPhaseTracking(t *testing.T) {
	rs := &RunStatistics{}
	require.Equal(t, int64(0), rs.GetRuntime())
	rs.Start()
	rs.EnterPhase(sjoin.ShufflingBuild)
	time.Sleep(5 * time.Millisecond)
	rs.EnterPhase(sjoin.Joining)
	require.Equal(t, sjoin.Joining, rs.GetCurrentPhase())
	rs.Finish()
	require.Equal(t, sjoin.Done, rs.GetCurrentPhase())
	require.True(t, rs.GetPhaseRuntime(sjoin.ShufflingBuild) >= int64(5*time.Millisecond))
	runtime := rs.GetRuntime()
	require.True(t, runtime >= rs.GetPhaseRuntime(sjoin.ShufflingBuild))
	// finished runs report a fixed runtime
	time.Sleep(time.Millisecond)
	require.Equal(t, runtime, rs.GetRuntime())
}

func TestRowCounters(t *testing.T) {
	rs := &RunStatistics{}
	rs.RecordBuildShuffle(3, 4)
	rs.RecordProbeShuffle(5, 2)
	rs.RecordOutput(6)
	sent, recv := rs.GetBuildRows()
	require.Equal(t, int64(3), sent)
	require.Equal(t, int64(4), recv)
	sent, recv = rs.GetProbeRows()
	require.Equal(t, int64(5), sent)
	require.Equal(t, int64(2), recv)
	require.Equal(t, int64(6), rs.GetOutputRows())
}
