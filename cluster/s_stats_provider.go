package cluster

import (
	"time"

	"github.com/go-sif/sjoin"
	pb "github.com/go-sif/sjoin/internal/rpc"
	"github.com/go-sif/sjoin/stats"
)

func statisticsToMessage(rank int, rs *stats.RunStatistics) *pb.MStatisticsResponse {
	phases := make([]int64, sjoin.NumPhases)
	for p := range phases {
		phases[p] = rs.GetPhaseRuntime(sjoin.Phase(p))
	}
	buildSent, buildReceived := rs.GetBuildRows()
	probeSent, probeReceived := rs.GetProbeRows()
	return &pb.MStatisticsResponse{
		Rank:          int32(rank),
		RuntimeNanos:  rs.GetRuntime(),
		PhaseRuntimes: phases,
		BuildSent:     buildSent,
		BuildReceived: buildReceived,
		ProbeSent:     probeSent,
		ProbeReceived: probeReceived,
		OutputRows:    rs.GetOutputRows(),
	}
}

func statisticsFromMessage(m *pb.MStatisticsResponse) *RankStatistics {
	phases := make([]time.Duration, len(m.PhaseRuntimes))
	for p, nanos := range m.PhaseRuntimes {
		phases[p] = time.Duration(nanos)
	}
	return &RankStatistics{
		Rank:              int(m.Rank),
		Runtime:           time.Duration(m.RuntimeNanos),
		PhaseRuntimes:     phases,
		BuildRowsSent:     m.BuildSent,
		BuildRowsReceived: m.BuildReceived,
		ProbeRowsSent:     m.ProbeSent,
		ProbeRowsReceived: m.ProbeReceived,
		OutputRows:        m.OutputRows,
	}
}
