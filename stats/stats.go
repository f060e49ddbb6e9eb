package stats

import (
	"sync"
	"time"

	"github.com/go-sif/sjoin"
)

// RunStatistics contains statistics about a join running on one rank. It is safe for concurrent use.
type RunStatistics struct {
	lock             sync.Mutex
	started          bool
	finished         bool
	startTime        time.Time
	totalRuntime     int64
	phaseRuntimes    []int64 // nanoseconds spent in each phase
	currentPhase     sjoin.Phase
	currentPhaseTime time.Time
	buildRowsSent    int64
	buildRowsRecv    int64
	probeRowsSent    int64
	probeRowsRecv    int64
	outputRows       int64
}

// Start triggers statistics tracking, if it hasn't been started already
func (rs *RunStatistics) Start() {
	rs.lock.Lock()
	defer rs.lock.Unlock()
	if !rs.started {
		rs.started = true
		rs.startTime = time.Now()
		rs.currentPhaseTime = rs.startTime
		rs.phaseRuntimes = make([]int64, sjoin.NumPhases)
	}
}

// EnterPhase closes the running phase and starts timing p
func (rs *RunStatistics) EnterPhase(p sjoin.Phase) {
	rs.lock.Lock()
	defer rs.lock.Unlock()
	if !rs.started {
		return
	}
	now := time.Now()
	rs.phaseRuntimes[rs.currentPhase] += now.Sub(rs.currentPhaseTime).Nanoseconds()
	rs.currentPhase = p
	rs.currentPhaseTime = now
}

// Finish completes statistics tracking
func (rs *RunStatistics) Finish() {
	rs.EnterPhase(sjoin.Done)
	rs.lock.Lock()
	defer rs.lock.Unlock()
	if rs.started && !rs.finished {
		rs.finished = true
		rs.totalRuntime = time.Since(rs.startTime).Nanoseconds()
	}
}

// RecordBuildShuffle records the number of build rows which left and arrived at this rank
func (rs *RunStatistics) RecordBuildShuffle(sent, received int) {
	rs.lock.Lock()
	defer rs.lock.Unlock()
	rs.buildRowsSent += int64(sent)
	rs.buildRowsRecv += int64(received)
}

// RecordProbeShuffle records the number of probe rows which left and arrived at this rank
func (rs *RunStatistics) RecordProbeShuffle(sent, received int) {
	rs.lock.Lock()
	defer rs.lock.Unlock()
	rs.probeRowsSent += int64(sent)
	rs.probeRowsRecv += int64(received)
}

// RecordOutput records the number of output rows produced on this rank
func (rs *RunStatistics) RecordOutput(rows int) {
	rs.lock.Lock()
	defer rs.lock.Unlock()
	rs.outputRows += int64(rows)
}

// GetStartTime returns the start time of the join
func (rs *RunStatistics) GetStartTime() time.Time {
	rs.lock.Lock()
	defer rs.lock.Unlock()
	return rs.startTime
}

// GetRuntime returns the running time of the join in nanoseconds
func (rs *RunStatistics) GetRuntime() int64 {
	rs.lock.Lock()
	defer rs.lock.Unlock()
	if rs.finished {
		return rs.totalRuntime
	}
	if !rs.started {
		return 0
	}
	return time.Since(rs.startTime).Nanoseconds()
}

// GetPhaseRuntime returns the nanoseconds spent in a phase so far
func (rs *RunStatistics) GetPhaseRuntime(p sjoin.Phase) int64 {
	rs.lock.Lock()
	defer rs.lock.Unlock()
	if !rs.started {
		return 0
	}
	return rs.phaseRuntimes[p]
}

// GetCurrentPhase returns the phase the join is in
func (rs *RunStatistics) GetCurrentPhase() sjoin.Phase {
	rs.lock.Lock()
	defer rs.lock.Unlock()
	return rs.currentPhase
}

// GetBuildRows returns the number of build rows sent and received by this rank
func (rs *RunStatistics) GetBuildRows() (sent int64, received int64) {
	rs.lock.Lock()
	defer rs.lock.Unlock()
	return rs.buildRowsSent, rs.buildRowsRecv
}

// GetProbeRows returns the number of probe rows sent and received by this rank
func (rs *RunStatistics) GetProbeRows() (sent int64, received int64) {
	rs.lock.Lock()
	defer rs.lock.Unlock()
	return rs.probeRowsSent, rs.probeRowsRecv
}

// GetOutputRows returns the number of output rows produced by this rank
func (rs *RunStatistics) GetOutputRows() int64 {
	rs.lock.Lock()
	defer rs.lock.Unlock()
	return rs.outputRows
}
