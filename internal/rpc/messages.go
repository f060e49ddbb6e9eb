package rpc

// MWorkerDescriptor describes a registered worker
type MWorkerDescriptor struct {
	Id   string
	Host string
	Port int32
}

// MRegisterRequest is sent by a worker joining the cluster
type MRegisterRequest struct {
	Id   string
	Port int32
}

// MRegisterResponse confirms a registration, and carries the rank assigned to the worker
type MRegisterResponse struct {
	Time int64
	Rank int32
	Size int32
}

// MRosterRequest asks the coordinator whether all workers have joined
type MRosterRequest struct {
	Id string
}

// MRosterResponse lists every worker in rank order, once Ready
type MRosterResponse struct {
	Ready   bool
	Rank    int32
	Size    int32
	Workers []*MWorkerDescriptor
}

// GetWorkers returns the roster, or nil
func (m *MRosterResponse) GetWorkers() []*MWorkerDescriptor {
	if m == nil {
		return nil
	}
	return m.Workers
}

// MCompletionReport is sent by a worker once its job has finished
type MCompletionReport struct {
	Id         string
	Rank       int32
	OutputRows int64
	Error      string
}

// MCompletionAck acknowledges an MCompletionReport
type MCompletionAck struct {
	Time int64
}

// MLogMsg is a log line forwarded from a worker to the coordinator
type MLogMsg struct {
	Source  string
	Level   int32
	Message string
}

// GetSource returns the id of the node which produced this message
func (m *MLogMsg) GetSource() string {
	if m == nil {
		return ""
	}
	return m.Source
}

// GetLevel returns the log level of this message
func (m *MLogMsg) GetLevel() int32 {
	if m == nil {
		return 0
	}
	return m.Level
}

// GetMessage returns the text of this message
func (m *MLogMsg) GetMessage() string {
	if m == nil {
		return ""
	}
	return m.Message
}

// MLogMsgAck acknowledges a stream of MLogMsgs
type MLogMsgAck struct {
	Time  int64
	Count int32
}

// MStopResponse acknowledges a stop request
type MStopResponse struct {
	Time int64
}

// MExchangeChunk is a piece of one collective round's part, addressed from rank From
type MExchangeChunk struct {
	Seq  uint64
	From int32
	Data []byte
}

// MExchangeAck acknowledges a delivered part
type MExchangeAck struct {
	Time  int64
	Bytes int64
}

// MStatisticsRequest asks a worker for its run statistics
type MStatisticsRequest struct {
	Id string
}

// MStatisticsResponse summarizes a worker's run statistics
type MStatisticsResponse struct {
	Rank          int32
	RuntimeNanos  int64
	PhaseRuntimes []int64
	BuildSent     int64
	BuildReceived int64
	ProbeSent     int64
	ProbeReceived int64
	OutputRows    int64
}
