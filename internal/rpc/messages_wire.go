package rpc

// Field numbers follow declaration order in messages.go.

var (
	_ wireMessage = (*MWorkerDescriptor)(nil)
	_ wireMessage = (*MRegisterRequest)(nil)
	_ wireMessage = (*MRegisterResponse)(nil)
	_ wireMessage = (*MRosterRequest)(nil)
	_ wireMessage = (*MRosterResponse)(nil)
	_ wireMessage = (*MCompletionReport)(nil)
	_ wireMessage = (*MCompletionAck)(nil)
	_ wireMessage = (*MLogMsg)(nil)
	_ wireMessage = (*MLogMsgAck)(nil)
	_ wireMessage = (*MStopResponse)(nil)
	_ wireMessage = (*MExchangeChunk)(nil)
	_ wireMessage = (*MExchangeAck)(nil)
	_ wireMessage = (*MStatisticsRequest)(nil)
	_ wireMessage = (*MStatisticsResponse)(nil)
)

func (m *MWorkerDescriptor) appendProto(b []byte) []byte {
	b = appendStringField(b, 1, m.Id)
	b = appendStringField(b, 2, m.Host)
	return appendInt32Field(b, 3, m.Port)
}

func (m *MWorkerDescriptor) consumeProto(b []byte) error {
	*m = MWorkerDescriptor{}
	return consumeFields(b, func(f field) (err error) {
		switch f.num {
		case 1:
			m.Id, err = f.asString()
		case 2:
			m.Host, err = f.asString()
		case 3:
			m.Port, err = f.asInt32()
		}
		return err
	})
}

func (m *MRegisterRequest) appendProto(b []byte) []byte {
	b = appendStringField(b, 1, m.Id)
	return appendInt32Field(b, 2, m.Port)
}

func (m *MRegisterRequest) consumeProto(b []byte) error {
	*m = MRegisterRequest{}
	return consumeFields(b, func(f field) (err error) {
		switch f.num {
		case 1:
			m.Id, err = f.asString()
		case 2:
			m.Port, err = f.asInt32()
		}
		return err
	})
}

func (m *MRegisterResponse) appendProto(b []byte) []byte {
	b = appendInt64Field(b, 1, m.Time)
	b = appendInt32Field(b, 2, m.Rank)
	return appendInt32Field(b, 3, m.Size)
}

func (m *MRegisterResponse) consumeProto(b []byte) error {
	*m = MRegisterResponse{}
	return consumeFields(b, func(f field) (err error) {
		switch f.num {
		case 1:
			m.Time, err = f.asInt64()
		case 2:
			m.Rank, err = f.asInt32()
		case 3:
			m.Size, err = f.asInt32()
		}
		return err
	})
}

func (m *MRosterRequest) appendProto(b []byte) []byte {
	return appendStringField(b, 1, m.Id)
}

func (m *MRosterRequest) consumeProto(b []byte) error {
	*m = MRosterRequest{}
	return consumeFields(b, func(f field) (err error) {
		if f.num == 1 {
			m.Id, err = f.asString()
		}
		return err
	})
}

func (m *MRosterResponse) appendProto(b []byte) []byte {
	b = appendBoolField(b, 1, m.Ready)
	b = appendInt32Field(b, 2, m.Rank)
	b = appendInt32Field(b, 3, m.Size)
	for _, w := range m.Workers {
		b = appendMessageField(b, 4, w)
	}
	return b
}

func (m *MRosterResponse) consumeProto(b []byte) error {
	*m = MRosterResponse{}
	return consumeFields(b, func(f field) (err error) {
		switch f.num {
		case 1:
			m.Ready, err = f.asBool()
		case 2:
			m.Rank, err = f.asInt32()
		case 3:
			m.Size, err = f.asInt32()
		case 4:
			w := &MWorkerDescriptor{}
			if err = f.asMessage(w); err == nil {
				m.Workers = append(m.Workers, w)
			}
		}
		return err
	})
}

func (m *MCompletionReport) appendProto(b []byte) []byte {
	b = appendStringField(b, 1, m.Id)
	b = appendInt32Field(b, 2, m.Rank)
	b = appendInt64Field(b, 3, m.OutputRows)
	return appendStringField(b, 4, m.Error)
}

func (m *MCompletionReport) consumeProto(b []byte) error {
	*m = MCompletionReport{}
	return consumeFields(b, func(f field) (err error) {
		switch f.num {
		case 1:
			m.Id, err = f.asString()
		case 2:
			m.Rank, err = f.asInt32()
		case 3:
			m.OutputRows, err = f.asInt64()
		case 4:
			m.Error, err = f.asString()
		}
		return err
	})
}

func (m *MCompletionAck) appendProto(b []byte) []byte {
	return appendInt64Field(b, 1, m.Time)
}

func (m *MCompletionAck) consumeProto(b []byte) error {
	*m = MCompletionAck{}
	return consumeFields(b, func(f field) (err error) {
		if f.num == 1 {
			m.Time, err = f.asInt64()
		}
		return err
	})
}

func (m *MLogMsg) appendProto(b []byte) []byte {
	b = appendStringField(b, 1, m.Source)
	b = appendInt32Field(b, 2, m.Level)
	return appendStringField(b, 3, m.Message)
}

func (m *MLogMsg) consumeProto(b []byte) error {
	*m = MLogMsg{}
	return consumeFields(b, func(f field) (err error) {
		switch f.num {
		case 1:
			m.Source, err = f.asString()
		case 2:
			m.Level, err = f.asInt32()
		case 3:
			m.Message, err = f.asString()
		}
		return err
	})
}

func (m *MLogMsgAck) appendProto(b []byte) []byte {
	b = appendInt64Field(b, 1, m.Time)
	return appendInt32Field(b, 2, m.Count)
}

func (m *MLogMsgAck) consumeProto(b []byte) error {
	*m = MLogMsgAck{}
	return consumeFields(b, func(f field) (err error) {
		switch f.num {
		case 1:
			m.Time, err = f.asInt64()
		case 2:
			m.Count, err = f.asInt32()
		}
		return err
	})
}

func (m *MStopResponse) appendProto(b []byte) []byte {
	return appendInt64Field(b, 1, m.Time)
}

func (m *MStopResponse) consumeProto(b []byte) error {
	*m = MStopResponse{}
	return consumeFields(b, func(f field) (err error) {
		if f.num == 1 {
			m.Time, err = f.asInt64()
		}
		return err
	})
}

func (m *MExchangeChunk) appendProto(b []byte) []byte {
	b = appendVarintField(b, 1, m.Seq)
	b = appendInt32Field(b, 2, m.From)
	return appendBytesField(b, 3, m.Data)
}

func (m *MExchangeChunk) consumeProto(b []byte) error {
	*m = MExchangeChunk{}
	return consumeFields(b, func(f field) (err error) {
		switch f.num {
		case 1:
			m.Seq, err = f.asUint64()
		case 2:
			m.From, err = f.asInt32()
		case 3:
			m.Data, err = f.asBytes()
		}
		return err
	})
}

func (m *MExchangeAck) appendProto(b []byte) []byte {
	b = appendInt64Field(b, 1, m.Time)
	return appendInt64Field(b, 2, m.Bytes)
}

func (m *MExchangeAck) consumeProto(b []byte) error {
	*m = MExchangeAck{}
	return consumeFields(b, func(f field) (err error) {
		switch f.num {
		case 1:
			m.Time, err = f.asInt64()
		case 2:
			m.Bytes, err = f.asInt64()
		}
		return err
	})
}

func (m *MStatisticsRequest) appendProto(b []byte) []byte {
	return appendStringField(b, 1, m.Id)
}

func (m *MStatisticsRequest) consumeProto(b []byte) error {
	*m = MStatisticsRequest{}
	return consumeFields(b, func(f field) (err error) {
		if f.num == 1 {
			m.Id, err = f.asString()
		}
		return err
	})
}

func (m *MStatisticsResponse) appendProto(b []byte) []byte {
	b = appendInt32Field(b, 1, m.Rank)
	b = appendInt64Field(b, 2, m.RuntimeNanos)
	b = appendPackedInt64Field(b, 3, m.PhaseRuntimes)
	b = appendInt64Field(b, 4, m.BuildSent)
	b = appendInt64Field(b, 5, m.BuildReceived)
	b = appendInt64Field(b, 6, m.ProbeSent)
	b = appendInt64Field(b, 7, m.ProbeReceived)
	return appendInt64Field(b, 8, m.OutputRows)
}

func (m *MStatisticsResponse) consumeProto(b []byte) error {
	*m = MStatisticsResponse{}
	return consumeFields(b, func(f field) (err error) {
		switch f.num {
		case 1:
			m.Rank, err = f.asInt32()
		case 2:
			m.RuntimeNanos, err = f.asInt64()
		case 3:
			var vs []int64
			if vs, err = f.asInt64s(); err == nil {
				m.PhaseRuntimes = append(m.PhaseRuntimes, vs...)
			}
		case 4:
			m.BuildSent, err = f.asInt64()
		case 5:
			m.BuildReceived, err = f.asInt64()
		case 6:
			m.ProbeSent, err = f.asInt64()
		case 7:
			m.ProbeReceived, err = f.asInt64()
		case 8:
			m.OutputRows, err = f.asInt64()
		}
		return err
	})
}
