package rpc

import (
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/encoding"
	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

func TestCodecIsRegistered(t *testing.T) {
	c := encoding.GetCodec(CodecName)
	require.NotNil(t, c)
	require.Equal(t, CodecName, c.Name())
	_, ok := c.(protoCodec)
	require.True(t, ok)
}

func TestCodecCarriesNestedMessages(t *testing.T) {
	c := encoding.GetCodec(CodecName)
	in := &MRosterResponse{
		Ready: true,
		Rank:  1,
		Size:  2,
		Workers: []*MWorkerDescriptor{
			{Id: "a", Host: "127.0.0.1", Port: 8081},
			{Id: "b", Host: "127.0.0.1", Port: 8082},
		},
	}
	data, err := c.Marshal(in)
	require.Nil(t, err)
	out := new(MRosterResponse)
	require.Nil(t, c.Unmarshal(data, out))
	require.Equal(t, in, out)
	require.Len(t, out.GetWorkers(), 2)

	// zero values produce an empty, decodable message
	data, err = c.Marshal(&MExchangeChunk{})
	require.Nil(t, err)
	require.Empty(t, data)
	require.Nil(t, c.Unmarshal(data, new(MExchangeChunk)))
}

func TestMessagesRoundTrip(t *testing.T) {
	c := encoding.GetCodec(CodecName)
	cases := []struct {
		in  wireMessage
		out wireMessage
	}{
		{&MRegisterRequest{Id: "w", Port: 1644}, new(MRegisterRequest)},
		{&MRegisterResponse{Time: 1700000000, Rank: 2, Size: 3}, new(MRegisterResponse)},
		{&MRosterRequest{Id: "w"}, new(MRosterRequest)},
		{&MCompletionReport{Id: "w", Rank: 1, OutputRows: 6, Error: "boom"}, new(MCompletionReport)},
		{&MCompletionAck{Time: 5}, new(MCompletionAck)},
		{&MLogMsg{Source: "w", Level: -1, Message: "hello"}, new(MLogMsg)},
		{&MLogMsgAck{Time: 5, Count: 3}, new(MLogMsgAck)},
		{&MStopResponse{Time: 5}, new(MStopResponse)},
		{&MExchangeChunk{Seq: 1 << 40, From: 3, Data: []byte{0, 1, 2, 255}}, new(MExchangeChunk)},
		{&MExchangeAck{Time: 5, Bytes: 4}, new(MExchangeAck)},
		{&MStatisticsRequest{Id: "c"}, new(MStatisticsRequest)},
		{&MStatisticsResponse{
			Rank:          1,
			RuntimeNanos:  123456789,
			PhaseRuntimes: []int64{0, 10, 20, 0, 30, 40, 0},
			BuildSent:     3,
			BuildReceived: 2,
			ProbeSent:     3,
			ProbeReceived: 4,
			OutputRows:    6,
		}, new(MStatisticsResponse)},
	}
	for _, tc := range cases {
		data, err := c.Marshal(tc.in)
		require.Nil(t, err)
		require.Nil(t, c.Unmarshal(data, tc.out))
		require.Equal(t, tc.in, tc.out, "%T", tc.in)
	}
}

func TestMessagesUseProtobufWireFormat(t *testing.T) {
	c := encoding.GetCodec(CodecName)
	data, err := c.Marshal(&MRegisterRequest{Id: "a", Port: 1})
	require.Nil(t, err)
	// field 1, length-delimited "a"; field 2, varint 1
	require.Equal(t, []byte{0x0a, 0x01, 'a', 0x10, 0x01}, data)

	// a message written by another protobuf encoder, with an unknown fixed32 field 9 and the
	// repeated field unpacked
	var b []byte
	b = protowire.AppendTag(b, 9, protowire.Fixed32Type)
	b = protowire.AppendFixed32(b, 7)
	b = protowire.AppendTag(b, 3, protowire.VarintType)
	b = protowire.AppendVarint(b, 11)
	b = protowire.AppendTag(b, 3, protowire.VarintType)
	b = protowire.AppendVarint(b, 12)
	b = protowire.AppendTag(b, 8, protowire.VarintType)
	b = protowire.AppendVarint(b, 6)
	stats := new(MStatisticsResponse)
	require.Nil(t, c.Unmarshal(b, stats))
	require.Equal(t, []int64{11, 12}, stats.PhaseRuntimes)
	require.Equal(t, int64(6), stats.OutputRows)
}

func TestUnmarshalRejectsMalformedMessages(t *testing.T) {
	c := encoding.GetCodec(CodecName)
	// truncated length-delimited value
	require.NotNil(t, c.Unmarshal([]byte{0x0a, 0x05, 'a'}, new(MRosterRequest)))
	// string field sent as a varint
	require.NotNil(t, c.Unmarshal([]byte{0x08, 0x01}, new(MRosterRequest)))
	// nested worker descriptor is malformed
	require.NotNil(t, c.Unmarshal([]byte{0x22, 0x02, 0x0a, 0x05}, new(MRosterResponse)))
}

func TestCodecStillHandlesProtoMessages(t *testing.T) {
	c := encoding.GetCodec(CodecName)
	data, err := c.Marshal(wrapperspb.String("sjoin"))
	require.Nil(t, err)
	out := new(wrapperspb.StringValue)
	require.Nil(t, c.Unmarshal(data, out))
	require.Equal(t, "sjoin", out.GetValue())

	_, err = c.Marshal(struct{}{})
	require.NotNil(t, err)
	require.NotNil(t, c.Unmarshal(nil, &struct{}{}))
}
