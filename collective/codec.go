package collective

import (
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// Element is a column value type which can be exchanged between ranks
type Element interface {
	int32 | int64 | float64
}

// valuesField is the protobuf field number carrying packed values within an encoded part
const valuesField protowire.Number = 1

// encode serializes values as a protobuf message with a single packed field. An empty slice
// encodes to an empty message.
func encode[T Element](values []T) []byte {
	if len(values) == 0 {
		return []byte{}
	}
	packedLen := len(values) * width[T]()
	b := make([]byte, 0, packedLen+protowire.SizeTag(valuesField)+protowire.SizeVarint(uint64(packedLen)))
	b = protowire.AppendTag(b, valuesField, protowire.BytesType)
	b = protowire.AppendVarint(b, uint64(packedLen))
	for _, v := range values {
		switch x := any(v).(type) {
		case int32:
			b = protowire.AppendFixed32(b, uint32(x))
		case int64:
			b = protowire.AppendFixed64(b, uint64(x))
		case float64:
			b = protowire.AppendFixed64(b, math.Float64bits(x))
		}
	}
	return b
}

// decodeInto deserializes an encoded part into dst, returning the number of values decoded.
// It fails if the part holds more values than dst can take.
func decodeInto[T Element](dst []T, b []byte) (int, error) {
	if len(b) == 0 {
		return 0, nil
	}
	num, typ, n := protowire.ConsumeTag(b)
	if n < 0 {
		return 0, protowire.ParseError(n)
	}
	if num != valuesField || typ != protowire.BytesType {
		return 0, fmt.Errorf("unexpected field %d of type %d", num, typ)
	}
	packed, m := protowire.ConsumeBytes(b[n:])
	if m < 0 {
		return 0, protowire.ParseError(m)
	}
	w := width[T]()
	if len(packed)%w != 0 {
		return 0, fmt.Errorf("packed length %d is not a multiple of %d", len(packed), w)
	}
	count := len(packed) / w
	if count > len(dst) {
		return 0, fmt.Errorf("received %d values but only %d were expected", count, len(dst))
	}
	for i := 0; i < count; i++ {
		switch p := any(&dst[i]).(type) {
		case *int32:
			v, _ := protowire.ConsumeFixed32(packed)
			*p = int32(v)
		case *int64:
			v, _ := protowire.ConsumeFixed64(packed)
			*p = int64(v)
		case *float64:
			v, _ := protowire.ConsumeFixed64(packed)
			*p = math.Float64frombits(v)
		}
		packed = packed[w:]
	}
	return count, nil
}

// countValues returns the number of values within an encoded part without decoding them
func countValues[T Element](b []byte) (int, error) {
	if len(b) == 0 {
		return 0, nil
	}
	_, _, n := protowire.ConsumeTag(b)
	if n < 0 {
		return 0, protowire.ParseError(n)
	}
	packed, m := protowire.ConsumeBytes(b[n:])
	if m < 0 {
		return 0, protowire.ParseError(m)
	}
	return len(packed) / width[T](), nil
}

func width[T Element]() int {
	var zero T
	switch any(zero).(type) {
	case int32:
		return 4
	default:
		return 8
	}
}
