package rpc

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// Fields holding their zero value are omitted, as proto3 does.

func appendVarintField(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendInt32Field(b []byte, num protowire.Number, v int32) []byte {
	return appendVarintField(b, num, uint64(int64(v)))
}

func appendInt64Field(b []byte, num protowire.Number, v int64) []byte {
	return appendVarintField(b, num, uint64(v))
}

func appendBoolField(b []byte, num protowire.Number, v bool) []byte {
	return appendVarintField(b, num, protowire.EncodeBool(v))
}

func appendStringField(b []byte, num protowire.Number, v string) []byte {
	if v == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, v)
}

func appendBytesField(b []byte, num protowire.Number, v []byte) []byte {
	if len(v) == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

func appendMessageField(b []byte, num protowire.Number, m wireMessage) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, m.appendProto(nil))
}

// appendPackedInt64Field writes a repeated int64 field in packed form
func appendPackedInt64Field(b []byte, num protowire.Number, vs []int64) []byte {
	if len(vs) == 0 {
		return b
	}
	var packed []byte
	for _, v := range vs {
		packed = protowire.AppendVarint(packed, uint64(v))
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, packed)
}

// field is one decoded tag and its value. Only varint and length-delimited values are kept.
type field struct {
	num    protowire.Number
	typ    protowire.Type
	varint uint64
	bytes  []byte
}

// consumeFields calls fn once per field of a message. Fields of other wire types are skipped.
func consumeFields(b []byte, fn func(f field) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		f := field{num: num, typ: typ}
		switch typ {
		case protowire.VarintType:
			f.varint, n = protowire.ConsumeVarint(b)
		case protowire.BytesType:
			f.bytes, n = protowire.ConsumeBytes(b)
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
		}
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		if typ != protowire.VarintType && typ != protowire.BytesType {
			continue
		}
		if err := fn(f); err != nil {
			return err
		}
	}
	return nil
}

func (f field) wrongType(want protowire.Type) error {
	return fmt.Errorf("field %d has wire type %d, want %d", f.num, f.typ, want)
}

func (f field) asUint64() (uint64, error) {
	if f.typ != protowire.VarintType {
		return 0, f.wrongType(protowire.VarintType)
	}
	return f.varint, nil
}

func (f field) asInt64() (int64, error) {
	v, err := f.asUint64()
	return int64(v), err
}

func (f field) asInt32() (int32, error) {
	v, err := f.asUint64()
	return int32(v), err
}

func (f field) asBool() (bool, error) {
	v, err := f.asUint64()
	return protowire.DecodeBool(v), err
}

func (f field) asString() (string, error) {
	if f.typ != protowire.BytesType {
		return "", f.wrongType(protowire.BytesType)
	}
	return string(f.bytes), nil
}

// asBytes copies the value, since the buffer it was read from may be reused
func (f field) asBytes() ([]byte, error) {
	if f.typ != protowire.BytesType {
		return nil, f.wrongType(protowire.BytesType)
	}
	return append([]byte(nil), f.bytes...), nil
}

// asInt64s accepts both packed and unpacked encodings of a repeated int64 field
func (f field) asInt64s() ([]int64, error) {
	if f.typ == protowire.VarintType {
		return []int64{int64(f.varint)}, nil
	}
	b := f.bytes
	var vs []int64
	for len(b) > 0 {
		v, n := protowire.ConsumeVarint(b)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		vs = append(vs, int64(v))
		b = b[n:]
	}
	return vs, nil
}

func (f field) asMessage(m wireMessage) error {
	if f.typ != protowire.BytesType {
		return f.wrongType(protowire.BytesType)
	}
	return m.consumeProto(f.bytes)
}
