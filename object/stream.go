package object

import (
	"bytes"
	"encoding/binary"
)

// marshalData encodes a Record's payload only (no header).
func marshalData(r Record) ([]byte, error) {
	switch r.Kind {
	case KindBytes:
		return r.Bytes, nil
	case KindInteger:
		return intToBytes(r.Int), nil
	case KindTuple:
		return marshalTupleIDs(r.IDs)
	default:
		return nil, ErrUnsupportedValue
	}
}

// marshalTupleIDs picks the narrowest of three width classes
// (uint8/uint16/uint32) based on the largest id, then packs big-endian.
// An empty id list encodes to zero bytes, with no width-selector byte
// at all.
func marshalTupleIDs(ids []uint64) ([]byte, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var max uint64
	for _, id := range ids {
		if id > max {
			max = id
		}
	}

	var widthSel byte
	var width int
	switch {
	case max < 256:
		widthSel, width = 0, 1
	case max < 65536:
		widthSel, width = 1, 2
	case max < 4294967296:
		widthSel, width = 2, 4
	default:
		return nil, ErrUnsupportedValue
	}

	out := make([]byte, 1+width*len(ids))
	out[0] = widthSel
	for i, id := range ids {
		switch width {
		case 1:
			out[1+i] = byte(id)
		case 2:
			binary.BigEndian.PutUint16(out[1+i*2:], uint16(id))
		case 4:
			binary.BigEndian.PutUint32(out[1+i*4:], uint32(id))
		}
	}
	return out, nil
}

func unmarshalTupleIDs(payload []byte) ([]uint64, error) {
	if len(payload) == 0 {
		return nil, nil
	}
	widthSel := payload[0]
	rest := payload[1:]

	var width int
	switch widthSel {
	case 0:
		width = 1
	case 1:
		width = 2
	case 2:
		width = 4
	default:
		return nil, ErrMalformedInput
	}
	if len(rest)%width != 0 {
		return nil, ErrMalformedInput
	}

	n := len(rest) / width
	ids := make([]uint64, n)
	for i := 0; i < n; i++ {
		switch width {
		case 1:
			ids[i] = uint64(rest[i])
		case 2:
			ids[i] = uint64(binary.BigEndian.Uint16(rest[i*2:]))
		case 4:
			ids[i] = uint64(binary.BigEndian.Uint32(rest[i*4:]))
		}
	}
	return ids, nil
}

func unmarshalData(id uint64, kind Kind, payload []byte) (Record, error) {
	switch kind {
	case KindBytes:
		return Record{ID: id, Kind: kind, Bytes: payload}, nil
	case KindInteger:
		return Record{ID: id, Kind: kind, Int: bytesToInt(payload)}, nil
	case KindTuple:
		ids, err := unmarshalTupleIDs(payload)
		if err != nil {
			return Record{}, err
		}
		return Record{ID: id, Kind: kind, IDs: ids}, nil
	default:
		return Record{}, ErrUnsupportedValue
	}
}

// marshal serializes records as consecutive header+payload blocks, the
// header and payload joined eagerly into one buffer.
func marshal(records []Record) ([]byte, error) {
	var buf bytes.Buffer
	for _, r := range records {
		raw, err := marshalData(r)
		if err != nil {
			return nil, err
		}
		buf.Write(marshalHeader(r.ID, r.Kind, uint64(len(raw))))
		buf.Write(raw)
	}
	return buf.Bytes(), nil
}

// unmarshal parses a fully-buffered byte slice back into Records via a
// plain index walk.
func unmarshal(data []byte) ([]Record, error) {
	var records []Record
	offset := 0
	for offset < len(data) {
		idSize, lengthSize, kind := unpackHeader1(data[offset])
		headerSize := 1 + ((idSize + lengthSize) >> 3)
		if offset+headerSize > len(data) {
			return nil, ErrMalformedInput
		}
		id, length := unpackHeader2(data, idSize, lengthSize, offset+1)

		start := offset + headerSize
		end := start + int(length)
		if end > len(data) || end < start {
			return nil, ErrMalformedInput
		}

		rec, err := unmarshalData(id, kind, data[start:end])
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
		offset = end
	}
	return records, nil
}

// DumpStream serializes each value as a self-delimiting block: the
// fully marshaled Dump of the value is wrapped as a single outer
// KindBytes record (id 0), so LoadStream can split the concatenation
// back into per-value chunks purely from the outer headers.
func DumpStream(values []*Value) ([]byte, error) {
	var buf bytes.Buffer
	for _, v := range values {
		inner, err := marshal(Dump(v))
		if err != nil {
			return nil, err
		}
		outer, err := marshal([]Record{{ID: 0, Kind: KindBytes, Bytes: inner}})
		if err != nil {
			return nil, err
		}
		buf.Write(outer)
	}
	return buf.Bytes(), nil
}

// LoadStream is the inverse of DumpStream.
func LoadStream(data []byte) ([]*Value, error) {
	outer, err := unmarshal(data)
	if err != nil {
		return nil, err
	}

	values := make([]*Value, len(outer))
	for i, r := range outer {
		if r.ID != 0 || r.Kind != KindBytes {
			return nil, ErrMalformedInput
		}
		inner, err := unmarshal(r.Bytes)
		if err != nil {
			return nil, err
		}
		v, err := Load(inner)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}

// Dumps serializes a single value.
func Dumps(v *Value) ([]byte, error) {
	return DumpStream([]*Value{v})
}

// Loads deserializes a single value previously produced by Dumps.
func Loads(data []byte) (*Value, error) {
	values, err := LoadStream(data)
	if err != nil {
		return nil, err
	}
	if len(values) != 1 {
		return nil, ErrMalformedInput
	}
	return values[0], nil
}
