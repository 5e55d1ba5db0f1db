package object

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	records := []Record{
		{ID: 0, Kind: KindBytes, Bytes: []byte("tuple")},
		{ID: 1, Kind: KindInteger, Int: 42},
		{ID: 2, Kind: KindTuple, IDs: []uint64{0, 1}},
	}

	data, err := marshal(records)
	require.NoError(t, err)

	got, err := unmarshal(data)
	require.NoError(t, err)
	require.Equal(t, records, got)
}

func TestMarshalTupleWidthClasses(t *testing.T) {
	cases := []struct {
		ids        []uint64
		wantWidth  int
		wantWidthB byte
	}{
		{[]uint64{0, 1, 255}, 1, 0},
		{[]uint64{256, 1000}, 2, 1},
		{[]uint64{70000}, 4, 2},
	}

	for _, c := range cases {
		raw, err := marshalTupleIDs(c.ids)
		require.NoError(t, err)
		require.Equal(t, c.wantWidthB, raw[0])
		require.Len(t, raw, 1+c.wantWidth*len(c.ids))

		back, err := unmarshalTupleIDs(raw)
		require.NoError(t, err)
		require.Equal(t, c.ids, back)
	}
}

func TestMarshalEmptyTuple(t *testing.T) {
	raw, err := marshalTupleIDs(nil)
	require.NoError(t, err)
	require.Empty(t, raw)

	back, err := unmarshalTupleIDs(nil)
	require.NoError(t, err)
	require.Empty(t, back)
}

func TestUnmarshalRejectsTruncatedInput(t *testing.T) {
	records := []Record{{ID: 0, Kind: KindBytes, Bytes: []byte("hello world")}}
	data, err := marshal(records)
	require.NoError(t, err)

	_, err = unmarshal(data[:len(data)-1])
	require.ErrorIs(t, err, ErrMalformedInput)
}
