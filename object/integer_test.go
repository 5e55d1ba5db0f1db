package object

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIntegerRoundTrip(t *testing.T) {
	cases := []int64{0, 1, -1, 42, -42, 255, 256, -256, 65535, 65536,
		math.MaxInt32, math.MinInt32, math.MaxInt64, math.MinInt64}

	for _, n := range cases {
		raw := intToBytes(n)
		got := bytesToInt(raw)
		require.Equal(t, n, got, "round trip for %d", n)
	}
}

func TestIntegerZeroEncodesEmpty(t *testing.T) {
	require.Empty(t, intToBytes(0))
	require.Equal(t, int64(0), bytesToInt(nil))
}

func TestIntegerMinimalWidth(t *testing.T) {
	require.Len(t, intToBytes(42), 1)
	require.Len(t, intToBytes(-5), 1)
	require.Len(t, intToBytes(1000), 2)
}
