package naglfar

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChannelFIFO(t *testing.T) {
	rt := NewRuntime()
	ch := NewChannel[int](rt)

	var got []int
	rt.Spawn(func() {
		ch.Write(1)
		ch.Write(2)
		ch.Write(3)
	})
	rt.Spawn(func() {
		got = append(got, ch.Read(), ch.Read(), ch.Read())
	})
	rt.Run()

	require.Equal(t, []int{1, 2, 3}, got)
}

// TestChannelWriteNeverBlocks checks that a burst of writes from a task
// that never yields still lands in FIFO order for a reader spawned
// afterwards — Channel.Write has no backpressure (spec.md §3).
func TestChannelWriteNeverBlocks(t *testing.T) {
	rt := NewRuntime()
	ch := NewChannel[int](rt)

	const n = 1000
	rt.Spawn(func() {
		for i := 0; i < n; i++ {
			ch.Write(i)
		}
	})

	var got []int
	rt.Spawn(func() {
		for i := 0; i < n; i++ {
			got = append(got, ch.Read())
		}
	})
	rt.Run()

	require.Len(t, got, n)
	for i, v := range got {
		require.Equal(t, i, v)
	}
}

// TestChannelReadSuspendsUntilWrite checks that a reader spawned first,
// racing ahead of any writer, still parks correctly and wakes once the
// writer eventually runs.
func TestChannelReadSuspendsUntilWrite(t *testing.T) {
	rt := NewRuntime()
	ch := NewChannel[string](rt)

	var result string
	rt.Spawn(func() {
		result = ch.Read()
	})
	rt.Spawn(func() {
		ch.Write("hello")
	})
	rt.Run()

	require.Equal(t, "hello", result)
}

// ReadWaiting drains every queued value atomically in one call.
func TestChannelReadWaiting(t *testing.T) {
	rt := NewRuntime()
	ch := NewChannel[int](rt)

	var drained []int
	rt.Spawn(func() {
		ch.Write(1)
		ch.Write(2)
		drained = ch.ReadWaiting(false)
	})
	rt.Run()

	require.Equal(t, []int{1, 2}, drained)
	require.Equal(t, 0, ch.Len())
}

func TestChannelLen(t *testing.T) {
	rt := NewRuntime()
	ch := NewChannel[int](rt)
	ch.Write(1)
	ch.Write(2)
	require.Equal(t, 2, ch.Len())
}

// TestManyTasksShareOneChannel spawns N tasks that each write their own
// index into one shared channel, then a collector task reads N values;
// the set of values collected must be exactly {0..N-1} (spec.md §8,
// scenario 3), regardless of which order the scheduler happens to run
// the N writers in.
func TestManyTasksShareOneChannel(t *testing.T) {
	rt := NewRuntime()
	ch := NewChannel[int](rt)
	const n = 1000

	for i := 0; i < n; i++ {
		i := i
		rt.Spawn(func() { ch.Write(i) })
	}

	var collected []int
	rt.Spawn(func() {
		for i := 0; i < n; i++ {
			collected = append(collected, ch.Read())
		}
	})
	rt.Run()

	require.Len(t, collected, n)
	seen := make(map[int]bool, n)
	for _, v := range collected {
		seen[v] = true
	}
	for i := 0; i < n; i++ {
		require.True(t, seen[i], "missing value %d", i)
	}
}

// TestChannelChainRelay wires N+1 channels in a line (task i reads a
// value v from channel i and writes v+1 into channel i+1), seeds 0 into
// channel 0, and checks the relay delivers N at channel N after passing
// through all N tasks (spec.md §8, scenario 4, at reduced scale).
func TestChannelChainRelay(t *testing.T) {
	rt := NewRuntime()
	const n = 2000

	channels := make([]*Channel[int], n+1)
	for i := range channels {
		channels[i] = NewChannel[int](rt)
	}
	for i := 0; i < n; i++ {
		i := i
		rt.Spawn(func() {
			v := channels[i].Read()
			channels[i+1].Write(v + 1)
		})
	}
	channels[0].Write(0)
	rt.Run()

	got := channels[n].ReadWaiting(false)
	require.Equal(t, []int{n}, got)
}
