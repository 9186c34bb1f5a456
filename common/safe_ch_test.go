package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSafeCh(t *testing.T) {
	t.Run("not initialized", func(t *testing.T) {
		safeCh := &SafeCh[int]{}

		require.ErrorContains(t, safeCh.Write(1), "channel not initialized. use MakeSafeCh")
		require.ErrorContains(t, safeCh.Close(), "channel not initialized. use MakeSafeCh")
		require.False(t, safeCh.TryWrite(1))
		require.NotNil(t, safeCh.ReadCh())
	})

	t.Run("double close", func(t *testing.T) {
		safeCh := MakeSafeCh[int](1)

		require.NoError(t, safeCh.Close())
		require.ErrorContains(t, safeCh.Close(), "channel already closed")
	})

	t.Run("write after close", func(t *testing.T) {
		safeCh := MakeSafeCh[int](1)

		require.NoError(t, safeCh.Write(1))
		require.NoError(t, safeCh.Close())
		require.ErrorContains(t, safeCh.Write(1), "trying to write to a closed channel")
		require.False(t, safeCh.TryWrite(1))

		value, ok := <-safeCh.ReadCh()
		require.True(t, ok)
		require.Equal(t, 1, value)

		_, ok = <-safeCh.ReadCh()
		require.False(t, ok)
	})

	t.Run("try write full buffer", func(t *testing.T) {
		safeCh := MakeSafeCh[int](1)

		require.True(t, safeCh.TryWrite(1))
		require.False(t, safeCh.TryWrite(2))
		require.Equal(t, 1, <-safeCh.ReadCh())
	})

	t.Run("read from another goroutine", func(t *testing.T) {
		safeCh := MakeSafeCh[int](0)

		go func() {
			<-time.After(time.Millisecond * 50)

			_ = safeCh.Write(7)
			_ = safeCh.Close()
		}()

		select {
		case value, ok := <-safeCh.ReadCh():
			require.True(t, ok)
			require.Equal(t, 7, value)
		case <-time.After(time.Second):
			t.Fatalf("timeout")
		}
	})
}
