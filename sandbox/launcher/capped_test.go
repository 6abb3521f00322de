package launcher

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCappedBuffer(t *testing.T) {
	t.Run("UnderCap", func(t *testing.T) {
		b := newCappedBuffer(16)
		n, err := b.Write([]byte("hello"))
		require.NoError(t, err)
		assert.Equal(t, 5, n)
		assert.Equal(t, "hello", b.String())
		assert.False(t, b.Truncated())
	})

	t.Run("ExactlyAtCap", func(t *testing.T) {
		b := newCappedBuffer(5)
		_, err := b.Write([]byte("hello"))
		require.NoError(t, err)
		assert.Equal(t, "hello", b.String())
		assert.False(t, b.Truncated())
	})

	t.Run("SingleWriteOverCap", func(t *testing.T) {
		b := newCappedBuffer(5)
		n, err := b.Write([]byte("hello world"))
		require.NoError(t, err)
		// Write never reports a short count; overflow is discarded.
		assert.Equal(t, 11, n)
		assert.Equal(t, "hello", b.String())
		assert.True(t, b.Truncated())
	})

	t.Run("ManySmallWritesOverCap", func(t *testing.T) {
		b := newCappedBuffer(10)
		for i := 0; i < 100; i++ {
			_, err := b.Write([]byte("abc"))
			require.NoError(t, err)
		}
		assert.Len(t, b.String(), 10)
		assert.True(t, b.Truncated())
	})

	t.Run("RetainedBytesNeverExceedCap", func(t *testing.T) {
		b := newCappedBuffer(1024)
		_, err := b.Write([]byte(strings.Repeat("x", 1<<20)))
		require.NoError(t, err)
		assert.Len(t, b.String(), 1024)
		assert.True(t, b.Truncated())
	})
}
