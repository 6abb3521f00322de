package workspace

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestCreateAndRelease(t *testing.T) {
	logger := zaptest.NewLogger(t)
	m := NewManager(logger, WithRoot(t.TempDir()))

	t.Run("CreateWritesRestrictedDir", func(t *testing.T) {
		handle, err := m.Create("attempt1")
		require.NoError(t, err)
		defer handle.Release()

		info, err := os.Stat(handle.Path())
		require.NoError(t, err)
		require.True(t, info.IsDir())
		if runtime.GOOS != "windows" {
			assert.Equal(t, os.FileMode(DirPermission), info.Mode().Perm())
		}
	})

	t.Run("WriteSource", func(t *testing.T) {
		handle, err := m.Create("attempt2")
		require.NoError(t, err)
		defer handle.Release()

		path, err := handle.WriteSource("main.py", []byte("print('hi')"))
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(handle.Path(), "main.py"), path)

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "print('hi')", string(content))
	})

	t.Run("WriteSourceStripsPathComponents", func(t *testing.T) {
		handle, err := m.Create("attempt3")
		require.NoError(t, err)
		defer handle.Release()

		path, err := handle.WriteSource("../../escape.py", []byte("x"))
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(handle.Path(), "escape.py"), path)
	})

	t.Run("ReleaseRemovesDir", func(t *testing.T) {
		handle, err := m.Create("attempt4")
		require.NoError(t, err)

		_, err = handle.WriteSource("main.py", []byte("print('hi')"))
		require.NoError(t, err)

		require.NoError(t, handle.Release())
		_, err = os.Stat(handle.Path())
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("ReleaseIsIdempotent", func(t *testing.T) {
		handle, err := m.Create("attempt5")
		require.NoError(t, err)

		require.NoError(t, handle.Release())
		require.NoError(t, handle.Release())
		require.NoError(t, handle.Release())
	})

	t.Run("WorkspacesAreNeverShared", func(t *testing.T) {
		a, err := m.Create("attempt6")
		require.NoError(t, err)
		defer a.Release()

		b, err := m.Create("attempt6")
		require.NoError(t, err)
		defer b.Release()

		assert.NotEqual(t, a.Path(), b.Path())
	})

	t.Run("AttemptIDIsSanitized", func(t *testing.T) {
		handle, err := m.Create("../weird id/..")
		require.NoError(t, err)
		defer handle.Release()

		assert.NotContains(t, filepath.Base(handle.Path()), "/")
		assert.NotContains(t, filepath.Base(handle.Path()), "..")
	})
}
