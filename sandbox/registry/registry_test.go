package registry

import (
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestLookup(t *testing.T) {
	logger := zaptest.NewLogger(t)
	reg, err := New(logger, DefaultToolchains())
	require.NoError(t, err)

	tests := []struct {
		language string
		expected string
		hasError bool
	}{
		{"python", "python", false},
		{"py", "python", false},
		{"python3", "python", false},
		{"PYTHON", "python", false},
		{"  go  ", "go", false},
		{"golang", "go", false},
		{"JavaScript", "nodejs", false},
		{"c++", "cpp", false},
		{"brainfuck", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q", tt.language), func(t *testing.T) {
			tc, err := reg.Lookup(tt.language)
			if tt.hasError {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrUnsupportedLanguage)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expected, tc.Name)
			}
		})
	}
}

func TestNewRejectsBadCatalogs(t *testing.T) {
	logger := zaptest.NewLogger(t)

	t.Run("DuplicateIdentifier", func(t *testing.T) {
		_, err := New(logger, []*Toolchain{
			{Name: "python", SourceFile: "main.py", RunCommand: []string{"python3", PlaceholderSource}},
			{Name: "py2", Aliases: []string{"python"}, SourceFile: "main.py", RunCommand: []string{"python2", PlaceholderSource}},
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "registered twice")
	})

	t.Run("MissingRunCommand", func(t *testing.T) {
		_, err := New(logger, []*Toolchain{
			{Name: "python", SourceFile: "main.py"},
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "run command is required")
	})

	t.Run("CompiledLanguageWithoutBinary", func(t *testing.T) {
		_, err := New(logger, []*Toolchain{
			{
				Name:           "cpp",
				SourceFile:     "main.cpp",
				CompileCommand: []string{"g++", PlaceholderSource},
				RunCommand:     []string{PlaceholderBinary},
			},
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "binary file is required")
	})
}

func TestAvailable(t *testing.T) {
	logger := zaptest.NewLogger(t)

	t.Run("ProbeIsLazyAndMemoized", func(t *testing.T) {
		var probes atomic.Int32
		reg, err := New(logger, DefaultToolchains(), WithLookPath(func(file string) (string, error) {
			probes.Add(1)
			return "/usr/bin/" + file, nil
		}))
		require.NoError(t, err)

		assert.Equal(t, int32(0), probes.Load())

		assert.True(t, reg.Available("python"))
		first := probes.Load()
		assert.Greater(t, first, int32(0))

		// Second call must hit the cache, including via an alias.
		assert.True(t, reg.Available("py"))
		assert.Equal(t, first, probes.Load())
	})

	t.Run("MissingToolchainDoesNotBlockOthers", func(t *testing.T) {
		reg, err := New(logger, DefaultToolchains(), WithLookPath(func(file string) (string, error) {
			if file == "g++" {
				return "", errors.New("executable file not found")
			}
			return "/usr/bin/" + file, nil
		}))
		require.NoError(t, err)

		assert.False(t, reg.Available("cpp"))
		assert.True(t, reg.Available("python"))
		assert.True(t, reg.Available("go"))
	})

	t.Run("UnknownLanguage", func(t *testing.T) {
		reg, err := New(logger, DefaultToolchains())
		require.NoError(t, err)
		assert.False(t, reg.Available("brainfuck"))
	})
}

func TestExpandCommand(t *testing.T) {
	tc := &Toolchain{
		Name:           "cpp",
		SourceFile:     "main.cpp",
		BinaryFile:     "app",
		CompileCommand: []string{"g++", "-o", PlaceholderBinary, PlaceholderSource},
		RunCommand:     []string{PlaceholderBinary},
	}

	argv := tc.ExpandCommand(tc.CompileCommand, "/tmp/ws", "/tmp/ws/main.cpp", "/tmp/ws/app")
	assert.Equal(t, []string{"g++", "-o", "/tmp/ws/app", "/tmp/ws/main.cpp"}, argv)

	// The template itself must not be mutated.
	assert.Equal(t, []string{"g++", "-o", PlaceholderBinary, PlaceholderSource}, tc.CompileCommand)

	argv = tc.ExpandCommand(tc.RunCommand, "/tmp/ws", "/tmp/ws/main.cpp", "/tmp/ws/app")
	assert.Equal(t, []string{"/tmp/ws/app"}, argv)
}

func TestLanguages(t *testing.T) {
	logger := zaptest.NewLogger(t)
	reg, err := New(logger, DefaultToolchains())
	require.NoError(t, err)

	names := reg.Languages()
	assert.ElementsMatch(t, []string{"python", "nodejs", "go", "cpp"}, names)
}
