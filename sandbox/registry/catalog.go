package registry

import (
	"fmt"
	"os"

	"github.com/google/shlex"
	"gopkg.in/yaml.v3"
)

// catalogEntry is the YAML shape of one language in a catalog file.
// Command templates are written as shell-like strings and split into
// argv with shlex; no shell is ever involved at run time.
type catalogEntry struct {
	Name                  string   `yaml:"name"`
	Aliases               []string `yaml:"aliases"`
	SourceFile            string   `yaml:"source_file"`
	BinaryFile            string   `yaml:"binary_file"`
	CompileCommand        string   `yaml:"compile_command"`
	RunCommand            string   `yaml:"run_command"`
	DefaultTimeoutMs      int      `yaml:"default_timeout_ms"`
	DefaultMaxOutputBytes int      `yaml:"default_max_output_bytes"`
}

type catalogFile struct {
	Languages []catalogEntry `yaml:"languages"`
}

// DefaultToolchains returns the built-in language catalog.
func DefaultToolchains() []*Toolchain {
	return []*Toolchain{
		{
			Name:       "python",
			Aliases:    []string{"py", "python3"},
			SourceFile: "main.py",
			RunCommand: []string{"python3", PlaceholderSource},
		},
		{
			Name:       "nodejs",
			Aliases:    []string{"js", "node", "javascript"},
			SourceFile: "index.js",
			RunCommand: []string{"node", PlaceholderSource},
		},
		{
			Name:           "go",
			Aliases:        []string{"golang"},
			SourceFile:     "main.go",
			BinaryFile:     "app",
			CompileCommand: []string{"go", "build", "-o", PlaceholderBinary, PlaceholderSource},
			RunCommand:     []string{PlaceholderBinary},
		},
		{
			Name:           "cpp",
			Aliases:        []string{"c++", "cxx"},
			SourceFile:     "main.cpp",
			BinaryFile:     "app",
			CompileCommand: []string{"g++", "-std=c++17", "-O2", "-o", PlaceholderBinary, PlaceholderSource},
			RunCommand:     []string{PlaceholderBinary},
		},
	}
}

// LoadCatalog merges the built-in toolchains with an optional YAML
// catalog file. File entries replace built-in entries with the same
// canonical name, so defaults can be tuned without code changes.
func LoadCatalog(path string) ([]*Toolchain, error) {
	toolchains := DefaultToolchains()
	if path == "" {
		return toolchains, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read language catalog: %w", err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse language catalog: %w", err)
	}

	byName := make(map[string]int, len(toolchains))
	for i, tc := range toolchains {
		byName[tc.Name] = i
	}

	for _, entry := range file.Languages {
		tc, err := toolchainFromEntry(entry)
		if err != nil {
			return nil, fmt.Errorf("language catalog entry %q: %w", entry.Name, err)
		}
		if i, exists := byName[tc.Name]; exists {
			toolchains[i] = tc
		} else {
			byName[tc.Name] = len(toolchains)
			toolchains = append(toolchains, tc)
		}
	}

	return toolchains, nil
}

func toolchainFromEntry(entry catalogEntry) (*Toolchain, error) {
	if entry.Name == "" {
		return nil, fmt.Errorf("name is required")
	}

	runCmd, err := shlex.Split(entry.RunCommand)
	if err != nil {
		return nil, fmt.Errorf("run_command: %w", err)
	}

	var compileCmd []string
	if entry.CompileCommand != "" {
		compileCmd, err = shlex.Split(entry.CompileCommand)
		if err != nil {
			return nil, fmt.Errorf("compile_command: %w", err)
		}
	}

	return &Toolchain{
		Name:                  entry.Name,
		Aliases:               entry.Aliases,
		SourceFile:            entry.SourceFile,
		BinaryFile:            entry.BinaryFile,
		CompileCommand:        compileCmd,
		RunCommand:            runCmd,
		DefaultTimeoutMs:      entry.DefaultTimeoutMs,
		DefaultMaxOutputBytes: entry.DefaultMaxOutputBytes,
	}, nil
}
