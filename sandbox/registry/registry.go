package registry

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// ErrUnsupportedLanguage is returned by Lookup for languages the
// catalog does not know about.
var ErrUnsupportedLanguage = errors.New("unsupported language")

// Placeholders substituted into command templates before launch.
const (
	PlaceholderSource  = "{source}"
	PlaceholderBinary  = "{binary}"
	PlaceholderWorkdir = "{workdir}"
)

// Toolchain describes how to build and run one guest language.
type Toolchain struct {
	Name                  string
	Aliases               []string
	SourceFile            string
	BinaryFile            string
	CompileCommand        []string // empty when the language has no compile phase
	RunCommand            []string
	DefaultTimeoutMs      int
	DefaultMaxOutputBytes int
}

// HasCompilePhase reports whether the toolchain builds before running.
func (t *Toolchain) HasCompilePhase() bool {
	return len(t.CompileCommand) > 0
}

// ExpandCommand substitutes the workspace paths into a command template.
func (t *Toolchain) ExpandCommand(template []string, workdir, sourcePath, binaryPath string) []string {
	argv := make([]string, len(template))
	for i, arg := range template {
		arg = strings.ReplaceAll(arg, PlaceholderSource, sourcePath)
		arg = strings.ReplaceAll(arg, PlaceholderBinary, binaryPath)
		arg = strings.ReplaceAll(arg, PlaceholderWorkdir, workdir)
		argv[i] = arg
	}
	return argv
}

// Registry resolves language identifiers to toolchain descriptors.
type Registry struct {
	logger *zap.Logger
	byName map[string]*Toolchain
	probes sync.Map // canonical name -> *probe
	lookPath func(file string) (string, error)
}

type probe struct {
	once      sync.Once
	available bool
}

// RegistryOption defines a functional option for Registry
type RegistryOption func(*Registry)

// WithLookPath overrides the binary probe used by Available, for tests.
func WithLookPath(lookPath func(file string) (string, error)) RegistryOption {
	return func(r *Registry) {
		r.lookPath = lookPath
	}
}

// New creates a Registry from a catalog of toolchains.
func New(logger *zap.Logger, toolchains []*Toolchain, opts ...RegistryOption) (*Registry, error) {
	r := &Registry{
		logger:   logger,
		byName:   make(map[string]*Toolchain),
		lookPath: exec.LookPath,
	}
	for _, opt := range opts {
		opt(r)
	}

	for _, tc := range toolchains {
		if err := validateToolchain(tc); err != nil {
			return nil, fmt.Errorf("toolchain %q: %w", tc.Name, err)
		}
		for _, name := range append([]string{tc.Name}, tc.Aliases...) {
			key := strings.ToLower(name)
			if prev, exists := r.byName[key]; exists && prev != tc {
				return nil, fmt.Errorf("language identifier %q registered twice", key)
			}
			r.byName[key] = tc
		}
	}

	return r, nil
}

func validateToolchain(tc *Toolchain) error {
	if tc.Name == "" {
		return fmt.Errorf("name is required")
	}
	if tc.SourceFile == "" {
		return fmt.Errorf("source file is required")
	}
	if len(tc.RunCommand) == 0 {
		return fmt.Errorf("run command is required")
	}
	if tc.HasCompilePhase() && tc.BinaryFile == "" {
		return fmt.Errorf("binary file is required for compiled languages")
	}
	return nil
}

// Lookup resolves a language identifier or alias, case-insensitively.
func (r *Registry) Lookup(language string) (*Toolchain, error) {
	tc, ok := r.byName[strings.ToLower(strings.TrimSpace(language))]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, language)
	}
	return tc, nil
}

// Languages returns the canonical names of all registered toolchains.
func (r *Registry) Languages() []string {
	seen := make(map[string]bool)
	var names []string
	for _, tc := range r.byName {
		if !seen[tc.Name] {
			seen[tc.Name] = true
			names = append(names, tc.Name)
		}
	}
	return names
}

// Available reports whether the toolchain binaries for a language exist
// on the host. The probe runs once per language and the result is cached
// for the process lifetime.
func (r *Registry) Available(language string) bool {
	tc, err := r.Lookup(language)
	if err != nil {
		return false
	}

	val, _ := r.probes.LoadOrStore(tc.Name, &probe{})
	p := val.(*probe)
	p.once.Do(func() {
		p.available = r.probeToolchain(tc)
	})
	return p.available
}

func (r *Registry) probeToolchain(tc *Toolchain) bool {
	commands := [][]string{tc.RunCommand}
	if tc.HasCompilePhase() {
		commands = append(commands, tc.CompileCommand)
	}
	for _, argv := range commands {
		// Templated argv entries ({binary} etc.) are workspace artifacts,
		// not host binaries; only probe real executables.
		if strings.HasPrefix(argv[0], "{") {
			continue
		}
		if _, err := r.lookPath(argv[0]); err != nil {
			r.logger.Debug("toolchain binary not found",
				zap.String("language", tc.Name),
				zap.String("binary", argv[0]))
			return false
		}
	}
	return true
}
