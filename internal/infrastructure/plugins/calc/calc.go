// Package calc provides an expression evaluator namespace with variables
// that persist between requests.
package calc

import (
	"bytes"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/reglet-dev/capbridge/internal/domain/capabilities"
	"github.com/reglet-dev/capbridge/internal/infrastructure/plugins/pluginkit"
)

const (
	// Name is the plugin name and its default mount.
	Name = "calc"
	// Version is the plugin version.
	Version = "1.1.0"

	defaultMaxLength = 1024
)

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Settings configure the calc namespace.
type Settings struct {
	// Vars seeds the variable scope.
	Vars map[string]any `mapstructure:"vars"`
	// MaxLength bounds the request size. Defaults to 1024 bytes.
	MaxLength int `mapstructure:"max_length"`
}

// Plugin exposes eval and vars over a shared variable scope.
type Plugin struct{}

// New creates the calc plugin.
func New() *Plugin {
	return &Plugin{}
}

func (p *Plugin) Name() string    { return Name }
func (p *Plugin) Version() string { return Version }

func (p *Plugin) Description() string {
	return "Evaluates expressions; \"name = expr\" stores the result for later requests"
}

// Register adds the calc capabilities.
func (p *Plugin) Register(b *capabilities.Builder, raw map[string]any) error {
	s := Settings{MaxLength: defaultMaxLength}
	if err := pluginkit.Decode(raw, &s); err != nil {
		return err
	}

	sc := &scope{vars: make(map[string]any, len(s.Vars)), maxLength: s.MaxLength}
	for name, v := range s.Vars {
		if !identifier.MatchString(name) {
			return fmt.Errorf("invalid variable name %q", name)
		}
		sc.vars[name] = v
	}

	return pluginkit.RegisterShared(b,
		capabilities.New("eval", capabilities.ReadWrite, sc, eval),
		capabilities.New("vars", capabilities.ReadOnly, sc, vars),
	)
}

// scope is shared by eval and vars, which hold different guards.
type scope struct {
	mu        sync.RWMutex
	vars      map[string]any
	maxLength int
}

func (s *scope) env() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	env := make(map[string]any, len(s.vars))
	for k, v := range s.vars {
		env[k] = v
	}
	return env
}

func (s *scope) set(name string, v any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vars[name] = v
}

// eval evaluates one expression against the scope and emits the result.
func eval(s *scope, input []byte) (*scope, []byte, error) {
	source := strings.TrimSpace(string(input))
	if source == "" {
		return s, nil, fmt.Errorf("empty expression")
	}
	if s.maxLength > 0 && len(source) > s.maxLength {
		return s, nil, fmt.Errorf("expression exceeds %d bytes", s.maxLength)
	}

	target, source := splitAssignment(source)

	env := s.env()
	program, err := expr.Compile(source, expr.Env(env))
	if err != nil {
		return s, nil, fmt.Errorf("compile: %w", err)
	}
	result, err := expr.Run(program, env)
	if err != nil {
		return s, nil, fmt.Errorf("evaluate: %w", err)
	}

	if target != "" {
		s.set(target, result)
	}
	return s, []byte(fmt.Sprint(result)), nil
}

// vars emits the scope as sorted name=value lines.
func vars(s *scope, _ []byte) (*scope, []byte, error) {
	env := s.env()
	names := make([]string, 0, len(env))
	for name := range env {
		names = append(names, name)
	}
	sort.Strings(names)

	var out bytes.Buffer
	for _, name := range names {
		fmt.Fprintf(&out, "%s=%v\n", name, env[name])
	}
	return s, out.Bytes(), nil
}

// splitAssignment splits "name = expr". Comparisons such as "a == b" and
// "a <= b" are not assignments.
func splitAssignment(source string) (target, rest string) {
	i := strings.IndexByte(source, '=')
	if i <= 0 || strings.HasPrefix(source[i+1:], "=") {
		return "", source
	}
	name := strings.TrimSpace(source[:i])
	if !identifier.MatchString(name) {
		return "", source
	}
	return name, strings.TrimSpace(source[i+1:])
}
