// Package echo provides a namespace that returns requests unchanged.
package echo

import (
	"github.com/reglet-dev/capbridge/internal/domain/capabilities"
	"github.com/reglet-dev/capbridge/internal/infrastructure/plugins/pluginkit"
)

const (
	// Name is the plugin name and its default mount.
	Name = "echo"
	// Version is the plugin version.
	Version = "1.0.0"
)

// Settings configure the echo namespace.
type Settings struct {
	// Prefix is prepended to every response.
	Prefix string `mapstructure:"prefix"`
}

// Plugin exposes a single read-write echo capability.
type Plugin struct{}

// New creates the echo plugin.
func New() *Plugin {
	return &Plugin{}
}

func (p *Plugin) Name() string        { return Name }
func (p *Plugin) Version() string     { return Version }
func (p *Plugin) Description() string { return "Returns every request unchanged" }

// Register adds the echo capability.
func (p *Plugin) Register(b *capabilities.Builder, raw map[string]any) error {
	var s Settings
	if err := pluginkit.Decode(raw, &s); err != nil {
		return err
	}
	return b.Register(capabilities.New("echo", capabilities.ReadWrite, s.Prefix, echo))
}

func echo(prefix string, input []byte) (string, []byte, error) {
	out := make([]byte, 0, len(prefix)+len(input))
	out = append(out, prefix...)
	return prefix, append(out, input...), nil
}
