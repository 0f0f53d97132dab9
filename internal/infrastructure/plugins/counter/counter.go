// Package counter provides an integer accumulator namespace.
package counter

import (
	"bytes"
	"fmt"
	"strconv"
	"sync/atomic"

	"github.com/reglet-dev/capbridge/internal/domain/capabilities"
	"github.com/reglet-dev/capbridge/internal/infrastructure/plugins/pluginkit"
)

const (
	// Name is the plugin name and its default mount.
	Name = "counter"
	// Version is the plugin version.
	Version = "1.0.0"
)

// Settings configure the counter namespace.
type Settings struct {
	Start int64 `mapstructure:"start"`
}

// Plugin exposes incr, reset and value over one shared total.
type Plugin struct{}

// New creates the counter plugin.
func New() *Plugin {
	return &Plugin{}
}

func (p *Plugin) Name() string    { return Name }
func (p *Plugin) Version() string { return Version }

func (p *Plugin) Description() string {
	return "Integer accumulator: incr adds and returns the total, reset sets it, value reads it"
}

// Register adds the counter capabilities. The three capabilities observe
// the same total.
func (p *Plugin) Register(b *capabilities.Builder, raw map[string]any) error {
	var s Settings
	if err := pluginkit.Decode(raw, &s); err != nil {
		return err
	}

	total := new(atomic.Int64)
	total.Store(s.Start)

	return pluginkit.RegisterShared(b,
		capabilities.New("incr", capabilities.ReadWrite, total, incr),
		capabilities.New("reset", capabilities.WriteOnly, total, reset),
		capabilities.New("value", capabilities.ReadOnly, total, value),
	)
}

// incr adds the input to the total and emits the new total. Empty input
// adds nothing.
func incr(total *atomic.Int64, input []byte) (*atomic.Int64, []byte, error) {
	delta, err := parse(input, 0)
	if err != nil {
		return total, nil, err
	}
	return total, strconv.AppendInt(nil, total.Add(delta), 10), nil
}

// reset sets the total. Empty input resets to zero.
func reset(total *atomic.Int64, input []byte) (*atomic.Int64, []byte, error) {
	n, err := parse(input, 0)
	if err != nil {
		return total, nil, err
	}
	total.Store(n)
	return total, nil, nil
}

func value(total *atomic.Int64, _ []byte) (*atomic.Int64, []byte, error) {
	return total, strconv.AppendInt(nil, total.Load(), 10), nil
}

func parse(input []byte, def int64) (int64, error) {
	trimmed := bytes.TrimSpace(input)
	if len(trimmed) == 0 {
		return def, nil
	}
	n, err := strconv.ParseInt(string(trimmed), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid integer %q", trimmed)
	}
	return n, nil
}
