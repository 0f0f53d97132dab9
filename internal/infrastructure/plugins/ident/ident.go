// Package ident provides identifier generation capabilities.
package ident

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/reglet-dev/capbridge/internal/domain/capabilities"
	"github.com/reglet-dev/capbridge/internal/infrastructure/plugins/pluginkit"
)

const (
	// Name is the plugin name and its default mount.
	Name = "ident"
	// Version is the plugin version.
	Version = "1.0.0"
)

// Settings configure the ident namespace.
type Settings struct {
	// UUIDVersion selects random (4) or time-ordered (7) UUIDs.
	UUIDVersion int `mapstructure:"uuid_version"`
	// SeqStart is the first value returned by seq.
	SeqStart uint64 `mapstructure:"seq_start"`
}

// Plugin exposes read-only identifier sources.
type Plugin struct{}

// New creates the ident plugin.
func New() *Plugin {
	return &Plugin{}
}

func (p *Plugin) Name() string    { return Name }
func (p *Plugin) Version() string { return Version }

func (p *Plugin) Description() string {
	return "Identifiers: uuid returns a fresh UUID, seq a process-wide sequence number"
}

// Register adds the ident capabilities.
func (p *Plugin) Register(b *capabilities.Builder, raw map[string]any) error {
	s := Settings{UUIDVersion: 4, SeqStart: 1}
	if err := pluginkit.Decode(raw, &s); err != nil {
		return err
	}

	var gen func() (uuid.UUID, error)
	switch s.UUIDVersion {
	case 4:
		gen = uuid.NewRandom
	case 7:
		gen = uuid.NewV7
	default:
		return fmt.Errorf("unsupported uuid_version %d (want 4 or 7)", s.UUIDVersion)
	}

	return pluginkit.RegisterAll(b,
		capabilities.New("seq", capabilities.ReadOnly, s.SeqStart, seq),
		capabilities.New("uuid", capabilities.ReadOnly, gen, newUUID),
	)
}

// seq emits the current value and advances. The counter lives in the
// capability's own state.
func seq(next uint64, _ []byte) (uint64, []byte, error) {
	return next + 1, strconv.AppendUint(nil, next, 10), nil
}

func newUUID(gen func() (uuid.UUID, error), _ []byte) (func() (uuid.UUID, error), []byte, error) {
	id, err := gen()
	if err != nil {
		return gen, nil, err
	}
	return gen, []byte(id.String()), nil
}
