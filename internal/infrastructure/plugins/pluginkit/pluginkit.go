// Package pluginkit holds helpers shared by the built-in plugins.
package pluginkit

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
	"github.com/reglet-dev/capbridge/internal/domain/capabilities"
)

// Decode decodes namespace settings into out. Scalars are converted
// loosely (YAML may deliver "5" or 5) but unknown keys are rejected.
func Decode(settings map[string]any, out any) error {
	if len(settings) == 0 {
		return nil
	}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Errorf("failed to create settings decoder: %w", err)
	}
	if err := decoder.Decode(settings); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	return nil
}

// RegisterAll registers caps in order and stops at the first failure.
func RegisterAll(b *capabilities.Builder, caps ...*capabilities.Capability) error {
	for _, c := range caps {
		if err := b.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// RegisterShared registers caps whose processors reach the same underlying
// value. They share one poison flag, so a panic in any of them disables
// the whole set.
func RegisterShared(b *capabilities.Builder, caps ...*capabilities.Capability) error {
	capabilities.Group(caps...)
	return RegisterAll(b, caps...)
}
