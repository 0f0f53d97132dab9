package wasm

import (
	"fmt"

	"github.com/tetratelabs/wazero"
)

// Guest is a compiled WebAssembly command module.
type Guest struct {
	module wazero.CompiledModule
	name   string
	digest string // blake3 of the module bytes
}

// Name returns the name the guest was loaded under.
func (g *Guest) Name() string {
	return g.name
}

// Digest returns the hex-encoded blake3 digest of the module bytes.
func (g *Guest) Digest() string {
	return g.digest
}

// withName returns a guest sharing g's compiled module under another name.
func (g *Guest) withName(name string) *Guest {
	if g.name == name {
		return g
	}
	return &Guest{module: g.module, name: name, digest: g.digest}
}

// ExitError reports a guest that exited with a non-zero status.
type ExitError struct {
	Guest string
	Code  uint32
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("guest %s exited with code %d", e.Guest, e.Code)
}
