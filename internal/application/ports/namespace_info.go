package ports

import "github.com/reglet-dev/capbridge/internal/domain/capabilities"

// CapabilityInfo describes one capability of a namespace.
type CapabilityInfo struct {
	Name string
	Mode capabilities.Mode
}

// NamespaceInfo describes a namespace awaiting a grant decision.
type NamespaceInfo struct {
	Mount        string
	Plugin       string
	Version      string
	Capabilities []CapabilityInfo
}

// Writable reports whether any capability accepts writes.
func (n NamespaceInfo) Writable() bool {
	for _, c := range n.Capabilities {
		if c.Mode.Writable() {
			return true
		}
	}
	return false
}
