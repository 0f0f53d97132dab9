package capabilities

import "fmt"

// Mode is the permission mode a capability is registered with.
// It is fixed for the lifetime of the capability.
type Mode int

const (
	// ReadOnly capabilities may only be opened for reading.
	ReadOnly Mode = iota + 1
	// WriteOnly capabilities may only be opened for writing.
	WriteOnly
	// ReadWrite capabilities may be opened with any combination of intents.
	ReadWrite
)

// String returns a human-readable representation of the mode.
func (m Mode) String() string {
	switch m {
	case ReadOnly:
		return "read-only"
	case WriteOnly:
		return "write-only"
	case ReadWrite:
		return "read-write"
	default:
		return "unknown"
	}
}

// ParseMode parses the textual form produced by String.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "read-only", "ro", "read":
		return ReadOnly, nil
	case "write-only", "wo", "write":
		return WriteOnly, nil
	case "read-write", "rw":
		return ReadWrite, nil
	default:
		return 0, fmt.Errorf("unknown permission mode %q", s)
	}
}

// Valid reports whether m is one of the declared modes.
func (m Mode) Valid() bool {
	return m == ReadOnly || m == WriteOnly || m == ReadWrite
}

// Permits reports whether an open with the given intents is allowed.
// Opening with neither intent is permitted for every mode (used by stat).
func (m Mode) Permits(wantRead, wantWrite bool) bool {
	switch m {
	case ReadOnly:
		return !wantWrite
	case WriteOnly:
		return !wantRead
	case ReadWrite:
		return true
	default:
		return false
	}
}

// Readable reports whether the mode allows read intent.
func (m Mode) Readable() bool {
	return m == ReadOnly || m == ReadWrite
}

// Writable reports whether the mode allows write intent.
func (m Mode) Writable() bool {
	return m == WriteOnly || m == ReadWrite
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("invalid permission mode %d", int(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
