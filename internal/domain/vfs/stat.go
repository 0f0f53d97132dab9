package vfs

// FileType distinguishes the two kinds of entries the bridge exposes.
type FileType int

const (
	// TypeDirectory is the capability directory itself.
	TypeDirectory FileType = iota + 1
	// TypeStream is an opened capability.
	TypeStream
)

// String returns a human-readable representation of the file type.
func (t FileType) String() string {
	switch t {
	case TypeDirectory:
		return "directory"
	case TypeStream:
		return "stream"
	default:
		return "unknown"
	}
}

// Stat is the fixed metadata record reported for bridge entries.
// Capabilities have no meaningful size, link count or timestamps, so those
// are always zero.
type Stat struct {
	Type  FileType
	Size  int64
	Nlink uint64
}

var (
	directoryStat = Stat{Type: TypeDirectory}
	streamStat    = Stat{Type: TypeStream}
)
