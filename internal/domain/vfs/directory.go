// Package vfs presents a sealed capability table as a virtual directory.
// Guests resolve capabilities by name, open them with read and write intent
// and exchange request and response bytes through stream handles. Every
// structural filesystem operation is rejected.
package vfs

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/reglet-dev/capbridge/internal/domain/capabilities"
)

// Directory is the flat, read-only namespace of one sealed capability table.
// It holds no mutable state and is safe for concurrent use.
type Directory struct {
	name  string
	table *capabilities.Table
}

// NewDirectory creates a directory over a sealed table.
// name is used for logging only.
func NewDirectory(name string, table *capabilities.Table) *Directory {
	return &Directory{name: name, table: table}
}

// Name returns the directory name.
func (d *Directory) Name() string {
	return d.name
}

// Table returns the table backing the directory.
func (d *Directory) Table() *capabilities.Table {
	return d.table
}

// Open resolves name and returns a handle with the requested intent.
// Permission is checked here and never again for the life of the handle.
func (d *Directory) Open(ctx context.Context, name string, wantRead, wantWrite bool) (*Handle, error) {
	c, ok := d.table.Lookup(name)
	if !ok {
		return nil, capabilities.NewError(capabilities.KindNotFound, "open", name, nil)
	}
	if c.Poisoned() {
		return nil, capabilities.NewError(capabilities.KindInternal, "open", name, nil)
	}
	if !c.Mode().Permits(wantRead, wantWrite) {
		slog.DebugContext(ctx, "capability open denied",
			"directory", d.name,
			"capability", name,
			"mode", c.Mode().String(),
			"read", wantRead,
			"write", wantWrite)
		return nil, capabilities.NewError(capabilities.KindPermissionDenied, "open", name, nil)
	}

	h := newHandle(uuid.NewString(), c, wantRead, wantWrite)
	slog.DebugContext(ctx, "capability opened",
		"directory", d.name,
		"capability", name,
		"handle", h.id,
		"read", wantRead,
		"write", wantWrite)
	return h, nil
}

// Stat returns the fixed directory record.
func (d *Directory) Stat() Stat {
	return directoryStat
}

// StatPath reports the record of the named capability. It opens a transient
// handle with no intent, which any mode permits, so it fails only when the
// name is absent or the capability is poisoned.
func (d *Directory) StatPath(ctx context.Context, name string) (Stat, error) {
	h, err := d.Open(ctx, name, false, false)
	if err != nil {
		return Stat{}, err
	}
	defer h.Close()
	return h.Stat(), nil
}

// CreateDir is not supported.
func (d *Directory) CreateDir(name string) error {
	return unsupported("mkdir", name)
}

// RemoveDir is not supported.
func (d *Directory) RemoveDir(name string) error {
	return unsupported("rmdir", name)
}

// Rename is not supported.
func (d *Directory) Rename(from, _ string) error {
	return unsupported("rename", from)
}

// HardLink is not supported.
func (d *Directory) HardLink(oldName, _ string) error {
	return unsupported("link", oldName)
}

// Symlink is not supported.
func (d *Directory) Symlink(_, newName string) error {
	return unsupported("symlink", newName)
}

// Unlink is not supported.
func (d *Directory) Unlink(name string) error {
	return unsupported("unlink", name)
}

// ReadLink is not supported.
func (d *Directory) ReadLink(name string) (string, error) {
	return "", unsupported("readlink", name)
}

// SetTimes is not supported.
func (d *Directory) SetTimes(name string, _, _ int64) error {
	return unsupported("utimens", name)
}

// ReadDir is not supported. The namespace is resolved by name only.
func (d *Directory) ReadDir() ([]string, error) {
	return nil, unsupported("readdir", "")
}

func unsupported(op, name string) error {
	return capabilities.NewError(capabilities.KindUnsupported, op, name, nil)
}
