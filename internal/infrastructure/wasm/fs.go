package wasm

import (
	"context"
	"io/fs"

	"github.com/reglet-dev/capbridge/internal/domain/vfs"
	experimentalsys "github.com/tetratelabs/wazero/experimental/sys"
	"github.com/tetratelabs/wazero/sys"
)

// capabilityFS exposes a capability directory to wazero. Only the directory
// itself and its capability names resolve; everything else is rejected.
type capabilityFS struct {
	experimentalsys.UnimplementedFS
	ctx    context.Context
	dir    *vfs.Directory
	gather *writeGather
}

// NewFS adapts dir to a wazero filesystem. ctx bounds request processing:
// once it is done, writes that have not acquired their capability fail with
// EINTR. When ctx carries the write gather of a guest run, the iovecs of
// one fd_write reach a capability as one request.
func NewFS(ctx context.Context, dir *vfs.Directory) experimentalsys.FS {
	return &capabilityFS{ctx: ctx, dir: dir, gather: writeGatherFrom(ctx)}
}

// String implements fmt.Stringer.
func (f *capabilityFS) String() string {
	return f.dir.Name()
}

// OpenFile implements experimentalsys.FS.
func (f *capabilityFS) OpenFile(path string, flag experimentalsys.Oflag, _ fs.FileMode) (experimentalsys.File, experimentalsys.Errno) {
	read, write := accessIntent(flag)

	if isRoot(path) {
		if write {
			return nil, experimentalsys.EISDIR
		}
		return &dirFile{dir: f.dir}, 0
	}

	if flag&experimentalsys.O_DIRECTORY != 0 {
		if _, err := f.dir.StatPath(f.ctx, path); err != nil {
			return nil, toErrno(err)
		}
		return nil, experimentalsys.ENOTDIR
	}

	h, err := f.dir.Open(f.ctx, path, read, write)
	if err != nil {
		return nil, toErrno(err)
	}
	return &streamFile{ctx: f.ctx, handle: h, gather: f.gather}, 0
}

// Lstat implements experimentalsys.FS.
func (f *capabilityFS) Lstat(path string) (sys.Stat_t, experimentalsys.Errno) {
	return f.Stat(path)
}

// Stat implements experimentalsys.FS.
func (f *capabilityFS) Stat(path string) (sys.Stat_t, experimentalsys.Errno) {
	if isRoot(path) {
		return toStat(f.dir.Stat()), 0
	}
	st, err := f.dir.StatPath(f.ctx, path)
	if err != nil {
		return sys.Stat_t{}, toErrno(err)
	}
	return toStat(st), 0
}

// Mkdir implements experimentalsys.FS.
func (f *capabilityFS) Mkdir(path string, _ fs.FileMode) experimentalsys.Errno {
	return toErrno(f.dir.CreateDir(path))
}

// Rmdir implements experimentalsys.FS.
func (f *capabilityFS) Rmdir(path string) experimentalsys.Errno {
	return toErrno(f.dir.RemoveDir(path))
}

// Rename implements experimentalsys.FS.
func (f *capabilityFS) Rename(from, to string) experimentalsys.Errno {
	return toErrno(f.dir.Rename(from, to))
}

// Link implements experimentalsys.FS.
func (f *capabilityFS) Link(oldPath, newPath string) experimentalsys.Errno {
	return toErrno(f.dir.HardLink(oldPath, newPath))
}

// Symlink implements experimentalsys.FS.
func (f *capabilityFS) Symlink(oldName, linkName string) experimentalsys.Errno {
	return toErrno(f.dir.Symlink(oldName, linkName))
}

// Unlink implements experimentalsys.FS.
func (f *capabilityFS) Unlink(path string) experimentalsys.Errno {
	return toErrno(f.dir.Unlink(path))
}

// Readlink implements experimentalsys.FS.
func (f *capabilityFS) Readlink(path string) (string, experimentalsys.Errno) {
	_, err := f.dir.ReadLink(path)
	return "", toErrno(err)
}

// Utimens implements experimentalsys.FS.
func (f *capabilityFS) Utimens(path string, atim, mtim int64) experimentalsys.Errno {
	return toErrno(f.dir.SetTimes(path, atim, mtim))
}

// accessIntent decodes the access mode bits of flag. Creation and truncation
// flags are ignored: a name either exists in the table or it does not.
func accessIntent(flag experimentalsys.Oflag) (read, write bool) {
	switch flag & (experimentalsys.O_RDWR | experimentalsys.O_WRONLY) {
	case experimentalsys.O_RDWR:
		return true, true
	case experimentalsys.O_WRONLY:
		return false, true
	default:
		return true, false
	}
}

func isRoot(path string) bool {
	return path == "" || path == "." || path == "/"
}

func toStat(st vfs.Stat) sys.Stat_t {
	var mode fs.FileMode
	switch st.Type {
	case vfs.TypeDirectory:
		mode = fs.ModeDir
	case vfs.TypeStream:
		mode = fs.ModeNamedPipe
	}
	return sys.Stat_t{
		Mode:  mode,
		Size:  st.Size,
		Nlink: st.Nlink,
	}
}
