package wasm

import (
	"context"

	"github.com/reglet-dev/capbridge/internal/domain/vfs"
	experimentalsys "github.com/tetratelabs/wazero/experimental/sys"
	"github.com/tetratelabs/wazero/sys"
)

// dirFile is the opened capability directory.
type dirFile struct {
	experimentalsys.UnimplementedFile
	dir *vfs.Directory
}

func (d *dirFile) IsDir() (bool, experimentalsys.Errno) {
	return true, 0
}

func (d *dirFile) Stat() (sys.Stat_t, experimentalsys.Errno) {
	return toStat(d.dir.Stat()), 0
}

func (d *dirFile) Read([]byte) (int, experimentalsys.Errno) {
	return 0, experimentalsys.EISDIR
}

func (d *dirFile) Write([]byte) (int, experimentalsys.Errno) {
	return 0, experimentalsys.EISDIR
}

func (d *dirFile) Readdir(int) ([]experimentalsys.Dirent, experimentalsys.Errno) {
	_, err := d.dir.ReadDir()
	return nil, toErrno(err)
}

func (d *dirFile) Utimens(atim, mtim int64) experimentalsys.Errno {
	return toErrno(d.dir.SetTimes(".", atim, mtim))
}

// streamFile is an opened capability.
type streamFile struct {
	experimentalsys.UnimplementedFile
	ctx    context.Context
	handle *vfs.Handle
	gather *writeGather
}

func (s *streamFile) Stat() (sys.Stat_t, experimentalsys.Errno) {
	return toStat(s.handle.Stat()), 0
}

func (s *streamFile) Read(buf []byte) (int, experimentalsys.Errno) {
	n, err := s.handle.Read(s.ctx, buf)
	return n, toErrno(err)
}

func (s *streamFile) Write(buf []byte) (int, experimentalsys.Errno) {
	if s.gather != nil && s.gather.active {
		return s.gather.write(s, buf)
	}
	n, err := s.handle.Write(s.ctx, buf)
	return n, toErrno(err)
}

func (s *streamFile) Pread(buf []byte, off int64) (int, experimentalsys.Errno) {
	_, err := s.handle.ReadAt(buf, off)
	return 0, toErrno(err)
}

func (s *streamFile) Pwrite(buf []byte, off int64) (int, experimentalsys.Errno) {
	_, err := s.handle.WriteAt(buf, off)
	return 0, toErrno(err)
}

func (s *streamFile) Seek(offset int64, whence int) (int64, experimentalsys.Errno) {
	_, err := s.handle.Seek(offset, whence)
	return 0, toErrno(err)
}

func (s *streamFile) Readdir(int) ([]experimentalsys.Dirent, experimentalsys.Errno) {
	return nil, experimentalsys.ENOTDIR
}

func (s *streamFile) Truncate(size int64) experimentalsys.Errno {
	return toErrno(s.handle.SetSize(size))
}

func (s *streamFile) Utimens(atim, mtim int64) experimentalsys.Errno {
	return toErrno(s.handle.SetTimes(atim, mtim))
}

func (s *streamFile) Close() experimentalsys.Errno {
	return toErrno(s.handle.Close())
}
