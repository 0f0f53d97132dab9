package wasm

import (
	"context"

	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/experimental"
	experimentalsys "github.com/tetratelabs/wazero/experimental/sys"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
)

// writeGather joins the iovecs of one vectored fd_write so that a
// capability stream receives them as a single request. wazero hands a file
// one Write per iovec; the fd_write listener announces how many bytes the
// call carries before the first of them arrives.
//
// A gather belongs to one guest instance and is only touched from that
// instance's goroutine.
type writeGather struct {
	owner   *streamFile
	pending []byte
	total   int
	active  bool
	done    bool
}

type gatherKey struct{}

func withWriteGather(ctx context.Context, g *writeGather) context.Context {
	return context.WithValue(ctx, gatherKey{}, g)
}

func writeGatherFrom(ctx context.Context) *writeGather {
	g, _ := ctx.Value(gatherKey{}).(*writeGather)
	return g
}

func (g *writeGather) begin(total int) {
	*g = writeGather{active: true, total: total}
}

func (g *writeGather) end() {
	*g = writeGather{}
}

// write buffers one iovec for s and issues the request once the last
// iovec of the call has arrived. Empty iovecs after that are absorbed.
func (g *writeGather) write(s *streamFile, buf []byte) (int, experimentalsys.Errno) {
	if g.owner == nil {
		g.owner = s
	}
	if g.owner != s {
		n, err := s.handle.Write(s.ctx, buf)
		return n, toErrno(err)
	}
	if g.done {
		return len(buf), 0
	}

	g.pending = append(g.pending, buf...)
	if len(g.pending) < g.total {
		return len(buf), 0
	}

	g.done = true
	if _, err := s.handle.Write(s.ctx, g.pending); err != nil {
		return 0, toErrno(err)
	}
	return len(buf), 0
}

// gatherListenerFactory attaches fdWriteListener to the WASI fd_write
// import and nothing else.
type gatherListenerFactory struct{}

func (gatherListenerFactory) NewFunctionListener(def api.FunctionDefinition) experimental.FunctionListener {
	if def.ModuleName() == wasi_snapshot_preview1.ModuleName && def.Name() == "fd_write" {
		return fdWriteListener{}
	}
	return nil
}

type fdWriteListener struct{}

// Before arms the caller's gather when fd_write carries more than one
// iovec. params are fd, iovs, iovs_len and result.nwritten.
func (fdWriteListener) Before(ctx context.Context, mod api.Module, _ api.FunctionDefinition, params []uint64, _ experimental.StackIterator) {
	g := writeGatherFrom(ctx)
	if g == nil {
		return
	}
	g.end()

	iovs, count := uint32(params[1]), uint32(params[2])
	if count < 2 {
		return
	}
	mem := mod.Memory()
	if mem == nil {
		return
	}

	total := 0
	for i := uint32(0); i < count; i++ {
		l, ok := mem.ReadUint32Le(iovs + i*8 + 4)
		if !ok {
			return
		}
		total += int(l)
	}
	g.begin(total)
}

func (fdWriteListener) After(ctx context.Context, _ api.Module, _ api.FunctionDefinition, _ []uint64) {
	if g := writeGatherFrom(ctx); g != nil {
		g.end()
	}
}

func (fdWriteListener) Abort(ctx context.Context, _ api.Module, _ api.FunctionDefinition, _ error) {
	if g := writeGatherFrom(ctx); g != nil {
		g.end()
	}
}
