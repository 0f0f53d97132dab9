package vfs

import (
	"bytes"
	"context"
	"log/slog"
	"sync"

	"github.com/reglet-dev/capbridge/internal/domain/capabilities"
)

// Phase is the lifecycle position of a handle.
type Phase int

const (
	// PhaseOpen has no pending input or output.
	PhaseOpen Phase = iota
	// PhaseWriting is accepting request bytes.
	PhaseWriting
	// PhaseProcessing is running the capability's processor.
	PhaseProcessing
	// PhaseReady holds response bytes waiting to be read.
	PhaseReady
	// PhaseClosed is terminal.
	PhaseClosed
)

// String returns a human-readable representation of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseOpen:
		return "open"
	case PhaseWriting:
		return "writing"
	case PhaseProcessing:
		return "processing"
	case PhaseReady:
		return "ready"
	case PhaseClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Handle is one open stream to a capability. Its buffers are private to the
// handle; only the capability state is shared with other handles.
type Handle struct {
	capability *capabilities.Capability
	id         string

	mu      sync.Mutex
	input   bytes.Buffer
	output  bytes.Buffer
	phase   Phase
	queried bool

	read  bool
	write bool
}

func newHandle(id string, c *capabilities.Capability, read, write bool) *Handle {
	return &Handle{
		id:         id,
		capability: c,
		read:       read,
		write:      write,
	}
}

// ID returns the handle identifier used in logs.
func (h *Handle) ID() string {
	return h.id
}

// Name returns the name of the capability behind the handle.
func (h *Handle) Name() string {
	return h.capability.Name()
}

// Phase returns the current lifecycle phase.
func (h *Handle) Phase() Phase {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.phase
}

// CanRead reports whether the handle was opened with read intent.
func (h *Handle) CanRead() bool {
	return h.read
}

// CanWrite reports whether the handle was opened with write intent.
func (h *Handle) CanWrite() bool {
	return h.write
}

// Write submits p as one complete request. The processor runs before Write
// returns, and its response replaces any unread output. On failure nothing
// is committed and the pending output is cleared.
func (h *Handle) Write(ctx context.Context, p []byte) (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.phase == PhaseClosed {
		return 0, capabilities.NewError(capabilities.KindClosed, "write", h.Name(), nil)
	}
	if !h.write {
		return 0, capabilities.NewError(capabilities.KindPermissionDenied, "write", h.Name(), nil)
	}

	h.phase = PhaseWriting
	h.input.Write(p)

	if err := h.process(ctx); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Read drains pending response bytes into p. It returns 0 and no error once
// nothing is pending. A handle opened without write intent can never submit
// a request, so its first read issues an empty one to query the capability.
func (h *Handle) Read(ctx context.Context, p []byte) (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.phase == PhaseClosed {
		return 0, capabilities.NewError(capabilities.KindClosed, "read", h.Name(), nil)
	}
	if !h.read {
		return 0, capabilities.NewError(capabilities.KindPermissionDenied, "read", h.Name(), nil)
	}

	if !h.write && !h.queried {
		if err := h.process(ctx); err != nil {
			return 0, err
		}
	}

	if h.output.Len() == 0 {
		return 0, nil
	}
	n, _ := h.output.Read(p)
	if h.output.Len() == 0 {
		h.phase = PhaseOpen
	}
	return n, nil
}

// process runs the pending input through the capability. h.mu must be held.
func (h *Handle) process(ctx context.Context) error {
	h.phase = PhaseProcessing
	h.queried = true

	out, err := h.capability.Process(capabilities.WithHandleID(ctx, h.id), h.input.Bytes())
	h.input.Reset()
	h.output.Reset()
	if err != nil {
		h.phase = PhaseOpen
		slog.DebugContext(ctx, "capability request failed",
			"capability", h.Name(),
			"handle", h.id,
			"error", err)
		return err
	}

	h.output.Write(out)
	if h.output.Len() > 0 {
		h.phase = PhaseReady
	} else {
		h.phase = PhaseOpen
	}
	return nil
}

// Stat returns the fixed stream record.
func (h *Handle) Stat() Stat {
	return streamStat
}

// Close drops both buffers. Capability state is untouched. Closing twice
// is a no-op.
func (h *Handle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.phase == PhaseClosed {
		return nil
	}
	h.phase = PhaseClosed
	h.input = bytes.Buffer{}
	h.output = bytes.Buffer{}
	return nil
}

// ReadAt is not supported; capability streams have no offsets.
func (h *Handle) ReadAt(_ []byte, _ int64) (int, error) {
	return 0, unsupported("pread", h.Name())
}

// WriteAt is not supported.
func (h *Handle) WriteAt(_ []byte, _ int64) (int, error) {
	return 0, unsupported("pwrite", h.Name())
}

// Seek is not supported.
func (h *Handle) Seek(_ int64, _ int) (int64, error) {
	return 0, unsupported("seek", h.Name())
}

// Peek is not supported.
func (h *Handle) Peek(_ []byte) (int, error) {
	return 0, unsupported("peek", h.Name())
}

// Allocate is not supported.
func (h *Handle) Allocate(_, _ int64) error {
	return unsupported("allocate", h.Name())
}

// Advise is not supported.
func (h *Handle) Advise(_, _ int64, _ int) error {
	return unsupported("advise", h.Name())
}

// SetSize is not supported.
func (h *Handle) SetSize(_ int64) error {
	return unsupported("truncate", h.Name())
}

// SetTimes is not supported.
func (h *Handle) SetTimes(_, _ int64) error {
	return unsupported("utimens", h.Name())
}
