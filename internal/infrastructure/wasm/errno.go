package wasm

import (
	"context"
	"errors"
	"log/slog"

	"github.com/reglet-dev/capbridge/internal/domain/capabilities"
	experimentalsys "github.com/tetratelabs/wazero/experimental/sys"
)

// toErrno maps a bridge error to the errno the guest observes. Causes never
// cross into the guest; failures worth diagnosing are logged host-side.
func toErrno(err error) experimentalsys.Errno {
	if err == nil {
		return 0
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return experimentalsys.EINTR
	}

	switch capabilities.KindOf(err) {
	case capabilities.KindNotFound:
		return experimentalsys.ENOENT
	case capabilities.KindPermissionDenied:
		return experimentalsys.EACCES
	case capabilities.KindUnsupported:
		return experimentalsys.ENOSYS
	case capabilities.KindProcessingFailure:
		slog.Debug("capability rejected guest request", "error", err)
		return experimentalsys.EINVAL
	case capabilities.KindClosed:
		return experimentalsys.EBADF
	case capabilities.KindCancelled:
		return experimentalsys.EINTR
	case capabilities.KindInternal:
		slog.Error("capability failed", "error", err)
		return experimentalsys.EIO
	default:
		slog.Error("unexpected bridge error", "error", err)
		return experimentalsys.EIO
	}
}
