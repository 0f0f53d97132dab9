package capabilities

import (
	"context"
	"log/slog"
	"time"
)

// Middleware wraps a capability's processor to add cross-cutting behavior.
// It runs inside the state guard, so it must not block on other capabilities.
type Middleware func(name string, next ProcessFunc) ProcessFunc

type contextKey struct {
	name string
}

var handleIDKey = &contextKey{name: "handle_id"}

// WithHandleID adds the id of the stream handle issuing a request to the context.
func WithHandleID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, handleIDKey, id)
}

// HandleIDFromContext retrieves the handle id from the context.
func HandleIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(handleIDKey).(string)
	return id, ok
}

// Logging returns a middleware that logs every processor invocation at debug
// level. preview renders payloads for the log line; it should scrub secrets.
func Logging(logger *slog.Logger, preview func([]byte) string) Middleware {
	if preview == nil {
		preview = func(b []byte) string { return string(b) }
	}
	return func(name string, next ProcessFunc) ProcessFunc {
		return func(ctx context.Context, state any, input []byte) (any, []byte, error) {
			start := time.Now()
			handleID, _ := HandleIDFromContext(ctx)

			nextState, out, err := next(ctx, state, input)
			if err != nil {
				logger.DebugContext(ctx, "capability rejected request",
					"capability", name,
					"handle", handleID,
					"input", preview(input),
					"error", err)
				return nextState, out, err
			}

			logger.DebugContext(ctx, "capability processed request",
				"capability", name,
				"handle", handleID,
				"input", preview(input),
				"output", preview(out),
				"duration", time.Since(start))
			return nextState, out, nil
		}
	}
}
