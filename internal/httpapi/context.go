package httpapi

import (
	"context"
)

// serverBaseCtx is a process-level context that can be canceled on shutdown.
// Defaults to Background if not set.
var serverBaseCtx = context.Background()

// SetBaseContext sets the process-level base context used by handlers.
func SetBaseContext(ctx context.Context) {
	if ctx == nil {
		serverBaseCtx = context.Background()
		return
	}
	serverBaseCtx = ctx
}

// requestContext derives the context a handler runs with: canceled when the
// client goes away, when the server shuts down or when requestTimeout elapses.
// The returned cancel func must be called when the handler ends.
func requestContext(r context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancelCause(r)
	stop := context.AfterFunc(serverBaseCtx, func() {
		cancel(context.Cause(serverBaseCtx))
	})
	release := func() {
		stop()
		cancel(context.Canceled)
	}
	if requestTimeout <= 0 {
		return ctx, release
	}
	tctx, tcancel := context.WithTimeout(ctx, requestTimeout)
	return tctx, func() {
		tcancel()
		release()
	}
}

// shuttingDown reports whether the server base context is done.
func shuttingDown() bool { return serverBaseCtx.Err() != nil }
