package httputil

import (
	"context"
	"net/http"
)

type callerKey struct{}

// Caller identifies who a request runs as
type Caller struct {
	UserID string
	// Dev is set when auth is disabled and the request runs as the configured dev user
	Dev bool
}

// WithCaller attaches the resolved caller to the request context
func WithCaller(r *http.Request, caller Caller) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), callerKey{}, caller))
}

// CallerFrom returns the caller stored in ctx, if any
func CallerFrom(ctx context.Context) (Caller, bool) {
	caller, ok := ctx.Value(callerKey{}).(Caller)
	return caller, ok
}

// GetUserID returns the caller's user ID, or "" on unauthenticated routes
func GetUserID(r *http.Request) string {
	caller, _ := CallerFrom(r.Context())
	return caller.UserID
}
