package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"cartograph/internal/httputil"
)

// Recovery turns a handler panic into a 500 problem response.
// If the handler already started its response (an SSE stream mid-flight) nothing more
// can be written, so the panic is only logged and the connection is dropped.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tw := &startTracker{ResponseWriter: w}
			defer func() {
				err := recover()
				if err == nil {
					return
				}
				if err == http.ErrAbortHandler {
					panic(err)
				}
				logger.Error("panic recovered",
					"error", err,
					"path", r.URL.Path,
					"method", r.Method,
					"response_started", tw.started,
					"stack", string(debug.Stack()),
				)
				if tw.started {
					panic(http.ErrAbortHandler)
				}

				problem := httputil.NewProblem(http.StatusInternalServerError, "internal server error")
				problem.Instance = r.URL.Path
				httputil.RespondProblem(w, problem)
			}()

			next.ServeHTTP(tw, r)
		})
	}
}

// startTracker notes whether any part of the response has been sent
type startTracker struct {
	http.ResponseWriter
	started bool
}

func (t *startTracker) WriteHeader(status int) {
	t.started = true
	t.ResponseWriter.WriteHeader(status)
}

func (t *startTracker) Write(b []byte) (int, error) {
	t.started = true
	return t.ResponseWriter.Write(b)
}

func (t *startTracker) Flush() {
	if f, ok := t.ResponseWriter.(http.Flusher); ok {
		t.started = true
		f.Flush()
	}
}

func (t *startTracker) Unwrap() http.ResponseWriter {
	return t.ResponseWriter
}
