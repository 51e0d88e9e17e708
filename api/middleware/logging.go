package middleware

import (
	"net/http"
	"time"

	"github.com/youscore/youscore-backend/pkg/logger"
)

type responseMeter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (m *responseMeter) WriteHeader(code int) {
	m.status = code
	m.ResponseWriter.WriteHeader(code)
}

func (m *responseMeter) Write(p []byte) (int, error) {
	if m.status == 0 {
		m.status = http.StatusOK
	}
	n, err := m.ResponseWriter.Write(p)
	m.bytes += n
	return n, err
}

// Logging emits a request.start / request.complete pair around every
// request, carrying method, path, status, size, and latency.
func Logging(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if logg == nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := logg.WithFields(r.Context(), map[string]any{
				"method": r.Method,
				"path":   r.URL.Path,
			})
			logg.Info(ctx, "request.start")

			meter := &responseMeter{ResponseWriter: w}
			start := time.Now()
			next.ServeHTTP(meter, r.WithContext(ctx))

			if meter.status == 0 {
				meter.status = http.StatusOK
			}
			ctx = logg.WithFields(ctx, map[string]any{
				"status":      meter.status,
				"bytes":       meter.bytes,
				"duration_ms": time.Since(start).Milliseconds(),
			})
			logg.Info(ctx, "request.complete")
		})
	}
}
