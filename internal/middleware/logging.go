package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/josh-kwaku/cafeteria-ledger/internal/auth"
	"github.com/josh-kwaku/cafeteria-ledger/internal/logging"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Logging pins the request ID, operator and idempotency key to the request
// logger and writes one completion line. Policy rejections (4xx) are logged
// at warn so refused debits stand out from routine traffic.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/health") {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()

		attrs := []any{"request_id", RequestIDFromContext(r.Context())}
		if employeeID, ok := auth.EmployeeIDFromContext(r.Context()); ok {
			attrs = append(attrs, "operator_id", employeeID)
		}
		if tier, ok := auth.RoleTierFromContext(r.Context()); ok {
			attrs = append(attrs, "operator_tier", tier)
		}
		if key := r.Header.Get("Idempotency-Key"); key != "" {
			attrs = append(attrs, "idempotency_key", key)
		}

		logger := slog.Default().With(attrs...)
		r = r.WithContext(logging.WithLogger(r.Context(), logger))

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		level := slog.LevelInfo
		switch {
		case rec.status >= http.StatusInternalServerError:
			level = slog.LevelError
		case rec.status >= http.StatusBadRequest:
			level = slog.LevelWarn
		}
		logger.Log(r.Context(), level, "request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"replayed", rec.Header().Get("X-Idempotent-Replayed") == "true",
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}
