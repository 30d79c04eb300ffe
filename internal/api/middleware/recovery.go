package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/projectr/roomserver/internal/api/apierr"
)

// Recovery creates middleware that converts panics into a JSON 500.
// A panic in one request must never take the process (and every other
// room) down with it.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("panic recovered",
						slog.Any("error", err),
						slog.String("stack", string(debug.Stack())),
						slog.String("method", r.Method),
						slog.String("path", r.URL.Path),
					)

					apierr.WriteError(w, apierr.NewInternalError())
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
