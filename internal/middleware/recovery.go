package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"

	"blockwriter/internal/domain"
	"blockwriter/internal/httputil"
)

const internalErrorMessage = "サーバーエラーが発生しました"

// Recovery turns a handler panic into a 500 INTERNAL_ERROR envelope.
// http.ErrAbortHandler is re-raised so net/http can drop the connection.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(rec)
				}

				logger.Error("panic recovered",
					"panic", rec,
					"method", r.Method,
					"path", r.URL.Path,
					"request_id", w.Header().Get(requestIDHeader),
					"user_id", httputil.GetUserID(r),
					"stack", string(debug.Stack()),
				)
				httputil.RespondError(w, http.StatusInternalServerError, domain.CodeInternal, internalErrorMessage)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
