package mw

import (
	"net/http"

	"github.com/MrSnakeDoc/mockingbird/internal/logger"
)

// InternalErrorBody is the fixed payload answered when a handler blows up.
const InternalErrorBody = `{"error":"Internal server error"}`

// Recover turns a handler panic into a JSON 500 instead of a dropped connection.
func Recover(loggerClient logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				loggerClient.Error("recovered from handler panic",
					logger.String("method", r.Method),
					logger.String("path", r.URL.Path),
					logger.Any("panic", rec))
				WriteInternalError(w)
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// WriteInternalError writes the fixed 500 JSON payload.
func WriteInternalError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)
	_, _ = w.Write([]byte(InternalErrorBody))
}
