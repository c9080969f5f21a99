package middleware

import (
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/payroll-engine/internal/pkg/requestctx"
	"github.com/go-chi/httplog/v3"
	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-ID"

// RequestID echoes the caller's X-Request-ID or generates one, and attaches
// it to the context and the access log line.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get(RequestIDHeader)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, reqID)
		httplog.SetAttrs(r.Context(), slog.String("request_id", reqID))

		ctx := requestctx.WithRequestID(r.Context(), reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
