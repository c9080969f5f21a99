package middleware

import (
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/payroll-engine/internal/handler/http/response"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/jwt"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/requestctx"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

// AuthRequired rejects requests without a verified access token and stores
// the caller in the request context. It must run after jwtauth.Verifier.
func AuthRequired(ja *jwtauth.JWTAuth) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			token, claims, err := jwtauth.FromContext(r.Context())
			if err != nil {
				response.Unauthorized(w, err.Error())
				return
			}

			if token == nil {
				response.Unauthorized(w, "Invalid token")
				return
			}

			actor, err := jwt.ActorFromClaims(claims)
			if err != nil {
				slog.DebugContext(r.Context(), "rejected access token", "error", err)
				response.Unauthorized(w, "Invalid token")
				return
			}

			httplog.SetAttrs(r.Context(), slog.String("user_id", actor.UserID), slog.String("role", string(actor.Role)))

			ctx := requestctx.WithActor(r.Context(), actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		}
		return http.HandlerFunc(hfn)
	}
}
