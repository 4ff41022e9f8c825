package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/farmstead/pkg/jwtx"
	"github.com/aussiebroadwan/farmstead/pkg/slogx"
)

// AuthnMiddleware verifies the bearer token and stores the caller's
// identity in the request context.
func AuthnMiddleware(v jwtx.Verifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			authz := r.Header.Get("Authorization")
			if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
				writeBearerError(w, "missing bearer token")
				return
			}

			claims, err := v.Verify(strings.TrimSpace(strings.TrimPrefix(authz, "Bearer")))
			if err != nil {
				log.Warn("jwt verify failed", "err", err)
				writeBearerError(w, "token verification failed")
				return
			}
			if claims.Subject == "" {
				writeBearerError(w, "token has no subject")
				return
			}

			ctx = contextWithClaims(ctx, claims)
			ctx = slogx.With(ctx, "user_id", claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func contextWithClaims(ctx context.Context, c jwtx.Claims) context.Context {
	ctx = context.WithValue(ctx, CtxKeyUserID, c.Subject)
	ctx = context.WithValue(ctx, CtxKeyEmail, strings.ToLower(strings.TrimSpace(c.Email)))
	ctx = context.WithValue(ctx, CtxKeyEmailVerified, c.EmailVerified)
	ctx = context.WithValue(ctx, CtxKeyName, c.Name)
	return ctx
}

// RFC 6750 bearer error with a JSON body matching the rest of the API.
func writeBearerError(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	WriteJSON(w, http.StatusUnauthorized, ErrorBody{
		Success:          false,
		Error:            "not_authenticated",
		ErrorDescription: desc,
	})
}
