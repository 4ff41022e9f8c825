package httpx

import "context"

type ctxKey string

const (
	CtxKeyUserID        ctxKey = "user_id"
	CtxKeyEmail         ctxKey = "email"
	CtxKeyEmailVerified ctxKey = "email_verified"
	CtxKeyName          ctxKey = "name"
)

// Identity is what the authn middleware learned from the bearer token.
// It carries who the caller is, never what they may do.
type Identity struct {
	UserID        string
	Email         string
	EmailVerified bool
	Name          string
}

// IdentityFromContext returns the authenticated identity, ok=false when the
// request did not pass AuthnMiddleware.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	userID, _ := ctx.Value(CtxKeyUserID).(string)
	if userID == "" {
		return Identity{}, false
	}
	email, _ := ctx.Value(CtxKeyEmail).(string)
	verified, _ := ctx.Value(CtxKeyEmailVerified).(bool)
	name, _ := ctx.Value(CtxKeyName).(string)
	return Identity{UserID: userID, Email: email, EmailVerified: verified, Name: name}, true
}
