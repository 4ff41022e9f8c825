package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultDevTokenTTL is the lifetime farmctl gives locally minted tokens.
const DefaultDevTokenTTL = time.Hour

// Claims are the access-token claims the farm service consumes. Role and
// farm are deliberately absent: those are always re-derived server side.
type Claims struct {
	jwt.RegisteredClaims

	// Email of the authenticated principal, as asserted by the identity provider.
	Email string `json:"email,omitempty"`

	// EmailVerified must be true before an invitation can be accepted by email.
	EmailVerified bool `json:"email_verified,omitempty"`

	// Name is an optional display name hint used at registration.
	Name string `json:"name,omitempty"`
}

// NewPrincipalClaims builds minimally-correct claims for a principal.
func NewPrincipalClaims(
	subject, email string,
	emailVerified bool,
	ttl time.Duration,
	issuer string,
	audience []string,
	now time.Time,
) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			Audience:  jwt.ClaimStrings(audience),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		Email:         email,
		EmailVerified: emailVerified,
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// ValidateIssuer checks the issuer matches. Empty expected means don't care.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil
	}
	if c.Issuer != expected {
		return ErrIssuer
	}
	return nil
}

// ValidateAudience checks at least one expected audience is present.
func (c *Claims) ValidateAudience(expected []string) error {
	if len(expected) == 0 {
		return nil
	}
	for _, want := range expected {
		if slices.Contains(c.Audience, want) {
			return nil
		}
	}
	return ErrAudience
}

// ValidateExpiry ensures exp has not passed and nbf has, allowing leeway
// for clock skew between us and the identity provider.
func (c *Claims) ValidateExpiry(now time.Time, leeway time.Duration) error {
	if c.ExpiresAt != nil && now.After(c.ExpiresAt.Add(leeway)) {
		return ErrExpired
	}
	if c.NotBefore != nil && now.Before(c.NotBefore.Add(-leeway)) {
		return ErrNotYetValid
	}
	return nil
}
