package jwtx

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Verifier validates a JWT and gives you back the claims if it's legit.
type Verifier interface {
	Verify(token string) (Claims, error)
}

var (
	ErrMissingKID  = errors.New("jwtx: missing kid")
	ErrKeyMismatch = errors.New("jwtx: key type does not match algorithm")

	ErrIssuer      = errors.New("jwtx: issuer mismatch")
	ErrAudience    = errors.New("jwtx: audience mismatch")
	ErrExpired     = errors.New("jwtx: token expired")
	ErrNotYetValid = errors.New("jwtx: token not yet valid")
)

// DefaultLeeway tolerates small clock skew against the identity provider.
const DefaultLeeway = 30 * time.Second

// KeySetVerifier verifies tokens signed by any key in a KeySet, choosing
// the algorithm from the key type registered under the token's kid.
type KeySetVerifier struct {
	keys   *KeySet
	issuer string
	aud    []string
	leeway time.Duration
	now    func() time.Time
}

// NewVerifier returns a Verifier backed by keys. Empty issuer or audience
// disables that check.
func NewVerifier(keys *KeySet, issuer string, audience []string) *KeySetVerifier {
	return &KeySetVerifier{
		keys:   keys,
		issuer: issuer,
		aud:    audience,
		leeway: DefaultLeeway,
		now:    time.Now,
	}
}

// Verify parses and validates token.
func (v *KeySetVerifier) Verify(token string) (Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{
			jwt.SigningMethodEdDSA.Alg(),
			jwt.SigningMethodES256.Alg(),
			jwt.SigningMethodRS256.Alg(),
		}),
		jwt.WithoutClaimsValidation(), // exp/nbf checked below with our leeway
	)

	parsed, err := parser.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, ErrMissingKID
		}

		pub, err := v.keys.Get(kid)
		if err != nil {
			return nil, fmt.Errorf("jwtx: unknown kid %q: %w", kid, err)
		}

		switch pub.(type) {
		case ed25519.PublicKey:
			if _, ok := t.Method.(*jwt.SigningMethodEd25519); !ok {
				return nil, ErrKeyMismatch
			}
		case *ecdsa.PublicKey:
			if _, ok := t.Method.(*jwt.SigningMethodECDSA); !ok {
				return nil, ErrKeyMismatch
			}
		case *rsa.PublicKey:
			if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
				return nil, ErrKeyMismatch
			}
		default:
			return nil, ErrKeyMismatch
		}
		return pub, nil
	})
	if err != nil {
		return Claims{}, fmt.Errorf("jwtx: parse or verify: %w", err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return Claims{}, errors.New("jwtx: invalid token claims")
	}

	if err := claims.ValidateIssuer(v.issuer); err != nil {
		return Claims{}, err
	}
	if err := claims.ValidateAudience(v.aud); err != nil {
		return Claims{}, err
	}
	if err := claims.ValidateExpiry(v.now().UTC(), v.leeway); err != nil {
		return Claims{}, err
	}

	return *claims, nil
}
