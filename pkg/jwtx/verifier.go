package jwtx

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Verifier validates a JWT and gives you back the claims if it's legit.
type Verifier interface {
	Verify(token string) (Claims, error)
}

// VerifyOptions captures common expectations used by verifiers.
type VerifyOptions struct {
	// Issuer the token must have (claims.iss). Empty means "don't care".
	Issuer string

	// Audience values the token must contain (claims.aud). Empty means "don't care".
	Audience []string

	// Leeway allows small clock skew when validating exp/nbf.
	Leeway time.Duration
}

var (
	ErrMalformed    = errors.New("jwtx: malformed token")
	ErrUnknownKID   = errors.New("jwtx: unknown kid")
	ErrIssuer       = errors.New("jwtx: issuer mismatch")
	ErrAudience     = errors.New("jwtx: audience mismatch")
	ErrExpired      = errors.New("jwtx: token expired")
	ErrNotYetValid  = errors.New("jwtx: token not yet valid")
	ErrInvalidClaim = errors.New("jwtx: invalid claims")
	ErrUnsupported  = errors.New("jwtx: unsupported algorithm")
)

// NewVerifier builds the verifier for the configured algorithm. Asymmetric
// algorithms verify against keys, HS256 against secret.
func NewVerifier(alg string, keys *KeySet, secret []byte, opts VerifyOptions) (Verifier, error) {
	switch alg {
	case "EdDSA", "RS256", "ES256":
		if keys == nil {
			return nil, fmt.Errorf("jwtx: %s requires a key set", alg)
		}
		return NewKeySetVerifier(alg, keys, opts), nil
	case "HS256":
		if len(secret) == 0 {
			return nil, errors.New("jwtx: HS256 requires a shared secret")
		}
		return NewHS256Verifier(secret, opts), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupported, alg)
	}
}

// parse is shared by all verifiers: signature check via keyFunc, then the
// claim requirements in opts.
func parse(tokenStr, alg string, opts VerifyOptions, keyFunc jwt.Keyfunc) (Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{alg}),
		jwt.WithLeeway(opts.Leeway),
	)

	token, err := parser.ParseWithClaims(tokenStr, &Claims{}, keyFunc)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrExpired
		}
		if errors.Is(err, jwt.ErrTokenMalformed) {
			return Claims{}, ErrMalformed
		}
		return Claims{}, fmt.Errorf("jwtx: parse or verify: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return Claims{}, ErrInvalidClaim
	}

	if err := claims.ValidateSubject(); err != nil {
		return Claims{}, err
	}
	if err := claims.ValidateIssuer(opts.Issuer); err != nil {
		return Claims{}, err
	}
	if err := claims.ValidateAudience(opts.Audience); err != nil {
		return Claims{}, err
	}
	if err := claims.ValidateExpiryWithLeeway(opts.Leeway); err != nil {
		return Claims{}, err
	}

	return *claims, nil
}
