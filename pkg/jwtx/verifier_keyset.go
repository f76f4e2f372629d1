package jwtx

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// KeySetVerifier validates asymmetric JWTs against a KeySet, selecting the
// key by the token's kid header.
type KeySetVerifier struct {
	alg  string
	keys *KeySet
	opts VerifyOptions
}

// NewKeySetVerifier creates a verifier for one of EdDSA, RS256 or ES256.
func NewKeySetVerifier(alg string, keys *KeySet, opts VerifyOptions) *KeySetVerifier {
	return &KeySetVerifier{alg: alg, keys: keys, opts: opts}
}

// Verify validates the JWT string and returns its parsed Claims.
func (v *KeySetVerifier) Verify(tokenStr string) (Claims, error) {
	return parse(tokenStr, v.alg, v.opts, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, errors.New("jwtx: missing kid")
		}

		pub, err := v.keys.Get(kid)
		if err != nil {
			return nil, fmt.Errorf("%w %q", ErrUnknownKID, kid)
		}

		// The key type has to agree with the pinned algorithm
		switch key := pub.(type) {
		case ed25519.PublicKey:
			if v.alg == "EdDSA" {
				return key, nil
			}
		case *rsa.PublicKey:
			if v.alg == "RS256" {
				return key, nil
			}
		case *ecdsa.PublicKey:
			if v.alg == "ES256" {
				return key, nil
			}
		}
		return nil, fmt.Errorf("jwtx: key %q does not match %s", kid, v.alg)
	})
}
