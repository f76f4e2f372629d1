package jwtx

import "github.com/golang-jwt/jwt/v5"

// HS256Verifier validates tokens signed with a secret shared with the
// identity provider (hosted auth providers commonly issue these).
type HS256Verifier struct {
	secret []byte
	opts   VerifyOptions
}

func NewHS256Verifier(secret []byte, opts VerifyOptions) *HS256Verifier {
	return &HS256Verifier{secret: secret, opts: opts}
}

func (v *HS256Verifier) Verify(tokenStr string) (Claims, error) {
	return parse(tokenStr, jwt.SigningMethodHS256.Alg(), v.opts, func(*jwt.Token) (any, error) {
		return v.secret, nil
	})
}
