package jwtx

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Verifier validates a JWT and returns its claims.
type Verifier interface {
	Verify(token string) (Claims, error)
}

var (
	ErrMalformed  = errors.New("jwtx: malformed token")
	ErrUnknownKID = errors.New("jwtx: unknown kid")
	ErrExpired    = errors.New("jwtx: token expired")
	ErrInvalid    = errors.New("jwtx: invalid token")
)

// EdDSAVerifier validates tokens signed by any key in its KeySet.
type EdDSAVerifier struct {
	keys   *KeySet
	parser *jwt.Parser
}

// NewVerifierEdDSA creates a verifier that requires iss == issuer and an exp
// claim, allowing leeway for clock skew.
func NewVerifierEdDSA(keys *KeySet, issuer string, leeway time.Duration) *EdDSAVerifier {
	return &EdDSAVerifier{
		keys: keys,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodEdDSA.Alg()}),
			jwt.WithIssuer(issuer),
			jwt.WithExpirationRequired(),
			jwt.WithIssuedAt(),
			jwt.WithLeeway(leeway),
		),
	}
}

func (v *EdDSAVerifier) Verify(tokenStr string) (Claims, error) {
	var claims Claims
	token, err := v.parser.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		pub, err := v.keys.Get(kid)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrUnknownKID, kid)
		}
		return pub, nil
	})

	switch {
	case err == nil && token.Valid:
		return claims, nil
	case errors.Is(err, jwt.ErrTokenMalformed):
		return Claims{}, ErrMalformed
	case errors.Is(err, jwt.ErrTokenExpired):
		return Claims{}, ErrExpired
	case errors.Is(err, ErrUnknownKID):
		return Claims{}, ErrUnknownKID
	default:
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
}
