package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultSessionTTL matches the one hour session cookie lifetime.
const DefaultSessionTTL = time.Hour

// Authentication method references carried in the amr claim.
const (
	AMRPassword = "pwd"
	AMRTOTP     = "otp"
	AMRMFA      = "mfa"
)

// Claims are the session-token claims. The jti doubles as the session id
// used for logout revocation.
type Claims struct {
	jwt.RegisteredClaims

	// Authentication Methods Reference, e.g. ["pwd","otp","mfa"].
	AMR []string `json:"amr,omitempty"`

	Username string `json:"username,omitempty"`
}

// NewSessionClaims builds claims for subject valid from now for ttl.
func NewSessionClaims(subject, username, issuer string, amr []string, ttl time.Duration, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		AMR:      amr,
		Username: username,
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// TTL returns the remaining lifetime of the token at now, never negative.
func (c Claims) TTL(now time.Time) time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	return max(c.ExpiresAt.Sub(now), 0)
}
