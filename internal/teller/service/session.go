package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/teller/internal/teller/domain"
	"github.com/aussiebroadwan/teller/pkg/jwtx"
	"github.com/aussiebroadwan/teller/pkg/slogx"
)

var ErrSessionRevoked = errors.New("session has been revoked")

// SessionRevoker records revoked session ids until the session would have
// expired anyway.
type SessionRevoker interface {
	Revoke(ctx context.Context, sessionID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, sessionID string) (bool, error)
}

// Session is an issued session credential.
type Session struct {
	Token     string
	ExpiresAt time.Time
	Claims    jwtx.Claims
}

// SessionService issues and verifies signed session tokens. Revoker is
// optional; without it logout only clears the client cookie.
type SessionService struct {
	Signer   jwtx.Signer
	Verifier jwtx.Verifier
	Revoker  SessionRevoker
	Issuer   string
	TTL      time.Duration
}

// Issue signs a session token for u.
func (s *SessionService) Issue(u domain.User, amr []string) (Session, error) {
	ttl := s.TTL
	if ttl <= 0 {
		ttl = jwtx.DefaultSessionTTL
	}

	now := time.Now()
	claims := jwtx.NewSessionClaims(u.ID, u.Username, s.Issuer, amr, ttl, now)
	token, err := s.Signer.Sign(claims)
	if err != nil {
		return Session{}, fmt.Errorf("sign session: %w", err)
	}

	return Session{Token: token, ExpiresAt: claims.ExpiresAt.Time, Claims: claims}, nil
}

// Authenticate verifies token and rejects revoked sessions. A revocation
// lookup failure is treated as revoked.
func (s *SessionService) Authenticate(ctx context.Context, token string) (jwtx.Claims, error) {
	claims, err := s.Verifier.Verify(token)
	if err != nil {
		return jwtx.Claims{}, err
	}

	if s.Revoker != nil {
		revoked, err := s.Revoker.IsRevoked(ctx, claims.ID)
		if err != nil {
			slogx.FromContext(ctx).Error("session revocation lookup failed", "err", err)
			return jwtx.Claims{}, ErrSessionRevoked
		}
		if revoked {
			return jwtx.Claims{}, ErrSessionRevoked
		}
	}

	return claims, nil
}

// Verify returns the user id the token was issued for.
func (s *SessionService) Verify(ctx context.Context, token string) (string, error) {
	claims, err := s.Authenticate(ctx, token)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// Revoke ends the session carried by token. Invalid or already expired
// tokens need no revocation and are ignored.
func (s *SessionService) Revoke(ctx context.Context, token string) error {
	if s.Revoker == nil || token == "" {
		return nil
	}

	claims, err := s.Verifier.Verify(token)
	if err != nil {
		return nil
	}

	ttl := claims.TTL(time.Now())
	if ttl <= 0 {
		return nil
	}
	return s.Revoker.Revoke(ctx, claims.ID, ttl)
}
