package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aussiebroadwan/teller/internal/teller/domain"
	"github.com/aussiebroadwan/teller/internal/teller/store"
	"github.com/aussiebroadwan/teller/pkg/cryptox"
	"github.com/aussiebroadwan/teller/pkg/slogx"
)

// DefaultResetTTL is how long a reset link stays valid.
const DefaultResetTTL = time.Hour

// ResetService runs the password reset flow. Only the fingerprint of a
// reset token is stored; the token itself travels in the notification link.
type ResetService struct {
	Store    store.Store
	Hasher   PasswordHasher
	Notifier Notifier
	Throttle Throttle // optional

	TTL       time.Duration
	ClientURL string

	// RevealUnknown makes requests for unknown emails fail with ErrNotFound
	// instead of the generic acknowledgement.
	RevealUnknown bool
}

// RequestReset issues a reset token for the account registered to email and
// publishes the reset link.
func (s *ResetService) RequestReset(ctx context.Context, email, clientIP string) error {
	l := slogx.FromContext(ctx)

	email = normalizeEmail(email)
	if !emailPattern.MatchString(email) {
		return invalid("email", "must be a valid email address")
	}

	if err := s.throttle(ctx, "email:"+email, "ip:"+clientIP); err != nil {
		return err
	}

	u, err := s.Store.Users().GetUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		l.Info("password reset requested for unknown email")
		if s.RevealUnknown {
			return fmt.Errorf("%w: user", ErrNotFound)
		}
		return nil
	}
	if err != nil {
		return storageErr(err)
	}

	token, err := cryptox.GenerateHexToken(cryptox.TokenSize160)
	if err != nil {
		return err
	}

	ttl := s.TTL
	if ttl <= 0 {
		ttl = DefaultResetTTL
	}
	expiresAt := time.Now().Add(ttl).UTC()

	if err := s.Store.Users().SetResetToken(ctx, u.ID, cryptox.FingerprintToken(token), expiresAt); err != nil {
		return mapUserErr(err)
	}

	l.Info("password reset token issued", slog.String("user_id", u.ID), slog.Time("expires_at", expiresAt))
	if s.Notifier != nil {
		publish(ctx, s.Notifier, u, domain.NotifyResetRequested, s.resetLink(token), &expiresAt)
	}
	return nil
}

// Redeem sets a new password for the holder of a live reset token. The token
// is cleared by the same conditional update that writes the password, so it
// works at most once.
func (s *ResetService) Redeem(ctx context.Context, token, newPassword string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrInvalidResetToken
	}
	fp := cryptox.FingerprintToken(token)

	// Token state is reported ahead of password policy.
	if _, err := s.Store.Users().GetUserByResetToken(ctx, fp, time.Now()); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvalidResetToken
		}
		return storageErr(err)
	}

	if err := validatePassword(newPassword); err != nil {
		return err
	}

	hash, err := s.Hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	u, err := s.Store.Users().RedeemResetToken(ctx, fp, hash, time.Now())
	if errors.Is(err, store.ErrNotFound) {
		return ErrInvalidResetToken
	}
	if err != nil {
		return storageErr(err)
	}

	slogx.FromContext(ctx).Info("password reset", slog.String("user_id", u.ID))
	if s.Notifier != nil {
		publish(ctx, s.Notifier, u, domain.NotifyPasswordChanged, "", nil)
	}
	return nil
}

func (s *ResetService) resetLink(token string) string {
	return strings.TrimRight(s.ClientURL, "/") + "/reset-password/" + token
}

func (s *ResetService) throttle(ctx context.Context, keys ...string) error {
	prefixed := make([]string, len(keys))
	for i, key := range keys {
		prefixed[i] = "reset:" + key
	}
	return allow(ctx, s.Throttle, prefixed...)
}
