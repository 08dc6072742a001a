package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/aussiebroadwan/teller/internal/teller/domain"
	"github.com/aussiebroadwan/teller/internal/teller/store"
	"github.com/aussiebroadwan/teller/pkg/cryptox"
	"github.com/aussiebroadwan/teller/pkg/jwtx"
	"github.com/aussiebroadwan/teller/pkg/slogx"
)

const (
	// MaxMFAAttempts is the maximum number of failed codes per MFA session.
	MaxMFAAttempts = 5

	// MFASessionTTL is the lifetime of an mfa_token.
	MFASessionTTL = 5 * time.Minute
)

// MFAPolicy decides what happens when a user without MFA logs in.
type MFAPolicy string

const (
	// MFAPolicyOptional issues the session straight away.
	MFAPolicyOptional MFAPolicy = "optional"

	// MFAPolicyEnforce withholds the session until TOTP is enrolled.
	MFAPolicyEnforce MFAPolicy = "enforce"
)

func (p MFAPolicy) Valid() bool {
	return p == MFAPolicyOptional || p == MFAPolicyEnforce
}

// LoginResult is either a session or a pending MFA step identified by
// MFAToken.
type LoginResult struct {
	User    domain.User
	Session *Session

	MFARequired      bool
	MFASetupRequired bool
	MFAToken         string
}

// AuthService runs the login state machine:
// credential check, approval gate, MFA branch, then session issue.
type AuthService struct {
	Store    store.Store
	Hasher   PasswordHasher
	Sessions *SessionService
	MFA      *MFAService
	Throttle Throttle // optional, keyed per identifier and per user

	RequireApproval bool
	Policy          MFAPolicy

	dummyOnce sync.Once
	dummyHash string
}

// Login authenticates identifier (username, or email when it contains @) and
// password.
func (s *AuthService) Login(ctx context.Context, identifier, password string) (LoginResult, error) {
	l := slogx.FromContext(ctx)

	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return LoginResult{}, ErrInvalidCredentials
	}

	// Keyed on the identifier as typed so unknown users are throttled too.
	if err := allow(ctx, s.Throttle, "login:"+strings.ToLower(identifier)); err != nil {
		return LoginResult{}, err
	}

	u, err := s.lookup(ctx, identifier)
	if errors.Is(err, store.ErrNotFound) {
		// Spend the same hashing time as a real check.
		_ = s.Hasher.Verify(password, s.dummy())
		return LoginResult{}, ErrInvalidCredentials
	}
	if err != nil {
		return LoginResult{}, storageErr(err)
	}

	if s.RequireApproval && !u.Approved() {
		return LoginResult{}, ErrPendingApproval
	}

	if err := s.Hasher.Verify(password, u.PasswordHash); err != nil {
		if !errors.Is(err, cryptox.ErrPasswordMismatch) {
			l.Error("password verification failed", slog.String("user_id", u.ID), slog.Any("err", err))
		}
		return LoginResult{}, ErrInvalidCredentials
	}

	if u.MFAEnabled() {
		token, err := s.startMFA(ctx, u, domain.MFAPurposeLogin)
		if err != nil {
			return LoginResult{}, err
		}
		return LoginResult{User: u, MFARequired: true, MFAToken: token}, nil
	}

	if s.Policy == MFAPolicyEnforce {
		token, err := s.startMFA(ctx, u, domain.MFAPurposeEnroll)
		if err != nil {
			return LoginResult{}, err
		}
		return LoginResult{User: u, MFASetupRequired: true, MFAToken: token}, nil
	}

	return s.finish(ctx, u, []string{jwtx.AMRPassword})
}

// VerifyMFA completes a login paused for a TOTP code.
func (s *AuthService) VerifyMFA(ctx context.Context, mfaToken, code string) (LoginResult, error) {
	sess, u, err := s.reserve(ctx, mfaToken, domain.MFAPurposeLogin)
	if err != nil {
		return LoginResult{}, err
	}

	if err := s.MFA.Verify(u, code); err != nil {
		return LoginResult{}, s.fail(ctx, sess, err)
	}
	return s.complete(ctx, sess, u)
}

// SetupMFA issues a TOTP secret for a login paused by MFAPolicyEnforce.
func (s *AuthService) SetupMFA(ctx context.Context, mfaToken string) (domain.Enrollment, error) {
	_, u, err := s.pending(ctx, mfaToken, domain.MFAPurposeEnroll)
	if err != nil {
		return domain.Enrollment{}, err
	}
	return s.MFA.IssueSecret(ctx, u)
}

// VerifyMFASetup confirms the secret from SetupMFA and completes the login.
func (s *AuthService) VerifyMFASetup(ctx context.Context, mfaToken, code string) (LoginResult, error) {
	sess, u, err := s.reserve(ctx, mfaToken, domain.MFAPurposeEnroll)
	if err != nil {
		return LoginResult{}, err
	}

	if err := s.MFA.Confirm(ctx, u, code); err != nil {
		return LoginResult{}, s.fail(ctx, sess, err)
	}
	return s.complete(ctx, sess, u)
}

func (s *AuthService) lookup(ctx context.Context, identifier string) (domain.User, error) {
	u, err := s.Store.Users().GetUserByUsername(ctx, identifier)
	if errors.Is(err, store.ErrNotFound) && strings.Contains(identifier, "@") {
		return s.Store.Users().GetUserByEmail(ctx, normalizeEmail(identifier))
	}
	return u, err
}

func (s *AuthService) dummy() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.Hasher.Hash("teller-dummy-password")
	})
	return s.dummyHash
}

// startMFA opens a pending MFA session and returns its opaque token.
func (s *AuthService) startMFA(ctx context.Context, u domain.User, purpose domain.MFAPurpose) (string, error) {
	token, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return "", err
	}

	now := time.Now()
	err = s.Store.MFASessions().CreateMFASession(ctx, domain.MFASession{
		TokenHash: cryptox.FingerprintToken(token),
		UserID:    u.ID,
		Purpose:   purpose,
		CreatedAt: now,
		ExpiresAt: now.Add(MFASessionTTL),
	})
	if err != nil {
		return "", storageErr(err)
	}

	slogx.FromContext(ctx).Info("mfa step required", slog.String("user_id", u.ID), slog.String("purpose", string(purpose)))
	return token, nil
}

// pending loads a live MFA session for purpose without counting an attempt.
// Unknown, expired, mismatched and exhausted sessions all fail the same way.
func (s *AuthService) pending(ctx context.Context, mfaToken string, purpose domain.MFAPurpose) (domain.MFASession, domain.User, error) {
	if mfaToken == "" {
		return domain.MFASession{}, domain.User{}, ErrInvalidMFACode
	}

	sess, err := s.Store.MFASessions().GetMFASession(ctx, cryptox.FingerprintToken(mfaToken), time.Now())
	if errors.Is(err, store.ErrNotFound) {
		return domain.MFASession{}, domain.User{}, ErrInvalidMFACode
	}
	if err != nil {
		return domain.MFASession{}, domain.User{}, storageErr(err)
	}
	if sess.Attempts >= MaxMFAAttempts {
		return domain.MFASession{}, domain.User{}, ErrInvalidMFACode
	}
	return s.resolve(ctx, sess, purpose)
}

// reserve counts an attempt against the MFA session before any code is
// checked, so concurrent guesses never exceed MaxMFAAttempts in total.
func (s *AuthService) reserve(ctx context.Context, mfaToken string, purpose domain.MFAPurpose) (domain.MFASession, domain.User, error) {
	if mfaToken == "" {
		return domain.MFASession{}, domain.User{}, ErrInvalidMFACode
	}

	sess, err := s.Store.MFASessions().ReserveMFAAttempt(ctx, cryptox.FingerprintToken(mfaToken), time.Now(), MaxMFAAttempts)
	if errors.Is(err, store.ErrNotFound) {
		return domain.MFASession{}, domain.User{}, ErrInvalidMFACode
	}
	if err != nil {
		return domain.MFASession{}, domain.User{}, storageErr(err)
	}

	if err := allow(ctx, s.Throttle, "mfa:"+sess.UserID); err != nil {
		return domain.MFASession{}, domain.User{}, err
	}
	return s.resolve(ctx, sess, purpose)
}

func (s *AuthService) resolve(ctx context.Context, sess domain.MFASession, purpose domain.MFAPurpose) (domain.MFASession, domain.User, error) {
	if sess.Purpose != purpose {
		return domain.MFASession{}, domain.User{}, ErrInvalidMFACode
	}

	u, err := s.Store.Users().GetUserByID(ctx, sess.UserID)
	if err != nil {
		return domain.MFASession{}, domain.User{}, mapUserErr(err)
	}
	return sess, u, nil
}

// fail reports a rejected code. The attempt was already counted by reserve;
// the session is dropped once it has none left. Errors other than a code
// mismatch pass through.
func (s *AuthService) fail(ctx context.Context, sess domain.MFASession, cause error) error {
	if !errors.Is(cause, ErrInvalidMFACode) {
		return cause
	}

	l := slogx.FromContext(ctx)
	l.Warn("mfa code rejected",
		slog.String("user_id", sess.UserID),
		slog.Int("attempts", sess.Attempts),
	)
	if sess.Attempts >= MaxMFAAttempts {
		err := s.Store.MFASessions().ConsumeMFASession(ctx, sess.TokenHash)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			l.Error("failed to drop exhausted MFA session", slog.Any("err", err))
		}
		l.Warn("mfa session exceeded max attempts", slog.String("user_id", sess.UserID))
	}
	return ErrInvalidMFACode
}

// complete consumes sess and issues the session. Of two concurrent
// completions only the one that deletes the session wins.
func (s *AuthService) complete(ctx context.Context, sess domain.MFASession, u domain.User) (LoginResult, error) {
	err := s.Store.MFASessions().ConsumeMFASession(ctx, sess.TokenHash)
	if errors.Is(err, store.ErrNotFound) {
		return LoginResult{}, ErrInvalidMFACode
	}
	if err != nil {
		return LoginResult{}, storageErr(err)
	}

	// Reload so an enrollment completed in this step is reflected.
	u, err = s.Store.Users().GetUserByID(ctx, u.ID)
	if err != nil {
		return LoginResult{}, mapUserErr(err)
	}
	return s.finish(ctx, u, []string{jwtx.AMRPassword, jwtx.AMRTOTP, jwtx.AMRMFA})
}

// finish issues the session credential and stamps the login.
func (s *AuthService) finish(ctx context.Context, u domain.User, amr []string) (LoginResult, error) {
	session, err := s.Sessions.Issue(u, amr)
	if err != nil {
		return LoginResult{}, err
	}

	now := time.Now().UTC()
	if err := s.Store.Users().UpdateLastLogin(ctx, u.ID, now); err != nil {
		return LoginResult{}, mapUserErr(err)
	}
	u.LastLoginAt = &now

	slogx.FromContext(ctx).Info("session issued",
		slog.String("user_id", u.ID),
		slog.String("session_id", session.Claims.ID),
	)
	return LoginResult{User: u, Session: &session}, nil
}
