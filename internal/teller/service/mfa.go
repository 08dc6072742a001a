package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image/png"
	"time"

	"github.com/aussiebroadwan/teller/internal/teller/domain"
	"github.com/aussiebroadwan/teller/internal/teller/store"
	"github.com/aussiebroadwan/teller/pkg/cryptox"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const (
	totpPeriod     = 30
	totpSkew       = 5 // steps either side, +/-150s
	totpSecretSize = 20
	qrCodeSize     = 256
)

// MFAService implements TOTP enrollment and verification. Secrets are sealed
// at rest with Sealer.
type MFAService struct {
	Store  store.Store
	Sealer *cryptox.Sealer
	Issuer string // shown in authenticator apps

	// EnableOnFirstVerify marks MFA enabled after the first successful code
	// following IssueSecret. When false the user stays unenrolled and is
	// prompted to enroll again on every login.
	EnableOnFirstVerify bool
}

// IssueSecret generates a new TOTP secret for u, replacing any previous one
// and clearing the enabled flag.
func (s *MFAService) IssueSecret(ctx context.Context, u domain.User) (domain.Enrollment, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.Issuer,
		AccountName: u.Username,
		Period:      totpPeriod,
		SecretSize:  totpSecretSize,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return domain.Enrollment{}, fmt.Errorf("generate TOTP key: %w", err)
	}

	qr, err := qrDataURL(key)
	if err != nil {
		return domain.Enrollment{}, err
	}

	sealed, err := s.Sealer.Seal(key.Secret())
	if err != nil {
		return domain.Enrollment{}, err
	}
	if err := s.Store.Users().SetMFASecret(ctx, u.ID, sealed); err != nil {
		return domain.Enrollment{}, mapUserErr(err)
	}

	return domain.Enrollment{
		Secret: key.Secret(),
		URI:    key.URL(),
		QRCode: qr,
	}, nil
}

// Enroll issues a secret for a signed-in user. Users with MFA enabled must
// disable it first.
func (s *MFAService) Enroll(ctx context.Context, userID string) (domain.Enrollment, error) {
	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		return domain.Enrollment{}, mapUserErr(err)
	}
	if u.MFAEnabled() {
		return domain.Enrollment{}, ErrMFAAlreadyEnabled
	}
	return s.IssueSecret(ctx, u)
}

// ConfirmEnrollment checks code against a freshly issued secret.
func (s *MFAService) ConfirmEnrollment(ctx context.Context, userID, code string) error {
	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		return mapUserErr(err)
	}
	return s.Confirm(ctx, u, code)
}

// Confirm verifies code for u and, if configured, completes enrollment.
func (s *MFAService) Confirm(ctx context.Context, u domain.User, code string) error {
	if err := s.Verify(u, code); err != nil {
		return err
	}

	if s.EnableOnFirstVerify && !u.MFAEnabled() {
		if err := s.Store.Users().EnableMFA(ctx, u.ID, time.Now()); err != nil {
			return mapUserErr(err)
		}
	}
	return nil
}

// Verify checks code against u's stored secret.
func (s *MFAService) Verify(u domain.User, code string) error {
	if u.MFASecret == nil {
		return ErrMFANotEnrolled
	}

	secret, err := s.Sealer.Open(*u.MFASecret)
	if err != nil {
		return fmt.Errorf("open MFA secret: %w", err)
	}

	if !VerifyCode(secret, code) {
		return ErrInvalidMFACode
	}
	return nil
}

// Disable removes MFA after checking a current code.
func (s *MFAService) Disable(ctx context.Context, userID, code string) error {
	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		return mapUserErr(err)
	}
	if !u.MFAEnabled() {
		return ErrMFANotEnabled
	}
	if err := s.Verify(u, code); err != nil {
		return err
	}

	if err := s.Store.Users().DisableMFA(ctx, u.ID); err != nil {
		return mapUserErr(err)
	}
	return nil
}

// VerifyCode validates a 6 digit TOTP code allowing totpSkew steps of drift.
// The underlying comparison is constant time.
func VerifyCode(secret, code string) bool {
	ok, err := totp.ValidateCustom(code, secret, time.Now().UTC(), totp.ValidateOpts{
		Period:    totpPeriod,
		Skew:      totpSkew,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	return err == nil && ok
}

func qrDataURL(key *otp.Key) (string, error) {
	img, err := key.Image(qrCodeSize, qrCodeSize)
	if err != nil {
		return "", fmt.Errorf("render QR code: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("encode QR code: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// mapUserErr converts store errors from user lookups and updates.
func mapUserErr(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%w: user", ErrNotFound)
	}
	return storageErr(err)
}
