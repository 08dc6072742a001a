package domain

import "time"

// MFAPurpose says what completing an MFA session unlocks.
type MFAPurpose string

const (
	// MFAPurposeLogin is a password-verified login waiting for a TOTP code.
	MFAPurposeLogin MFAPurpose = "login"

	// MFAPurposeEnroll is a password-verified login that must enroll TOTP
	// before a session is granted.
	MFAPurposeEnroll MFAPurpose = "enroll"
)

// MFASession represents a pending MFA challenge. The opaque mfa_token handed
// to the client is never stored; TokenHash is its fingerprint.
type MFASession struct {
	TokenHash string
	UserID    string
	Purpose   MFAPurpose
	Attempts  int // failed attempts, max 5
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Enrollment is returned when a TOTP secret is issued.
type Enrollment struct {
	Secret string // base32
	URI    string // otpauth:// URL
	QRCode string // data:image/png;base64 rendering of URI
}
