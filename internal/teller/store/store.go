package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/teller/internal/teller/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")

	// ErrConditionFailed is returned by guarded updates whose condition did
	// not hold (e.g. a debit that would overdraw).
	ErrConditionFailed = errors.New("store: condition failed")
)

// Unique fields reported by ConflictError.
const (
	FieldUsername      = "username"
	FieldEmail         = "email"
	FieldAccountNumber = "account_number"
	FieldReference     = "reference"
)

// ConflictError reports a unique constraint violation on Field.
type ConflictError struct {
	Field string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("store: %s already exists", e.Field)
}

func (e *ConflictError) Is(target error) bool { return target == ErrAlreadyExists }

// Store is the root data access interface implemented by the sqlite and mongo
// drivers. Sub-repositories keep concerns apart; multi-step writes go through
// WithTx so that a tx-scoped Store is the only handle in use.
type Store interface {
	Users() Users
	Accounts() Accounts
	Transactions() Transactions
	MFASessions() MFASessions

	// ApplyMigrations brings the schema (sqlite) or indexes (mongo) up to date.
	ApplyMigrations() error

	// Tx starts a read/write transaction. The caller MUST call Commit() or
	// Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn in a transaction, committing when fn returns nil.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error
	Ping(ctx context.Context) error
}

// Tx is a transactional store.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// CreateUser inserts a new user. Duplicate username or email yields a
	// *ConflictError.
	CreateUser(ctx context.Context, u domain.User) error

	GetUserByID(ctx context.Context, id string) (domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// ApproveUser sets approved_at if it is unset.
	ApproveUser(ctx context.Context, userID string, at time.Time) error

	// UpdateLastLogin stamps a completed authentication.
	UpdateLastLogin(ctx context.Context, userID string, at time.Time) error

	// SetResetToken writes the reset token fingerprint and expiry together.
	SetResetToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error

	// GetUserByResetToken returns the user holding tokenHash with an expiry
	// after now. It does not consume the token.
	GetUserByResetToken(ctx context.Context, tokenHash string, now time.Time) (domain.User, error)

	// RedeemResetToken atomically replaces the password hash and clears the
	// reset token and expiry, but only for the user holding tokenHash with an
	// expiry after now. Returns ErrNotFound when no such user exists.
	RedeemResetToken(ctx context.Context, tokenHash, passwordHash string, now time.Time) (domain.User, error)

	// ClearExpiredResetTokens drops reset tokens that expired at or before
	// now (housekeeping).
	ClearExpiredResetTokens(ctx context.Context, now time.Time) (int64, error)

	// SetMFASecret stores a sealed TOTP secret and clears mfa_enabled_at.
	SetMFASecret(ctx context.Context, userID, sealedSecret string) error

	// EnableMFA sets mfa_enabled_at if a secret is present.
	EnableMFA(ctx context.Context, userID string, at time.Time) error

	// DisableMFA clears the secret and the enabled timestamp.
	DisableMFA(ctx context.Context, userID string) error
}

type Accounts interface {
	// CreateAccount inserts an account. A number already used by any account
	// of any kind yields a *ConflictError for FieldAccountNumber.
	CreateAccount(ctx context.Context, a domain.Account) error

	// AccountNumberExists reports whether any account bears number.
	AccountNumberExists(ctx context.Context, number string) (bool, error)

	GetAccount(ctx context.Context, userID string, kind domain.AccountKind) (domain.Account, error)
	ListAccounts(ctx context.Context, userID string) ([]domain.Account, error)

	// AddToBalance atomically applies delta and returns the updated account.
	// Returns ErrNotFound for an unknown account and ErrConditionFailed if
	// the balance would go negative.
	AddToBalance(ctx context.Context, userID string, kind domain.AccountKind, delta int64) (domain.Account, error)
}

type Transactions interface {
	// CreateTransaction appends a transaction. A reference the user already used yields a
	// *ConflictError for FieldReference.
	CreateTransaction(ctx context.Context, t domain.Transaction) error

	// ListTransactions returns a user's transactions, newest first.
	ListTransactions(ctx context.Context, userID string) ([]domain.Transaction, error)
}

type MFASessions interface {
	CreateMFASession(ctx context.Context, s domain.MFASession) error

	// GetMFASession returns an unexpired session by token fingerprint.
	GetMFASession(ctx context.Context, tokenHash string, now time.Time) (domain.MFASession, error)

	// ReserveMFAAttempt atomically counts one attempt against a live session
	// with fewer than limit attempts and returns the updated session. Unknown,
	// expired and exhausted sessions yield ErrNotFound.
	ReserveMFAAttempt(ctx context.Context, tokenHash string, now time.Time, limit int) (domain.MFASession, error)

	// ConsumeMFASession deletes the session, returning ErrNotFound if it was
	// already gone. Exactly one concurrent caller succeeds.
	ConsumeMFASession(ctx context.Context, tokenHash string) error

	// DeleteExpiredMFASessions removes expired sessions (housekeeping).
	DeleteExpiredMFASessions(ctx context.Context, now time.Time) (int64, error)
}
