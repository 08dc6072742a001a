package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/aussiebroadwan/teller/internal/teller/domain"
	"github.com/aussiebroadwan/teller/internal/teller/store"
)

const userColumns = `id, username, email, password_hash, profile, ssn_sealed, approved_at,
	mfa_enabled_at, mfa_secret, last_login_at, created_at, updated_at`

type usersRepo struct {
	db dbtx
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (domain.User, error) {
	var (
		u                                     domain.User
		profile                               string
		ssn, secret                           sql.NullString
		approvedAt, mfaEnabledAt, lastLoginAt sql.NullInt64
		createdAt, updatedAt                  int64
	)
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &profile, &ssn,
		&approvedAt, &mfaEnabledAt, &secret, &lastLoginAt, &createdAt, &updatedAt)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	if err := json.Unmarshal([]byte(profile), &u.Profile); err != nil {
		return domain.User{}, err
	}

	u.SSNSealed = stringPtr(ssn)
	u.MFASecret = stringPtr(secret)
	u.ApprovedAt = timePtr(approvedAt)
	u.MFAEnabledAt = timePtr(mfaEnabledAt)
	u.LastLoginAt = timePtr(lastLoginAt)
	u.CreatedAt = fromMillis(createdAt)
	u.UpdatedAt = fromMillis(updatedAt)
	return u, nil
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	profile, err := json.Marshal(u.Profile)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO users (id, username, email, password_hash, profile, ssn_sealed,
			approved_at, mfa_enabled_at, mfa_secret, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Username, u.Email, u.PasswordHash, string(profile), nullString(u.SSNSealed),
		nullMillis(u.ApprovedAt), nullMillis(u.MFAEnabledAt), nullString(u.MFASecret),
		toMillis(u.CreatedAt), toMillis(u.UpdatedAt),
	)
	return mapConstraint(err)
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	return scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
}

func (r *usersRepo) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	return scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username))
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	return scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email))
}

func (r *usersRepo) ApproveUser(ctx context.Context, userID string, at time.Time) error {
	return requireRow(r.db.ExecContext(ctx, `
		UPDATE users SET approved_at = COALESCE(approved_at, ?1), updated_at = ?1
		WHERE id = ?2`,
		toMillis(at), userID,
	))
}

func (r *usersRepo) UpdateLastLogin(ctx context.Context, userID string, at time.Time) error {
	return requireRow(r.db.ExecContext(ctx,
		`UPDATE users SET last_login_at = ? WHERE id = ?`,
		toMillis(at), userID,
	))
}

func (r *usersRepo) SetResetToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET reset_token_hash = ?, reset_expires_at = ?
		WHERE id = ?`,
		tokenHash, toMillis(expiresAt), userID,
	)
	if err != nil {
		return mapConstraint(err)
	}
	return requireRow(res, nil)
}

func (r *usersRepo) GetUserByResetToken(ctx context.Context, tokenHash string, now time.Time) (domain.User, error) {
	return scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE reset_token_hash = ? AND reset_expires_at > ?`,
		tokenHash, toMillis(now),
	))
}

// RedeemResetToken matches, rotates the hash and clears the token in one
// statement, so a token can never be redeemed twice.
func (r *usersRepo) RedeemResetToken(ctx context.Context, tokenHash, passwordHash string, now time.Time) (domain.User, error) {
	return scanUser(r.db.QueryRowContext(ctx, `
		UPDATE users
		SET password_hash = ?1, reset_token_hash = NULL, reset_expires_at = NULL, updated_at = ?2
		WHERE reset_token_hash = ?3 AND reset_expires_at > ?2
		RETURNING `+userColumns,
		passwordHash, toMillis(now), tokenHash,
	))
}

func (r *usersRepo) ClearExpiredResetTokens(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET reset_token_hash = NULL, reset_expires_at = NULL
		WHERE reset_token_hash IS NOT NULL AND reset_expires_at <= ?`,
		toMillis(now),
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *usersRepo) SetMFASecret(ctx context.Context, userID, sealedSecret string) error {
	return requireRow(r.db.ExecContext(ctx,
		`UPDATE users SET mfa_secret = ?, mfa_enabled_at = NULL WHERE id = ?`,
		sealedSecret, userID,
	))
}

func (r *usersRepo) EnableMFA(ctx context.Context, userID string, at time.Time) error {
	return requireRow(r.db.ExecContext(ctx, `
		UPDATE users SET mfa_enabled_at = COALESCE(mfa_enabled_at, ?)
		WHERE id = ? AND mfa_secret IS NOT NULL`,
		toMillis(at), userID,
	))
}

func (r *usersRepo) DisableMFA(ctx context.Context, userID string) error {
	return requireRow(r.db.ExecContext(ctx,
		`UPDATE users SET mfa_secret = NULL, mfa_enabled_at = NULL WHERE id = ?`,
		userID,
	))
}

var _ store.Users = (*usersRepo)(nil)
