package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/teller/internal/teller/domain"
	"github.com/aussiebroadwan/teller/internal/teller/store"
)

const mfaSessionColumns = `token_hash, user_id, purpose, attempts, created_at, expires_at`

type mfaSessionsRepo struct {
	db dbtx
}

func scanMFASession(row rowScanner) (domain.MFASession, error) {
	var (
		s                    domain.MFASession
		purpose              string
		createdAt, expiresAt int64
	)
	if err := row.Scan(&s.TokenHash, &s.UserID, &purpose, &s.Attempts, &createdAt, &expiresAt); err != nil {
		return domain.MFASession{}, mapNotFound(err)
	}
	s.Purpose = domain.MFAPurpose(purpose)
	s.CreatedAt = fromMillis(createdAt)
	s.ExpiresAt = fromMillis(expiresAt)
	return s, nil
}

func (r *mfaSessionsRepo) CreateMFASession(ctx context.Context, s domain.MFASession) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO mfa_sessions (`+mfaSessionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?)`,
		s.TokenHash, s.UserID, string(s.Purpose), s.Attempts, toMillis(s.CreatedAt), toMillis(s.ExpiresAt),
	)
	return mapConstraint(err)
}

func (r *mfaSessionsRepo) GetMFASession(ctx context.Context, tokenHash string, now time.Time) (domain.MFASession, error) {
	return scanMFASession(r.db.QueryRowContext(ctx,
		`SELECT `+mfaSessionColumns+` FROM mfa_sessions WHERE token_hash = ? AND expires_at > ?`,
		tokenHash, toMillis(now),
	))
}

func (r *mfaSessionsRepo) ReserveMFAAttempt(ctx context.Context, tokenHash string, now time.Time, limit int) (domain.MFASession, error) {
	return scanMFASession(r.db.QueryRowContext(ctx, `
		UPDATE mfa_sessions SET attempts = attempts + 1
		WHERE token_hash = ? AND expires_at > ? AND attempts < ?
		RETURNING `+mfaSessionColumns,
		tokenHash, toMillis(now), limit,
	))
}

func (r *mfaSessionsRepo) ConsumeMFASession(ctx context.Context, tokenHash string) error {
	return requireRow(r.db.ExecContext(ctx, `DELETE FROM mfa_sessions WHERE token_hash = ?`, tokenHash))
}

func (r *mfaSessionsRepo) DeleteExpiredMFASessions(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM mfa_sessions WHERE expires_at <= ?`, toMillis(now))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

var _ store.MFASessions = (*mfaSessionsRepo)(nil)
