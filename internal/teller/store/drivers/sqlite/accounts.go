package sqlite

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/teller/internal/teller/domain"
	"github.com/aussiebroadwan/teller/internal/teller/store"
)

type accountsRepo struct {
	db dbtx
}

func scanAccount(row rowScanner) (domain.Account, error) {
	var (
		a    domain.Account
		kind string
	)
	if err := row.Scan(&a.Number, &a.UserID, &kind, &a.Balance); err != nil {
		return domain.Account{}, mapNotFound(err)
	}
	a.Kind = domain.AccountKind(kind)
	return a, nil
}

func (r *accountsRepo) CreateAccount(ctx context.Context, a domain.Account) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO accounts (number, user_id, kind, balance, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		a.Number, a.UserID, string(a.Kind), a.Balance, toMillis(time.Now()),
	)
	return mapConstraint(err)
}

func (r *accountsRepo) AccountNumberExists(ctx context.Context, number string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM accounts WHERE number = ?)`, number,
	).Scan(&exists)
	return exists, err
}

func (r *accountsRepo) GetAccount(ctx context.Context, userID string, kind domain.AccountKind) (domain.Account, error) {
	return scanAccount(r.db.QueryRowContext(ctx,
		`SELECT number, user_id, kind, balance FROM accounts WHERE user_id = ? AND kind = ?`,
		userID, string(kind),
	))
}

func (r *accountsRepo) ListAccounts(ctx context.Context, userID string) ([]domain.Account, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT number, user_id, kind, balance FROM accounts WHERE user_id = ? ORDER BY kind`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// AddToBalance applies delta only when the result stays non-negative.
func (r *accountsRepo) AddToBalance(ctx context.Context, userID string, kind domain.AccountKind, delta int64) (domain.Account, error) {
	a, err := scanAccount(r.db.QueryRowContext(ctx, `
		UPDATE accounts SET balance = balance + ?1
		WHERE user_id = ?2 AND kind = ?3 AND balance + ?1 >= 0
		RETURNING number, user_id, kind, balance`,
		delta, userID, string(kind),
	))
	if !errors.Is(err, store.ErrNotFound) {
		return a, err
	}

	// Nothing updated: tell a missing account apart from a failed guard.
	if _, err := r.GetAccount(ctx, userID, kind); err != nil {
		return domain.Account{}, err
	}
	return domain.Account{}, store.ErrConditionFailed
}

var _ store.Accounts = (*accountsRepo)(nil)
