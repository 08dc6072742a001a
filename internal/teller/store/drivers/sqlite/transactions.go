package sqlite

import (
	"context"

	"github.com/aussiebroadwan/teller/internal/teller/domain"
	"github.com/aussiebroadwan/teller/internal/teller/store"
)

type transactionsRepo struct {
	db dbtx
}

func (r *transactionsRepo) CreateTransaction(ctx context.Context, t domain.Transaction) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (id, user_id, account_kind, amount, balance_after, description, reference, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.UserID, string(t.AccountKind), t.Amount, t.BalanceAfter, t.Description, t.Reference, toMillis(t.CreatedAt),
	)
	return mapConstraint(err)
}

func (r *transactionsRepo) ListTransactions(ctx context.Context, userID string) ([]domain.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, account_kind, amount, balance_after, description, reference, created_at
		FROM transactions
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Transaction{}
	for rows.Next() {
		var (
			t         domain.Transaction
			kind      string
			createdAt int64
		)
		if err := rows.Scan(&t.ID, &t.UserID, &kind, &t.Amount, &t.BalanceAfter, &t.Description, &t.Reference, &createdAt); err != nil {
			return nil, err
		}
		t.AccountKind = domain.AccountKind(kind)
		t.CreatedAt = fromMillis(createdAt)
		out = append(out, t)
	}
	return out, rows.Err()
}

var _ store.Transactions = (*transactionsRepo)(nil)
