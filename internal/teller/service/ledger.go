package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/aussiebroadwan/teller/internal/teller/domain"
	"github.com/aussiebroadwan/teller/internal/teller/store"
	"github.com/aussiebroadwan/teller/pkg/idx"
	"github.com/aussiebroadwan/teller/pkg/slogx"
	"github.com/google/uuid"
)

const (
	maxDescriptionLen = 255
	maxReferenceLen   = 64
)

// Adjustment is a signed balance change in minor units.
type Adjustment struct {
	UserID      string
	Kind        domain.AccountKind // defaults to checking
	Amount      int64
	Description string
	Reference   string // generated when empty
}

type LedgerService struct {
	Store store.Store
}

// AdjustBalance applies adj and records its transaction in one store
// transaction. The balance update is a guarded increment, so concurrent
// adjustments never lose updates and never overdraw.
func (s *LedgerService) AdjustBalance(ctx context.Context, adj Adjustment) (domain.Account, domain.Transaction, error) {
	if adj.Kind == "" {
		adj.Kind = domain.AccountChecking
	}
	adj.Description = strings.TrimSpace(adj.Description)
	adj.Reference = strings.TrimSpace(adj.Reference)

	switch {
	case adj.UserID == "":
		return domain.Account{}, domain.Transaction{}, invalid("userId", "is required")
	case !adj.Kind.Valid():
		return domain.Account{}, domain.Transaction{}, invalid("accountType", "must be checking or savings")
	case adj.Amount == 0:
		return domain.Account{}, domain.Transaction{}, invalid("amount", "must not be zero")
	case adj.Description == "":
		return domain.Account{}, domain.Transaction{}, invalid("description", "is required")
	case utf8.RuneCountInString(adj.Description) > maxDescriptionLen:
		return domain.Account{}, domain.Transaction{}, invalid("description", "is too long")
	case len(adj.Reference) > maxReferenceLen:
		return domain.Account{}, domain.Transaction{}, invalid("reference", "is too long")
	}
	if adj.Reference == "" {
		adj.Reference = uuid.NewString()
	}

	var (
		account domain.Account
		txn     domain.Transaction
	)
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		var err error
		account, err = tx.Accounts().AddToBalance(ctx, adj.UserID, adj.Kind, adj.Amount)
		switch {
		case errors.Is(err, store.ErrNotFound):
			return fmt.Errorf("%w: account", ErrNotFound)
		case errors.Is(err, store.ErrConditionFailed):
			return ErrInsufficientFunds
		case err != nil:
			return storageErr(err)
		}

		txn = domain.Transaction{
			ID:           idx.New().String(),
			UserID:       adj.UserID,
			AccountKind:  adj.Kind,
			Amount:       adj.Amount,
			BalanceAfter: account.Balance,
			Description:  adj.Description,
			Reference:    adj.Reference,
			CreatedAt:    time.Now().UTC(),
		}
		err = tx.Transactions().CreateTransaction(ctx, txn)
		switch {
		case errors.Is(err, store.ErrAlreadyExists):
			return fmt.Errorf("%w: reference", ErrConflict)
		case err != nil:
			return storageErr(err)
		}
		return nil
	})
	if err != nil {
		return domain.Account{}, domain.Transaction{}, err
	}

	slogx.FromContext(ctx).Info("balance adjusted",
		slog.String("user_id", adj.UserID),
		slog.String("account", string(adj.Kind)),
		slog.Int64("amount", adj.Amount),
		slog.String("transaction_id", txn.ID),
	)
	return account, txn, nil
}

// Balances returns both of a user's accounts.
func (s *LedgerService) Balances(ctx context.Context, userID string) ([]domain.Account, error) {
	accounts, err := s.Store.Accounts().ListAccounts(ctx, userID)
	if err != nil {
		return nil, storageErr(err)
	}
	if len(accounts) == 0 {
		return nil, fmt.Errorf("%w: account", ErrNotFound)
	}
	return accounts, nil
}

// ListTransactions returns a user's transactions, newest first.
func (s *LedgerService) ListTransactions(ctx context.Context, userID string) ([]domain.Transaction, error) {
	txs, err := s.Store.Transactions().ListTransactions(ctx, userID)
	if err != nil {
		return nil, storageErr(err)
	}
	return txs, nil
}
