package service

import (
	"context"
	"sync"
	"testing"

	"github.com/aussiebroadwan/teller/internal/teller/domain"
	"github.com/stretchr/testify/require"
)

func TestAdjustBalance_ConcurrentIncrements(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.signup(t, "alice", "P@ssw0rd")

	const n = 25
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := env.ledger.AdjustBalance(ctx, Adjustment{
				UserID:      u.ID,
				Kind:        domain.AccountChecking,
				Amount:      1,
				Description: "deposit",
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	account, err := env.store.Accounts().GetAccount(ctx, u.ID, domain.AccountChecking)
	require.NoError(t, err)
	require.EqualValues(t, n, account.Balance)

	txs, err := env.ledger.ListTransactions(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, txs, n)

	seen := map[int64]bool{}
	for _, tx := range txs {
		seen[tx.BalanceAfter] = true
	}
	require.Len(t, seen, n)
}

func TestAdjustBalance(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.signup(t, "alice", "P@ssw0rd")

	account, txn, err := env.ledger.AdjustBalance(ctx, Adjustment{
		UserID: u.ID, Kind: domain.AccountSavings, Amount: 1250, Description: "paycheck", Reference: "ref-1",
	})
	require.NoError(t, err)
	require.EqualValues(t, 1250, account.Balance)
	require.EqualValues(t, 1250, txn.BalanceAfter)
	require.Equal(t, "ref-1", txn.Reference)

	t.Run("overdraw is rejected without a transaction", func(t *testing.T) {
		_, _, err := env.ledger.AdjustBalance(ctx, Adjustment{
			UserID: u.ID, Kind: domain.AccountSavings, Amount: -1251, Description: "withdrawal",
		})
		require.ErrorIs(t, err, ErrInsufficientFunds)

		txs, err := env.ledger.ListTransactions(ctx, u.ID)
		require.NoError(t, err)
		require.Len(t, txs, 1)
	})

	t.Run("duplicate reference rolls back the balance", func(t *testing.T) {
		_, _, err := env.ledger.AdjustBalance(ctx, Adjustment{
			UserID: u.ID, Kind: domain.AccountSavings, Amount: 100, Description: "again", Reference: "ref-1",
		})
		require.ErrorIs(t, err, ErrConflict)

		a, err := env.store.Accounts().GetAccount(ctx, u.ID, domain.AccountSavings)
		require.NoError(t, err)
		require.EqualValues(t, 1250, a.Balance)
	})

	t.Run("generated reference", func(t *testing.T) {
		_, txn, err := env.ledger.AdjustBalance(ctx, Adjustment{UserID: u.ID, Amount: 5, Description: "tip"})
		require.NoError(t, err)
		require.Equal(t, domain.AccountChecking, txn.AccountKind)
		require.Len(t, txn.Reference, 36)
	})

	t.Run("validation", func(t *testing.T) {
		cases := []Adjustment{
			{UserID: u.ID, Amount: 0, Description: "zero"},
			{UserID: u.ID, Amount: 1},
			{UserID: u.ID, Amount: 1, Description: "x", Kind: "brokerage"},
			{Amount: 1, Description: "x"},
		}
		for _, adj := range cases {
			_, _, err := env.ledger.AdjustBalance(ctx, adj)
			require.ErrorIs(t, err, ErrValidation)
		}
	})

	t.Run("unknown account", func(t *testing.T) {
		_, _, err := env.ledger.AdjustBalance(ctx, Adjustment{UserID: "nobody", Amount: 1, Description: "x"})
		require.ErrorIs(t, err, ErrNotFound)

		_, err = env.ledger.Balances(ctx, "nobody")
		require.ErrorIs(t, err, ErrNotFound)
	})
}
