package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/teller/internal/teller/domain"
	"github.com/aussiebroadwan/teller/internal/teller/store"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.ApplyMigrations())
	return s
}

func seedUser(t *testing.T, s *Store, id, username string) domain.User {
	t.Helper()

	now := time.Now().UTC().Truncate(time.Millisecond)
	u := domain.User{
		ID:           id,
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hash",
		Profile:      domain.Profile{FirstName: "Alice", LastName: "Smith", ZipCode: "12345"},
		ApprovedAt:   &now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, s.Users().CreateUser(context.Background(), u))
	return u
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	u := seedUser(t, s, "u1", "alice")

	t.Run("lookup by username, email and id", func(t *testing.T) {
		got, err := s.Users().GetUserByUsername(ctx, "alice")
		require.NoError(t, err)
		require.Equal(t, u.ID, got.ID)
		require.Equal(t, "Alice", got.Profile.FirstName)
		require.True(t, got.Approved())

		got, err = s.Users().GetUserByEmail(ctx, "alice@example.com")
		require.NoError(t, err)
		require.Equal(t, u.ID, got.ID)

		_, err = s.Users().GetUserByID(ctx, "missing")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("duplicate username reports the field", func(t *testing.T) {
		dup := u
		dup.ID = "u2"
		dup.Email = "other@example.com"
		err := s.Users().CreateUser(ctx, dup)

		var conflict *store.ConflictError
		require.True(t, errors.As(err, &conflict))
		require.Equal(t, store.FieldUsername, conflict.Field)
		require.ErrorIs(t, err, store.ErrAlreadyExists)
	})

	t.Run("duplicate email reports the field", func(t *testing.T) {
		dup := u
		dup.ID = "u3"
		dup.Username = "alice2"
		err := s.Users().CreateUser(ctx, dup)

		var conflict *store.ConflictError
		require.True(t, errors.As(err, &conflict))
		require.Equal(t, store.FieldEmail, conflict.Field)
	})

	t.Run("mfa secret lifecycle", func(t *testing.T) {
		require.NoError(t, s.Users().SetMFASecret(ctx, u.ID, "sealed"))
		require.NoError(t, s.Users().EnableMFA(ctx, u.ID, time.Now()))

		got, err := s.Users().GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		require.True(t, got.MFAEnabled())
		require.Equal(t, "sealed", *got.MFASecret)

		require.NoError(t, s.Users().DisableMFA(ctx, u.ID))
		got, err = s.Users().GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		require.False(t, got.MFAEnabled())
		require.Nil(t, got.MFASecret)

		require.ErrorIs(t, s.Users().EnableMFA(ctx, u.ID, time.Now()), store.ErrNotFound)
	})
}

func TestRedeemResetToken(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	u := seedUser(t, s, "u1", "alice")
	now := time.Now()

	t.Run("expired token is rejected", func(t *testing.T) {
		require.NoError(t, s.Users().SetResetToken(ctx, u.ID, "expired", now.Add(-time.Second)))
		_, err := s.Users().RedeemResetToken(ctx, "expired", "new", now)
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("token redeems once", func(t *testing.T) {
		require.NoError(t, s.Users().SetResetToken(ctx, u.ID, "fresh", now.Add(time.Hour)))

		got, err := s.Users().RedeemResetToken(ctx, "fresh", "new-hash", now)
		require.NoError(t, err)
		require.Equal(t, u.ID, got.ID)
		require.Equal(t, "new-hash", got.PasswordHash)

		_, err = s.Users().RedeemResetToken(ctx, "fresh", "other-hash", now)
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("concurrent redemption has one winner", func(t *testing.T) {
		require.NoError(t, s.Users().SetResetToken(ctx, u.ID, "race", now.Add(time.Hour)))

		var (
			wg   sync.WaitGroup
			mu   sync.Mutex
			wins int
		)
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := s.Users().RedeemResetToken(ctx, "race", "h", now); err == nil {
					mu.Lock()
					wins++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()
		require.Equal(t, 1, wins)
	})
}

func TestAccounts(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	u := seedUser(t, s, "u1", "alice")
	other := seedUser(t, s, "u2", "bob")

	require.NoError(t, s.Accounts().CreateAccount(ctx, domain.Account{Number: "19981000001", UserID: u.ID, Kind: domain.AccountChecking}))
	require.NoError(t, s.Accounts().CreateAccount(ctx, domain.Account{Number: "19981000002", UserID: u.ID, Kind: domain.AccountSavings}))

	t.Run("numbers are unique across kinds and users", func(t *testing.T) {
		err := s.Accounts().CreateAccount(ctx, domain.Account{Number: "19981000002", UserID: other.ID, Kind: domain.AccountChecking})

		var conflict *store.ConflictError
		require.True(t, errors.As(err, &conflict))
		require.Equal(t, store.FieldAccountNumber, conflict.Field)

		exists, err := s.Accounts().AccountNumberExists(ctx, "19981000002")
		require.NoError(t, err)
		require.True(t, exists)

		exists, err = s.Accounts().AccountNumberExists(ctx, "19989999999")
		require.NoError(t, err)
		require.False(t, exists)
	})

	t.Run("balance cannot go negative", func(t *testing.T) {
		a, err := s.Accounts().AddToBalance(ctx, u.ID, domain.AccountChecking, 500)
		require.NoError(t, err)
		require.EqualValues(t, 500, a.Balance)

		_, err = s.Accounts().AddToBalance(ctx, u.ID, domain.AccountChecking, -501)
		require.ErrorIs(t, err, store.ErrConditionFailed)

		a, err = s.Accounts().AddToBalance(ctx, u.ID, domain.AccountChecking, -500)
		require.NoError(t, err)
		require.Zero(t, a.Balance)
	})

	t.Run("unknown account", func(t *testing.T) {
		_, err := s.Accounts().AddToBalance(ctx, other.ID, domain.AccountSavings, 1)
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("list", func(t *testing.T) {
		accounts, err := s.Accounts().ListAccounts(ctx, u.ID)
		require.NoError(t, err)
		require.Len(t, accounts, 2)
		require.Equal(t, domain.AccountChecking, accounts[0].Kind)
	})
}

func TestTransactions(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	u := seedUser(t, s, "u1", "alice")
	base := time.Now().UTC().Truncate(time.Millisecond)

	for i, ref := range []string{"r1", "r2", "r3"} {
		require.NoError(t, s.Transactions().CreateTransaction(ctx, domain.Transaction{
			ID:          ref,
			UserID:      u.ID,
			AccountKind: domain.AccountChecking,
			Amount:      int64(100 * (i + 1)),
			Description: "deposit",
			Reference:   ref,
			CreatedAt:   base.Add(time.Duration(i) * time.Second),
		}))
	}

	txs, err := s.Transactions().ListTransactions(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, txs, 3)
	require.Equal(t, "r3", txs[0].Reference)
	require.Equal(t, "r1", txs[2].Reference)
	require.True(t, base.Equal(txs[2].CreatedAt))

	err = s.Transactions().CreateTransaction(ctx, domain.Transaction{
		ID: "r4", UserID: u.ID, AccountKind: domain.AccountChecking, Reference: "r1", CreatedAt: base,
	})
	var conflict *store.ConflictError
	require.True(t, errors.As(err, &conflict))
	require.Equal(t, store.FieldReference, conflict.Field)

	// References are scoped to their owner.
	bob := seedUser(t, s, "u2", "bob")
	require.NoError(t, s.Transactions().CreateTransaction(ctx, domain.Transaction{
		ID: "b1", UserID: bob.ID, AccountKind: domain.AccountChecking, Description: "deposit", Reference: "r1", CreatedAt: base,
	}))

	_, err = s.db.ExecContext(ctx, `UPDATE transactions SET amount = 0 WHERE id = 'r1'`)
	require.Error(t, err)

	empty, err := s.Transactions().ListTransactions(ctx, "nobody")
	require.NoError(t, err)
	require.Empty(t, empty)
}

func TestMFASessions(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	u := seedUser(t, s, "u1", "alice")
	now := time.Now()

	session := domain.MFASession{
		TokenHash: "fp",
		UserID:    u.ID,
		Purpose:   domain.MFAPurposeLogin,
		CreatedAt: now,
		ExpiresAt: now.Add(5 * time.Minute),
	}
	require.NoError(t, s.MFASessions().CreateMFASession(ctx, session))

	got, err := s.MFASessions().GetMFASession(ctx, "fp", now)
	require.NoError(t, err)
	require.Equal(t, domain.MFAPurposeLogin, got.Purpose)

	_, err = s.MFASessions().GetMFASession(ctx, "fp", now.Add(6*time.Minute))
	require.ErrorIs(t, err, store.ErrNotFound)

	for want := 1; want <= 2; want++ {
		got, err = s.MFASessions().ReserveMFAAttempt(ctx, "fp", now, 2)
		require.NoError(t, err)
		require.Equal(t, want, got.Attempts)
	}
	_, err = s.MFASessions().ReserveMFAAttempt(ctx, "fp", now, 2)
	require.ErrorIs(t, err, store.ErrNotFound, "exhausted session")
	_, err = s.MFASessions().ReserveMFAAttempt(ctx, "fp", now.Add(6*time.Minute), 5)
	require.ErrorIs(t, err, store.ErrNotFound, "expired session")

	require.NoError(t, s.MFASessions().ConsumeMFASession(ctx, "fp"))
	require.ErrorIs(t, s.MFASessions().ConsumeMFASession(ctx, "fp"), store.ErrNotFound)

	session.TokenHash = "old"
	session.ExpiresAt = now.Add(-time.Minute)
	require.NoError(t, s.MFASessions().CreateMFASession(ctx, session))
	n, err := s.MFASessions().DeleteExpiredMFASessions(ctx, now)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
}

func TestWithTxRollsBack(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	u := seedUser(t, s, "u1", "alice")

	boom := errors.New("boom")
	err := s.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Accounts().CreateAccount(ctx, domain.Account{Number: "19981234567", UserID: u.ID, Kind: domain.AccountChecking}); err != nil {
			return err
		}
		require.ErrorIs(t, tx.WithTx(ctx, func(store.Tx) error { return nil }), sql.ErrTxDone)
		return boom
	})
	require.ErrorIs(t, err, boom)

	exists, err := s.Accounts().AccountNumberExists(ctx, "19981234567")
	require.NoError(t, err)
	require.False(t, exists)
}
