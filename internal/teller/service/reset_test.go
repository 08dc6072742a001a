package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/teller/internal/teller/domain"
	"github.com/aussiebroadwan/teller/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

type denyThrottle struct {
	deny string
	err  error
}

func (d denyThrottle) Allow(_ context.Context, key string) (bool, error) {
	if d.err != nil {
		return false, d.err
	}
	return !strings.HasPrefix(key, d.deny), nil
}

// requestToken runs RequestReset and returns the token from the published
// link.
func requestToken(t *testing.T, env *testEnv, email string) string {
	t.Helper()

	require.NoError(t, env.reset.RequestReset(context.Background(), email, "10.0.0.1"))
	n, ok := env.notes.last(domain.NotifyResetRequested)
	require.True(t, ok)

	prefix := "http://localhost:3000/reset-password/"
	require.True(t, strings.HasPrefix(n.Link, prefix))
	return strings.TrimPrefix(n.Link, prefix)
}

func TestRequestReset(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.signup(t, "alice", "P@ssw0rd")

	t.Run("issues a 20 byte token valid for an hour", func(t *testing.T) {
		before := time.Now()
		token := requestToken(t, env, "Alice@x.com")
		require.Len(t, token, 40)

		fp := cryptox.FingerprintToken(token)
		got, err := env.store.Users().GetUserByResetToken(ctx, fp, before.Add(59*time.Minute))
		require.NoError(t, err)
		require.Equal(t, u.ID, got.ID)

		_, err = env.store.Users().GetUserByResetToken(ctx, fp, before.Add(61*time.Minute))
		require.Error(t, err)
	})

	t.Run("unknown email is acknowledged without a notification", func(t *testing.T) {
		count := len(env.notes.sent)
		require.NoError(t, env.reset.RequestReset(ctx, "ghost@x.com", "10.0.0.1"))
		require.Len(t, env.notes.sent, count)
	})

	t.Run("unknown email is reported when revealing", func(t *testing.T) {
		env.reset.RevealUnknown = true
		defer func() { env.reset.RevealUnknown = false }()

		require.ErrorIs(t, env.reset.RequestReset(ctx, "ghost@x.com", "10.0.0.1"), ErrNotFound)
	})

	t.Run("invalid email", func(t *testing.T) {
		require.ErrorIs(t, env.reset.RequestReset(ctx, "nope", "10.0.0.1"), ErrValidation)
	})

	t.Run("throttled", func(t *testing.T) {
		env.reset.Throttle = denyThrottle{deny: "reset:ip:"}
		defer func() { env.reset.Throttle = nil }()

		require.ErrorIs(t, env.reset.RequestReset(ctx, "alice@x.com", "10.0.0.1"), ErrThrottled)
	})

	t.Run("throttle outage fails open", func(t *testing.T) {
		env.reset.Throttle = denyThrottle{err: errors.New("redis down")}
		defer func() { env.reset.Throttle = nil }()

		require.NoError(t, env.reset.RequestReset(ctx, "alice@x.com", "10.0.0.1"))
	})
}

func TestRedeemReset(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.signup(t, "alice", "P@ssw0rd")

	t.Run("redeems once", func(t *testing.T) {
		token := requestToken(t, env, "alice@x.com")

		require.NoError(t, env.reset.Redeem(ctx, token, "NewPass1"))
		_, ok := env.notes.last(domain.NotifyPasswordChanged)
		require.True(t, ok)

		_, err := env.auth.Login(ctx, "alice", "P@ssw0rd")
		require.ErrorIs(t, err, ErrInvalidCredentials)
		_, err = env.auth.Login(ctx, "alice", "NewPass1")
		require.NoError(t, err)

		require.ErrorIs(t, env.reset.Redeem(ctx, token, "Again"), ErrInvalidResetToken)
		require.ErrorIs(t, env.reset.Redeem(ctx, token, "Another1"), ErrInvalidResetToken)
	})

	t.Run("expired token leaves password unchanged", func(t *testing.T) {
		token, err := cryptox.GenerateHexToken(cryptox.TokenSize160)
		require.NoError(t, err)
		require.NoError(t, env.store.Users().SetResetToken(ctx, u.ID, cryptox.FingerprintToken(token), time.Now().Add(-time.Second)))

		before, err := env.store.Users().GetUserByID(ctx, u.ID)
		require.NoError(t, err)

		require.ErrorIs(t, env.reset.Redeem(ctx, token, "Expired1"), ErrInvalidResetToken)

		after, err := env.store.Users().GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		require.Equal(t, before.PasswordHash, after.PasswordHash)
	})

	t.Run("weak password keeps the token live", func(t *testing.T) {
		token := requestToken(t, env, "alice@x.com")

		require.ErrorIs(t, env.reset.Redeem(ctx, token, "123"), ErrValidation)
		require.NoError(t, env.reset.Redeem(ctx, token, "Stronger1"))
	})

	t.Run("empty and unknown tokens", func(t *testing.T) {
		require.ErrorIs(t, env.reset.Redeem(ctx, "", "Whatever1"), ErrInvalidResetToken)
		require.ErrorIs(t, env.reset.Redeem(ctx, "deadbeef", "Whatever1"), ErrInvalidResetToken)
	})

	t.Run("concurrent redemption has one winner", func(t *testing.T) {
		token := requestToken(t, env, "alice@x.com")

		var (
			wg   sync.WaitGroup
			mu   sync.Mutex
			wins int
		)
		for range 8 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := env.reset.Redeem(ctx, token, "Racing12"); err == nil {
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
