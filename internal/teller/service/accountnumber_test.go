package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

var accountNumberPattern = regexp.MustCompile(`^1998[1-9]\d{6}$`)

// fakeLookup reports the first `taken` candidates as already in use.
type fakeLookup struct {
	mu    sync.Mutex
	taken int
	calls int
	err   error
}

func (f *fakeLookup) AccountNumberExists(_ context.Context, _ string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return false, f.err
	}
	return f.calls <= f.taken, nil
}

func TestAccountNumberGenerator(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("format", func(t *testing.T) {
		g := &AccountNumberGenerator{Lookup: &fakeLookup{}, Prefix: DefaultAccountNumberPrefix}
		for range 50 {
			n, err := g.Generate(ctx)
			require.NoError(t, err)
			require.Regexp(t, accountNumberPattern, n)
		}
	})

	t.Run("regenerates on collision", func(t *testing.T) {
		lookup := &fakeLookup{taken: 3}
		g := &AccountNumberGenerator{Lookup: lookup, Prefix: DefaultAccountNumberPrefix}

		n, err := g.Generate(ctx)
		require.NoError(t, err)
		require.Regexp(t, accountNumberPattern, n)
		require.Equal(t, 4, lookup.calls)
	})

	t.Run("bounded retries", func(t *testing.T) {
		lookup := &fakeLookup{taken: 1000}
		g := &AccountNumberGenerator{Lookup: lookup, Prefix: DefaultAccountNumberPrefix}

		_, err := g.Generate(ctx)
		require.ErrorIs(t, err, ErrAccountNumberExhausted)

		var exhausted *ExhaustedError
		require.True(t, errors.As(err, &exhausted))
		require.Equal(t, DefaultAccountNumberAttempts, exhausted.Attempts)
		require.Equal(t, DefaultAccountNumberAttempts, lookup.calls)
	})

	t.Run("custom attempts", func(t *testing.T) {
		lookup := &fakeLookup{taken: 1000}
		g := &AccountNumberGenerator{Lookup: lookup, MaxAttempts: 3}

		_, err := g.Generate(ctx)
		var exhausted *ExhaustedError
		require.True(t, errors.As(err, &exhausted))
		require.Equal(t, 3, exhausted.Attempts)
	})

	t.Run("lookup failure is a storage error", func(t *testing.T) {
		g := &AccountNumberGenerator{Lookup: &fakeLookup{err: errors.New("down")}}
		_, err := g.Generate(ctx)
		require.ErrorIs(t, err, ErrStorage)
	})
}

// Concurrent signups in a deliberately small number space collide often;
// the unique constraint plus signup retries must still hand out distinct
// numbers.
func TestSignup_ConcurrentAccountNumbersAreUnique(t *testing.T) {
	env := newTestEnv(t)
	env.users.Numbers.Digits = 3
	env.users.Numbers.MaxAttempts = 50

	const n = 20
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		numbers = map[string]bool{}
		errs    []error
		dups    []string
	)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, accounts, err := env.users.Signup(context.Background(), SignupRequest{
				Username: fmt.Sprintf("user%d", i),
				Email:    fmt.Sprintf("user%d@x.com", i),
				Password: "P@ssw0rd",
			})

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			for _, a := range accounts {
				if numbers[a.Number] {
					dups = append(dups, a.Number)
				}
				numbers[a.Number] = true
			}
		}()
	}
	wg.Wait()

	require.Empty(t, errs)
	require.Empty(t, dups)
	require.Len(t, numbers, 2*n)
}
