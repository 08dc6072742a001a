package service

import (
	"context"
	"strings"
	"testing"

	"github.com/aussiebroadwan/teller/internal/teller/domain"
	"github.com/aussiebroadwan/teller/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestSignup_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	valid := SignupRequest{Username: "alice", Email: "alice@x.com", Password: "P@ssw0rd"}

	tests := []struct {
		name   string
		mutate func(*SignupRequest)
		field  string
	}{
		{"missing username", func(r *SignupRequest) { r.Username = "  " }, "username"},
		{"username with @", func(r *SignupRequest) { r.Username = "a@b" }, "username"},
		{"bad email", func(r *SignupRequest) { r.Email = "not-an-email" }, "email"},
		{"short password", func(r *SignupRequest) { r.Password = "12345" }, "password"},
		{"long password", func(r *SignupRequest) { r.Password = strings.Repeat("x", 129) }, "password"},
		{"bad ssn", func(r *SignupRequest) { r.SSN = "12-345" }, "ssn"},
		{"bad zip", func(r *SignupRequest) { r.Profile.ZipCode = "1234" }, "zip_code"},
		{"bad phone", func(r *SignupRequest) { r.Profile.Phone = "555-1234" }, "phone"},
		{"bad dob", func(r *SignupRequest) { r.Profile.DateOfBirth = "01/02/1990" }, "dob"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := valid
			tc.mutate(&req)

			_, _, err := env.users.Signup(ctx, req)
			require.ErrorIs(t, err, ErrValidation)

			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			require.Equal(t, tc.field, ve.Field)
		})
	}
}

func TestSignup_CreatesUserWithTwoAccounts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	u, accounts, err := env.users.Signup(ctx, SignupRequest{
		Username: "alice",
		Email:    "  Alice@X.com ",
		Password: "P@ssw0rd",
		SSN:      "123456789",
		Profile:  domain.Profile{FirstName: "Alice", ZipCode: "12345", Phone: "5551234567", DateOfBirth: "1990-01-02"},
	})
	require.NoError(t, err)
	require.Equal(t, "alice@x.com", u.Email)
	require.True(t, u.Approved())

	require.Len(t, accounts, 2)
	require.NotEqual(t, accounts[0].Number, accounts[1].Number)
	require.Regexp(t, accountNumberPattern, accounts[0].Number)

	stored, err := env.store.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.SSNSealed)
	require.NotEqual(t, "123456789", *stored.SSNSealed)

	listed, err := env.ledger.Balances(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, listed, 2)
}

func TestSignup_PersistsHashNotPlaintext(t *testing.T) {
	env := newTestEnv(t)
	env.users.Hasher = cryptox.Argon2Hasher{}
	ctx := context.Background()

	u, _, err := env.users.Signup(ctx, SignupRequest{Username: "alice", Email: "alice@x.com", Password: "P@ssw0rd"})
	require.NoError(t, err)

	stored, err := env.store.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotEqual(t, "P@ssw0rd", stored.PasswordHash)
	require.NotContains(t, stored.PasswordHash, "P@ssw0rd")
	require.True(t, strings.HasPrefix(stored.PasswordHash, "$argon2id$"))
	require.NoError(t, cryptox.Argon2Hasher{}.Verify("P@ssw0rd", stored.PasswordHash))
}

func TestSignup_Duplicates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.signup(t, "alice", "P@ssw0rd")

	_, _, err := env.users.Signup(ctx, SignupRequest{Username: "alice", Email: "other@x.com", Password: "P@ssw0rd"})
	require.ErrorIs(t, err, ErrConflict)
	require.Contains(t, err.Error(), "username")

	_, _, err = env.users.Signup(ctx, SignupRequest{Username: "alice2", Email: "ALICE@x.com", Password: "P@ssw0rd"})
	require.ErrorIs(t, err, ErrConflict)
	require.Contains(t, err.Error(), "email")
}

func TestSignup_ExhaustedAccountNumbers(t *testing.T) {
	env := newTestEnv(t)
	env.users.Numbers.Lookup = &fakeLookup{taken: 1000}

	_, _, err := env.users.Signup(context.Background(), SignupRequest{Username: "alice", Email: "alice@x.com", Password: "P@ssw0rd"})
	require.ErrorIs(t, err, ErrAccountNumberExhausted)

	_, err = env.store.Users().GetUserByUsername(context.Background(), "alice")
	require.Error(t, err)
}

func TestApprovalGate(t *testing.T) {
	env := newTestEnv(t)
	env.users.RequireApproval = true
	env.auth.RequireApproval = true
	ctx := context.Background()

	u := env.signup(t, "bob", "P@ssw0rd")
	require.False(t, u.Approved())
	_, ok := env.notes.last(domain.NotifySignupPending)
	require.True(t, ok)

	_, err := env.auth.Login(ctx, "bob", "P@ssw0rd")
	require.ErrorIs(t, err, ErrPendingApproval)

	require.NoError(t, env.users.Approve(ctx, u.ID))
	res, err := env.auth.Login(ctx, "bob", "P@ssw0rd")
	require.NoError(t, err)
	require.NotNil(t, res.Session)

	require.ErrorIs(t, env.users.Approve(ctx, "missing"), ErrNotFound)
}
