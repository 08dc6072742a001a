package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMFAService(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.signup(t, "alice", "P@ssw0rd")

	enrollment, err := env.mfa.Enroll(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, enrollment.Secret, 32) // 20 bytes base32

	stored, err := env.store.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.MFASecret)
	require.NotEqual(t, enrollment.Secret, *stored.MFASecret)
	require.False(t, stored.MFAEnabled())

	require.ErrorIs(t, env.mfa.ConfirmEnrollment(ctx, u.ID, wrongCode(t, enrollment.Secret)), ErrInvalidMFACode)
	require.NoError(t, env.mfa.ConfirmEnrollment(ctx, u.ID, currentCode(t, enrollment.Secret)))

	_, err = env.mfa.Enroll(ctx, u.ID)
	require.ErrorIs(t, err, ErrMFAAlreadyEnabled)

	require.ErrorIs(t, env.mfa.Disable(ctx, u.ID, wrongCode(t, enrollment.Secret)), ErrInvalidMFACode)
	require.NoError(t, env.mfa.Disable(ctx, u.ID, currentCode(t, enrollment.Secret)))
	require.ErrorIs(t, env.mfa.Disable(ctx, u.ID, currentCode(t, enrollment.Secret)), ErrMFANotEnabled)

	stored, err = env.store.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Nil(t, stored.MFASecret)
}

func TestVerifyCode(t *testing.T) {
	t.Parallel()

	const secret = "JBSWY3DPEHPK3PXPJBSWY3DPEHPK3PXP"
	require.True(t, VerifyCode(secret, currentCode(t, secret)))
	require.False(t, VerifyCode(secret, wrongCode(t, secret)))
	require.False(t, VerifyCode(secret, "12345"))
	require.False(t, VerifyCode(secret, ""))
}
