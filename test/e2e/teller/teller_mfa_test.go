package teller_test

import (
	"net/http"
	"testing"

	"github.com/aussiebroadwan/teller/pkg/tellersdk"
	"github.com/stretchr/testify/require"
)

func TestMFA_EnrollAndLogin(t *testing.T) {
	client := setupTeller(t)
	ctx := t.Context()

	signupUser(t, client, "judy")
	session := performLogin(t, client, "judy")

	enrollment, err := session.EnrollMFA(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, enrollment.Secret)
	require.Contains(t, enrollment.OTPAuthURL, "otpauth://totp/")
	require.Contains(t, enrollment.QRCode, "data:image/png;base64,")

	require.NoError(t, session.ConfirmMFA(ctx, currentCode(t, enrollment.Secret)))

	_, err = client.Login(ctx, "judy", testPassword)
	mfaToken := requireMFA(t, err, false)

	_, err = client.VerifyMFA(ctx, mfaToken, wrongCode(t, enrollment.Secret))
	requireAPIError(t, err, http.StatusBadRequest, tellersdk.ErrorCodeInvalidGrant)

	mfaSession, err := client.VerifyMFA(ctx, mfaToken, currentCode(t, enrollment.Secret))
	require.NoError(t, err)

	me, err := mfaSession.CheckAuth(ctx)
	require.NoError(t, err)
	require.True(t, me.MFAEnabled)

	// The challenge is single use.
	_, err = client.VerifyMFA(ctx, mfaToken, currentCode(t, enrollment.Secret))
	requireAPIError(t, err, http.StatusBadRequest, tellersdk.ErrorCodeInvalidGrant)
}

func TestMFA_EnforcedSetup(t *testing.T) {
	client := setupTeller(t, withEnv("TELLER_MFA_POLICY", "enforce"))
	ctx := t.Context()

	signupUser(t, client, "mallory")

	_, err := client.Login(ctx, "mallory", testPassword)
	mfaToken := requireMFA(t, err, true)

	enrollment, err := client.SetupMFA(ctx, mfaToken)
	require.NoError(t, err)

	session, err := client.VerifyMFASetup(ctx, mfaToken, currentCode(t, enrollment.Secret))
	require.NoError(t, err)

	me, err := session.CheckAuth(ctx)
	require.NoError(t, err)
	require.True(t, me.MFAEnabled)

	// The next login asks for a code rather than setup.
	_, err = client.Login(ctx, "mallory", testPassword)
	requireMFA(t, err, false)
}
