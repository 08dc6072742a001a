/*
Package tellersdk provides a client SDK for the Teller banking authentication
service.

# SDKClient vs Session

  - SDKClient: unauthenticated operations (signup, login, password reset,
    health) and the start of every session
  - Session: operations on behalf of a signed-in user

Logging in:

	client := tellersdk.NewSDKClient("http://localhost:8080")

	session, err := client.Login(ctx, "alice", "Secret123")
	var mfaErr *tellersdk.MFARequiredError
	if errors.As(err, &mfaErr) {
		session, err = client.VerifyMFA(ctx, mfaErr.MFAToken, code)
	}

When the service enforces MFA for every account, MFARequiredError has
SetupRequired set and the login continues with SetupMFA and VerifyMFASetup.

Using a session:

	user, err := session.CheckAuth(ctx)
	res, err := session.UpdateBalance(ctx, tellersdk.BalanceRequest{
		Amount:      decimal.RequireFromString("25.00"),
		AccountType: "checking",
		Description: "deposit",
	})
	err = session.Logout(ctx)

# Error Handling

Every non-2xx response is returned as *APIError carrying the status code and
the service error code:

	var apiErr *tellersdk.APIError
	if errors.As(err, &apiErr) && apiErr.Code == tellersdk.ErrorCodeInvalidGrant {
		// wrong username or password
	}

Sessions are safe for concurrent use.
*/
package tellersdk
