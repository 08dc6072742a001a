package tellersdk

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// SDKClient is a client for the Teller service. It performs unauthenticated
// operations and creates Sessions.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewSDKClient(baseURL string) *SDKClient {
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// NewSessionFromToken wraps an existing session token.
func (c *SDKClient) NewSessionFromToken(token string) *Session {
	return &Session{client: c, token: token}
}

// Signup registers a user. The user starts with a checking and a savings
// account.
func (c *SDKClient) Signup(ctx context.Context, req SignupRequest) (*SignupResponse, error) {
	resp, err := c.doJSON(ctx, http.MethodPost, "/api/auth/signup", "", req, nil)
	if err != nil {
		return nil, err
	}

	var out SignupResponse
	if err := decodeJSON(resp, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login authenticates with a username or email. When a TOTP step is still
// outstanding it returns *MFARequiredError.
func (c *SDKClient) Login(ctx context.Context, identifier, password string) (*Session, error) {
	resp, err := c.doJSON(ctx, http.MethodPost, "/api/auth/login", "", LoginRequest{
		Identifier: identifier,
		Password:   password,
	}, nil)
	if err != nil {
		return nil, err
	}

	var out LoginResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}

	if out.MFARequired || out.MFASetupRequired {
		return nil, &MFARequiredError{MFAToken: out.MFAToken, SetupRequired: out.MFASetupRequired}
	}
	return newSession(c, &out), nil
}

// VerifyMFA completes a login with a TOTP code.
func (c *SDKClient) VerifyMFA(ctx context.Context, mfaToken, code string) (*Session, error) {
	return c.completeMFA(ctx, "/api/auth/verify-mfa", mfaToken, code)
}

// SetupMFA issues a TOTP secret for a login that must enroll first.
func (c *SDKClient) SetupMFA(ctx context.Context, mfaToken string) (*EnrollmentResponse, error) {
	resp, err := c.doJSON(ctx, http.MethodPost, "/api/auth/setup-mfa", "", MFASetupRequest{MFAToken: mfaToken}, nil)
	if err != nil {
		return nil, err
	}

	var out EnrollmentResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyMFASetup confirms the secret from SetupMFA and completes the login.
func (c *SDKClient) VerifyMFASetup(ctx context.Context, mfaToken, code string) (*Session, error) {
	return c.completeMFA(ctx, "/api/auth/verify-mfa-setup", mfaToken, code)
}

func (c *SDKClient) completeMFA(ctx context.Context, path, mfaToken, code string) (*Session, error) {
	resp, err := c.doJSON(ctx, http.MethodPost, path, "", MFAVerifyRequest{MFAToken: mfaToken, Code: code}, nil)
	if err != nil {
		return nil, err
	}

	var out LoginResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return newSession(c, &out), nil
}

// ForgotPassword requests a reset link for email.
func (c *SDKClient) ForgotPassword(ctx context.Context, email string) error {
	resp, err := c.doJSON(ctx, http.MethodPost, "/api/auth/forgot-password", "", ForgotPasswordRequest{Email: email}, nil)
	if err != nil {
		return err
	}
	return decodeJSON(resp, nil, http.StatusOK)
}

// ResetPassword redeems a reset token.
func (c *SDKClient) ResetPassword(ctx context.Context, token, password string) error {
	path := "/api/auth/reset-password/" + url.PathEscape(token)
	resp, err := c.doJSON(ctx, http.MethodPost, path, "", ResetPasswordRequest{Password: password}, nil)
	if err != nil {
		return err
	}
	return decodeJSON(resp, nil, http.StatusOK)
}

// ApproveUser approves a user awaiting approval.
func (c *SDKClient) ApproveUser(ctx context.Context, adminToken, userID string) error {
	path := "/api/admin/users/" + url.PathEscape(userID) + "/approve"
	resp, err := c.doJSON(ctx, http.MethodPost, path, "", nil, map[string]string{
		"X-Admin-Token": adminToken,
	})
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}

// GetLiveness checks if the service is alive.
func (c *SDKClient) GetLiveness(ctx context.Context) (*HealthResponse, error) {
	return c.health(ctx, "/livez")
}

// GetReadiness checks if the service is ready.
func (c *SDKClient) GetReadiness(ctx context.Context) (*HealthResponse, error) {
	return c.health(ctx, "/readyz")
}

func (c *SDKClient) health(ctx context.Context, path string) (*HealthResponse, error) {
	resp, err := c.doJSON(ctx, http.MethodGet, path, "", nil, nil)
	if err != nil {
		return nil, err
	}

	var health HealthResponse
	if err := decodeJSON(resp, &health, http.StatusOK); err != nil {
		return nil, err
	}
	return &health, nil
}
