package tellersdk

import (
	"time"

	"github.com/shopspring/decimal"
)

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// MessageResponse acknowledges requests that return no resource.
type MessageResponse struct {
	Message string `json:"message"`
}

// ============================================================================
// Users
// ============================================================================

// Profile holds the customer details collected at signup.
type Profile struct {
	FirstName    string `json:"first_name"`
	MiddleName   string `json:"middle_name,omitempty"`
	LastName     string `json:"last_name"`
	DateOfBirth  string `json:"dob,omitempty"` // YYYY-MM-DD
	Street       string `json:"street,omitempty"`
	Apt          string `json:"apt,omitempty"`
	City         string `json:"city,omitempty"`
	State        string `json:"state,omitempty"`
	ZipCode      string `json:"zip_code,omitempty"` // 5 digits
	Phone        string `json:"phone,omitempty"`    // 10 digits
	IDNumber     string `json:"id_number,omitempty"`
	IssueState   string `json:"issue_state,omitempty"`
	IDExpiration string `json:"id_expiration,omitempty"` // YYYY-MM-DD
}

// SignupRequest is the body of POST /api/auth/signup.
type SignupRequest struct {
	Username string  `json:"username"`
	Email    string  `json:"email"`
	Password string  `json:"password"`
	SSN      string  `json:"ssn,omitempty"` // 9 digits
	Profile  Profile `json:"profile"`
}

// UserResponse is the public view of a user. It never carries the password
// hash, the MFA secret or the SSN.
type UserResponse struct {
	ID          string     `json:"id"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	Profile     Profile    `json:"profile"`
	Approved    bool       `json:"approved"`
	MFAEnabled  bool       `json:"mfa_enabled"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// SignupResponse is returned by POST /api/auth/signup.
type SignupResponse struct {
	User     UserResponse      `json:"user"`
	Accounts []AccountResponse `json:"accounts"`
}

// ============================================================================
// Login and MFA
// ============================================================================

// LoginRequest is the body of POST /api/auth/login. Identifier may be a
// username or an email; Username and Email are accepted as aliases.
type LoginRequest struct {
	Identifier string `json:"identifier,omitempty"`
	Username   string `json:"username,omitempty"`
	Email      string `json:"email,omitempty"`
	Password   string `json:"password"`
}

// LoginResponse carries either a session (User, Token) or a pending MFA step
// (MFARequired or MFASetupRequired with MFAToken).
type LoginResponse struct {
	User      *UserResponse `json:"user,omitempty"`
	Token     string        `json:"token,omitempty"`
	ExpiresAt *time.Time    `json:"expires_at,omitempty"`

	MFARequired      bool   `json:"mfa_required,omitempty"`
	MFASetupRequired bool   `json:"mfa_setup_required,omitempty"`
	MFAToken         string `json:"mfa_token,omitempty"`
}

// MFAVerifyRequest is the body of POST /api/auth/verify-mfa and
// /api/auth/verify-mfa-setup.
type MFAVerifyRequest struct {
	MFAToken string `json:"mfa_token"`
	Code     string `json:"code"`
}

// MFASetupRequest is the body of POST /api/auth/setup-mfa.
type MFASetupRequest struct {
	MFAToken string `json:"mfa_token"`
}

// EnrollmentResponse carries a freshly issued TOTP secret.
type EnrollmentResponse struct {
	Secret     string `json:"secret"`
	OTPAuthURL string `json:"otpauth_url"`
	QRCode     string `json:"qr_code"` // data:image/png;base64,...
}

// CodeRequest carries a TOTP code for a signed-in user.
type CodeRequest struct {
	Code string `json:"code"`
}

// ============================================================================
// Password reset
// ============================================================================

// ForgotPasswordRequest is the body of POST /api/auth/forgot-password.
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// ResetPasswordRequest is the body of POST /api/auth/reset-password/{token}.
type ResetPasswordRequest struct {
	Password string `json:"password"`
}

// ============================================================================
// Balances
// ============================================================================

// AccountResponse is one balance. Amounts are fixed two-place decimals.
type AccountResponse struct {
	Number      string `json:"account_number"`
	AccountType string `json:"accountType"`
	Balance     string `json:"balance"`
}

// BalanceRequest is the body of PUT /api/auth/balance. Amount accepts a JSON
// number or a decimal string and is signed.
type BalanceRequest struct {
	UserID      string          `json:"userId"`
	Amount      decimal.Decimal `json:"amount"`
	AccountType string          `json:"accountType,omitempty"` // defaults to checking
	Description string          `json:"description"`
	Reference   string          `json:"reference,omitempty"`
}

// TransactionResponse is one recorded balance mutation.
type TransactionResponse struct {
	ID           string    `json:"id"`
	AccountType  string    `json:"accountType"`
	Amount       string    `json:"amount"`
	BalanceAfter string    `json:"balance_after"`
	Description  string    `json:"description"`
	Reference    string    `json:"reference"`
	CreatedAt    time.Time `json:"created_at"`
}

// BalanceResponse is returned by PUT /api/auth/balance.
type BalanceResponse struct {
	Balance     string              `json:"balance"`
	Account     AccountResponse     `json:"account"`
	Transaction TransactionResponse `json:"transaction"`
}

// BalancesResponse is returned by GET /api/auth/balance.
type BalancesResponse struct {
	Accounts []AccountResponse `json:"accounts"`
}

// TransactionsResponse is returned by GET /api/auth/transactions/{userId}.
type TransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
}

// ============================================================================
// Health
// ============================================================================

// HealthResponse is returned by /livez and /readyz (readyz adds Checks).
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime,omitempty"`
	Version string        `json:"version,omitempty"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports the state of each dependency.
type HealthChecks struct {
	Database string `json:"database"`
	Redis    string `json:"redis,omitempty"`
}
