package tellersdk

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/aussiebroadwan/teller/pkg/httpx"
)

const (
	ErrorCodeInvalidRequest    = "invalid_request"
	ErrorCodeInvalidGrant      = "invalid_grant"
	ErrorCodeConflict          = "conflict"
	ErrorCodePendingApproval   = "pending_approval"
	ErrorCodeInsufficientFunds = "insufficient_funds"
	ErrorCodeNotFound          = "not_found"
	ErrorCodeUnauthorized      = "unauthorized"
	ErrorCodeInvalidToken      = "invalid_token"
	ErrorCodeAccessDenied      = "access_denied"
	ErrorCodeTooManyRequests   = "too_many_requests"
	ErrorCodeServerError       = "server_error"
	ErrorCodeMFARequired       = "mfa_required"
)

// APIError is the error envelope returned by every endpoint. It is used by
// the server to write responses and by the client to report them.
type APIError struct {
	StatusCode  int    `json:"-"`
	Code        string `json:"error"`
	Description string `json:"error_description"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// WriteError writes e to w.
func (e *APIError) WriteError(w http.ResponseWriter) {
	httpx.WriteError(w, e.StatusCode, e.Code, e.Description)
}

// WithDescription returns a copy of e with a different description.
func (e *APIError) WithDescription(description string) *APIError {
	return &APIError{StatusCode: e.StatusCode, Code: e.Code, Description: description}
}

var (
	ErrInvalidRequest = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidRequest,
		Description: "the request is malformed or missing required parameters",
	}

	// ErrInvalidGrant covers every credential failure: unknown user, wrong
	// password, wrong MFA code, bad reset token.
	ErrInvalidGrant = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidGrant,
		Description: "invalid credentials",
	}

	ErrConflict = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeConflict,
		Description: "resource already exists",
	}

	ErrPendingApproval = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodePendingApproval,
		Description: "account is pending approval",
	}

	ErrInsufficientFunds = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInsufficientFunds,
		Description: "insufficient funds",
	}

	ErrNotFound = &APIError{
		StatusCode:  http.StatusNotFound,
		Code:        ErrorCodeNotFound,
		Description: "not found",
	}

	ErrUnauthorized = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeUnauthorized,
		Description: "authentication required",
	}

	ErrAccessDenied = &APIError{
		StatusCode:  http.StatusForbidden,
		Code:        ErrorCodeAccessDenied,
		Description: "access denied",
	}

	ErrTooManyRequests = &APIError{
		StatusCode:  http.StatusTooManyRequests,
		Code:        ErrorCodeTooManyRequests,
		Description: "too many requests, try again later",
	}

	ErrServerError = &APIError{
		StatusCode:  http.StatusInternalServerError,
		Code:        ErrorCodeServerError,
		Description: "internal server error",
	}
)

// MFARequiredError is returned by Login when the password was accepted but
// a TOTP step is still outstanding. SetupRequired means the account must
// enroll first.
type MFARequiredError struct {
	MFAToken      string
	SetupRequired bool
}

func (e *MFARequiredError) Error() string {
	if e.SetupRequired {
		return "MFA setup required"
	}
	return "MFA required"
}

// parseErrorResponse converts a non-2xx response body into an *APIError.
func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		return &APIError{
			StatusCode:  resp.StatusCode,
			Code:        errResp.Error,
			Description: errResp.ErrorDescription,
		}
	}

	return &APIError{
		StatusCode:  resp.StatusCode,
		Code:        ErrorCodeServerError,
		Description: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}
}
