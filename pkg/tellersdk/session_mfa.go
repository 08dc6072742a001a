package tellersdk

import (
	"context"
	"net/http"
)

// EnrollMFA issues a TOTP secret for the signed-in user. MFA is enabled by
// ConfirmMFA.
func (s *Session) EnrollMFA(ctx context.Context) (*EnrollmentResponse, error) {
	resp, err := s.do(ctx, http.MethodPost, "/api/auth/mfa/enroll", nil)
	if err != nil {
		return nil, err
	}

	var out EnrollmentResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// ConfirmMFA verifies a code against the enrolled secret and enables MFA.
func (s *Session) ConfirmMFA(ctx context.Context, code string) error {
	resp, err := s.do(ctx, http.MethodPost, "/api/auth/mfa/verify", CodeRequest{Code: code})
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}

// DisableMFA turns MFA off after checking a current code.
func (s *Session) DisableMFA(ctx context.Context, code string) error {
	resp, err := s.do(ctx, http.MethodDelete, "/api/auth/mfa", CodeRequest{Code: code})
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}
