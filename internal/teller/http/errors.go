package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/teller/internal/teller/service"
	"github.com/aussiebroadwan/teller/pkg/slogx"
	"github.com/aussiebroadwan/teller/pkg/tellersdk"
)

// writeServiceError maps a service error to its response. Credential
// failures share generic descriptions; storage and unexpected errors are
// logged and reported as server_error.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	log := slogx.FromContext(r.Context())

	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		tellersdk.ErrInvalidRequest.WithDescription(verr.Error()).WriteError(w)

	case errors.Is(err, service.ErrMFAAlreadyEnabled):
		tellersdk.ErrConflict.WithDescription("mfa is already enabled").WriteError(w)
	case errors.Is(err, service.ErrMFANotEnrolled):
		tellersdk.ErrInvalidRequest.WithDescription("mfa is not enrolled").WriteError(w)
	case errors.Is(err, service.ErrMFANotEnabled):
		tellersdk.ErrInvalidRequest.WithDescription("mfa is not enabled").WriteError(w)
	case errors.Is(err, service.ErrValidation):
		tellersdk.ErrInvalidRequest.WriteError(w)

	case errors.Is(err, service.ErrConflict):
		tellersdk.ErrConflict.WithDescription(err.Error()).WriteError(w)

	case errors.Is(err, service.ErrInvalidMFACode):
		tellersdk.ErrInvalidGrant.WithDescription("invalid or expired mfa code").WriteError(w)
	case errors.Is(err, service.ErrInvalidResetToken):
		tellersdk.ErrInvalidGrant.WithDescription("reset token is invalid or has expired").WriteError(w)
	case errors.Is(err, service.ErrAuth):
		tellersdk.ErrInvalidGrant.WriteError(w)

	case errors.Is(err, service.ErrPendingApproval):
		tellersdk.ErrPendingApproval.WriteError(w)
	case errors.Is(err, service.ErrInsufficientFunds):
		tellersdk.ErrInsufficientFunds.WriteError(w)
	case errors.Is(err, service.ErrNotFound):
		tellersdk.ErrNotFound.WithDescription(err.Error()).WriteError(w)
	case errors.Is(err, service.ErrThrottled):
		tellersdk.ErrTooManyRequests.WriteError(w)

	case errors.Is(err, service.ErrAccountNumberExhausted):
		log.Error("account number generation exhausted", "err", err)
		tellersdk.ErrServerError.WriteError(w)
	default:
		log.Error("request failed", "err", err)
		tellersdk.ErrServerError.WriteError(w)
	}
}
