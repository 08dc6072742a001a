package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/teller/internal/teller/service"
	"github.com/aussiebroadwan/teller/pkg/httpx"
	"github.com/aussiebroadwan/teller/pkg/tellersdk"
)

// resetAck is returned for every accepted forgot-password request, whether
// or not the email is registered.
const resetAck = "if that email is registered, a reset link has been sent"

type ResetHandler struct {
	ResetService *service.ResetService
}

// HandleForgotPassword handles POST /api/auth/forgot-password
//
//	@Summary		Request a password reset
//	@Description	Sends a single-use reset link valid for one hour.
//	@Tags			Password
//	@Accept			json
//	@Produce		json
//	@Param			request	body		tellersdk.ForgotPasswordRequest	true	"Account email"
//	@Success		200		{object}	tellersdk.MessageResponse		"Acknowledged"
//	@Failure		400		{object}	tellersdk.ErrorResponse			"Invalid email, or unknown email when disclosure is enabled"
//	@Failure		429		{object}	tellersdk.ErrorResponse			"Too many reset requests"
//	@Router			/api/auth/forgot-password [post].
func (h *ResetHandler) HandleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req tellersdk.ForgotPasswordRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		tellersdk.ErrInvalidRequest.WithDescription("invalid JSON body").WriteError(w)
		return
	}

	err := h.ResetService.RequestReset(r.Context(), req.Email, httpx.ClientIP(r))
	if errors.Is(err, service.ErrNotFound) {
		tellersdk.ErrInvalidRequest.WithDescription("user not found").WriteError(w)
		return
	}
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, tellersdk.MessageResponse{Message: resetAck})
}

// HandleResetPassword handles POST /api/auth/reset-password/{token}
//
//	@Summary		Reset password
//	@Description	Redeems a reset token. Each token works once.
//	@Tags			Password
//	@Accept			json
//	@Produce		json
//	@Param			token	path		string							true	"Reset token from the emailed link"
//	@Param			request	body		tellersdk.ResetPasswordRequest	true	"New password"
//	@Success		200		{object}	tellersdk.MessageResponse		"Password changed"
//	@Failure		400		{object}	tellersdk.ErrorResponse			"Token invalid or expired, or weak password"
//	@Router			/api/auth/reset-password/{token} [post].
func (h *ResetHandler) HandleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req tellersdk.ResetPasswordRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		tellersdk.ErrInvalidRequest.WithDescription("invalid JSON body").WriteError(w)
		return
	}

	if err := h.ResetService.Redeem(r.Context(), r.PathValue("token"), req.Password); err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, tellersdk.MessageResponse{Message: "password has been reset"})
}
