package http

import (
	"net/http"

	"github.com/aussiebroadwan/teller/internal/teller/service"
	"github.com/aussiebroadwan/teller/pkg/httpx"
	"github.com/aussiebroadwan/teller/pkg/slogx"
	"github.com/aussiebroadwan/teller/pkg/tellersdk"
)

// MFAHandler handles TOTP management for signed-in users.
type MFAHandler struct {
	MFAService *service.MFAService
}

// HandleEnroll handles POST /api/auth/mfa/enroll
//
//	@Summary		Enroll in TOTP MFA
//	@Description	Generates a TOTP secret for the authenticated user and returns it with a QR code.
//	@Tags			MFA
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	tellersdk.EnrollmentResponse	"TOTP secret and QR code"
//	@Failure		400	{object}	tellersdk.ErrorResponse			"MFA already enabled"
//	@Failure		401	{object}	tellersdk.ErrorResponse			"No session token"
//	@Failure		403	{object}	tellersdk.ErrorResponse			"Invalid session"
//	@Router			/api/auth/mfa/enroll [post].
func (h *MFAHandler) HandleEnroll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := httpx.UserIDFromContext(ctx)

	enrollment, err := h.MFAService.Enroll(ctx, userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	slogx.FromContext(ctx).Info("mfa secret issued", "user_id", userID)
	httpx.WriteJSON(w, http.StatusOK, toEnrollmentResponse(enrollment))
}

// HandleVerify handles POST /api/auth/mfa/verify
//
//	@Summary		Verify TOTP code
//	@Description	Verifies a code against the enrolled secret and enables MFA.
//	@Tags			MFA
//	@Security		BearerAuth
//	@Accept			json
//	@Param			request	body	tellersdk.CodeRequest	true	"TOTP code"
//	@Success		204		"Code accepted"
//	@Failure		400		{object}	tellersdk.ErrorResponse	"Invalid code or MFA not enrolled"
//	@Failure		401		{object}	tellersdk.ErrorResponse	"No session token"
//	@Router			/api/auth/mfa/verify [post].
func (h *MFAHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	var req tellersdk.CodeRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		tellersdk.ErrInvalidRequest.WithDescription("invalid JSON body").WriteError(w)
		return
	}

	if err := h.MFAService.ConfirmEnrollment(r.Context(), httpx.UserIDFromContext(r.Context()), req.Code); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleDisable handles DELETE /api/auth/mfa
//
//	@Summary		Disable TOTP MFA
//	@Description	Removes MFA from the account after checking a current code.
//	@Tags			MFA
//	@Security		BearerAuth
//	@Accept			json
//	@Param			request	body	tellersdk.CodeRequest	true	"TOTP code"
//	@Success		204		"MFA disabled"
//	@Failure		400		{object}	tellersdk.ErrorResponse	"Invalid code or MFA not enabled"
//	@Failure		401		{object}	tellersdk.ErrorResponse	"No session token"
//	@Router			/api/auth/mfa [delete].
func (h *MFAHandler) HandleDisable(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req tellersdk.CodeRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		tellersdk.ErrInvalidRequest.WithDescription("invalid JSON body").WriteError(w)
		return
	}

	userID := httpx.UserIDFromContext(ctx)
	if err := h.MFAService.Disable(ctx, userID, req.Code); err != nil {
		writeServiceError(w, r, err)
		return
	}

	slogx.FromContext(ctx).Info("mfa disabled", "user_id", userID)
	w.WriteHeader(http.StatusNoContent)
}
