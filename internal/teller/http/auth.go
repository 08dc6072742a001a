package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/teller/internal/teller/domain"
	"github.com/aussiebroadwan/teller/internal/teller/service"
	"github.com/aussiebroadwan/teller/pkg/httpx"
	"github.com/aussiebroadwan/teller/pkg/slogx"
	"github.com/aussiebroadwan/teller/pkg/tellersdk"
)

// AuthHandler serves signup, the login state machine and session endpoints.
type AuthHandler struct {
	UserService *service.UserService
	AuthService *service.AuthService
	Sessions    *service.SessionService

	CookieSecure bool
}

// HandleSignup handles POST /api/auth/signup
//
//	@Summary		Register a user
//	@Description	Creates a user with a checking and a savings account. Users may need operator approval before they can log in.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		tellersdk.SignupRequest		true	"Signup details"
//	@Success		201		{object}	tellersdk.SignupResponse	"Created user and accounts"
//	@Failure		400		{object}	tellersdk.ErrorResponse		"Validation failure or duplicate username/email"
//	@Failure		500		{object}	tellersdk.ErrorResponse		"Internal server error"
//	@Router			/api/auth/signup [post].
func (h *AuthHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req tellersdk.SignupRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		tellersdk.ErrInvalidRequest.WithDescription("invalid JSON body").WriteError(w)
		return
	}

	u, accounts, err := h.UserService.Signup(r.Context(), service.SignupRequest{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		SSN:      req.SSN,
		Profile:  domain.Profile(req.Profile),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, tellersdk.SignupResponse{
		User:     toUserResponse(u),
		Accounts: toAccountResponses(accounts),
	})
}

// HandleLogin handles POST /api/auth/login
//
//	@Summary		Log in
//	@Description	Checks a username or email and password. Returns a session, or an mfa_token when a TOTP step is required.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		tellersdk.LoginRequest	true	"Credentials"
//	@Success		200		{object}	tellersdk.LoginResponse	"Session or pending MFA step"
//	@Failure		400		{object}	tellersdk.ErrorResponse	"Invalid credentials or pending approval"
//	@Failure		429		{object}	tellersdk.ErrorResponse	"Rate limit exceeded"
//	@Router			/api/auth/login [post].
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req tellersdk.LoginRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		tellersdk.ErrInvalidRequest.WithDescription("invalid JSON body").WriteError(w)
		return
	}

	identifier := req.Identifier
	if identifier == "" {
		identifier = req.Username
	}
	if identifier == "" {
		identifier = req.Email
	}

	res, err := h.AuthService.Login(r.Context(), identifier, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.writeLoginResult(w, res)
}

// HandleVerifyMFA handles POST /api/auth/verify-mfa
//
//	@Summary		Complete an MFA login
//	@Description	Exchanges an mfa_token and a current TOTP code for a session. Each mfa_token allows 5 attempts within 5 minutes.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		tellersdk.MFAVerifyRequest	true	"MFA token and code"
//	@Success		200		{object}	tellersdk.LoginResponse		"Session"
//	@Failure		400		{object}	tellersdk.ErrorResponse		"Invalid or expired code"
//	@Router			/api/auth/verify-mfa [post].
func (h *AuthHandler) HandleVerifyMFA(w http.ResponseWriter, r *http.Request) {
	var req tellersdk.MFAVerifyRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		tellersdk.ErrInvalidRequest.WithDescription("invalid JSON body").WriteError(w)
		return
	}

	res, err := h.AuthService.VerifyMFA(r.Context(), req.MFAToken, req.Code)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.writeLoginResult(w, res)
}

// HandleSetupMFA handles POST /api/auth/setup-mfa
//
//	@Summary		Enroll TOTP during login
//	@Description	Issues a TOTP secret for a login that returned mfa_setup_required.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		tellersdk.MFASetupRequest		true	"MFA token"
//	@Success		200		{object}	tellersdk.EnrollmentResponse	"TOTP secret and QR code"
//	@Failure		400		{object}	tellersdk.ErrorResponse			"Invalid or expired mfa_token"
//	@Router			/api/auth/setup-mfa [post].
func (h *AuthHandler) HandleSetupMFA(w http.ResponseWriter, r *http.Request) {
	var req tellersdk.MFASetupRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		tellersdk.ErrInvalidRequest.WithDescription("invalid JSON body").WriteError(w)
		return
	}

	enrollment, err := h.AuthService.SetupMFA(r.Context(), req.MFAToken)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toEnrollmentResponse(enrollment))
}

// HandleVerifyMFASetup handles POST /api/auth/verify-mfa-setup
//
//	@Summary		Confirm TOTP enrollment during login
//	@Description	Confirms the secret from setup-mfa with a current code and completes the login.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		tellersdk.MFAVerifyRequest	true	"MFA token and code"
//	@Success		200		{object}	tellersdk.LoginResponse		"Session"
//	@Failure		400		{object}	tellersdk.ErrorResponse		"Invalid or expired code"
//	@Router			/api/auth/verify-mfa-setup [post].
func (h *AuthHandler) HandleVerifyMFASetup(w http.ResponseWriter, r *http.Request) {
	var req tellersdk.MFAVerifyRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		tellersdk.ErrInvalidRequest.WithDescription("invalid JSON body").WriteError(w)
		return
	}

	res, err := h.AuthService.VerifyMFASetup(r.Context(), req.MFAToken, req.Code)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.writeLoginResult(w, res)
}

// HandleLogout handles POST /api/auth/logout
//
//	@Summary		Log out
//	@Description	Revokes the current session and clears the session cookie. Always succeeds.
//	@Tags			Auth
//	@Produce		json
//	@Success		200	{object}	tellersdk.MessageResponse	"Logged out"
//	@Router			/api/auth/logout [post].
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.Sessions.Revoke(ctx, httpx.SessionToken(r)); err != nil {
		slogx.FromContext(ctx).Error("failed to revoke session", "err", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     httpx.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   h.CookieSecure,
		SameSite: http.SameSiteStrictMode,
	})
	httpx.WriteJSON(w, http.StatusOK, tellersdk.MessageResponse{Message: "logged out"})
}

// HandleCheckAuth handles GET /api/auth/check-auth
//
//	@Summary		Current user
//	@Description	Returns the user the session belongs to.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	tellersdk.UserResponse	"Signed-in user"
//	@Failure		401	{object}	tellersdk.ErrorResponse	"No session token"
//	@Failure		403	{object}	tellersdk.ErrorResponse	"Invalid, expired or revoked session"
//	@Router			/api/auth/check-auth [get].
func (h *AuthHandler) HandleCheckAuth(w http.ResponseWriter, r *http.Request) {
	u, err := h.UserService.GetUser(r.Context(), httpx.UserIDFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toUserResponse(u))
}

// writeLoginResult writes a pending MFA step, or sets the session cookie and
// returns the session.
func (h *AuthHandler) writeLoginResult(w http.ResponseWriter, res service.LoginResult) {
	if res.Session == nil {
		httpx.WriteJSON(w, http.StatusOK, tellersdk.LoginResponse{
			MFARequired:      res.MFARequired,
			MFASetupRequired: res.MFASetupRequired,
			MFAToken:         res.MFAToken,
		})
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     httpx.SessionCookieName,
		Value:    res.Session.Token,
		Path:     "/",
		Expires:  res.Session.ExpiresAt,
		MaxAge:   int(time.Until(res.Session.ExpiresAt).Seconds()),
		HttpOnly: true,
		Secure:   h.CookieSecure,
		SameSite: http.SameSiteStrictMode,
	})

	user := toUserResponse(res.User)
	expiresAt := res.Session.ExpiresAt
	httpx.WriteJSON(w, http.StatusOK, tellersdk.LoginResponse{
		User:      &user,
		Token:     res.Session.Token,
		ExpiresAt: &expiresAt,
	})
}

func toEnrollmentResponse(e domain.Enrollment) tellersdk.EnrollmentResponse {
	return tellersdk.EnrollmentResponse{
		Secret:     e.Secret,
		OTPAuthURL: e.URI,
		QRCode:     e.QRCode,
	}
}
