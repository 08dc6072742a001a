package http

import (
	"crypto/subtle"
	"net/http"

	"github.com/aussiebroadwan/teller/internal/teller/service"
	"github.com/aussiebroadwan/teller/pkg/slogx"
	"github.com/aussiebroadwan/teller/pkg/tellersdk"
)

// AdminTokenHeader carries the operator token.
const AdminTokenHeader = "X-Admin-Token"

type AdminHandler struct {
	UserService *service.UserService
	Token       string
}

// HandleApprove handles POST /api/admin/users/{id}/approve
//
//	@Summary		Approve a user
//	@Description	Lets a user awaiting approval log in. Approving twice is a no-op.
//	@Tags			Admin
//	@Security		AdminToken
//	@Param			id	path	string	true	"User ID"
//	@Success		204	"Approved"
//	@Failure		401	{object}	tellersdk.ErrorResponse	"Missing or wrong admin token"
//	@Failure		404	{object}	tellersdk.ErrorResponse	"User not found"
//	@Router			/api/admin/users/{id}/approve [post].
func (h *AdminHandler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if !h.authorized(r) {
		tellersdk.ErrUnauthorized.WriteError(w)
		return
	}

	userID := r.PathValue("id")
	if err := h.UserService.Approve(ctx, userID); err != nil {
		writeServiceError(w, r, err)
		return
	}

	slogx.FromContext(ctx).Info("user approved", "user_id", userID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) authorized(r *http.Request) bool {
	if h.Token == "" {
		return false
	}
	got := r.Header.Get(AdminTokenHeader)
	return subtle.ConstantTimeCompare([]byte(got), []byte(h.Token)) == 1
}
