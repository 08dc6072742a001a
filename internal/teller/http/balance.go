package http

import (
	"net/http"

	"github.com/aussiebroadwan/teller/internal/teller/domain"
	"github.com/aussiebroadwan/teller/internal/teller/service"
	"github.com/aussiebroadwan/teller/pkg/httpx"
	"github.com/aussiebroadwan/teller/pkg/moneyx"
	"github.com/aussiebroadwan/teller/pkg/slogx"
	"github.com/aussiebroadwan/teller/pkg/tellersdk"
)

// BalanceHandler serves a signed-in user's own accounts. Every route is
// restricted to the session's user.
type BalanceHandler struct {
	LedgerService *service.LedgerService
}

// HandleUpdate handles PUT /api/auth/balance
//
//	@Summary		Adjust a balance
//	@Description	Applies a signed amount to the user's checking (default) or savings account and records a transaction. References are unique per user; a duplicate reference is rejected.
//	@Tags			Balance
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		tellersdk.BalanceRequest	true	"Adjustment"
//	@Success		200		{object}	tellersdk.BalanceResponse	"New balance and transaction"
//	@Failure		400		{object}	tellersdk.ErrorResponse		"Invalid amount, insufficient funds or duplicate reference"
//	@Failure		403		{object}	tellersdk.ErrorResponse		"userId is not the session user"
//	@Failure		404		{object}	tellersdk.ErrorResponse		"Account not found"
//	@Router			/api/auth/balance [put].
func (h *BalanceHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req tellersdk.BalanceRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		tellersdk.ErrInvalidRequest.WithDescription("invalid JSON body").WriteError(w)
		return
	}

	if req.UserID == "" {
		tellersdk.ErrInvalidRequest.WithDescription("userId is required").WriteError(w)
		return
	}
	if req.UserID != httpx.UserIDFromContext(ctx) {
		slogx.FromContext(ctx).Warn("balance update for another user rejected", "target_user_id", req.UserID)
		tellersdk.ErrAccessDenied.WriteError(w)
		return
	}

	cents, err := moneyx.ToCents(req.Amount)
	if err != nil {
		tellersdk.ErrInvalidRequest.WithDescription("amount must have at most 2 decimal places").WriteError(w)
		return
	}

	account, txn, err := h.LedgerService.AdjustBalance(ctx, service.Adjustment{
		UserID:      req.UserID,
		Kind:        domain.AccountKind(req.AccountType),
		Amount:      cents,
		Description: req.Description,
		Reference:   req.Reference,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, tellersdk.BalanceResponse{
		Balance:     moneyx.Format(account.Balance),
		Account:     toAccountResponse(account),
		Transaction: toTransactionResponse(txn),
	})
}

// HandleGet handles GET /api/auth/balance
//
//	@Summary		List balances
//	@Description	Returns the session user's checking and savings accounts.
//	@Tags			Balance
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	tellersdk.BalancesResponse	"Accounts"
//	@Failure		401	{object}	tellersdk.ErrorResponse		"No session token"
//	@Router			/api/auth/balance [get].
func (h *BalanceHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.LedgerService.Balances(r.Context(), httpx.UserIDFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, tellersdk.BalancesResponse{Accounts: toAccountResponses(accounts)})
}

// HandleTransactions handles GET /api/auth/transactions/{userId}
//
//	@Summary		List transactions
//	@Description	Returns the user's transactions, newest first.
//	@Tags			Balance
//	@Security		BearerAuth
//	@Produce		json
//	@Param			userId	path		string							true	"User ID (must be the session user)"
//	@Success		200		{object}	tellersdk.TransactionsResponse	"Transactions"
//	@Failure		403		{object}	tellersdk.ErrorResponse			"userId is not the session user"
//	@Failure		500		{object}	tellersdk.ErrorResponse			"Internal server error"
//	@Router			/api/auth/transactions/{userId} [get].
func (h *BalanceHandler) HandleTransactions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := r.PathValue("userId")
	if userID != httpx.UserIDFromContext(ctx) {
		tellersdk.ErrAccessDenied.WriteError(w)
		return
	}

	txs, err := h.LedgerService.ListTransactions(ctx, userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]tellersdk.TransactionResponse, 0, len(txs))
	for _, t := range txs {
		out = append(out, toTransactionResponse(t))
	}
	httpx.WriteJSON(w, http.StatusOK, tellersdk.TransactionsResponse{Transactions: out})
}
