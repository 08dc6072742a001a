package http

import (
	"github.com/aussiebroadwan/teller/internal/teller/domain"
	"github.com/aussiebroadwan/teller/pkg/moneyx"
	"github.com/aussiebroadwan/teller/pkg/tellersdk"
)

// toUserResponse is the only way a user leaves the service. The password
// hash, MFA secret and SSN are never copied.
func toUserResponse(u domain.User) tellersdk.UserResponse {
	return tellersdk.UserResponse{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		Profile:     tellersdk.Profile(u.Profile),
		Approved:    u.Approved(),
		MFAEnabled:  u.MFAEnabled(),
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
}

func toAccountResponse(a domain.Account) tellersdk.AccountResponse {
	return tellersdk.AccountResponse{
		Number:      a.Number,
		AccountType: string(a.Kind),
		Balance:     moneyx.Format(a.Balance),
	}
}

func toAccountResponses(accounts []domain.Account) []tellersdk.AccountResponse {
	out := make([]tellersdk.AccountResponse, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, toAccountResponse(a))
	}
	return out
}

func toTransactionResponse(t domain.Transaction) tellersdk.TransactionResponse {
	return tellersdk.TransactionResponse{
		ID:           t.ID,
		AccountType:  string(t.AccountKind),
		Amount:       moneyx.Format(t.Amount),
		BalanceAfter: moneyx.Format(t.BalanceAfter),
		Description:  t.Description,
		Reference:    t.Reference,
		CreatedAt:    t.CreatedAt,
	}
}
