package domain

import "time"

// Transaction records one balance mutation. It is never updated or deleted.
type Transaction struct {
	ID           string
	UserID       string
	AccountKind  AccountKind
	Amount       int64 // signed delta in minor units
	BalanceAfter int64
	Description  string
	Reference    string // unique, client idempotency key or generated uuid
	CreatedAt    time.Time
}
