package domain

import "time"

// NotificationKind identifies an out-of-band message to a user.
type NotificationKind string

const (
	NotifyResetRequested  NotificationKind = "password_reset_requested"
	NotifyPasswordChanged NotificationKind = "password_changed"
	NotifySignupPending   NotificationKind = "signup_pending_approval"
)

// Notification is published for delivery by a mailer outside this service.
type Notification struct {
	ID        string           `json:"id"`
	Kind      NotificationKind `json:"kind"`
	UserID    string           `json:"user_id"`
	Username  string           `json:"username"`
	Email     string           `json:"email"`
	Link      string           `json:"link,omitempty"`
	ExpiresAt *time.Time       `json:"expires_at,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}
