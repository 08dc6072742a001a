// Package notify publishes user notifications (reset links, password change
// confirmations) for delivery outside teller.
package notify

import (
	"context"
	"log/slog"

	"github.com/aussiebroadwan/teller/internal/teller/domain"
	"github.com/aussiebroadwan/teller/pkg/slogx"
)

// LogNotifier writes notifications to the request logger. Used when no
// broker is configured; the link is logged so a local developer can follow it.
type LogNotifier struct{}

func (LogNotifier) Notify(ctx context.Context, n domain.Notification) error {
	slogx.FromContext(ctx).Info("notification",
		slog.String("kind", string(n.Kind)),
		slog.String("user_id", n.UserID),
		slog.String("email", n.Email),
		slog.String("link", n.Link),
	)
	return nil
}
