package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/aussiebroadwan/teller/internal/teller/domain"
	"github.com/aussiebroadwan/teller/pkg/slogx"
	"github.com/streadway/amqp"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	t.Parallel()

	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	expires := created.Add(time.Hour)
	msg, err := encode(domain.Notification{
		ID:        "01HXYZ",
		Kind:      domain.NotifyResetRequested,
		UserID:    "u1",
		Email:     "alice@x.com",
		Link:      "http://localhost:3000/reset-password/abc",
		ExpiresAt: &expires,
		CreatedAt: created,
	})
	require.NoError(t, err)
	require.Equal(t, "application/json", msg.ContentType)
	require.Equal(t, amqp.Persistent, msg.DeliveryMode)
	require.Equal(t, "01HXYZ", msg.MessageId)
	require.Equal(t, string(domain.NotifyResetRequested), msg.Type)

	var body map[string]any
	require.NoError(t, json.Unmarshal(msg.Body, &body))
	require.Equal(t, "password_reset_requested", body["kind"])
	require.Equal(t, "http://localhost:3000/reset-password/abc", body["link"])
	require.Equal(t, "2024-01-02T04:04:05Z", body["expires_at"])
}

func TestLogNotifier(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slogx.New(slogx.Config{Service: "teller", Format: "json", Level: "info", Output: &buf})
	ctx := slogx.WithContext(context.Background(), logger)

	require.NoError(t, LogNotifier{}.Notify(ctx, domain.Notification{
		Kind:   domain.NotifyPasswordChanged,
		UserID: "u1",
	}))
	require.Contains(t, buf.String(), `"kind":"password_changed"`)
	require.Contains(t, buf.String(), `"user_id":"u1"`)
}
