package service

import (
	"context"
	"log/slog"

	"github.com/aussiebroadwan/teller/pkg/slogx"
)

// Throttle limits requests per key, e.g. a fixed window counter in Redis.
type Throttle interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// allow checks every key against t and fails open when t is nil or
// unavailable.
func allow(ctx context.Context, t Throttle, keys ...string) error {
	if t == nil {
		return nil
	}
	for _, key := range keys {
		ok, err := t.Allow(ctx, key)
		if err != nil {
			slogx.FromContext(ctx).Warn("throttle unavailable", slog.String("key", key), slog.Any("err", err))
			return nil
		}
		if !ok {
			return ErrThrottled
		}
	}
	return nil
}
