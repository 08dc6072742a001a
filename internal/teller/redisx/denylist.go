package redisx

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const denylistPrefix = "teller:revoked:"

// Denylist stores revoked session ids until the session would have expired.
type Denylist struct {
	Client *redis.Client
}

func (d *Denylist) Revoke(ctx context.Context, sessionID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := d.Client.Set(ctx, denylistPrefix+sessionID, "1", ttl).Err(); err != nil {
		return fmt.Errorf("redisx: revoke: %w", err)
	}
	return nil
}

func (d *Denylist) IsRevoked(ctx context.Context, sessionID string) (bool, error) {
	err := d.Client.Get(ctx, denylistPrefix+sessionID).Err()
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, redis.Nil):
		return false, nil
	default:
		return false, fmt.Errorf("redisx: lookup revocation: %w", err)
	}
}

// Connect creates a client for addr and checks it with PING.
func Connect(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redisx: ping %s: %w", addr, err)
	}
	return client, nil
}
