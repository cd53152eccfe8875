package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Pinger is the part of a client the health check needs.
type Pinger interface {
	Ping(ctx context.Context) *redis.StatusCmd
}

// Healthcheck returns a probe that pings the lookup backend. A timeout of
// zero leaves the deadline to the caller's context.
func Healthcheck(client Pinger, timeout time.Duration) func(context.Context) error {
	return func(ctx context.Context) error {
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		if err := client.Ping(ctx).Err(); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		return nil
	}
}
