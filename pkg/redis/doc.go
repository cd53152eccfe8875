// Package redis provides convenient helpers for connecting to a Redis server
// and keeping the string sets consulted by remote form lookups.
//
// The package wraps the excellent go-redis client and adds:
//
//   - Robust `Connect` which retries the connection using the supplied
//     configuration.
//   - A `Sets` wrapper storing named string sets (taken usernames, known
//     promo codes) under a common key prefix.
//   - Health-check helpers to integrate Redis into HTTP or GRPC liveness /
//     readiness probes.
//
// Configuration is described by the `Config` struct whose fields can be
// populated from environment variables via github.com/caarlos0/env.
//
// # Usage
//
// Import the package:
//
//	import "github.com/dmitrymomot/formguard/pkg/redis"
//
// Create configuration (most projects rely on env parsing):
//
//	cfg := redis.Config{
//	    ConnectionURL:  "redis://localhost:6379/0",
//	    RetryAttempts:  3,
//	    RetryInterval:  5 * time.Second,
//	    ConnectTimeout: 30 * time.Second,
//	    KeyPrefix:      "formguard:",
//	}
//
// Connect with auto-retry:
//
//	ctx := context.Background()
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//	    // handle error, probably terminate the application
//	}
//	defer client.Close()
//
// Wrap the client with Sets to seed and query lookup sets:
//
//	sets := redis.NewSets(client, cfg.KeyPrefix)
//	if _, err := sets.Add(ctx, "usernames", "admin", "root"); err != nil {
//	    log.Fatal(err)
//	}
//
// Register a health-check in your observability stack:
//
//	checker := redis.Healthcheck(client, 2*time.Second)
//	if err := checker(ctx); err != nil {
//	    // redis is not healthy
//	}
//
// # Errors
//
// The package defines several sentinel errors (e.g. ErrRedisNotReady) that wrap
// the underlying go-redis errors using errors.Join. This makes it easy to
// compare and unwrap.
//
// # See Also
//
//   - https://github.com/redis/go-redis – underlying driver
package redis
