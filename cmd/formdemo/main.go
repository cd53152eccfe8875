// Command formdemo serves a sign-up form validated live on the server.
//
// Configuration comes from the environment and an optional .env file; see
// appConfig for the variables. With REDIS_ENABLED the username and country
// lookups query redis sets, otherwise they use built-in demo data.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrymomot/formguard/pkg/config"
	"github.com/dmitrymomot/formguard/pkg/formhttp"
	"github.com/dmitrymomot/formguard/pkg/logger"
	"github.com/dmitrymomot/formguard/pkg/lookup"
	"github.com/dmitrymomot/formguard/pkg/redis"
)

var ErrServe = errors.New("http server failed")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := config.LoadEnv(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("env file not loaded", logger.Error(err))
	}

	var cfg appConfig
	config.MustLoad(&cfg)

	log := logger.New(
		logger.WithConfig(cfg.Log),
		logger.WithContextExtractors(formhttp.RequestIDExtractor()),
	)
	logger.SetAsDefault(log)

	if err := run(ctx, cfg, log); err != nil {
		log.Error("formdemo stopped", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg appConfig, log *slog.Logger) error {
	var (
		sets   lookup.Membership = newMemorySets(seeds)
		health func(context.Context) error
	)
	if cfg.RedisEnabled {
		client, err := redis.Connect(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer client.Close()

		rs := redis.NewSets(client, cfg.Redis.KeyPrefix)
		if cfg.SeedSets {
			for set, members := range seeds {
				if _, err := rs.Add(ctx, set, members...); err != nil {
					return err
				}
			}
		}
		sets = rs
		health = redis.Healthcheck(client, 2*time.Second)
		log.Info("lookups backed by redis", slog.String("prefix", cfg.Redis.KeyPrefix))
	}

	a, err := newApp(ctx, cfg, log, sets)
	if err != nil {
		return err
	}

	svc := formhttp.NewService(cfg.Form, a.newForm,
		formhttp.WithLogger(log),
		formhttp.WithBasePath("/form"),
	)
	defer svc.Close()

	return serve(ctx, cfg.HTTP, a.routes(svc, health), log)
}
