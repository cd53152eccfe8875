package main

import (
	"time"

	"github.com/dmitrymomot/formguard/pkg/formhttp"
	"github.com/dmitrymomot/formguard/pkg/logger"
	"github.com/dmitrymomot/formguard/pkg/redis"
	"github.com/dmitrymomot/formguard/pkg/validator"
)

type appConfig struct {
	Log logger.Config

	// DefinitionPath replaces the embedded form definition when set.
	DefinitionPath string `env:"FORM_DEFINITION"`
	// PagePath replaces the embedded page when set.
	PagePath string `env:"FORM_PAGE"`

	RedisEnabled bool `env:"REDIS_ENABLED" envDefault:"false"`
	// SeedSets adds the demo members to the lookup sets on startup.
	SeedSets bool `env:"REDIS_SEED" envDefault:"true"`

	HTTP  httpConfig
	Redis redis.Config
	Form  formhttp.Config
	// Defaults applies to anything the definition leaves unset.
	Defaults validator.Config
}

type httpConfig struct {
	Addr            string        `env:"HTTP_ADDR" envDefault:":8080"`
	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"10s"`
	IdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"60s"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"5s"`
}
