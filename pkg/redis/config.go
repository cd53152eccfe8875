package redis

import "time"

// Config describes the connection used for lookup sets.
type Config struct {
	// ConnectionURL is in the form "redis://:password@localhost:6379/0".
	ConnectionURL string `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
	// RetryAttempts is the number of connection attempts before giving up.
	RetryAttempts int `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`
	// RetryInterval is the pause between attempts, e.g. "5s".
	RetryInterval time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"5s"`
	// ConnectTimeout bounds the whole connection phase, e.g. "30s".
	ConnectTimeout time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"30s"`
	// KeyPrefix namespaces every set key.
	KeyPrefix string `env:"REDIS_KEY_PREFIX" envDefault:"formguard:"`
}
