package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Mongo   MongoConfig
	Redis   RedisConfig
	SMTP    SMTPConfig
	OTP     OTPConfig
	Session SessionConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=storefront_auth"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

type SMTPConfig struct {
	Host string `env:"SMTP_HOST"`
	Port int    `env:"SMTP_PORT, default=587"`
	User string `env:"SMTP_USER"`
	Pass string `env:"SMTP_PASS"`
	From string `env:"SMTP_FROM, default=Storefront <no-reply@storefront.local>"`
	// Workers sizes the delivery worker pool.
	Workers int `env:"SMTP_WORKERS, default=4"`
}

type OTPConfig struct {
	TTL       time.Duration `env:"OTP_TTL,        default=10m"`
	Cooldown  time.Duration `env:"OTP_COOLDOWN,   default=60s"`
	MarkerTTL time.Duration `env:"OTP_MARKER_TTL, default=15m"`
}

type SessionConfig struct {
	TTL        time.Duration `env:"SESSION_TTL, default=24h"`
	BcryptCost int           `env:"BCRYPT_COST, default=10"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}

// Development reports whether the service runs without TLS-only assumptions;
// session cookies drop the Secure flag in this mode.
func (c *Config) Development() bool {
	return c.Env == "development"
}
