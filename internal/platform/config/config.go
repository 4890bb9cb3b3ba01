// Package config loads service configuration from the environment so main
// stays lean. Defaults suit local development; production overrides via env.
package config

import (
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	HTTP     HTTP
	Postgres Postgres
	Redis    Redis
	MinIO    MinIO
	JWT      JWT
}

type HTTP struct {
	Addr            string        `env:"MOBYWATEL_ADDR" env-default:":8080"`
	ShutdownTimeout time.Duration `env:"MOBYWATEL_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// Postgres is optional: with an empty DSN the service runs on in-memory
// stores, which is how the test and demo profiles operate.
type Postgres struct {
	DSN string `env:"MOBYWATEL_POSTGRES_DSN" env-default:""`
}

// Redis backs the token revocation list. Empty URL disables revocation
// checks (tokens then expire naturally).
type Redis struct {
	URL string `env:"MOBYWATEL_REDIS_URL" env-default:""`
}

// MinIO backs the photo blob store. Empty endpoint selects the in-memory
// blob store.
type MinIO struct {
	Endpoint  string `env:"MOBYWATEL_MINIO_ENDPOINT" env-default:""`
	AccessKey string `env:"MOBYWATEL_MINIO_ACCESS_KEY" env-default:""`
	SecretKey string `env:"MOBYWATEL_MINIO_SECRET_KEY" env-default:""`
	Bucket    string `env:"MOBYWATEL_MINIO_BUCKET" env-default:"mobywatel-photos"`
	UseSSL    bool   `env:"MOBYWATEL_MINIO_SSL" env-default:"false"`
}

type JWT struct {
	SigningKey string        `env:"MOBYWATEL_JWT_SIGNING_KEY" env-default:"dev-secret-key-change-in-production"`
	Issuer     string        `env:"MOBYWATEL_JWT_ISSUER" env-default:"mobywatel"`
	TTL        time.Duration `env:"MOBYWATEL_JWT_TTL" env-default:"1h"`
}

// Load reads configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
