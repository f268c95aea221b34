package appconfig

import (
	"fmt"

	"app/core/profile/adapters/vk"
	"app/modules/bus"
	"app/modules/db/postgres"
	"app/modules/db/redis"
	"app/modules/ratelimit"
	"app/modules/telemetry"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Env string `env:"ENV" envDefault:"dev"`

	// --- core infra ----
	Redis    redis.RedisConfig       `envPrefix:"REDIS_"`
	Postgres postgres.PostgresConfig `envPrefix:"POSTGRES_"`

	// --- transport ----
	Bus       bus.Config       `envPrefix:"BUS_"`
	RateLimit ratelimit.Config `envPrefix:"RATE_LIMIT_"`

	// --- oauth ----
	VK vk.Config `envPrefix:"VK_"`

	// --- ops ----
	OpsHost string `env:"OPS_HOST" envDefault:"0.0.0.0"`
	OpsPort int    `env:"OPS_PORT" envDefault:"8081"`

	// Seed account created at startup when it does not exist yet.
	AdminEmail    string `env:"ADMIN_EMAIL" envDefault:"admin@admin.com"`
	AdminPassword string `env:"ADMIN_PASSWORD" envDefault:"admin"`

	// --- otel ----
	// since it has special naming conventions, we do not use prefix here
	Otel telemetry.Config
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, err
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(c *Config) error {
	if c.Env == "prod" && c.AdminPassword == "admin" {
		return fmt.Errorf("appconfig: default admin password is not allowed in prod")
	}
	return nil
}
