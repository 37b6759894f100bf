package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration values.
type Config struct {
	DatabaseDSN string `envconfig:"MEDWARE_DB_DSN" default:"medicine_warehouse.db"`
	HTTPPort    string `envconfig:"MEDWARE_HTTP_PORT" default:"8080"`
	Secret      string `envconfig:"MEDWARE_SECRET" default:"dev_secret"`
	LogLevel    string `envconfig:"MEDWARE_LOG_LEVEL" default:"info"`

	SeedCatalogPath string `envconfig:"MEDWARE_SEED_CATALOG" default:""`

	Auth   AuthConfig
	Alerts AlertConfig
}

// AuthConfig carries the authentication policy: hashing cost, the failure
// threshold and the lockout window applied once it is reached.
type AuthConfig struct {
	PBKDF2Iterations  int           `envconfig:"MEDWARE_AUTH_PBKDF2_ITERATIONS" default:"100000"`
	MaxFailedAttempts int64         `envconfig:"MEDWARE_AUTH_MAX_FAILED_ATTEMPTS" default:"5"`
	LockoutDuration   time.Duration `envconfig:"MEDWARE_AUTH_LOCKOUT_DURATION" default:"15m"`
	TokenTTL          time.Duration `envconfig:"MEDWARE_AUTH_TOKEN_TTL" default:"24h"`
}

type AlertConfig struct {
	ExpiryWarningDays int    `envconfig:"MEDWARE_ALERT_EXPIRY_WARNING_DAYS" default:"30"`
	SweepSchedule     string `envconfig:"MEDWARE_ALERT_SWEEP_SCHEDULE" default:"0 6 * * *"`
}

// Load reads configuration from environment variables with defaults that
// mirror a local single-site deployment.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}
