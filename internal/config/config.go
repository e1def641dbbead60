package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Config captures runtime configuration values used by the API and the sweep binary.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// DatabaseURL is the Postgres DSN used by database/sql.
	DatabaseURL string

	// JWTSecret is the HS256 key used to verify admin bearer tokens.
	JWTSecret string

	// UserServiceURL is the base URL of the user directory, e.g. "http://users:8081/api/users".
	UserServiceURL string

	// UserServiceTimeout bounds every call to the user directory.
	UserServiceTimeout time.Duration

	// RedemptionBasePrice is the reference subscription price discounts are computed against.
	RedemptionBasePrice decimal.Decimal

	// ExpiryBatchSize is the number of redemptions expired per statement.
	ExpiryBatchSize int

	// TierSeedFile optionally points at a YAML file replacing the built-in tier defaults.
	TierSeedFile string
}

const (
	defaultPort                = "8080"
	defaultUserServiceURL      = "http://localhost:8081/api/users"
	defaultUserServiceTimeout  = 5 * time.Second
	defaultRedemptionBasePrice = "2500"
	defaultExpiryBatchSize     = 500

	envPort                = "APP_PORT"
	envDatabaseURL         = "DATABASE_URL"
	envJWTSecret           = "JWT_SECRET"
	envUserServiceURL      = "USER_SERVICE_URL"
	envUserServiceTimeout  = "USER_SERVICE_TIMEOUT"
	envRedemptionBasePrice = "REDEMPTION_BASE_PRICE"
	envExpiryBatchSize     = "EXPIRY_BATCH_SIZE"
	envTierSeedFile        = "POINTS_TIER_SEED_FILE"
)

// Load reads the API configuration from environment variables, applies defaults, and
// returns a Config structure. Required values return an error when missing.
func Load() (Config, error) {
	return load(true)
}

// LoadSweep reads the configuration of the expiry sweep, which verifies no tokens
// and so does not need JWT_SECRET.
func LoadSweep() (Config, error) {
	return load(false)
}

func load(requireJWTSecret bool) (Config, error) {
	cfg := Config{
		Port:           firstNonEmpty(os.Getenv(envPort), defaultPort),
		DatabaseURL:    os.Getenv(envDatabaseURL),
		JWTSecret:      os.Getenv(envJWTSecret),
		UserServiceURL: firstNonEmpty(os.Getenv(envUserServiceURL), defaultUserServiceURL),
		TierSeedFile:   os.Getenv(envTierSeedFile),
	}

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("%s is required", envDatabaseURL)
	}
	if requireJWTSecret && cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("%s is required", envJWTSecret)
	}

	if _, err := url.ParseRequestURI(cfg.UserServiceURL); err != nil {
		return Config{}, fmt.Errorf("invalid %s: %w", envUserServiceURL, err)
	}

	timeout, err := durationOrDefault(envUserServiceTimeout, defaultUserServiceTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.UserServiceTimeout = timeout

	price, err := decimal.NewFromString(firstNonEmpty(os.Getenv(envRedemptionBasePrice), defaultRedemptionBasePrice))
	if err != nil {
		return Config{}, fmt.Errorf("invalid %s: %w", envRedemptionBasePrice, err)
	}
	if price.IsNegative() {
		return Config{}, fmt.Errorf("%s must not be negative", envRedemptionBasePrice)
	}
	cfg.RedemptionBasePrice = price

	cfg.ExpiryBatchSize = defaultExpiryBatchSize
	if raw := os.Getenv(envExpiryBatchSize); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("%s must be a positive integer", envExpiryBatchSize)
		}
		cfg.ExpiryBatchSize = n
	}

	return cfg, nil
}

// Addr returns the listen address for http.Server.
func (c Config) Addr() string {
	return ":" + c.Port
}

func durationOrDefault(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive", key)
	}
	return d, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
