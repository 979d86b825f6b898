package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	StoreDriverMemory   = "memory"
	StoreDriverPinata   = "pinata"
	StoreDriverPostgres = "postgres"
)

type Config struct {
	HTTPAddr string
	LogLevel string

	StoreDriver       string
	StoreTimeout      time.Duration
	FetchRetries      uint64
	FetchConcurrency  int
	PinataAPIURL      string
	PinataGatewayURL  string
	PinataJWT         string
	PinataGatewayAuth string
	DatabaseURL       string // postgres driver only

	ProposalsFile string // empty: built-in catalog
	JWTSecret     string
	CookieDomain  string
	AllowReissue  bool
}

func getenv(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func getenvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v == "true" || v == "1" || v == "yes" || v == "on"
}

func getenvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

// postgresURL prefers DATABASE_URL and falls back to the POSTGRES_* variables
// used by the migrations command.
func postgresURL() string {
	if dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL")); dbURL != "" {
		return dbURL
	}
	host := os.Getenv("POSTGRES_HOST")
	if host == "" {
		return ""
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(os.Getenv("POSTGRES_USER"), os.Getenv("POSTGRES_PASSWORD")),
		Host:     host + ":" + getenv("POSTGRES_PORT", "5432"),
		Path:     "/" + os.Getenv("POSTGRES_DB"),
		RawQuery: "sslmode=" + getenv("POSTGRES_SSLMODE", "disable"),
	}
	return u.String()
}

func Load() (Config, error) {
	cfg := Config{
		HTTPAddr:          getenv("HTTP_ADDR", "0.0.0.0:8080"),
		LogLevel:          getenv("LOG_LEVEL", "info"),
		StoreDriver:       strings.ToLower(getenv("STORE_DRIVER", StoreDriverMemory)),
		PinataAPIURL:      getenv("PINATA_API_URL", "https://api.pinata.cloud"),
		PinataGatewayURL:  getenv("PINATA_GATEWAY_URL", "https://gateway.pinata.cloud"),
		PinataJWT:         os.Getenv("PINATA_JWT"),
		PinataGatewayAuth: os.Getenv("PINATA_GATEWAY_TOKEN"),
		DatabaseURL:       postgresURL(),
		ProposalsFile:     os.Getenv("PROPOSALS_FILE"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		CookieDomain:      os.Getenv("COOKIE_DOMAIN"),
		AllowReissue:      getenvBool("ALLOW_REISSUE", false),
	}

	var err error
	if cfg.StoreTimeout, err = getenvDuration("STORE_TIMEOUT", 15*time.Second); err != nil {
		return Config{}, err
	}
	retries, err := getenvInt("STORE_FETCH_RETRIES", 5)
	if err != nil {
		return Config{}, err
	}
	if retries < 0 {
		return Config{}, fmt.Errorf("STORE_FETCH_RETRIES must not be negative")
	}
	cfg.FetchRetries = uint64(retries)
	if cfg.FetchConcurrency, err = getenvInt("FETCH_CONCURRENCY", 8); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.StoreDriver {
	case StoreDriverMemory:
	case StoreDriverPinata:
		if c.PinataJWT == "" {
			return fmt.Errorf("PINATA_JWT is required for the pinata store")
		}
	case StoreDriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL or POSTGRES_HOST is required for the postgres store")
		}
	default:
		return fmt.Errorf("unsupported STORE_DRIVER: %s", c.StoreDriver)
	}
	if c.FetchConcurrency < 1 {
		return fmt.Errorf("FETCH_CONCURRENCY must be positive")
	}
	return nil
}

func (c Config) String() string {
	return fmt.Sprintf("addr=%s store=%s", c.HTTPAddr, c.StoreDriver)
}

// DebugString returns a human-friendly configuration string with masked secrets.
func (c Config) DebugString() string {
	return fmt.Sprintf(
		"addr=%s log=%s store=%s timeout=%s retries=%d concurrency=%d pinata_api=%s pinata_gateway=%s pinata_jwt=%s dsn=%s proposals=%s jwt_secret=%s reissue=%t",
		c.HTTPAddr,
		c.LogLevel,
		c.StoreDriver,
		c.StoreTimeout,
		c.FetchRetries,
		c.FetchConcurrency,
		c.PinataAPIURL,
		c.PinataGatewayURL,
		maskSecret(c.PinataJWT),
		maskDSN(c.DatabaseURL),
		c.ProposalsFile,
		maskSecret(c.JWTSecret),
		c.AllowReissue,
	)
}

func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	return "***"
}

func maskDSN(dsn string) string {
	if u, err := url.Parse(dsn); err == nil && u.Scheme != "" {
		if u.User != nil {
			u.User = url.User(u.User.Username())
		}
		return u.String()
	}
	// key-value DSN
	parts := strings.Fields(dsn)
	for i, p := range parts {
		if strings.HasPrefix(strings.ToLower(p), "password=") {
			parts[i] = "password=***"
		}
	}
	return strings.Join(parts, " ")
}
