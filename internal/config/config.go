package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	ServiceName string
	ServerAddr  string
	Production  bool
	LogLevel    string

	DatabaseURL string

	JWTSecret       []byte
	AccessTokenTTL  time.Duration
	ServiceTokenTTL time.Duration
	RefreshTokenTTL time.Duration

	// PermissionsFromClaims controls whether authorization trusts the
	// permission list embedded in the access token or re-resolves it from
	// the account row on every request. Embedded claims are cheaper but a
	// permission change only takes effect on the next token issuance.
	PermissionsFromClaims bool

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	BlacklistTimeout    time.Duration
	BlacklistDefaultTTL time.Duration
	BlacklistSweepEvery time.Duration

	KafkaBrokers []string
	KafkaTopic   string

	BcryptCost int
}

func Load() Config {
	return Config{
		ServiceName: EnvDefault("SERVICE_NAME", "auth"),
		ServerAddr:  EnvDefault("SERVER_ADDR", ":8081"),
		Production:  EnvBoolDefault("PRODUCTION", false),
		LogLevel:    EnvDefault("LOG_LEVEL", "info"),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		JWTSecret:       []byte(os.Getenv("JWT_SECRET")),
		AccessTokenTTL:  EnvDurationDefault("ACCESS_TOKEN_TTL", 2*time.Hour),
		ServiceTokenTTL: EnvDurationDefault("SERVICE_TOKEN_TTL", time.Hour),
		RefreshTokenTTL: EnvDurationDefault("REFRESH_TOKEN_TTL", 7*24*time.Hour),

		PermissionsFromClaims: EnvBoolDefault("PERMISSIONS_FROM_CLAIMS", true),

		RedisAddr:     EnvDefault("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       EnvIntDefault("REDIS_DB", 0),

		BlacklistTimeout:    EnvDurationDefault("BLACKLIST_TIMEOUT", 2*time.Second),
		BlacklistDefaultTTL: EnvDurationDefault("BLACKLIST_DEFAULT_TTL", 24*time.Hour),
		BlacklistSweepEvery: EnvDurationDefault("BLACKLIST_SWEEP_EVERY", time.Minute),

		KafkaBrokers: CSV(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:   EnvDefault("KAFKA_AUTH_TOPIC", "auth.events"),

		BcryptCost: EnvIntDefault("BCRYPT_COST", 10),
	}
}

// Validate fails fast on settings the service cannot run without.
func (c Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("missing required env %s", "DATABASE_URL")
	}
	if len(c.JWTSecret) == 0 {
		return fmt.Errorf("missing required env %s", "JWT_SECRET")
	}
	return nil
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func EnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func EnvBoolDefault(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func EnvDurationDefault(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
