package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	JWT           JWTConfig
	Tenant        TenantConfig
	Observability ObservabilityConfig
	Security      SecurityConfig
	RateLimit     RateLimitConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host         string
	Port         string
	User         string
	Password     string
	Database     string
	SSLMode      string
	MaxConns     int
	MinConns     int
	ConnLifetime time.Duration
}

// JWTConfig holds token codec configuration. PreviousKeys keeps rotated
// signing keys verifiable until their tokens age out.
type JWTConfig struct {
	Issuer       string
	Secret       string
	PreviousKeys []string
	KeysFromDB   bool
	AccessTTL    time.Duration
	RefreshTTL   time.Duration

	CookieName   string
	CookieDomain string
	CookieSecure bool
}

// TenantConfig holds tenant resolution configuration
type TenantConfig struct {
	HeaderName      string
	PathPrefix      string
	RegistryTimeout time.Duration
	CacheTTL        time.Duration
}

// ObservabilityConfig holds logging and tracing configuration
type ObservabilityConfig struct {
	LogLevel       string
	LogFormat      string
	OTELEnabled    bool
	ServiceName    string
	ServiceVersion string
}

// SecurityConfig holds password hashing configuration
type SecurityConfig struct {
	Argon2Memory      uint32
	Argon2Iterations  uint32
	Argon2Parallelism uint8
	Argon2SaltLength  uint32
	Argon2KeyLength   uint32
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  parseDuration("SERVER_READ_TIMEOUT", "15s"),
			WriteTimeout: parseDuration("SERVER_WRITE_TIMEOUT", "15s"),
			IdleTimeout:  parseDuration("SERVER_IDLE_TIMEOUT", "60s"),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			User:         getEnv("DB_USER", "authgate"),
			Password:     getEnv("DB_PASSWORD", ""),
			Database:     getEnv("DB_NAME", "authgate"),
			SSLMode:      getEnv("DB_SSLMODE", "disable"),
			MaxConns:     parseInt("DB_MAX_CONNS", 25),
			MinConns:     parseInt("DB_MIN_CONNS", 5),
			ConnLifetime: parseDuration("DB_CONN_LIFETIME", "30m"),
		},
		JWT: JWTConfig{
			Issuer:       getEnv("JWT_ISSUER", "authgate"),
			Secret:       getEnv("JWT_SECRET", ""),
			PreviousKeys: parseList("JWT_PREVIOUS_KEYS"),
			KeysFromDB:   parseBool("JWT_KEYS_FROM_DB", false),
			AccessTTL:    parseDuration("JWT_ACCESS_TTL", "15m"),
			RefreshTTL:   parseDuration("JWT_REFRESH_TTL", "720h"),
			CookieName:   getEnv("JWT_COOKIE_NAME", "authgate_token"),
			CookieDomain: getEnv("JWT_COOKIE_DOMAIN", ""),
			CookieSecure: parseBool("JWT_COOKIE_SECURE", false),
		},
		Tenant: TenantConfig{
			HeaderName:      getEnv("TENANT_HEADER", "X-Tenant-ID"),
			PathPrefix:      getEnv("TENANT_PATH_PREFIX", "/t"),
			RegistryTimeout: parseDuration("TENANT_REGISTRY_TIMEOUT", "2s"),
			CacheTTL:        parseDuration("TENANT_CACHE_TTL", "5m"),
		},
		Observability: ObservabilityConfig{
			LogLevel:       getEnv("LOG_LEVEL", "info"),
			LogFormat:      getEnv("LOG_FORMAT", "json"),
			OTELEnabled:    parseBool("OTEL_ENABLED", false),
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "authgate"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "0.1.0"),
		},
		Security: SecurityConfig{
			Argon2Memory:      uint32(parseInt("ARGON2_MEMORY", 65536)),
			Argon2Iterations:  uint32(parseInt("ARGON2_ITERATIONS", 3)),
			Argon2Parallelism: uint8(parseInt("ARGON2_PARALLELISM", 4)),
			Argon2SaltLength:  uint32(parseInt("ARGON2_SALT_LENGTH", 16)),
			Argon2KeyLength:   uint32(parseInt("ARGON2_KEY_LENGTH", 32)),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: float64(parseInt("RATELIMIT_RPS", 10)),
			Burst:             parseInt("RATELIMIT_BURST", 20),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 bytes")
	}
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.Tenant.CacheTTL > 5*time.Minute {
		return fmt.Errorf("TENANT_CACHE_TTL must not exceed 5m")
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func parseBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func parseDuration(key string, defaultValue string) time.Duration {
	value := getEnv(key, defaultValue)
	d, err := time.ParseDuration(value)
	if err != nil {
		d, _ = time.ParseDuration(defaultValue)
	}
	return d
}

func parseList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
