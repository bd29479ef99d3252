package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/rtcstack/rtc-token-service/internal/domain"
)

// Codec modes select where the token builder is linked from.
const (
	CodecModeBuiltin = "builtin"
	CodecModePlugin  = "plugin"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App         AppConfig
	Credentials domain.Credentials
	Codec       CodecConfig
	Postgres    PostgresConfig
	Redis       RedisConfig
	Logger      LoggerConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// CodecConfig selects the token builder implementation. It is validated when the codec is
// linked so command line overrides apply first.
type CodecConfig struct {
	Mode       string
	PluginPath string
	Issuer     string
}

// PostgresConfig holds DB connection values for the issuance audit log.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values used by the rate limiter.
type RedisConfig struct {
	Addr               string
	Password           string
	DB                 int
	RateLimitPerMinute int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// Load reads configuration from environment variables, applying defaults where possible.
// Missing RTC credentials are not an error here; requests report them instead.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	codec := CodecConfig{
		Mode:       strings.ToLower(getEnv("TOKEN_CODEC", CodecModeBuiltin)),
		PluginPath: os.Getenv("TOKEN_CODEC_PLUGIN"),
		Issuer:     getEnv("TOKEN_ISSUER", "rtc-token-service"),
	}
	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "rtc-token-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 10),
		},
		Credentials: domain.Credentials{
			AppID:          os.Getenv("AGORA_APP_ID"),
			AppCertificate: os.Getenv("AGORA_APP_CERTIFICATE"),
		},
		Codec: codec,
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 4)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 0)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:               os.Getenv("REDIS_ADDR"),
			Password:           os.Getenv("REDIS_PASSWORD"),
			DB:                 redisDB,
			RateLimitPerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 0),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// RateLimitEnabled reports whether token requests are throttled through redis.
func (r RedisConfig) RateLimitEnabled() bool {
	return r.Addr != "" && r.RateLimitPerMinute > 0
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
