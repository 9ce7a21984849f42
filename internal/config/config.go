package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Supported database drivers.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Database     DatabaseConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Model        ModelConfig
	Notification NotificationConfig
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

// DatabaseConfig holds ticket store connection values.
type DatabaseConfig struct {
	Driver         string
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32

	// ConnectRetries and ConnectRetryDelayMS apply to the sqlite driver.
	ConnectRetries      int
	ConnectRetryDelayMS int
}

// RedisConfig holds Redis connection values for the triage cache.
type RedisConfig struct {
	Addr            string
	Password        string
	DB              int
	KeyPrefix       string
	CacheTTLSeconds int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level   string
	Format  string
	Service string
	Output  string
}

// AuthConfig defines bearer-token parameters. An empty JWTSecret disables auth.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
}

// ModelConfig locates the triage artifact and the training inputs.
type ModelConfig struct {
	Path         string
	TrainingData string
	MaxFeatures  int
	Alpha        float64
	TestSize     float64
	Seed         int64
}

// NotificationConfig holds the optional on-call webhook. An empty
// WebhookURL leaves notifications log-only.
type NotificationConfig struct {
	WebhookURL            string
	WebhookTimeoutSeconds int
}

// WebhookTimeout bounds a single webhook delivery.
func (n NotificationConfig) WebhookTimeout() time.Duration {
	if n.WebhookTimeoutSeconds <= 0 {
		return 3 * time.Second
	}
	return time.Duration(n.WebhookTimeoutSeconds) * time.Second
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	alpha, err := strconv.ParseFloat(getEnv("MODEL_ALPHA", "1.0"), 64)
	if err != nil || alpha <= 0 {
		return nil, fmt.Errorf("invalid MODEL_ALPHA %q", os.Getenv("MODEL_ALPHA"))
	}
	testSize, err := strconv.ParseFloat(getEnv("TRAINING_TEST_SIZE", "0.2"), 64)
	if err != nil || testSize <= 0 || testSize >= 1 {
		return nil, fmt.Errorf("invalid TRAINING_TEST_SIZE %q", os.Getenv("TRAINING_TEST_SIZE"))
	}

	driver := strings.ToLower(getEnv("DB_DRIVER", DriverSQLite))
	if driver != DriverSQLite && driver != DriverPostgres {
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}
	dsn := os.Getenv("DB_DSN")
	if dsn == "" && driver == DriverSQLite {
		dsn = "./tickets.db"
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "ticket-triage"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8000"),
			Version:               getEnv("APP_VERSION", "1.0.0"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Database: DatabaseConfig{
			Driver:         driver,
			DSN:            dsn,
			MaxConns:       int32(getEnvAsInt("DB_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("DB_MIN_CONNS", 1)),
			RunMigrations:  getEnvAsBool("DB_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("DB_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("DB_CONN_MAX_LIFE_SECONDS", 300)),

			ConnectRetries:      getEnvAsInt("DB_CONNECT_RETRIES", 3),
			ConnectRetryDelayMS: getEnvAsInt("DB_CONNECT_RETRY_DELAY_MS", 200),
		},
		Redis: RedisConfig{
			Addr:            os.Getenv("REDIS_ADDR"),
			Password:        os.Getenv("REDIS_PASSWORD"),
			DB:              redisDB,
			KeyPrefix:       getEnv("REDIS_KEY_PREFIX", "triage:"),
			CacheTTLSeconds: getEnvAsInt("TRIAGE_CACHE_TTL_SECONDS", 600),
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: strings.ToLower(getEnv("LOG_FORMAT", "json")),
			Output: getEnv("LOG_OUTPUT", "stdout"),
		},
		Auth: AuthConfig{
			JWTSecret:             os.Getenv("AUTH_JWT_SECRET"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
		},
		Model: ModelConfig{
			Path:         getEnv("MODEL_PATH", "models/triage_model.bin"),
			TrainingData: getEnv("TRAINING_DATA_PATH", "sample_data/synthetic_tickets.csv"),
			MaxFeatures:  getEnvAsInt("MODEL_MAX_FEATURES", 1000),
			Alpha:        alpha,
			TestSize:     testSize,
			Seed:         int64(getEnvAsInt("TRAINING_SEED", 42)),
		},
		Notification: NotificationConfig{
			WebhookURL:            strings.TrimSpace(os.Getenv("NOTIFY_WEBHOOK_URL")),
			WebhookTimeoutSeconds: getEnvAsInt("NOTIFY_WEBHOOK_TIMEOUT_SECONDS", 3),
		},
	}

	cfg.Logger.Service = cfg.App.Name
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

// ConnectRetryDelay is the base backoff between sqlite open attempts.
func (d DatabaseConfig) ConnectRetryDelay() time.Duration {
	return time.Duration(d.ConnectRetryDelayMS) * time.Millisecond
}

// CacheTTL returns how long triage results stay cached.
func (r RedisConfig) CacheTTL() time.Duration {
	if r.CacheTTLSeconds <= 0 {
		return 0
	}
	return time.Duration(r.CacheTTLSeconds) * time.Second
}

// AuthEnabled reports whether mutating routes require a bearer token.
func (a AuthConfig) AuthEnabled() bool {
	return a.JWTSecret != ""
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
