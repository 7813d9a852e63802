package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the console API.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	RBAC         RBACConfig
	Realtime     RealtimeConfig
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

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	MigrationsDir  string
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr        string
	Password    string
	DB          int
	PoolSize    int
	DialTimeout time.Duration
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	BcryptCost            int
}

// RBACConfig points at an optional permission matrix override.
type RBACConfig struct {
	MatrixFile string
}

// RealtimeConfig tunes server-side polling subscriptions.
type RealtimeConfig struct {
	DefaultInterval         time.Duration
	DashboardInterval       time.Duration
	StatusDwell             time.Duration
	SubscriptionTTL         time.Duration
	ReapInterval            time.Duration
	MaxSubscriptionsPerUser int
	MinInterval             time.Duration
}

// NotificationConfig controls status-change fan-out.
type NotificationConfig struct {
	Channel       string
	HistoryKey    string
	HistoryLength int64
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	realtime := RealtimeConfig{
		DefaultInterval:         getEnvAsDuration("REALTIME_DEFAULT_INTERVAL", 10*time.Second),
		DashboardInterval:       getEnvAsDuration("REALTIME_DASHBOARD_INTERVAL", 5*time.Second),
		StatusDwell:             getEnvAsDuration("REALTIME_STATUS_DWELL", 3*time.Second),
		SubscriptionTTL:         getEnvAsDuration("REALTIME_SUBSCRIPTION_TTL", 2*time.Minute),
		ReapInterval:            getEnvAsDuration("REALTIME_REAP_INTERVAL", 30*time.Second),
		MaxSubscriptionsPerUser: getEnvAsInt("REALTIME_MAX_SUBSCRIPTIONS_PER_USER", 20),
		MinInterval:             getEnvAsDuration("REALTIME_MIN_INTERVAL", time.Second),
	}
	if err := realtime.validate(); err != nil {
		return nil, err
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "fleet-console-api"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			MigrationsDir:  getEnv("POSTGRES_MIGRATIONS_DIR", "migrations"),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:        getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password:    os.Getenv("REDIS_PASSWORD"),
			DB:          redisDB,
			PoolSize:    getEnvAsInt("REDIS_POOL_SIZE", 0),
			DialTimeout: getEnvAsDuration("REDIS_DIAL_TIMEOUT", 3*time.Second),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			BcryptCost:            getEnvAsInt("AUTH_BCRYPT_COST", 12),
		},
		RBAC: RBACConfig{
			MatrixFile: os.Getenv("RBAC_MATRIX_FILE"),
		},
		Realtime: realtime,
		Notification: NotificationConfig{
			Channel:       getEnv("NOTIFY_STATUS_CHANNEL", "fleet:status_changed"),
			HistoryKey:    getEnv("NOTIFY_STATUS_HISTORY_KEY", "fleet:status_history"),
			HistoryLength: int64(getEnvAsInt("NOTIFY_STATUS_HISTORY_LENGTH", 200)),
		},
	}

	return cfg, nil
}

func (r RealtimeConfig) validate() error {
	checks := map[string]time.Duration{
		"REALTIME_DEFAULT_INTERVAL":   r.DefaultInterval,
		"REALTIME_DASHBOARD_INTERVAL": r.DashboardInterval,
		"REALTIME_STATUS_DWELL":       r.StatusDwell,
		"REALTIME_SUBSCRIPTION_TTL":   r.SubscriptionTTL,
		"REALTIME_REAP_INTERVAL":      r.ReapInterval,
		"REALTIME_MIN_INTERVAL":       r.MinInterval,
	}
	for key, d := range checks {
		if d <= 0 {
			return fmt.Errorf("invalid %s: must be positive, got %s", key, d)
		}
	}
	if r.MaxSubscriptionsPerUser <= 0 {
		return fmt.Errorf("invalid REALTIME_MAX_SUBSCRIPTIONS_PER_USER: must be positive, got %d", r.MaxSubscriptionsPerUser)
	}
	return nil
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

// getEnvAsDuration accepts Go duration strings ("5s") or a bare number
// of milliseconds ("5000").
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	if ms, err := strconv.Atoi(val); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	parsed, err := time.ParseDuration(val)
	if err != nil {
		return fallback
	}
	return parsed
}
