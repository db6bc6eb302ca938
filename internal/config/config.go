package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Pipeline PipelineConfig
	Log      LogConfig
}

type AppConfig struct {
	AppName     string
	Environment string
	HTTPPort    string
}

type DatabaseConfig struct {
	DBHost     string
	DBPort     string
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string

	ConnectTimeout        time.Duration
	PoolMaxConns          int32
	PoolMinConns          int32
	PoolMaxConnLifetime   time.Duration
	PoolMaxConnIdleTime   time.Duration
	PoolHealthCheckPeriod time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	TTL      time.Duration
}

type PipelineConfig struct {
	CSVPath       string
	MigrationsDir string
	Schedule      string
}

type LogConfig struct {
	Level string
	JSON  bool
}

const DefaultCSVPath = "/opt/airflow/data/data_jobs.csv"

var errMissingRequiredEnv = errors.New("missing required environment variables")

// Load reads an optional .env file and then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{}

	var missing []string
	req := func(key string) string {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			missing = append(missing, key)
		}
		return v
	}
	opt := func(key, def string) string {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			return def
		}
		return v
	}

	cfg.App = AppConfig{
		AppName:     opt("APP_NAME", "data-jobs-etl"),
		Environment: opt("APP_ENV", "development"),
		HTTPPort:    opt("HTTP_PORT", "8080"),
	}

	cfg.Database = DatabaseConfig{
		DBHost:     req("POSTGRES_HOST"),
		DBPort:     opt("POSTGRES_PORT", "5432"),
		DBName:     req("POSTGRES_DB"),
		DBUser:     req("POSTGRES_USER"),
		DBPassword: os.Getenv("POSTGRES_PASSWORD"),
		DBSSLMode:  opt("POSTGRES_SSL_MODE", "disable"),

		ConnectTimeout:        durationOr(opt("POSTGRES_CONNECT_TIMEOUT", ""), 5*time.Second),
		PoolMaxConns:          int32(intOr(opt("POSTGRES_POOL_MAX_CONNS", ""), 4)),
		PoolMinConns:          int32(intOr(opt("POSTGRES_POOL_MIN_CONNS", ""), 0)),
		PoolMaxConnLifetime:   durationOr(opt("POSTGRES_POOL_MAX_CONN_LIFETIME", ""), 0),
		PoolMaxConnIdleTime:   durationOr(opt("POSTGRES_POOL_MAX_CONN_IDLE_TIME", ""), 0),
		PoolHealthCheckPeriod: durationOr(opt("POSTGRES_POOL_HEALTH_CHECK_PERIOD", ""), 0),
	}

	cfg.Redis = RedisConfig{
		Host:     opt("REDIS_HOST", ""),
		Port:     opt("REDIS_PORT", "6379"),
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       intOr(opt("REDIS_DB", ""), 0),
		TTL:      time.Duration(intOr(opt("REDIS_TTL", ""), 7*24*3600)) * time.Second,
	}

	cfg.Pipeline = PipelineConfig{
		CSVPath:       opt("CSV_PATH", DefaultCSVPath),
		MigrationsDir: opt("MIGRATIONS_DIR", "migrations"),
		Schedule:      opt("ETL_SCHEDULE", "@daily"),
	}

	cfg.Log = LogConfig{
		Level: strings.ToLower(opt("LOG_LEVEL", "info")),
		JSON:  boolOr(opt("LOG_JSON", ""), false),
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("%w: %s", errMissingRequiredEnv, strings.Join(missing, ", "))
	}

	return cfg, nil
}

// ConnString assembles a libpq keyword/value connection string. The password
// keyword is left out when no password is configured.
func (c DatabaseConfig) ConnString() string {
	parts := []string{
		"host=" + quoteConnValue(strings.TrimSpace(c.DBHost)),
		"port=" + quoteConnValue(strings.TrimSpace(c.DBPort)),
		"user=" + quoteConnValue(strings.TrimSpace(c.DBUser)),
	}
	if c.DBPassword != "" {
		parts = append(parts, "password="+quoteConnValue(c.DBPassword))
	}
	parts = append(parts, "dbname="+quoteConnValue(strings.TrimSpace(c.DBName)))
	if mode := strings.TrimSpace(c.DBSSLMode); mode != "" {
		parts = append(parts, "sslmode="+quoteConnValue(mode))
	}
	return strings.Join(parts, " ")
}

// Enabled reports whether a Redis host is configured at all.
func (c RedisConfig) Enabled() bool {
	return strings.TrimSpace(c.Host) != ""
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", strings.TrimSpace(c.Host), strings.TrimSpace(c.Port))
}

func quoteConnValue(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}

func intOr(raw string, def int) int {
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return def
	}
	return v
}

func durationOr(raw string, def time.Duration) time.Duration {
	if raw == "" {
		return def
	}
	v, err := time.ParseDuration(raw)
	if err != nil || v < 0 {
		return def
	}
	return v
}

func boolOr(raw string, def bool) bool {
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return v
}
