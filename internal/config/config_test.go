package config

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("POSTGRES_HOST", "postgres")
	t.Setenv("POSTGRES_DB", "data_jobs_db")
	t.Setenv("POSTGRES_USER", "ldj_user")
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("POSTGRES_HOST", "")
	t.Setenv("POSTGRES_DB", "")
	t.Setenv("POSTGRES_USER", "u")

	_, err := Load()
	require.Error(t, err)
	assert.True(t, errors.Is(err, errMissingRequiredEnv))
	assert.Contains(t, err.Error(), "POSTGRES_HOST")
	assert.Contains(t, err.Error(), "POSTGRES_DB")
	assert.NotContains(t, err.Error(), "POSTGRES_USER")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)
	t.Setenv("POSTGRES_PORT", "")
	t.Setenv("CSV_PATH", "")
	t.Setenv("REDIS_HOST", "")
	t.Setenv("LOG_JSON", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "5432", cfg.Database.DBPort)
	assert.Equal(t, "disable", cfg.Database.DBSSLMode)
	assert.Equal(t, DefaultCSVPath, cfg.Pipeline.CSVPath)
	assert.Equal(t, "@daily", cfg.Pipeline.Schedule)
	assert.Equal(t, 5*time.Second, cfg.Database.ConnectTimeout)
	assert.False(t, cfg.Redis.Enabled())
	assert.False(t, cfg.Log.JSON)
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("CSV_PATH", " /data/jobs.csv ")
	t.Setenv("REDIS_HOST", "redis")
	t.Setenv("REDIS_TTL", "60")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("LOG_JSON", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/data/jobs.csv", cfg.Pipeline.CSVPath)
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, "redis:6379", cfg.Redis.Addr())
	assert.Equal(t, time.Minute, cfg.Redis.TTL)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Log.JSON)
}

func TestDatabaseConfig_ConnString(t *testing.T) {
	c := DatabaseConfig{DBHost: "postgres", DBPort: "5432", DBName: "data_jobs_db", DBUser: "ldj_user", DBSSLMode: "disable"}
	assert.Equal(t, "host=postgres port=5432 user=ldj_user dbname=data_jobs_db sslmode=disable", c.ConnString())

	c.DBPassword = "it's secret"
	assert.Equal(t, `host=postgres port=5432 user=ldj_user password='it\'s secret' dbname=data_jobs_db sslmode=disable`, c.ConnString())
}
