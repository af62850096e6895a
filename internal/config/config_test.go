package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	os.Unsetenv("HTTP_LISTEN_ADDR")
	os.Unsetenv("LOG_LEVEL")
	os.Unsetenv("S3_REGION")
	os.Unsetenv("PG_DUMP_PATH")
	os.Unsetenv("PSQL_PATH")
	os.Unsetenv("SWEEP_INTERVAL")

	cfg, err := Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, ":8090", cfg.HTTPListenAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "us-east-1", cfg.S3Region)
	assert.Equal(t, "pg_dump", cfg.PGDumpPath)
	assert.Equal(t, "psql", cfg.PSQLPath)
	assert.Equal(t, time.Hour, cfg.SweepInterval)
}

func TestLoad_AllEnvVars(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/clinic")
	t.Setenv("HTTP_LISTEN_ADDR", ":7071")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("S3_ENDPOINT", "http://localhost:9000")
	t.Setenv("S3_BUCKET", "clinic-backups")
	t.Setenv("S3_ACCESS_KEY", "ak")
	t.Setenv("S3_SECRET_KEY", "sk")
	t.Setenv("SWEEP_INTERVAL", "30m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres://localhost:5432/clinic", cfg.DatabaseURL)
	assert.Equal(t, ":7071", cfg.HTTPListenAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "http://localhost:9000", cfg.S3Endpoint)
	assert.Equal(t, "clinic-backups", cfg.S3Bucket)
	assert.Equal(t, 30*time.Minute, cfg.SweepInterval)
}

func TestLoad_BadSweepInterval(t *testing.T) {
	t.Setenv("SWEEP_INTERVAL", "often")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SWEEP_INTERVAL")
}

func TestValidate_BackupAPI_MissingFields(t *testing.T) {
	cfg := &Config{}
	err := cfg.Validate("backup-api")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
	assert.Contains(t, err.Error(), "HTTP_LISTEN_ADDR")
	assert.Contains(t, err.Error(), "S3_BUCKET")
}

func TestValidate_Sweeper_OK(t *testing.T) {
	cfg := &Config{
		DatabaseURL: "postgres://localhost/clinic",
		S3Bucket:    "clinic-backups",
	}
	require.NoError(t, cfg.Validate("backup-sweeper"))
}
