package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

type Config struct {
	DatabaseURL    string
	HTTPListenAddr string
	MetricsAddr    string
	LogLevel       string

	// Object storage for backup archives.
	S3Endpoint  string
	S3Region    string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string

	// Paths to the native dump/load tools. Empty values use $PATH lookup.
	PGDumpPath string
	PSQLPath   string

	// SweepInterval is the cadence of the sweeper daemon.
	SweepInterval time.Duration

	ServiceName string
}

func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		HTTPListenAddr: getEnv("HTTP_LISTEN_ADDR", ":8090"),
		MetricsAddr:    getEnv("METRICS_ADDR", ":9091"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		S3Endpoint:     getEnv("S3_ENDPOINT", ""),
		S3Region:       getEnv("S3_REGION", "us-east-1"),
		S3Bucket:       getEnv("S3_BUCKET", ""),
		S3AccessKey:    getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey:    getEnv("S3_SECRET_KEY", ""),
		PGDumpPath:     getEnv("PG_DUMP_PATH", "pg_dump"),
		PSQLPath:       getEnv("PSQL_PATH", "psql"),
		ServiceName:    getEnv("SERVICE_NAME", ""),
	}

	interval, err := time.ParseDuration(getEnv("SWEEP_INTERVAL", "1h"))
	if err != nil {
		return nil, fmt.Errorf("parse SWEEP_INTERVAL: %w", err)
	}
	cfg.SweepInterval = interval

	return cfg, nil
}

// Validate checks that the fields required by the given binary are set.
func (c *Config) Validate(role string) error {
	var missing []string

	need := func(name, value string) {
		if value == "" {
			missing = append(missing, name)
		}
	}

	switch role {
	case "backup-api":
		need("DATABASE_URL", c.DatabaseURL)
		need("HTTP_LISTEN_ADDR", c.HTTPListenAddr)
		need("S3_BUCKET", c.S3Bucket)
	case "backup-sweeper":
		need("DATABASE_URL", c.DatabaseURL)
		need("S3_BUCKET", c.S3Bucket)
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required config: %s", strings.Join(missing, ", "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
