/*
Copyright (C) 2026 Drerries Community

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Database backend selection.
type DatabaseBackend string

const (
	DatabasePostgres DatabaseBackend = "postgres"
	DatabaseMySQL    DatabaseBackend = "mysql"
	DatabaseSQLite   DatabaseBackend = "sqlite"
)

// Event fanout backend selection.
type EventBusBackend string

const (
	EventBusMemory EventBusBackend = "memory"
	EventBusRedis  EventBusBackend = "redis"
	EventBusNATS   EventBusBackend = "nats"
)

// Config covers process level configuration read from environment variables.
type Config struct {
	Environment     string
	HTTPBind        string
	HTTPPort        int
	BaseURL         string // Public base URL (e.g., https://wanted.drerries.net)
	DBBackend       DatabaseBackend
	DBDSN           string
	JWTSigningKey   string
	MetricsBind     string
	MediaRoot       string
	MaxUploadSizeMB int // Multipart upload limit for the evidence endpoint (MB)

	// Discord OAuth configuration
	DiscordClientID     string
	DiscordClientSecret string
	DiscordRedirectURL  string

	// Member-search bot API (the event producer's HTTP endpoint)
	BotSearchURL string

	// S3 Object Storage configuration (evidence media)
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3Region          string
	S3Bucket          string
	S3Endpoint        string // For S3-compatible services (MinIO, Spaces, etc.)
	S3PublicBaseURL   string // Optional CDN/CloudFront URL
	S3UsePathStyle    bool   // Required for MinIO

	// Tracing configuration
	TracingEnabled    bool
	OTLPEndpoint      string
	TracingSampleRate float64

	// Event fanout for multi-instance deployments
	EventBus      EventBusBackend
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	NATSURL       string
	InstanceID    string
}

// Load reads environment variables, applies defaults, and validates the result.
func Load() (*Config, error) {
	cfg := &Config{
		Environment:     getEnv("WANTED_ENV", "development"),
		HTTPBind:        getEnv("WANTED_HTTP_BIND", "0.0.0.0"),
		HTTPPort:        getEnvInt("WANTED_HTTP_PORT", 8080),
		BaseURL:         getEnv("WANTED_BASE_URL", ""),
		DBBackend:       DatabaseBackend(getEnv("WANTED_DB_BACKEND", string(DatabasePostgres))),
		DBDSN:           getEnv("WANTED_DB_DSN", ""),
		JWTSigningKey:   getEnv("WANTED_JWT_SIGNING_KEY", ""),
		MetricsBind:     getEnv("WANTED_METRICS_BIND", "127.0.0.1:9000"),
		MediaRoot:       getEnv("WANTED_MEDIA_ROOT", "./media"),
		MaxUploadSizeMB: getEnvInt("WANTED_MAX_UPLOAD_SIZE_MB", 25),

		DiscordClientID:     getEnv("WANTED_DISCORD_CLIENT_ID", ""),
		DiscordClientSecret: getEnv("WANTED_DISCORD_CLIENT_SECRET", ""),
		DiscordRedirectURL:  getEnv("WANTED_DISCORD_REDIRECT_URL", ""),

		BotSearchURL: getEnv("WANTED_BOT_SEARCH_URL", "http://localhost:3001/api/search-members"),

		S3AccessKeyID:     getEnvAny([]string{"WANTED_S3_ACCESS_KEY_ID", "AWS_ACCESS_KEY_ID"}, ""),
		S3SecretAccessKey: getEnvAny([]string{"WANTED_S3_SECRET_ACCESS_KEY", "AWS_SECRET_ACCESS_KEY"}, ""),
		S3Region:          getEnvAny([]string{"WANTED_S3_REGION", "AWS_REGION"}, "us-east-1"),
		S3Bucket:          getEnv("WANTED_S3_BUCKET", ""),
		S3Endpoint:        getEnv("WANTED_S3_ENDPOINT", ""),
		S3PublicBaseURL:   getEnv("WANTED_S3_PUBLIC_BASE_URL", ""),
		S3UsePathStyle:    getEnvBool("WANTED_S3_USE_PATH_STYLE", false),

		TracingEnabled:    getEnvBool("WANTED_TRACING_ENABLED", false),
		OTLPEndpoint:      getEnv("WANTED_OTLP_ENDPOINT", "localhost:4317"),
		TracingSampleRate: getEnvFloat("WANTED_TRACING_SAMPLE_RATE", 1.0),

		EventBus:      EventBusBackend(getEnv("WANTED_EVENTBUS_BACKEND", string(EventBusMemory))),
		RedisAddr:     getEnv("WANTED_REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("WANTED_REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("WANTED_REDIS_DB", 0),
		NATSURL:       getEnv("WANTED_NATS_URL", "nats://localhost:4222"),
		InstanceID:    getEnv("WANTED_INSTANCE_ID", ""),
	}

	if cfg.DBBackend != DatabasePostgres && cfg.DBBackend != DatabaseMySQL && cfg.DBBackend != DatabaseSQLite {
		return nil, fmt.Errorf("unsupported database backend %q", cfg.DBBackend)
	}

	if cfg.EventBus != EventBusMemory && cfg.EventBus != EventBusRedis && cfg.EventBus != EventBusNATS {
		return nil, fmt.Errorf("unsupported event bus backend %q", cfg.EventBus)
	}

	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("WANTED_DB_DSN must be provided")
	}

	if cfg.JWTSigningKey == "" {
		return nil, fmt.Errorf("WANTED_JWT_SIGNING_KEY must be provided")
	}

	if strings.EqualFold(cfg.Environment, "production") {
		if cfg.DiscordClientID == "" || cfg.DiscordClientSecret == "" {
			return nil, fmt.Errorf("WANTED_DISCORD_CLIENT_ID and WANTED_DISCORD_CLIENT_SECRET must be set in production")
		}
		if cfg.DiscordRedirectURL == "" {
			return nil, fmt.Errorf("WANTED_DISCORD_REDIRECT_URL must be set in production")
		}
	}

	return cfg, nil
}

// MaxUploadSizeBytes returns the configured upload limit in bytes.
func (c *Config) MaxUploadSizeBytes() int64 {
	if c == nil || c.MaxUploadSizeMB <= 0 {
		return 25 * 1024 * 1024
	}
	return int64(c.MaxUploadSizeMB) * 1024 * 1024
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return def
}

// getEnvAny returns the first non-empty environment variable value from keys, or def if none set.
func getEnvAny(keys []string, def string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "true" || v == "1" || v == "yes" {
			return true
		}
		if v == "false" || v == "0" || v == "no" {
			return false
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			return parsed
		}
	}
	return def
}
