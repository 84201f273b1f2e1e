// Package config builds runtime configuration from the environment so main
// stays lean. An optional .env file is honored for local development.
package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the top-level application configuration.
type Config struct {
	Server   ServerConfig
	Redis    RedisConfig
	Postgres PostgresConfig
	Email    EmailConfig
	Auth     AuthConfig
	Submit   SubmitConfig
	Draft    DraftConfig
	LogLevel string
	LogJSON  bool
}

// ServerConfig captures HTTP server level configuration.
type ServerConfig struct {
	Addr            string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

// RedisConfig configures the draft store backend. An empty URL disables Redis
// and the in-memory draft store is used instead.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// PostgresConfig configures the application record store. An empty host
// disables Postgres and the in-memory store is used instead.
type PostgresConfig struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
	SSLMode  string
	MaxConns int
	MaxIdle  int
}

// DSN returns the PostgreSQL connection string.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// EmailConfig configures the transactional email sender.
type EmailConfig struct {
	Enabled   bool
	AWSRegion string
	Sender    string
	ReplyTo   string
}

// AuthConfig carries the applicant JWT secret and the bcrypt hash of the
// admin API key.
type AuthConfig struct {
	JWTSigningKey   string
	AdminAPIKeyHash string
}

// SubmitConfig tunes the submission retry loop.
type SubmitConfig struct {
	Attempts       int
	RetryDelay     time.Duration
	AttemptTimeout time.Duration
}

// DraftConfig tunes draft persistence.
type DraftConfig struct {
	TTL time.Duration
}

// Load reads configuration from the environment. A .env file in the working
// directory is merged in when present.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORTAL_ADDR", ":8080")
	v.SetDefault("PORTAL_REQUEST_TIMEOUT", "30s")
	v.SetDefault("PORTAL_SHUTDOWN_TIMEOUT", "10s")
	v.SetDefault("PORTAL_LOG_LEVEL", "info")
	v.SetDefault("PORTAL_LOG_JSON", true)

	v.SetDefault("REDIS_POOL_SIZE", 10)
	v.SetDefault("REDIS_MIN_IDLE_CONNS", 2)
	v.SetDefault("REDIS_DIAL_TIMEOUT", "5s")
	v.SetDefault("REDIS_READ_TIMEOUT", "3s")
	v.SetDefault("REDIS_WRITE_TIMEOUT", "3s")

	v.SetDefault("POSTGRES_PORT", 5432)
	v.SetDefault("POSTGRES_SSLMODE", "disable")
	v.SetDefault("POSTGRES_MAX_CONNS", 10)
	v.SetDefault("POSTGRES_MAX_IDLE", 5)

	v.SetDefault("EMAIL_ENABLED", false)
	v.SetDefault("AWS_REGION", "ap-southeast-1")
	v.SetDefault("EMAIL_SENDER", "onboarding@portal.local")

	v.SetDefault("SUBMIT_ATTEMPTS", 3)
	v.SetDefault("SUBMIT_RETRY_DELAY", "1s")
	v.SetDefault("SUBMIT_ATTEMPT_TIMEOUT", "10s")

	// Drafts are retained for 30 days of inactivity before Redis expires them.
	v.SetDefault("DRAFT_TTL", "720h")

	jwtKey := v.GetString("JWT_SIGNING_KEY")
	if jwtKey == "" {
		// Development default; must be overridden in production.
		jwtKey = "dev-secret-key-change-in-production"
	}

	cfg := Config{
		Server: ServerConfig{
			Addr:            v.GetString("PORTAL_ADDR"),
			RequestTimeout:  v.GetDuration("PORTAL_REQUEST_TIMEOUT"),
			ShutdownTimeout: v.GetDuration("PORTAL_SHUTDOWN_TIMEOUT"),
		},
		Redis: RedisConfig{
			URL:          v.GetString("REDIS_URL"),
			PoolSize:     v.GetInt("REDIS_POOL_SIZE"),
			MinIdleConns: v.GetInt("REDIS_MIN_IDLE_CONNS"),
			DialTimeout:  v.GetDuration("REDIS_DIAL_TIMEOUT"),
			ReadTimeout:  v.GetDuration("REDIS_READ_TIMEOUT"),
			WriteTimeout: v.GetDuration("REDIS_WRITE_TIMEOUT"),
		},
		Postgres: PostgresConfig{
			Host:     v.GetString("POSTGRES_HOST"),
			Port:     v.GetInt("POSTGRES_PORT"),
			Database: v.GetString("POSTGRES_DB"),
			User:     v.GetString("POSTGRES_USER"),
			Password: v.GetString("POSTGRES_PASSWORD"),
			SSLMode:  v.GetString("POSTGRES_SSLMODE"),
			MaxConns: v.GetInt("POSTGRES_MAX_CONNS"),
			MaxIdle:  v.GetInt("POSTGRES_MAX_IDLE"),
		},
		Email: EmailConfig{
			Enabled:   v.GetBool("EMAIL_ENABLED"),
			AWSRegion: v.GetString("AWS_REGION"),
			Sender:    v.GetString("EMAIL_SENDER"),
			ReplyTo:   v.GetString("EMAIL_REPLY_TO"),
		},
		Auth: AuthConfig{
			JWTSigningKey:   jwtKey,
			AdminAPIKeyHash: v.GetString("ADMIN_API_KEY_HASH"),
		},
		Submit: SubmitConfig{
			Attempts:       v.GetInt("SUBMIT_ATTEMPTS"),
			RetryDelay:     v.GetDuration("SUBMIT_RETRY_DELAY"),
			AttemptTimeout: v.GetDuration("SUBMIT_ATTEMPT_TIMEOUT"),
		},
		Draft: DraftConfig{
			TTL: v.GetDuration("DRAFT_TTL"),
		},
		LogLevel: v.GetString("PORTAL_LOG_LEVEL"),
		LogJSON:  v.GetBool("PORTAL_LOG_JSON"),
	}

	if cfg.Submit.Attempts < 1 {
		return Config{}, fmt.Errorf("SUBMIT_ATTEMPTS must be at least 1, got %d", cfg.Submit.Attempts)
	}

	return cfg, nil
}
