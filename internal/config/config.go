package config

import (
	"os"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Lockout   LockoutConfig
	Argon2    Argon2Config
	Audit     AuditConfig
	Admin     AdminConfig
}

type ServerConfig struct {
	Port          string
	IsDevelopment bool
	CORSOrigins   []string
	// RatePerIP is the coarse whole-API throttle ("100-M" = 100/min per IP).
	// Empty disables it. The login and register limits below are separate.
	RatePerIP string
}

// DatabaseConfig holds the Postgres connection. An empty URL switches the
// service to its in-memory account store (dev mode).
type DatabaseConfig struct {
	URL string
}

// RedisConfig holds the Redis connection. An empty URL switches the attempt
// counters to the in-memory store and disables async webhook delivery.
type RedisConfig struct {
	URL string
}

type RateLimitConfig struct {
	LoginLimit         int64
	LoginWindowSecs    int
	RegisterLimit      int64
	RegisterWindowSecs int
	// FailClosed denies attempts while the attempt store is unreachable.
	// Default is fail-open with a warning and a counter.
	FailClosed bool
}

type LockoutConfig struct {
	Threshold    int
	DurationSecs int
}

type Argon2Config struct {
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
}

type AuditConfig struct {
	// File is an optional append-only audit log path, rotated by size/age.
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	// Persist mirrors events into the security_events table (needs Postgres).
	Persist bool
	// RetainDays prunes persisted events older than this; 0 keeps forever.
	RetainDays int
	// WebhookURL receives events as JSON POSTs via the async worker (needs Redis).
	WebhookURL string
}

type AdminConfig struct {
	Secret string
}

func Load() (*Config, error) {
	viper.AutomaticEnv()
	if p := os.Getenv("CONFIG_FILE"); p != "" {
		viper.SetConfigFile(p)
		_ = viper.ReadInConfig()
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:          getEnvOrDefault("PORT", "8080"),
			IsDevelopment: viper.GetBool("WARDEN_DEV_MODE"),
			CORSOrigins:   splitCSV(os.Getenv("WARDEN_CORS_ORIGINS")),
			RatePerIP:     getEnvOrDefault("WARDEN_IP_RATE", "100-M"),
		},
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Redis: RedisConfig{
			URL: os.Getenv("REDIS_URL"),
		},
		RateLimit: RateLimitConfig{
			LoginLimit:         viper.GetInt64("WARDEN_LOGIN_LIMIT"),
			LoginWindowSecs:    viper.GetInt("WARDEN_LOGIN_WINDOW_SECS"),
			RegisterLimit:      viper.GetInt64("WARDEN_REGISTER_LIMIT"),
			RegisterWindowSecs: viper.GetInt("WARDEN_REGISTER_WINDOW_SECS"),
			FailClosed:         viper.GetBool("WARDEN_RATE_LIMIT_FAIL_CLOSED"),
		},
		Lockout: LockoutConfig{
			Threshold:    viper.GetInt("WARDEN_LOCKOUT_THRESHOLD"),
			DurationSecs: viper.GetInt("WARDEN_LOCKOUT_DURATION_SECS"),
		},
		Argon2: Argon2Config{
			Memory:      uint32(viper.GetInt("WARDEN_ARGON2_MEMORY")),
			Iterations:  uint32(viper.GetInt("WARDEN_ARGON2_ITERATIONS")),
			Parallelism: uint8(viper.GetInt("WARDEN_ARGON2_PARALLELISM")),
		},
		Audit: AuditConfig{
			File:       os.Getenv("WARDEN_AUDIT_FILE"),
			MaxSizeMB:  viper.GetInt("WARDEN_AUDIT_MAX_SIZE_MB"),
			MaxBackups: viper.GetInt("WARDEN_AUDIT_MAX_BACKUPS"),
			MaxAgeDays: viper.GetInt("WARDEN_AUDIT_MAX_AGE_DAYS"),
			Persist:    viper.GetBool("WARDEN_AUDIT_PERSIST"),
			RetainDays: viper.GetInt("WARDEN_AUDIT_RETAIN_DAYS"),
			WebhookURL: os.Getenv("WARDEN_AUDIT_WEBHOOK_URL"),
		},
		Admin: AdminConfig{
			Secret: os.Getenv("WARDEN_ADMIN_SECRET"),
		},
	}

	if cfg.RateLimit.LoginLimit <= 0 {
		cfg.RateLimit.LoginLimit = 5
	}
	if cfg.RateLimit.LoginWindowSecs <= 0 {
		cfg.RateLimit.LoginWindowSecs = 300
	}
	if cfg.RateLimit.RegisterLimit <= 0 {
		cfg.RateLimit.RegisterLimit = 3
	}
	if cfg.RateLimit.RegisterWindowSecs <= 0 {
		cfg.RateLimit.RegisterWindowSecs = 300
	}
	if cfg.Lockout.Threshold <= 0 {
		cfg.Lockout.Threshold = 5
	}
	if cfg.Lockout.DurationSecs <= 0 {
		cfg.Lockout.DurationSecs = 900
	}
	if cfg.Argon2.Memory == 0 {
		cfg.Argon2.Memory = 64 * 1024
	}
	if cfg.Argon2.Iterations == 0 {
		cfg.Argon2.Iterations = 3
	}
	if cfg.Argon2.Parallelism == 0 {
		cfg.Argon2.Parallelism = 2
	}
	if cfg.Audit.MaxSizeMB <= 0 {
		cfg.Audit.MaxSizeMB = 100
	}
	if cfg.Audit.MaxBackups <= 0 {
		cfg.Audit.MaxBackups = 5
	}
	if cfg.Audit.MaxAgeDays <= 0 {
		cfg.Audit.MaxAgeDays = 30
	}
	return cfg, nil
}

func getEnvOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
