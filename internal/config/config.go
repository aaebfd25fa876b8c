package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	Port        string
	DatabaseURL string
	StoreDriver string

	BootstrapAdminEmail string
	JWTSecret           string

	SupabaseURL        string
	SupabaseServiceKey string
	RollbackOrphans    bool

	RedisAddr   string
	CacheTTL    time.Duration
	RabbitMQURL string

	S3Bucket           string
	AWSRegion          string
	S3Endpoint         string
	PublicAssetBaseURL string

	SiteURL        string
	AllowedOrigins []string
}

// Load reads .env and app.yaml from the working directory. Environment
// variables win over both.
func Load() (*Config, error) {
	return LoadFrom(".")
}

func LoadFrom(dir string) (*Config, error) {
	if err := godotenv.Load(filepath.Join(dir, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Default().Warn("loading .env failed", "error", err)
	}

	v := viper.New()
	v.AddConfigPath(dir)
	v.SetConfigName("app")
	v.SetConfigType("yaml")
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("STORE_DRIVER", DriverPostgres)
	v.SetDefault("CACHE_TTL", time.Hour)
	v.SetDefault("AWS_REGION", "us-east-1")
	v.SetDefault("SITE_URL", "http://localhost:3000")
	v.SetDefault("USERS_ROLLBACK_ORPHANS", false)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read app.yaml: %w", err)
		}
	}

	cfg := &Config{
		Port:                v.GetString("PORT"),
		DatabaseURL:         v.GetString("DATABASE_URL"),
		StoreDriver:         strings.ToLower(v.GetString("STORE_DRIVER")),
		BootstrapAdminEmail: v.GetString("BOOTSTRAP_ADMIN_EMAIL"),
		JWTSecret:           v.GetString("AUTH_JWT_SECRET"),
		SupabaseURL:         strings.TrimRight(v.GetString("SUPABASE_URL"), "/"),
		SupabaseServiceKey:  v.GetString("SUPABASE_SERVICE_ROLE_KEY"),
		RollbackOrphans:     v.GetBool("USERS_ROLLBACK_ORPHANS"),
		RedisAddr:           v.GetString("REDIS_ADDR"),
		CacheTTL:            v.GetDuration("CACHE_TTL"),
		RabbitMQURL:         v.GetString("RABBITMQ_URL"),
		S3Bucket:            v.GetString("S3_BUCKET"),
		AWSRegion:           v.GetString("AWS_REGION"),
		S3Endpoint:          v.GetString("S3_ENDPOINT"),
		PublicAssetBaseURL:  v.GetString("PUBLIC_ASSET_BASE_URL"),
		SiteURL:             strings.TrimRight(v.GetString("SITE_URL"), "/"),
		AllowedOrigins:      splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{cfg.SiteURL}
	}

	switch cfg.StoreDriver {
	case DriverPostgres, DriverMemory:
	default:
		return nil, fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", DriverPostgres, DriverMemory, cfg.StoreDriver)
	}
	if cfg.CacheTTL <= 0 {
		return nil, fmt.Errorf("CACHE_TTL must be positive, got %s", cfg.CacheTTL)
	}
	return cfg, nil
}

// UsersConfigured reports whether the identity provider admin API is reachable.
func (c *Config) UsersConfigured() bool {
	return c.SupabaseURL != "" && c.SupabaseServiceKey != ""
}

func splitList(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
