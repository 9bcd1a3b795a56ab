package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultHTTPAddr       = ":8080"
	defaultDatabaseURL    = "bizdir.db"
	defaultLogLevel       = "info"
	defaultAdminTokenTTL  = "24h"
	defaultSiteURL        = "https://mefargenim.com"
	defaultMaxUploadBytes = 5 << 20
	defaultRecentLimit    = 3
	defaultJWTSecret      = "change-me-jwt-secret"
)

// Config is the runtime configuration of the API server and the CLI.
type Config struct {
	AppEnv             string        `yaml:"appEnv"`
	HTTPAddr           string        `yaml:"httpAddr"`
	DatabaseURL        string        `yaml:"databaseURL"`
	LogLevel           string        `yaml:"logLevel"`
	JWTSecret          string        `yaml:"jwtSecret"`
	AdminTokenTTL      time.Duration `yaml:"-"`
	AdminTokenTTLRaw   string        `yaml:"adminTokenTTL"`
	SiteURL            string        `yaml:"siteURL"`
	CORSAllowedOrigins []string      `yaml:"corsAllowedOrigins"`
	MaxUploadBytes     int64         `yaml:"maxUploadBytes"`
	RecentDefaultLimit int           `yaml:"recentDefaultLimit"`
	PingSearchEngines  bool          `yaml:"pingSearchEngines"`
}

// AdminAuthEnabled reports whether admin routes require a bearer token.
func (c *Config) AdminAuthEnabled() bool {
	return strings.TrimSpace(c.JWTSecret) != ""
}

// IsProd reports a production-like environment.
func (c *Config) IsProd() bool {
	return isProdLike(c.AppEnv)
}

// Load reads .env (if present), then the YAML file named by CONFIG_FILE (if
// set), then lets environment variables override individual values.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{
		HTTPAddr:           defaultHTTPAddr,
		DatabaseURL:        defaultDatabaseURL,
		LogLevel:           defaultLogLevel,
		AdminTokenTTLRaw:   defaultAdminTokenTTL,
		SiteURL:            defaultSiteURL,
		MaxUploadBytes:     defaultMaxUploadBytes,
		RecentDefaultLimit: defaultRecentLimit,
		PingSearchEngines:  true,
	}

	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	applyEnv(cfg)

	appEnv := strings.TrimSpace(getEnv("APP_ENV", os.Getenv("ENV")))
	if appEnv != "" {
		cfg.AppEnv = appEnv
	}
	if cfg.AppEnv == "" {
		cfg.AppEnv = "dev"
	}
	cfg.AppEnv = strings.ToLower(cfg.AppEnv)

	ttl, err := time.ParseDuration(strings.TrimSpace(cfg.AdminTokenTTLRaw))
	if err != nil {
		return nil, fmt.Errorf("invalid ADMIN_TOKEN_TTL value %q: %w", cfg.AdminTokenTTLRaw, err)
	}
	cfg.AdminTokenTTL = ttl

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		cfg.HTTPAddr = strings.TrimSpace(v)
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = strings.TrimSpace(v)
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = strings.TrimSpace(v)
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.JWTSecret = strings.TrimSpace(v)
	}
	if v := os.Getenv("ADMIN_TOKEN_TTL"); v != "" {
		cfg.AdminTokenTTLRaw = v
	}
	if v := os.Getenv("SITE_URL"); v != "" {
		cfg.SiteURL = strings.TrimRight(strings.TrimSpace(v), "/")
	}
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		cfg.CORSAllowedOrigins = splitCSV(v)
	}
	if v := os.Getenv("MAX_UPLOAD_BYTES"); v != "" {
		if n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
			cfg.MaxUploadBytes = n
		}
	}
	if v := os.Getenv("RECENT_DEFAULT_LIMIT"); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			cfg.RecentDefaultLimit = n
		}
	}
	if v := os.Getenv("PING_SEARCH_ENGINES"); v != "" {
		cfg.PingSearchEngines = parseBool(v)
	}
}

func validateConfig(cfg *Config) error {
	if cfg.HTTPAddr == "" {
		return fmt.Errorf("HTTP_ADDR must not be empty")
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL must not be empty")
	}
	if cfg.AdminTokenTTL <= 0 {
		return fmt.Errorf("ADMIN_TOKEN_TTL must be > 0")
	}
	if cfg.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be > 0")
	}
	if cfg.RecentDefaultLimit <= 0 {
		return fmt.Errorf("RECENT_DEFAULT_LIMIT must be > 0")
	}

	if isProdLike(cfg.AppEnv) {
		if isEmptyOrDefault(cfg.JWTSecret, defaultJWTSecret) {
			return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
		}
	}

	return nil
}

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}

func parseBool(value string) bool {
	value = strings.ToLower(strings.TrimSpace(value))
	return value == "1" || value == "true" || value == "yes" || value == "on"
}

func splitCSV(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
