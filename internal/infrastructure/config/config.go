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

// AppConfig encapsulates all runtime configuration knobs.
type AppConfig struct {
	App        AppSettings
	HTTP       HTTPSettings
	Auth       AuthSettings
	Log        LogSettings
	Database   DatabaseSettings
	Cache      CacheSettings
	SMTP       SMTPSettings
	Documentos DocumentosSettings
	Upload     UploadSettings
	Bootstrap  BootstrapSettings
}

// BootstrapSettings seeds the first admin account on startup. A fresh
// database has no usable login, so when ADMIN_CIP and ADMIN_PASSWORD are
// set the service creates that admin if the CIP does not exist yet.
type BootstrapSettings struct {
	AdminCIP      string
	AdminNombre   string
	AdminPassword string
}

type AppSettings struct {
	Name        string
	Version     string
	Environment string
}

type HTTPSettings struct {
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// AuthSettings configures session tokens. Tokens are issued locally with
// an HMAC secret; when JWKSetURI is set, inbound tokens from an external
// issuer are accepted as well.
type AuthSettings struct {
	Secret      string
	TokenTTL    time.Duration
	IssuerURI   string
	JWKSetURI   string
	ClockSkew   time.Duration
	BypassPaths []string
}

type LogSettings struct {
	Level string
}

type DatabaseSettings struct {
	Host            string
	Port            int
	Database        string
	User            string
	Password        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// CacheSettings controls the in-process reference-data cache.
type CacheSettings struct {
	ReferenceTTL    time.Duration
	CleanupInterval time.Duration
}

// SMTPSettings configures pickup-ready notification mail. Disabled unless
// a host and sender are configured.
type SMTPSettings struct {
	Enabled  bool
	Host     string
	Port     int
	User     string
	Password string
	From     string
	NotifyTo []string
}

// DocumentosSettings contains configuration for concurrent PDF generation.
type DocumentosSettings struct {
	WorkerPoolSize int
	BatchSize      int
}

// UploadSettings bounds photo uploads attached to muestras.
type UploadSettings struct {
	MaxImageBytes int64
	MaxWidth      int
	MaxHeight     int
	WebPQuality   float32
}

// Load reads configuration from the environment, merging a local .env file
// when present. Validation failures return an error rather than silently
// running with a broken setup.
func Load() (AppConfig, error) {
	_ = godotenv.Load()

	cfg := AppConfig{
		App: AppSettings{
			Name:        getEnv("APP_NAME", "mesa-partes-oficri"),
			Version:     getEnv("APP_VERSION", "0.1.0"),
			Environment: getEnv("APP_ENV", "local"),
		},
		HTTP: HTTPSettings{
			Port:            getEnvAsInt("APP_PORT", 8081),
			ReadTimeout:     getEnvAsDuration("HTTP_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvAsDuration("HTTP_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:     getEnvAsDuration("HTTP_IDLE_TIMEOUT", 120*time.Second),
			ShutdownTimeout: getEnvAsDuration("HTTP_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Auth: AuthSettings{
			Secret:      strings.TrimSpace(os.Getenv("JWT_SECRET")),
			TokenTTL:    getEnvAsDuration("JWT_TOKEN_TTL", 8*time.Hour),
			IssuerURI:   strings.TrimSpace(os.Getenv("JWT_ISSUER_URI")),
			JWKSetURI:   strings.TrimSpace(os.Getenv("JWT_JWK_SET_URI")),
			ClockSkew:   getEnvAsDuration("AUTH_CLOCK_SKEW", 30*time.Second),
			BypassPaths: getEnvAsCSV("AUTH_BYPASS_PATHS", []string{"/health"}),
		},
		Log: LogSettings{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Database: DatabaseSettings{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvAsInt("DB_PORT", 5432),
			Database:        getEnv("DB_NAME", "oficri"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", ""),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Cache: CacheSettings{
			ReferenceTTL:    getEnvAsDuration("CACHE_REFERENCE_TTL", 5*time.Minute),
			CleanupInterval: getEnvAsDuration("CACHE_CLEANUP_INTERVAL", 10*time.Minute),
		},
		SMTP: SMTPSettings{
			Host:     strings.TrimSpace(os.Getenv("SMTP_HOST")),
			Port:     getEnvAsInt("SMTP_PORT", 587),
			User:     strings.TrimSpace(os.Getenv("SMTP_USER")),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     strings.TrimSpace(os.Getenv("SMTP_FROM")),
			NotifyTo: getEnvAsCSV("SMTP_NOTIFY_TO", nil),
		},
		Documentos: DocumentosSettings{
			WorkerPoolSize: getEnvAsInt("DOCUMENTO_WORKER_POOL_SIZE", 4),
			BatchSize:      getEnvAsInt("DOCUMENTO_BATCH_SIZE", 25),
		},
		Bootstrap: BootstrapSettings{
			AdminCIP:      strings.TrimSpace(os.Getenv("ADMIN_CIP")),
			AdminNombre:   getEnv("ADMIN_NOMBRE", "Administrador"),
			AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		},
		Upload: UploadSettings{
			MaxImageBytes: int64(getEnvAsInt("UPLOAD_MAX_IMAGE_BYTES", 5<<20)),
			MaxWidth:      getEnvAsInt("UPLOAD_MAX_WIDTH", 800),
			MaxHeight:     getEnvAsInt("UPLOAD_MAX_HEIGHT", 600),
			WebPQuality:   float32(getEnvAsFloat("UPLOAD_WEBP_QUALITY", 0.8)),
		},
	}

	cfg.SMTP.Enabled = cfg.SMTP.Host != "" && cfg.SMTP.From != ""

	if cfg.Auth.Secret == "" && cfg.Auth.JWKSetURI == "" {
		return cfg, errors.New("invalid config: JWT_SECRET or JWT_JWK_SET_URI is required")
	}
	if cfg.Auth.JWKSetURI != "" && cfg.Auth.IssuerURI == "" {
		return cfg, errors.New("invalid config: JWT_ISSUER_URI is required when JWT_JWK_SET_URI is set")
	}
	if cfg.Documentos.WorkerPoolSize <= 0 {
		return cfg, errors.New("invalid config: DOCUMENTO_WORKER_POOL_SIZE must be greater than 0")
	}
	if cfg.Documentos.BatchSize <= 0 {
		return cfg, errors.New("invalid config: DOCUMENTO_BATCH_SIZE must be greater than 0")
	}
	if cfg.Upload.MaxImageBytes <= 0 {
		return cfg, errors.New("invalid config: UPLOAD_MAX_IMAGE_BYTES must be greater than 0")
	}
	if cfg.Upload.WebPQuality <= 0 || cfg.Upload.WebPQuality > 1 {
		return cfg, errors.New("invalid config: UPLOAD_WEBP_QUALITY must be in (0, 1]")
	}

	return cfg, nil
}

// Address returns the HTTP listen address in host:port form.
func (h HTTPSettings) Address() string {
	return fmt.Sprintf(":%d", h.Port)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvAsCSV(key string, fallback []string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			values = append(values, trimmed)
		}
	}
	if len(values) == 0 {
		return fallback
	}
	return values
}
