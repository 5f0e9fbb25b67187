package config

import (
	"os"
	"time"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	JWT        JWTConfig
	OAuth      OAuthConfig
	Cloudinary CloudinaryConfig
	Mail       MailConfig
	Stream     StreamConfig
	Board      BoardConfig
}

type ServerConfig struct {
	Port         string
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type JWTConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
	Issuer        string
}

type OAuthConfig struct {
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
}

type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
}

type MailConfig struct {
	SMTPHost string
	SMTPPort string
	Username string
	Password string
	From     string
}

// StreamConfig tunes the notification event streams. IdleTimeout bounds how
// long a silent connection is kept open; it is deliberately a plain config
// value, not a constant buried in the service.
type StreamConfig struct {
	IdleTimeout     time.Duration
	SendBuffer      int
	ReplayCacheSize int
	ReplayCacheTTL  time.Duration
	DispatchWorkers int
	DispatchQueue   int
}

type BoardConfig struct {
	PageSize int
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         envOr("PORT", "8087"),
			Env:          envOr("APP_ENV", "development"),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 0, // streaming endpoints need an unbounded write window
		},
		Database: DatabaseConfig{
			DSN:             envOr("DB_DSN", "pawly:pawly@tcp(localhost:3306)/pawly?charset=utf8mb4&parseTime=True&loc=Local"),
			MaxIdleConns:    10,
			MaxOpenConns:    100,
			ConnMaxLifetime: time.Hour,
		},
		JWT: JWTConfig{
			AccessSecret:  envOr("JWT_ACCESS_SECRET", "change-me-in-production"),
			RefreshSecret: envOr("JWT_REFRESH_SECRET", "change-me-refresh"),
			AccessExpiry:  30 * time.Minute,
			RefreshExpiry: 168 * time.Hour,
			Issuer:        "pawly",
		},
		OAuth: OAuthConfig{
			GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
			GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
			GoogleRedirectURL:  envOr("GOOGLE_REDIRECT_URL", "http://localhost:8087/api/v1/auth/google/callback"),
		},
		Cloudinary: CloudinaryConfig{
			CloudName: os.Getenv("CLOUDINARY_CLOUD_NAME"),
			APIKey:    os.Getenv("CLOUDINARY_API_KEY"),
			APISecret: os.Getenv("CLOUDINARY_API_SECRET"),
		},
		Mail: MailConfig{
			SMTPHost: envOr("SMTP_HOST", "localhost"),
			SMTPPort: envOr("SMTP_PORT", "587"),
			Username: os.Getenv("SMTP_USERNAME"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     envOr("SMTP_FROM", "no-reply@pawly.app"),
		},
		Stream: StreamConfig{
			IdleTimeout:     durationOr("STREAM_IDLE_TIMEOUT", time.Hour),
			SendBuffer:      64,
			ReplayCacheSize: 256,
			ReplayCacheTTL:  30 * time.Minute,
			DispatchWorkers: 4,
			DispatchQueue:   256,
		},
		Board: BoardConfig{
			PageSize: 10,
		},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
