package config

import (
	"time"

	"github.com/spf13/viper"
)

type AuthMode string

const (
	AuthModeNone  AuthMode = "none"  // No authentication required (default)
	AuthModeLocal AuthMode = "local" // Local user database with sessions
)

type (
	Config struct {
		HTTP
		Global
		Database
		Auth
		GoogleBooks
		Genres
		RateLimit
	}

	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Path string
	}
	Auth struct {
		Mode            AuthMode
		SessionLifetime time.Duration
		BcryptCost      int
		SecureCookies   bool // Set to false for local dev without HTTPS
	}
	GoogleBooks struct {
		BaseURL           string
		APIKey            string // Optional; anonymous quota applies without it
		Timeout           time.Duration
		MaxResults        int
		RequestsPerSecond float64
	}
	Genres struct {
		PopularThreshold int // Book count above which a genre is flagged popular
	}
	RateLimit struct {
		Enabled   bool
		PerSecond float64
		Burst     int
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8190)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", DefaultDatabasePath)

	// Auth defaults
	v.SetDefault("auth_mode", "none")
	v.SetDefault("auth_session_lifetime", "24h")
	v.SetDefault("auth_bcrypt_cost", 12)
	v.SetDefault("auth_secure_cookies", true)

	// Google Books defaults
	v.SetDefault("google_books_base_url", "https://www.googleapis.com/books/v1")
	v.SetDefault("google_books_api_key", "")
	v.SetDefault("google_books_timeout", "10s")
	v.SetDefault("google_books_max_results", 10)
	v.SetDefault("google_books_requests_per_second", 1.0)

	// Projection defaults
	v.SetDefault("genre_popular_threshold", 5)

	// Rate limiting defaults
	v.SetDefault("rate_limit_enabled", true)
	v.SetDefault("rate_limit_per_second", 20.0)
	v.SetDefault("rate_limit_burst", 40)

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Auth: Auth{
			Mode:            AuthMode(v.GetString("AUTH_MODE")),
			SessionLifetime: v.GetDuration("AUTH_SESSION_LIFETIME"),
			BcryptCost:      v.GetInt("AUTH_BCRYPT_COST"),
			SecureCookies:   v.GetBool("AUTH_SECURE_COOKIES"),
		},
		GoogleBooks: GoogleBooks{
			BaseURL:           v.GetString("GOOGLE_BOOKS_BASE_URL"),
			APIKey:            v.GetString("GOOGLE_BOOKS_API_KEY"),
			Timeout:           v.GetDuration("GOOGLE_BOOKS_TIMEOUT"),
			MaxResults:        v.GetInt("GOOGLE_BOOKS_MAX_RESULTS"),
			RequestsPerSecond: v.GetFloat64("GOOGLE_BOOKS_REQUESTS_PER_SECOND"),
		},
		Genres: Genres{
			PopularThreshold: v.GetInt("GENRE_POPULAR_THRESHOLD"),
		},
		RateLimit: RateLimit{
			Enabled:   v.GetBool("RATE_LIMIT_ENABLED"),
			PerSecond: v.GetFloat64("RATE_LIMIT_PER_SECOND"),
			Burst:     v.GetInt("RATE_LIMIT_BURST"),
		},
	}
}
