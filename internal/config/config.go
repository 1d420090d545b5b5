package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the process configuration shared by the server, worker and seeder.
type Config struct {
	AppEnv      string `env:"APP_ENV" envDefault:"development"`
	HTTPAddr    string `env:"HTTP_ADDR" envDefault:":8080"`
	DatabaseURL string `env:"DATABASE_URL"`
	AMQPURL     string `env:"AMQP_URL"`
	RedisAddr   string `env:"REDIS_ADDR"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	NegotiationBaseURL string        `env:"NEGOTIATION_BASE_URL" envDefault:"http://localhost:8000"`
	NegotiationTimeout time.Duration `env:"NEGOTIATION_TIMEOUT" envDefault:"90s"`
	RetryMaxAttempts   int           `env:"RETRY_MAX_ATTEMPTS" envDefault:"2"`
	RetryDelay         time.Duration `env:"RETRY_DELAY" envDefault:"1s"`
	SessionLockTTL     time.Duration `env:"SESSION_LOCK_TTL" envDefault:"2m"`

	JWTSecret         string `env:"JWT_SECRET"`
	RazorpayKeySecret string `env:"RAZORPAY_KEY_SECRET"`

	InstagramAccessToken string        `env:"INSTAGRAM_ACCESS_TOKEN"`
	InstagramBusinessID  string        `env:"INSTAGRAM_BUSINESS_ID"`
	InstagramGraphURL    string        `env:"INSTAGRAM_GRAPH_URL" envDefault:"https://graph.facebook.com/v18.0"`
	YouTubeAPIKey        string        `env:"YOUTUBE_API_KEY"`
	YouTubeEndpoint      string        `env:"YOUTUBE_ENDPOINT"`
	MediaCacheTTL        time.Duration `env:"MEDIA_CACHE_TTL" envDefault:"10m"`
	MediaCacheSize       int           `env:"MEDIA_CACHE_SIZE" envDefault:"1024"`

	OutboxPollInterval time.Duration `env:"OUTBOX_POLL_INTERVAL" envDefault:"2s"`
	OutboxBatchSize    int           `env:"OUTBOX_BATCH_SIZE" envDefault:"50"`
}

const devJWTSecret = "dev-secret"

var ErrMissingJWTSecret = errors.New("JWT_SECRET is required outside development")

// IsDevelopment reports whether APP_ENV is development.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// Load reads an optional .env file and parses the environment into a Config.
// The returned bool reports whether a .env file was found.
func Load() (*Config, bool, error) {
	dotenv := godotenv.Load() == nil

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, dotenv, fmt.Errorf("parse env: %w", err)
	}
	if cfg.RetryMaxAttempts < 1 {
		cfg.RetryMaxAttempts = 1
	}
	if cfg.JWTSecret == "" {
		if !cfg.IsDevelopment() {
			return nil, dotenv, ErrMissingJWTSecret
		}
		cfg.JWTSecret = devJWTSecret
	}
	return &cfg, dotenv, nil
}
