package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"storefront-service/internal/models"
)

type Config struct {
	// Database. Leaving DB_HOST empty disables the remote backend.
	DBHost     string `env:"DB_HOST"`
	DBPort     int    `env:"DB_PORT" envDefault:"5432"`
	DBUser     string `env:"DB_USER" envDefault:"postgres"`
	DBPassword string `env:"DB_PASSWORD"`
	DBName     string `env:"DB_NAME" envDefault:"storefront_db"`
	DBSSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`

	// Backend selection: auto, remote or local
	BackendMode string `env:"BACKEND_MODE" envDefault:"auto"`

	// Local fallback store: sqlite or redis
	LocalStore     string `env:"LOCAL_STORE" envDefault:"sqlite"`
	LocalStorePath string `env:"LOCAL_STORE_PATH" envDefault:"storefront-local.db"`

	// Redis
	RedisURL      string `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
	RedisPassword string `env:"REDIS_PASSWORD"`

	// Server
	Port        string   `env:"PORT" envDefault:"8080"`
	Environment string   `env:"ENVIRONMENT" envDefault:"development"`
	CORSOrigins []string `env:"CORS_ORIGINS" envDefault:"*" envSeparator:","`

	// Assistant
	GeminiAPIKey      string        `env:"GEMINI_API_KEY"`
	GeminiModel       string        `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash"`
	SessionIdleTTL    time.Duration `env:"ASSISTANT_SESSION_TTL" envDefault:"30m"`
	SessionSweepEvery time.Duration `env:"ASSISTANT_SESSION_SWEEP" envDefault:"5m"`

	// Image hosting
	AssetUploadURL string `env:"ASSET_UPLOAD_URL" envDefault:"https://api.imgur.com/3/image"`
	AssetClientID  string `env:"ASSET_CLIENT_ID"`

	// Admin
	AdminUsername string        `env:"ADMIN_USERNAME" envDefault:"admin"`
	AdminPassword string        `env:"ADMIN_PASSWORD"`
	JWTSecret     string        `env:"JWT_SECRET"`
	JWTTTL        time.Duration `env:"JWT_TTL" envDefault:"12h"`

	// Integrations
	NATSURL      string `env:"NATS_URL"`
	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`

	// Shop contact details shown after checkout
	ShopName  string `env:"SHOP_NAME" envDefault:"Luce & Ombra"`
	ShopPhone string `env:"SHOP_WHATSAPP_PHONE"`
	ShopEmail string `env:"SHOP_EMAIL"`

	// How often queued orders are pushed to the remote store
	OrderFlushInterval time.Duration `env:"ORDER_FLUSH_INTERVAL" envDefault:"1m"`
}

// Load reads the configuration from the environment
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch strings.ToLower(c.LocalStore) {
	case "sqlite", "redis":
	default:
		return fmt.Errorf("LOCAL_STORE must be sqlite or redis, got %q", c.LocalStore)
	}
	if c.AdminPassword != "" && c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required when ADMIN_PASSWORD is set")
	}
	return nil
}

// RemoteConfigured reports whether database credentials were supplied
func (c *Config) RemoteConfigured() bool {
	return c.DBHost != ""
}

// AdminEnabled reports whether the admin endpoints can be unlocked
func (c *Config) AdminEnabled() bool {
	return c.AdminPassword != "" && c.JWTSecret != ""
}

func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

func InitDB(cfg *Config) (*gorm.DB, error) {
	var logLevel logger.LogLevel
	if cfg.Environment == "production" {
		logLevel = logger.Error
	} else {
		logLevel = logger.Info
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Adds missing columns, never drops existing ones
	if err := db.AutoMigrate(&models.Product{}, &models.Order{}); err != nil {
		return nil, fmt.Errorf("failed to run auto-migrations: %w", err)
	}
	return db, nil
}
