package config

import (
	"fmt"
	"strings"
	"time"

	"blackboxscan/internal/logger"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// DefaultAnalysisAPIURL is used when ANALYSIS_API_URL is not set: the analysis
// service running on the developer's machine.
const DefaultAnalysisAPIURL = "http://127.0.0.1:5000"

// Config holds the web service configuration.
type Config struct {
	Env        string `env:"ENV" env-default:"development"`
	ServerPort string `env:"SERVER_PORT" env-default:"8080"`
	Logger     logger.Config

	// AnalysisAPIURL is the base URL of the external analysis service.
	// Read once at startup and injected into the dispatcher.
	AnalysisAPIURL string        `env:"ANALYSIS_API_URL" env-default:"http://127.0.0.1:5000"`
	ClientTimeout  time.Duration `env:"HTTP_CLIENT_TIMEOUT" env-default:"60s"`
	MaxUploadBytes int64         `env:"MAX_UPLOAD_BYTES" env-default:"10485760"`

	// FlashSecret signs flash cookies.
	FlashSecret        string   `env:"FLASH_SECRET" env-default:"change-me-in-production"`
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" env-separator:"," env-default:"http://localhost:3000,http://localhost:8080"`
	TemplatesDebug     bool     `env:"TEMPLATES_DEBUG" env-default:"false"`

	Database  DatabaseConfig
	Redis     RedisConfig
	RabbitMQ  RabbitMQConfig
	RateLimit RateLimitConfig
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host        string        `env:"DB_HOST" env-default:"localhost"`
	Port        string        `env:"DB_PORT" env-default:"5432"`
	User        string        `env:"DB_USER" env-default:"postgres"`
	Password    string        `env:"DB_PASSWORD" env-default:"postgres"`
	Name        string        `env:"DB_NAME" env-default:"blackboxscan"`
	SSLMode     string        `env:"DB_SSL_MODE" env-default:"disable"`
	MaxConns    int           `env:"DB_MAX_CONNECTIONS" env-default:"10"`
	IdleTimeout time.Duration `env:"DB_MAX_IDLE" env-default:"5m"`
	AutoMigrate bool          `env:"DB_AUTO_MIGRATE" env-default:"true"`
}

// RedisConfig holds the listing cache and rate limiter settings.
type RedisConfig struct {
	Addr     string        `env:"REDIS_ADDR" env-default:""`
	Password string        `env:"REDIS_PASSWORD" env-default:""`
	DB       int           `env:"REDIS_DB" env-default:"0"`
	CacheTTL time.Duration `env:"CONTRIBUTIONS_CACHE_TTL" env-default:"1m"`
}

// RabbitMQConfig holds event publishing settings. An empty URL disables publishing.
type RabbitMQConfig struct {
	URL               string `env:"RABBITMQ_URL" env-default:""`
	ContributionQueue string `env:"CONTRIBUTION_EVENTS_QUEUE" env-default:"contribution_events"`
	ContactQueue      string `env:"CONTACT_MESSAGES_QUEUE" env-default:"contact_messages"`
}

// RateLimitConfig limits demo dispatches per client IP.
type RateLimitConfig struct {
	Rate  time.Duration `env:"DEMO_RATE_WINDOW" env-default:"1m"`
	Limit uint          `env:"DEMO_RATE_LIMIT" env-default:"30"`
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read configuration: %w", err)
	}
	cfg.AnalysisAPIURL = NormalizeBaseURL(cfg.AnalysisAPIURL)
	cfg.Logger.Development = cfg.IsDevelopment()
	if cfg.ClientTimeout <= 0 {
		cfg.ClientTimeout = 60 * time.Second
	}
	return &cfg, nil
}

// NormalizeBaseURL trims whitespace and trailing slashes, falling back to
// DefaultAnalysisAPIURL when the value is blank.
func NormalizeBaseURL(raw string) string {
	u := strings.TrimRight(strings.TrimSpace(raw), "/")
	if u == "" {
		return DefaultAnalysisAPIURL
	}
	return u
}

// GetDSN returns the PostgreSQL connection string.
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode)
}

// IsDevelopment reports whether the service runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}
