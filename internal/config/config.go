// Package config provides application configuration management using Viper.
// Configuration is loaded from YAML files and environment variables.
package config

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/viper"

	"trending-score-service/internal/domain"
)

// Config holds all application configuration.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Logger   LoggerConfig   `mapstructure:"logger"`
	Sentry   SentryConfig   `mapstructure:"sentry"`
	Scoring  ScoringConfig  `mapstructure:"scoring"`
	Recalc   RecalcConfig   `mapstructure:"recalc"`
	Verifier VerifierConfig `mapstructure:"verifier"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Name  string `mapstructure:"name"`
	Env   string `mapstructure:"env"` // development, staging, production
	Port  int    `mapstructure:"port"`
	Debug bool   `mapstructure:"debug"`

	// AdminToken is the shared secret required by the trigger surface
	// (recalculate / verify endpoints). Empty disables those endpoints.
	AdminToken string `mapstructure:"admin_token"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Name         string        `mapstructure:"name"`
	User         string        `mapstructure:"user"`
	Password     string        `mapstructure:"password"`
	SSLMode      string        `mapstructure:"ssl_mode"`
	MaxOpenConns int           `mapstructure:"max_open_conns"`
	MaxIdleConns int           `mapstructure:"max_idle_conns"`
	MaxLifetime  time.Duration `mapstructure:"max_lifetime"`
}

// DSN returns the PostgreSQL connection string.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// RedisConfig holds Redis connection settings for caching and distributed
// locking.
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// CacheConfig holds feed caching settings.
type CacheConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	FeedTTL   time.Duration `mapstructure:"feed_ttl"`
	KeyPrefix string        `mapstructure:"key_prefix"`
}

// LoggerConfig holds logging settings.
type LoggerConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, console
	Output string `mapstructure:"output"` // stdout, stderr, file path
}

// SentryConfig holds Sentry error tracking settings.
type SentryConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	DSN         string  `mapstructure:"dsn"`
	Environment string  `mapstructure:"environment"`
	SampleRate  float64 `mapstructure:"sample_rate"`
}

// WeightsConfig holds the event weight table.
type WeightsConfig struct {
	Upvote        float64 `mapstructure:"upvote"`
	Comment       float64 `mapstructure:"comment"`
	Guess         float64 `mapstructure:"guess"`
	IntroRequest  float64 `mapstructure:"intro_request"`
	IntroAccepted float64 `mapstructure:"intro_accepted"`
}

// MultipliersConfig holds the status multipliers.
type MultipliersConfig struct {
	Verified  float64 `mapstructure:"verified"`
	ForSale   float64 `mapstructure:"for_sale"`
	ExitReady float64 `mapstructure:"exit_ready"`
	Sold      float64 `mapstructure:"sold"`
}

// ScoringConfig holds the score engine settings: decay half-life, the event
// weight table, status multipliers, windows, and snapshot staleness. These
// are injected into the aggregator and estimator at construction time rather
// than living as package globals, so tests can supply alternate values.
type ScoringConfig struct {
	HalfLifeHours float64           `mapstructure:"half_life_hours"`
	Weights       WeightsConfig     `mapstructure:"weights"`
	Multipliers   MultipliersConfig `mapstructure:"multipliers"`

	// WindowHours maps window name to its lookback duration in hours,
	// e.g. {"24h": 24, "7d": 168}. Fixed at process start.
	WindowHours map[string]float64 `mapstructure:"windows"`

	// SnapshotMaxAge is how old a snapshot may be before feed assembly
	// falls back to the inline estimator.
	SnapshotMaxAge time.Duration `mapstructure:"snapshot_max_age"`
}

// ToDomain converts the scoring section into the domain configuration object.
func (c *ScoringConfig) ToDomain() domain.ScoringConfig {
	return domain.ScoringConfig{
		HalfLifeHours: c.HalfLifeHours,
		Weights: domain.EventWeights{
			Upvote:        c.Weights.Upvote,
			Comment:       c.Weights.Comment,
			Guess:         c.Weights.Guess,
			IntroRequest:  c.Weights.IntroRequest,
			IntroAccepted: c.Weights.IntroAccepted,
		},
		Multipliers: domain.StatusMultipliers{
			Verified:  c.Multipliers.Verified,
			ForSale:   c.Multipliers.ForSale,
			ExitReady: c.Multipliers.ExitReady,
			Sold:      c.Multipliers.Sold,
		},
	}
}

// Windows returns the configured windows sorted by ascending duration.
func (c *ScoringConfig) Windows() []domain.Window {
	windows := make([]domain.Window, 0, len(c.WindowHours))
	for name, hours := range c.WindowHours {
		windows = append(windows, domain.Window{
			Name:     name,
			Duration: time.Duration(hours * float64(time.Hour)),
		})
	}
	sort.Slice(windows, func(i, j int) bool {
		return windows[i].Duration < windows[j].Duration
	})

	return windows
}

// RecalcConfig holds recalculation job settings.
type RecalcConfig struct {
	Interval    time.Duration `mapstructure:"interval"`
	OnStartup   bool          `mapstructure:"on_startup"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Concurrency int           `mapstructure:"concurrency"`
}

// VerifierConfig holds revenue verification provider settings.
type VerifierConfig struct {
	Stripe VerifierEndpoint `mapstructure:"stripe"`
	Paddle VerifierEndpoint `mapstructure:"paddle"`
}

// VerifierEndpoint holds a single provider's configuration.
type VerifierEndpoint struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
	Retry   RetryConfig   `mapstructure:"retry"`
	CB      CBConfig      `mapstructure:"circuit_breaker"`
}

// RetryConfig holds retry settings.
type RetryConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	WaitTime    time.Duration `mapstructure:"wait_time"`
	MaxWaitTime time.Duration `mapstructure:"max_wait_time"`
}

// CBConfig holds circuit breaker settings.
type CBConfig struct {
	MaxRequests  uint32        `mapstructure:"max_requests"`
	Interval     time.Duration `mapstructure:"interval"`
	Timeout      time.Duration `mapstructure:"timeout"`
	FailureRatio float64       `mapstructure:"failure_ratio"`
}

// Load reads configuration from file and environment variables.
// Priority: env vars > config file > defaults
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Config file settings
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Config file not found, continue with defaults + env vars
	}

	// Environment variable settings
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Unmarshal config
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "trending-score-service")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", 8080)
	v.SetDefault("app.debug", true)
	v.SetDefault("app.admin_token", "")

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "trending_score")
	v.SetDefault("database.user", "app")
	v.SetDefault("database.password", "secret")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.max_lifetime", "5m")

	// Redis defaults
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	// Cache defaults
	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.feed_ttl", "2m")
	v.SetDefault("cache.key_prefix", "trending-score")

	// Logger defaults
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.output", "stdout")

	// Sentry defaults
	v.SetDefault("sentry.enabled", false)
	v.SetDefault("sentry.dsn", "")
	v.SetDefault("sentry.environment", "development")
	v.SetDefault("sentry.sample_rate", 1.0)

	// Scoring defaults, matching domain.DefaultScoringConfig
	v.SetDefault("scoring.half_life_hours", 36.0)
	v.SetDefault("scoring.weights.upvote", 1.0)
	v.SetDefault("scoring.weights.comment", 2.0)
	v.SetDefault("scoring.weights.guess", 1.5)
	v.SetDefault("scoring.weights.intro_request", 5.0)
	v.SetDefault("scoring.weights.intro_accepted", 10.0)
	v.SetDefault("scoring.multipliers.verified", 1.5)
	v.SetDefault("scoring.multipliers.for_sale", 1.25)
	v.SetDefault("scoring.multipliers.exit_ready", 1.25)
	v.SetDefault("scoring.multipliers.sold", 0.2)
	v.SetDefault("scoring.windows.24h", 24.0)
	v.SetDefault("scoring.windows.7d", 168.0)
	v.SetDefault("scoring.snapshot_max_age", "30m")

	// Recalc defaults
	v.SetDefault("recalc.interval", "15m")
	v.SetDefault("recalc.on_startup", true)
	v.SetDefault("recalc.timeout", "5m")
	v.SetDefault("recalc.concurrency", 8)

	// Stripe verifier defaults
	v.SetDefault("verifier.stripe.base_url", "http://localhost:8081")
	v.SetDefault("verifier.stripe.timeout", "10s")
	v.SetDefault("verifier.stripe.retry.max_attempts", 3)
	v.SetDefault("verifier.stripe.retry.wait_time", "1s")
	v.SetDefault("verifier.stripe.retry.max_wait_time", "5s")
	v.SetDefault("verifier.stripe.circuit_breaker.max_requests", 3)
	v.SetDefault("verifier.stripe.circuit_breaker.interval", "60s")
	v.SetDefault("verifier.stripe.circuit_breaker.timeout", "30s")
	v.SetDefault("verifier.stripe.circuit_breaker.failure_ratio", 0.5)

	// Paddle verifier defaults
	v.SetDefault("verifier.paddle.base_url", "http://localhost:8082")
	v.SetDefault("verifier.paddle.timeout", "10s")
	v.SetDefault("verifier.paddle.retry.max_attempts", 3)
	v.SetDefault("verifier.paddle.retry.wait_time", "1s")
	v.SetDefault("verifier.paddle.retry.max_wait_time", "5s")
	v.SetDefault("verifier.paddle.circuit_breaker.max_requests", 3)
	v.SetDefault("verifier.paddle.circuit_breaker.interval", "60s")
	v.SetDefault("verifier.paddle.circuit_breaker.timeout", "30s")
	v.SetDefault("verifier.paddle.circuit_breaker.failure_ratio", 0.5)
}
