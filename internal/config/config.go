// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment string
	Server      ServerConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	AI          AIConfig
	Insights    InsightsConfig
	Forecast    ForecastConfig
	RateLimit   RateLimitConfig
	Log         LogConfig
	I18n        I18nConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	ReadTimeout  int
	WriteTimeout int
	IdleTimeout  int
	AllowOrigins []string
}

type DatabaseConfig struct {
	Driver       string // postgres or sqlite
	Host         string
	Port         string
	User         string
	Password     string
	Database     string
	SSLMode      string
	Path         string // sqlite file, ":memory:" allowed
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  int
	LogLevel     string
	Seed         bool
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
	// Key holding the recommendation rotation counter.
	RotationKey string
}

// AIConfig carries the text-generation credentials and sampling parameters.
// The key is required; see llm.NewGeminiClient.
type AIConfig struct {
	APIKey          string
	Model           string
	Temperature     float32
	MaxOutputTokens int32
	TopP            float32
	Timeout         time.Duration
}

type InsightsConfig struct {
	DefaultProductLimit int
	HighInventoryValue  float64
}

type ForecastConfig struct {
	Name         string
	Algorithm    string
	Version      string
	Months       int
	Days         int
	ProductLimit int
	Schedule     string
}

type RateLimitConfig struct {
	GeneralPerSecond float64
	GeneralBurst     int
	AIPerMinute      float64
	AIBurst          int
}

type LogConfig struct {
	Level  string
	Format string // json or text
}

type I18nConfig struct {
	DefaultLocale string
}

func Load() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	config := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			Host:         getEnv("SERVER_HOST", "localhost"),
			ReadTimeout:  getEnvAsInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout: getEnvAsInt("SERVER_WRITE_TIMEOUT", 60),
			IdleTimeout:  getEnvAsInt("SERVER_IDLE_TIMEOUT", 60),
			AllowOrigins: getEnvAsSlice("CORS_ALLOW_ORIGINS", []string{"http://localhost:5173"}),
		},
		Database: DatabaseConfig{
			Driver:       getEnv("DB_DRIVER", "postgres"),
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", ""),
			Database:     getEnv("DB_NAME", "dashboard"),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
			Path:         getEnv("DB_PATH", "dashboard.db"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 25),
			MaxLifetime:  getEnvAsInt("DB_MAX_LIFETIME", 300),
			LogLevel:     getEnv("DB_LOG_LEVEL", "warn"),
			Seed:         getEnvAsBool("DB_SEED", false),
		},
		Redis: RedisConfig{
			Enabled:     getEnvAsBool("REDIS_ENABLED", false),
			Host:        getEnv("REDIS_HOST", "localhost"),
			Port:        getEnv("REDIS_PORT", "6379"),
			Password:    getEnv("REDIS_PASSWORD", ""),
			DB:          getEnvAsInt("REDIS_DB", 0),
			RotationKey: getEnv("REDIS_ROTATION_KEY", "insights:recommendation:rotation"),
		},
		AI: AIConfig{
			APIKey:          getEnv("GEMINI_API_KEY", ""),
			Model:           getEnv("GEMINI_MODEL", "gemini-2.5-flash-lite"),
			Temperature:     float32(getEnvAsFloat("GEMINI_TEMPERATURE", 0.25)),
			MaxOutputTokens: int32(getEnvAsInt("GEMINI_MAX_OUTPUT_TOKENS", 180)),
			TopP:            float32(getEnvAsFloat("GEMINI_TOP_P", 0.9)),
			Timeout:         getEnvAsDuration("GEMINI_TIMEOUT", 20*time.Second),
		},
		Insights: InsightsConfig{
			DefaultProductLimit: getEnvAsInt("INSIGHTS_DEFAULT_LIMIT", 3),
			HighInventoryValue:  getEnvAsFloat("INSIGHTS_HIGH_INVENTORY_VALUE", 5000),
		},
		Forecast: ForecastConfig{
			Name:         getEnv("FORECAST_NAME", "dashboard-forecast"),
			Algorithm:    getEnv("FORECAST_ALGORITHM", "gemini-assisted"),
			Version:      getEnv("FORECAST_VERSION", "1"),
			Months:       getEnvAsInt("FORECAST_MONTHS", 6),
			Days:         getEnvAsInt("FORECAST_DAYS", 30),
			ProductLimit: getEnvAsInt("FORECAST_PRODUCT_LIMIT", 10),
			Schedule:     getEnv("FORECAST_SCHEDULE", ""),
		},
		RateLimit: RateLimitConfig{
			GeneralPerSecond: getEnvAsFloat("RATE_LIMIT_PER_SECOND", 10),
			GeneralBurst:     getEnvAsInt("RATE_LIMIT_BURST", 20),
			AIPerMinute:      getEnvAsFloat("AI_RATE_LIMIT_PER_MINUTE", 6),
			AIBurst:          getEnvAsInt("AI_RATE_LIMIT_BURST", 3),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
		I18n: I18nConfig{
			DefaultLocale: getEnv("DEFAULT_LOCALE", "en"),
		},
	}

	return config, config.Validate()
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}

	if c.Database.Password == "" && c.Database.Driver == "postgres" && c.Environment == "production" {
		return fmt.Errorf("database password is required in production")
	}

	if c.AI.Temperature < 0 || c.AI.Temperature > 2 {
		return fmt.Errorf("GEMINI_TEMPERATURE must be within [0, 2], got %v", c.AI.Temperature)
	}

	if c.AI.TopP <= 0 || c.AI.TopP > 1 {
		return fmt.Errorf("GEMINI_TOP_P must be within (0, 1], got %v", c.AI.TopP)
	}

	if c.Forecast.Months < 2 {
		return fmt.Errorf("FORECAST_MONTHS must be at least 2")
	}

	if c.Forecast.Days < 1 {
		return fmt.Errorf("FORECAST_DAYS must be positive")
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(strings.ToLower(value)); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
