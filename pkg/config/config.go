package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	App      AppConfig
	Server   ServerConfig
	Search   SearchConfig
	Store    StoreConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Location LocationConfig
	OTEL     OTELConfig
}

// AppConfig holds process-wide settings
type AppConfig struct {
	Env         string
	ServiceName string
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host           string
	Port           int
	AllowedOrigins []string
	// ShutdownTimeout bounds graceful shutdown
	ShutdownTimeout time.Duration
}

// SearchConfig holds the remote hospital search service configuration
type SearchConfig struct {
	BaseURL string
	Timeout time.Duration
	// MockOnDecodeFailure substitutes the built-in mock payload when the
	// service answers with a body that does not decode.
	MockOnDecodeFailure bool
}

// StoreConfig selects the profile/eligibility store backend
type StoreConfig struct {
	Backend   string // memory, redis or postgres
	KeyPrefix string
	TTL       time.Duration
	SeedFile  string
	// CacheEnabled puts a Redis read-through cache in front of postgres
	CacheEnabled bool
	CacheTTL     time.Duration
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// LocationConfig holds the fixed device location used by the server and CLI
type LocationConfig struct {
	Latitude       float64
	Longitude      float64
	AccuracyMeters float64
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

// DefaultSearchBaseURL is the hosted insurance hospital agent.
const DefaultSearchBaseURL = "https://insurance-hospital-agent-699959385877.us-central1.run.app"

// Load loads configuration from environment variables. A .env file in the
// working directory is read first when present; real environment variables win.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	env := getEnv("APP_ENV", "production")

	return &Config{
		App: AppConfig{
			Env:         env,
			ServiceName: getEnv("SERVICE_NAME", "hospital-cost-search"),
		},
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvAsInt("SERVER_PORT", 8080),
			AllowedOrigins:  getEnvAsList("ALLOWED_ORIGINS"),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 15*time.Second),
		},
		Search: SearchConfig{
			BaseURL:             getEnv("SEARCH_BASE_URL", DefaultSearchBaseURL),
			Timeout:             getEnvAsDuration("SEARCH_TIMEOUT", 60*time.Second),
			MockOnDecodeFailure: getEnvAsBool("SEARCH_MOCK_FALLBACK", env == "development"),
		},
		Store: StoreConfig{
			Backend:   getEnv("STORE_BACKEND", "memory"),
			KeyPrefix: getEnv("STORE_KEY_PREFIX", "hcs"),
			TTL:       getEnvAsDuration("STORE_TTL", 0),
			SeedFile:  getEnv("STORE_SEED_FILE", ""),

			CacheEnabled: getEnvAsBool("STORE_CACHE_ENABLED", false),
			CacheTTL:     getEnvAsDuration("STORE_CACHE_TTL", 5*time.Minute),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "hospital_cost_search"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Location: LocationConfig{
			Latitude:       getEnvAsFloat("LOCATION_LAT", 40.71427),
			Longitude:      getEnvAsFloat("LOCATION_LNG", -74.00597),
			AccuracyMeters: getEnvAsFloat("LOCATION_ACCURACY_METERS", 10),
		},
		OTEL: OTELConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "hospital-cost-search"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
	}, nil
}

// IsDevelopment reports whether the process runs in development mode
func (c *AppConfig) IsDevelopment() bool {
	return c.Env == "development"
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
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

func getEnvAsList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
