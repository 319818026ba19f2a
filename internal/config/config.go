package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	envHost                 = "HOST"
	envPort                 = "PORT"
	envStorageType          = "STORAGE_TYPE"
	envRedisURL             = "REDIS_URL"
	envMongoURI             = "MONGO_URI"
	envMongoDatabase        = "MONGO_DATABASE"
	envJWTSecret            = "JWT_SECRET"
	envTokenTTL             = "TOKEN_TTL"
	envCORSAllowedOrigins   = "CORS_ALLOWED_ORIGINS"
	envLogLevel             = "LOG_LEVEL"
	envMetricsEnabled       = "METRICS_ENABLED"
	envStoreConnectAttempts = "STORE_CONNECT_ATTEMPTS"
	envAllowDegradedStart   = "ALLOW_DEGRADED_START"
	envHealthInterval       = "HEALTH_INTERVAL"

	defaultPort                 = 8080
	defaultStorageType          = StorageMemory
	defaultMongoDatabase        = "scorekeeper"
	defaultTokenTTL             = 24 * time.Hour
	defaultLogLevel             = "info"
	defaultStoreConnectAttempts = 5
	defaultHealthInterval       = 15 * time.Second

	// DevJWTSecret signs tokens when running against memory storage without JWT_SECRET
	DevJWTSecret = "scorekeeper-dev-secret"
)

var defaultAllowedOrigins = []string{"http://localhost:3000"}

// Storage backends
const (
	StorageMemory = "memory"
	StorageRedis  = "redis"
	StorageMongo  = "mongo"
)

// Config holds runtime configuration for the server
type Config struct {
	Host string
	Port int

	StorageType   string
	RedisURL      string
	MongoURI      string
	MongoDatabase string

	JWTSecret string
	TokenTTL  time.Duration

	AllowedOrigins []string
	LogLevel       slog.Level
	MetricsEnabled bool

	// StoreConnectAttempts is how many times startup pings the store before giving up
	StoreConnectAttempts int
	// AllowDegradedStart keeps the server up when the store is unreachable at startup
	AllowDegradedStart bool
	HealthInterval     time.Duration
}

// Load reads an optional .env file and then environment variables.
// Variables already set in the environment win over the file.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	level, err := parseLevel(envOrDefault(envLogLevel, defaultLogLevel))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Host:                 envOrDefault(envHost, ""),
		Port:                 intEnvOrDefault(envPort, defaultPort),
		StorageType:          strings.ToLower(envOrDefault(envStorageType, defaultStorageType)),
		RedisURL:             envOrDefault(envRedisURL, ""),
		MongoURI:             envOrDefault(envMongoURI, ""),
		MongoDatabase:        envOrDefault(envMongoDatabase, defaultMongoDatabase),
		JWTSecret:            envOrDefault(envJWTSecret, ""),
		TokenTTL:             durationEnvOrDefault(envTokenTTL, defaultTokenTTL),
		AllowedOrigins:       listEnvOrDefault(envCORSAllowedOrigins, defaultAllowedOrigins),
		LogLevel:             level,
		MetricsEnabled:       boolEnvOrDefault(envMetricsEnabled, true),
		StoreConnectAttempts: intEnvOrDefault(envStoreConnectAttempts, defaultStoreConnectAttempts),
		AllowDegradedStart:   boolEnvOrDefault(envAllowDegradedStart, true),
		HealthInterval:       durationEnvOrDefault(envHealthInterval, defaultHealthInterval),
	}

	if cfg.JWTSecret == "" && cfg.StorageType == StorageMemory {
		cfg.JWTSecret = DevJWTSecret
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that the settings for the selected storage backend are present
func (c Config) Validate() error {
	var errs []error

	switch c.StorageType {
	case StorageMemory:
	case StorageRedis:
		if c.RedisURL == "" {
			errs = append(errs, fmt.Errorf("%s is required when %s=%s", envRedisURL, envStorageType, StorageRedis))
		}
	case StorageMongo:
		if c.MongoURI == "" {
			errs = append(errs, fmt.Errorf("%s is required when %s=%s", envMongoURI, envStorageType, StorageMongo))
		}
	default:
		errs = append(errs, fmt.Errorf("invalid %s %q: must be memory, redis or mongo", envStorageType, c.StorageType))
	}

	if c.JWTSecret == "" {
		errs = append(errs, fmt.Errorf("%s is required", envJWTSecret))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid %s %d", envPort, c.Port))
	}

	return errors.Join(errs...)
}

func parseLevel(raw string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(raw)); err != nil {
		return level, fmt.Errorf("invalid %s %q: %w", envLogLevel, raw, err)
	}
	return level, nil
}
