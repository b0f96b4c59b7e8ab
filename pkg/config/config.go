package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"huddle/pkg/client"
	"huddle/pkg/logger"
)

type Config struct {
	StoreDriver string

	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	PostgresDSN          string
	PostgresMaxOpenConns int
	PostgresMaxIdleConns int

	RedisURL string

	Port string

	RateLimitRequests int
	RateLimitWindow   time.Duration

	RequestTimeout time.Duration
	IdempotencyTTL time.Duration
	MaxRequestSize int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	DefaultTimeZone string
	LobbyCodeLength int
	UserCodeLength  int

	HeartbeatInterval time.Duration
	StreamRetry       time.Duration
	SubscriberBuffer  int

	Log    *logger.Logger
	Client *client.Client
}

// Load reads configuration from the environment, after merging a local .env
// file when one exists. Invalid configuration is fatal.
func Load(serviceName string) *Config {
	envFileErr := godotenv.Load()

	cfg := &Config{
		StoreDriver: strings.ToLower(getEnvStr(EnvStoreDriver, DefaultStoreDriver)),

		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),

		PostgresDSN:          getEnvStr(EnvPostgresDSN, DefaultPostgresDSN),
		PostgresMaxOpenConns: getEnvNum(EnvPostgresMaxOpenConns, DefaultPostgresMaxOpenConns),
		PostgresMaxIdleConns: getEnvNum(EnvPostgresMaxIdleConns, DefaultPostgresMaxIdleConns),

		RedisURL: getEnvStr(EnvRedisURL, ""),

		Port: getEnvStr(EnvPort, DefaultPort),

		RateLimitRequests: getEnvNum(EnvRateLimitRequests, DefaultRateLimitRequests),
		RateLimitWindow:   getEnvDuration(EnvRateLimitWindow, DefaultRateLimitWindow),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		IdempotencyTTL: getEnvDuration(EnvIdempotencyTTL, DefaultIdempotencyTTL),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		DefaultTimeZone: getEnvStr(EnvDefaultTimeZone, DefaultTimeZone),
		LobbyCodeLength: getEnvNum(EnvLobbyCodeLength, DefaultLobbyCodeLength),
		UserCodeLength:  getEnvNum(EnvUserCodeLength, DefaultUserCodeLength),

		HeartbeatInterval: getEnvDuration(EnvHeartbeatInterval, DefaultHeartbeatInterval),
		StreamRetry:       getEnvDuration(EnvStreamRetry, DefaultStreamRetry),
		SubscriberBuffer:  getEnvNum(EnvSubscriberBuffer, DefaultSubscriberBuffer),

		Log: logger.New(logger.Config{
			Level:     getEnvStr(EnvLogLevel, DefaultLogLevel),
			Format:    getEnvStr(EnvLogFormat, logger.JSON),
			AddSource: true,
			Service:   serviceName,
		}),
		Client: client.NewClient(),
	}

	if envFileErr != nil && !errors.Is(envFileErr, fs.ErrNotExist) {
		cfg.Log.Warn("Failed to read .env file", "error", envFileErr)
	}

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

// SetStore connects the clients the configured store driver needs, plus Redis
// when a URL is set.
func (cfg *Config) SetStore() {
	switch cfg.StoreDriver {
	case StorePostgres:
		cfg.Client.SetPostgres(cfg.Log, cfg.PostgresDSN, cfg.PostgresMaxOpenConns, cfg.PostgresMaxIdleConns, cfg.MongoConnTimeout)
	default:
		cfg.Client.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
	}
	if cfg.RedisURL != "" {
		cfg.Client.SetRedis(cfg.Log, cfg.RedisURL, cfg.MongoConnTimeout)
	}
}

// Location resolves DefaultTimeZone. Validate has already checked it.
func (cfg *Config) Location() *time.Location {
	loc, err := time.LoadLocation(cfg.DefaultTimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (cfg *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	switch cfg.StoreDriver {
	case StoreMongo:
		if cfg.MongoURI == "" {
			errs = append(errs, "MongoURI cannot be empty")
		} else if !regexp.MustCompile(`^mongodb(\+srv)?://`).MatchString(cfg.MongoURI) {
			errs = append(errs, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", redactURI(cfg.MongoURI)))
		}
		if cfg.MongoDatabaseName == "" {
			errs = append(errs, "MongoDatabaseName cannot be empty")
		}
	case StorePostgres:
		if !regexp.MustCompile(`^postgres(ql)?://`).MatchString(cfg.PostgresDSN) {
			errs = append(errs, fmt.Sprintf("PostgresDSN must start with 'postgres://' or 'postgresql://', got: %s", redactURI(cfg.PostgresDSN)))
		}
		if cfg.PostgresMaxOpenConns <= 0 {
			errs = append(errs, fmt.Sprintf("PostgresMaxOpenConns must be positive, got: %d", cfg.PostgresMaxOpenConns))
		}
		if cfg.PostgresMaxIdleConns < 0 || cfg.PostgresMaxIdleConns > cfg.PostgresMaxOpenConns {
			errs = append(errs, fmt.Sprintf("PostgresMaxIdleConns must be between 0 and PostgresMaxOpenConns (%d), got: %d", cfg.PostgresMaxOpenConns, cfg.PostgresMaxIdleConns))
		}
	default:
		errs = append(errs, fmt.Sprintf("StoreDriver must be %q or %q, got: %s", StoreMongo, StorePostgres, cfg.StoreDriver))
	}

	if cfg.RedisURL != "" && !regexp.MustCompile(`^rediss?://`).MatchString(cfg.RedisURL) {
		errs = append(errs, fmt.Sprintf("RedisURL must start with 'redis://' or 'rediss://', got: %s", redactURI(cfg.RedisURL)))
	}

	positive := []struct {
		name  string
		value time.Duration
	}{
		{"MongoConnTimeout", cfg.MongoConnTimeout},
		{"RateLimitWindow", cfg.RateLimitWindow},
		{"RequestTimeout", cfg.RequestTimeout},
		{"IdempotencyTTL", cfg.IdempotencyTTL},
		{"ReadTimeout", cfg.ReadTimeout},
		{"WriteTimeout", cfg.WriteTimeout},
		{"IdleTimeout", cfg.IdleTimeout},
		{"ShutdownTimeout", cfg.ShutdownTimeout},
		{"HeartbeatInterval", cfg.HeartbeatInterval},
		{"StreamRetry", cfg.StreamRetry},
	}
	for _, p := range positive {
		if p.value <= 0 {
			errs = append(errs, fmt.Sprintf("%s must be positive, got: %s", p.name, p.value))
		}
	}

	if cfg.RateLimitRequests <= 0 {
		errs = append(errs, fmt.Sprintf("RateLimitRequests must be positive, got: %d", cfg.RateLimitRequests))
	}
	if cfg.MaxRequestSize <= 0 {
		errs = append(errs, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}
	if cfg.SubscriberBuffer <= 0 {
		errs = append(errs, fmt.Sprintf("SubscriberBuffer must be positive, got: %d", cfg.SubscriberBuffer))
	}

	if _, err := time.LoadLocation(cfg.DefaultTimeZone); err != nil || cfg.DefaultTimeZone == "" {
		errs = append(errs, fmt.Sprintf("DefaultTimeZone must be an IANA time zone, got: %q", cfg.DefaultTimeZone))
	}
	if cfg.LobbyCodeLength < 4 || cfg.LobbyCodeLength > 12 {
		errs = append(errs, fmt.Sprintf("LobbyCodeLength must be between 4 and 12, got: %d", cfg.LobbyCodeLength))
	}
	if cfg.UserCodeLength < 4 || cfg.UserCodeLength > 12 {
		errs = append(errs, fmt.Sprintf("UserCodeLength must be between 4 and 12, got: %d", cfg.UserCodeLength))
	}

	if len(errs) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, err := range errs {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"store_driver", cfg.StoreDriver,
		"mongo_uri", redactURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"postgres_dsn", redactURI(cfg.PostgresDSN),
		"redis_enabled", cfg.RedisURL != "",
		"port", cfg.Port,
		"rate_limit_requests", cfg.RateLimitRequests,
		"rate_limit_window", cfg.RateLimitWindow,
		"request_timeout", cfg.RequestTimeout,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"max_request_size", cfg.MaxRequestSize,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
		"default_time_zone", cfg.DefaultTimeZone,
		"lobby_code_length", cfg.LobbyCodeLength,
		"user_code_length", cfg.UserCodeLength,
		"heartbeat_interval", cfg.HeartbeatInterval,
		"subscriber_buffer", cfg.SubscriberBuffer,
	)
}

func (cfg *Config) GracefulShutdown() {
	cfg.Client.GracefulShutdown(cfg.Log)
}

var credentialRegex = regexp.MustCompile(`^([a-z+]+://)[^:/@]+:[^@]+@`)

func redactURI(uri string) string {
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
