package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	StorageMemory = "memory"
	StorageMongo  = "mongo"

	IdempotencyMemory = "memory"
	IdempotencyMongo  = "mongo"
	IdempotencyRedis  = "redis"
)

// Config aggregates application configuration values. Values come from an
// optional config.yaml and are overridden by environment variables.
type Config struct {
	Env                string
	HTTPAddr           string
	Timezone           string
	StorageDriver      string
	MongoURI           string
	MongoDB            string
	KafkaBrokers       []string
	KafkaTopicPrefix   string
	OutboxPollInterval time.Duration
	RetryBackoff       []time.Duration
	IdempotencyDriver  string
	RedisAddr          string
	RedisPassword      string
	RedisDB            int
	IdempotencyTTL     time.Duration
	JWTSecret          string
	JWTAudience        string
	JWTUserRoleClaim   bool
	BaseCurrency       string
	ListingsFixtures   string
	CORSOrigins        []string
}

// Location resolves Timezone, falling back to UTC.
func (c Config) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c Config) IsProduction() bool {
	return c.Env == "prod" || c.Env == "production"
}

// Load reads config.yaml from "." or "./config" when present, then applies
// environment overrides.
func Load() (Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}
	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "dev")
	v.SetDefault("APP_TIMEZONE", "UTC")
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("STORAGE_DRIVER", StorageMemory)
	v.SetDefault("MONGO_URI", "")
	v.SetDefault("MONGO_DB", "tripdesk")
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("KAFKA_TOPIC_PREFIX", "")
	v.SetDefault("OUTBOX_POLL_INTERVAL", "500ms")
	v.SetDefault("RETRY_BACKOFF", "1s,5s,30s")
	v.SetDefault("IDEMPOTENCY_DRIVER", IdempotencyMemory)
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("IDEMP_TTL", "168h")
	v.SetDefault("AUTH_JWT_SECRET", "")
	v.SetDefault("AUTH_JWT_AUDIENCE", "authenticated")
	v.SetDefault("AUTH_TRUST_USER_METADATA_ROLE", false)
	v.SetDefault("BASE_CURRENCY", "USD")
	v.SetDefault("LISTINGS_FIXTURES", "")
	v.SetDefault("CORS_ORIGINS", "*")
}

func fromViper(v *viper.Viper) (Config, error) {
	cfg := Config{
		Env:               strings.ToLower(v.GetString("APP_ENV")),
		HTTPAddr:          v.GetString("HTTP_ADDR"),
		Timezone:          v.GetString("APP_TIMEZONE"),
		StorageDriver:     strings.ToLower(strings.TrimSpace(v.GetString("STORAGE_DRIVER"))),
		MongoURI:          v.GetString("MONGO_URI"),
		MongoDB:           v.GetString("MONGO_DB"),
		KafkaBrokers:      splitList(v.GetString("KAFKA_BROKERS")),
		KafkaTopicPrefix:  v.GetString("KAFKA_TOPIC_PREFIX"),
		IdempotencyDriver: strings.ToLower(strings.TrimSpace(v.GetString("IDEMPOTENCY_DRIVER"))),
		RedisAddr:         v.GetString("REDIS_ADDR"),
		RedisPassword:     v.GetString("REDIS_PASSWORD"),
		RedisDB:           v.GetInt("REDIS_DB"),
		JWTSecret:         v.GetString("AUTH_JWT_SECRET"),
		JWTAudience:       v.GetString("AUTH_JWT_AUDIENCE"),
		JWTUserRoleClaim:  v.GetBool("AUTH_TRUST_USER_METADATA_ROLE"),
		BaseCurrency:      strings.ToUpper(strings.TrimSpace(v.GetString("BASE_CURRENCY"))),
		ListingsFixtures:  v.GetString("LISTINGS_FIXTURES"),
		CORSOrigins:       splitList(v.GetString("CORS_ORIGINS")),
	}

	var err error
	if cfg.OutboxPollInterval, err = parseDuration("OUTBOX_POLL_INTERVAL", v.GetString("OUTBOX_POLL_INTERVAL")); err != nil {
		return Config{}, err
	}
	if cfg.IdempotencyTTL, err = parseDuration("IDEMP_TTL", v.GetString("IDEMP_TTL")); err != nil {
		return Config{}, err
	}
	for _, raw := range splitList(v.GetString("RETRY_BACKOFF")) {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return Config{}, fmt.Errorf("invalid RETRY_BACKOFF component %q: %w", raw, err)
		}
		cfg.RetryBackoff = append(cfg.RetryBackoff, d)
	}
	if cfg.Timezone != "" {
		if _, err := time.LoadLocation(cfg.Timezone); err != nil {
			return Config{}, fmt.Errorf("invalid APP_TIMEZONE %q: %w", cfg.Timezone, err)
		}
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.StorageDriver {
	case StorageMemory:
	case StorageMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("MONGO_URI is required when STORAGE_DRIVER=%s", StorageMongo)
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}
	switch c.IdempotencyDriver {
	case IdempotencyMemory:
	case IdempotencyMongo:
		if c.StorageDriver != StorageMongo {
			return fmt.Errorf("IDEMPOTENCY_DRIVER=%s requires STORAGE_DRIVER=%s", IdempotencyMongo, StorageMongo)
		}
	case IdempotencyRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required when IDEMPOTENCY_DRIVER=%s", IdempotencyRedis)
		}
	default:
		return fmt.Errorf("unknown IDEMPOTENCY_DRIVER %q", c.IdempotencyDriver)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("AUTH_JWT_SECRET is required")
	}
	if len(c.BaseCurrency) != 3 {
		return fmt.Errorf("BASE_CURRENCY must be a 3-letter code, got %q", c.BaseCurrency)
	}
	if c.OutboxPollInterval <= 0 {
		return fmt.Errorf("OUTBOX_POLL_INTERVAL must be positive")
	}
	return nil
}

func parseDuration(key, raw string) (time.Duration, error) {
	d, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid %s duration: %w", key, err)
	}
	return d, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
