package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database      DatabaseConfig
	Redis         RedisConfig
	JWT           JWTConfig
	CORS          CORSConfig
	Log           LogConfig
	Detector      DetectorConfig
	Enrichment    EnrichmentConfig
	Notifications NotificationConfig
	Pipeline      PipelineConfig
	Digest        DigestConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret   string
	Issuer   string
	Audience []string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// DetectorConfig points at the external intent detection service.
type DetectorConfig struct {
	Enabled bool
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// EnrichmentConfig governs the optional AI detail-enhancement pass.
type EnrichmentConfig struct {
	Enabled bool
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// NotificationConfig tunes the admin fan-out workers.
type NotificationConfig struct {
	WorkerConcurrency int
	WorkerRetries     int
	RetryDelay        time.Duration
	RosterCacheTTL    time.Duration
}

// PipelineConfig tunes the detection pipeline.
type PipelineConfig struct {
	DedupLockTTL    time.Duration
	DefaultDuration time.Duration
}

// DigestConfig gates the pending-intent export endpoint.
type DigestConfig struct {
	Enabled    bool
	MaxIntents int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:   v.GetString("JWT_SECRET"),
		Issuer:   v.GetString("JWT_ISSUER"),
		Audience: splitAndTrim(v.GetString("JWT_AUDIENCE")),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Detector = DetectorConfig{
		Enabled: v.GetBool("DETECTOR_ENABLED"),
		BaseURL: v.GetString("DETECTOR_BASE_URL"),
		APIKey:  v.GetString("DETECTOR_API_KEY"),
		Timeout: parseDuration(v.GetString("DETECTOR_TIMEOUT"), 5*time.Second),
	}

	cfg.Enrichment = EnrichmentConfig{
		Enabled: v.GetBool("ENRICHMENT_ENABLED"),
		BaseURL: v.GetString("ENRICHMENT_BASE_URL"),
		APIKey:  v.GetString("ENRICHMENT_API_KEY"),
		Timeout: parseDuration(v.GetString("ENRICHMENT_TIMEOUT"), 8*time.Second),
	}

	cfg.Notifications = NotificationConfig{
		WorkerConcurrency: v.GetInt("NOTIFY_WORKER_CONCURRENCY"),
		WorkerRetries:     v.GetInt("NOTIFY_WORKER_RETRIES"),
		RetryDelay:        parseDuration(v.GetString("NOTIFY_RETRY_DELAY"), 2*time.Second),
		RosterCacheTTL:    parseDuration(v.GetString("NOTIFY_ROSTER_CACHE_TTL"), 5*time.Minute),
	}

	cfg.Pipeline = PipelineConfig{
		DedupLockTTL:    parseDuration(v.GetString("PIPELINE_DEDUP_LOCK_TTL"), 30*time.Second),
		DefaultDuration: parseDuration(v.GetString("PIPELINE_DEFAULT_EVENT_DURATION"), 60*time.Minute),
	}

	cfg.Digest = DigestConfig{
		Enabled:    v.GetBool("ENABLE_DIGEST_EXPORT"),
		MaxIntents: v.GetInt("DIGEST_MAX_INTENTS"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "commune_intents")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_ISSUER", "")
	v.SetDefault("JWT_AUDIENCE", "")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("DETECTOR_ENABLED", false)
	v.SetDefault("DETECTOR_BASE_URL", "http://localhost:9090")
	v.SetDefault("DETECTOR_API_KEY", "")
	v.SetDefault("DETECTOR_TIMEOUT", "5s")

	v.SetDefault("ENRICHMENT_ENABLED", false)
	v.SetDefault("ENRICHMENT_BASE_URL", "http://localhost:9091")
	v.SetDefault("ENRICHMENT_API_KEY", "")
	v.SetDefault("ENRICHMENT_TIMEOUT", "8s")

	v.SetDefault("NOTIFY_WORKER_CONCURRENCY", 2)
	v.SetDefault("NOTIFY_WORKER_RETRIES", 3)
	v.SetDefault("NOTIFY_RETRY_DELAY", "2s")
	v.SetDefault("NOTIFY_ROSTER_CACHE_TTL", "5m")

	v.SetDefault("PIPELINE_DEDUP_LOCK_TTL", "30s")
	v.SetDefault("PIPELINE_DEFAULT_EVENT_DURATION", "60m")

	v.SetDefault("ENABLE_DIGEST_EXPORT", false)
	v.SetDefault("DIGEST_MAX_INTENTS", 100)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
