package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	BackendApper    = "apper"
	BackendPostgres = "postgres"
)

type Config struct {
	Port           string        `mapstructure:"PORT"`
	Env            string        `mapstructure:"ENV"`
	RecordBackend  string        `mapstructure:"RECORD_BACKEND"`
	ApperBaseURL   string        `mapstructure:"APPER_BASE_URL"`
	ApperProjectID string        `mapstructure:"APPER_PROJECT_ID"`
	ApperPublicKey string        `mapstructure:"APPER_PUBLIC_KEY"`
	ApperTimeout   time.Duration `mapstructure:"APPER_TIMEOUT"`
	DatabaseURL    string        `mapstructure:"DATABASE_URL"`
	DBMaxConns     int32         `mapstructure:"DB_MAX_CONNS"`
	DBMinConns     int32         `mapstructure:"DB_MIN_CONNS"`
	CORSOrigins    []string      `mapstructure:"CORS_ORIGINS"`
	KafkaBrokers   []string      `mapstructure:"KAFKA_BROKERS"`
	KafkaTopic     string        `mapstructure:"KAFKA_TOPIC"`
	BodyLimit      string        `mapstructure:"BODY_LIMIT"`
	RequestTimeout time.Duration `mapstructure:"REQUEST_TIMEOUT"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("RECORD_BACKEND", BackendApper)
	v.SetDefault("APPER_TIMEOUT", "15s")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_MIN_CONNS", 2)
	v.SetDefault("CORS_ORIGINS", "http://localhost:5173")
	v.SetDefault("KAFKA_TOPIC", "clinic.records")
	v.SetDefault("BODY_LIMIT", "1M")
	v.SetDefault("REQUEST_TIMEOUT", "30s")

	// Bind env vars explicitly so Unmarshal picks them up
	for _, key := range []string{
		"PORT", "ENV", "RECORD_BACKEND",
		"APPER_BASE_URL", "APPER_PROJECT_ID", "APPER_PUBLIC_KEY", "APPER_TIMEOUT",
		"DATABASE_URL", "DB_MAX_CONNS", "DB_MIN_CONNS",
		"CORS_ORIGINS", "KAFKA_BROKERS", "KAFKA_TOPIC", "BODY_LIMIT", "REQUEST_TIMEOUT",
	} {
		v.BindEnv(key)
	}

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.CORSOrigins = splitList(cfg.CORSOrigins, v.GetString("CORS_ORIGINS"))
	cfg.KafkaBrokers = splitList(cfg.KafkaBrokers, v.GetString("KAFKA_BROKERS"))
	cfg.RecordBackend = strings.ToLower(strings.TrimSpace(cfg.RecordBackend))

	return cfg, nil
}

// splitList normalizes a comma-separated setting, dropping blanks.
func splitList(parsed []string, raw string) []string {
	if len(parsed) == 0 && raw != "" {
		parsed = strings.Split(raw, ",")
	}
	out := make([]string, 0, len(parsed))
	for _, item := range parsed {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// KafkaEnabled reports whether change events should be published.
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// Validate checks that the selected record backend is fully configured.
func (c *Config) Validate() error {
	switch c.RecordBackend {
	case BackendApper:
		if c.ApperBaseURL == "" {
			return fmt.Errorf("APPER_BASE_URL is required when RECORD_BACKEND is %q", BackendApper)
		}
		if c.ApperProjectID == "" || c.ApperPublicKey == "" {
			return fmt.Errorf("APPER_PROJECT_ID and APPER_PUBLIC_KEY are required when RECORD_BACKEND is %q", BackendApper)
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when RECORD_BACKEND is %q", BackendPostgres)
		}
	default:
		return fmt.Errorf("RECORD_BACKEND must be %q or %q, got %q", BackendApper, BackendPostgres, c.RecordBackend)
	}

	if c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS (%d) must not exceed DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns)
	}
	if c.KafkaEnabled() && c.KafkaTopic == "" {
		return fmt.Errorf("KAFKA_TOPIC is required when KAFKA_BROKERS is set")
	}
	return nil
}
