// Package config handles loading and validation of application configuration
// from environment variables.
package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/DealDocs/dealdocs-backend/logger"
	"github.com/spf13/viper"
)

// Environment represents the application's running environment.
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvProduction  Environment = "production"
)

// ServerConfig holds server-specific configuration.
type ServerConfig struct {
	Environment    Environment `mapstructure:"ENVIRONMENT"`
	Port           string      `mapstructure:"PORT"`
	AllowedOrigins []string    `mapstructure:"ALLOWED_ORIGINS"`
	Version        string      `mapstructure:"VERSION"`
}

// DatabaseConfig holds PostgreSQL connection details.
type DatabaseConfig struct {
	Host         string `mapstructure:"HOST"`
	Port         int    `mapstructure:"PORT"`
	User         string `mapstructure:"USER"`
	Password     string `mapstructure:"PASSWORD"`
	Name         string `mapstructure:"NAME"`
	SSLMode      string `mapstructure:"SSL_MODE"`
	MaxOpenConns int    `mapstructure:"MAX_OPEN_CONNS"`
}

// URL returns a postgres:// connection URL for URL-based database tools.
func (c *DatabaseConfig) URL() string {
	sslmode := c.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(c.User),
		url.QueryEscape(c.Password),
		c.Host,
		c.Port,
		c.Name,
		sslmode,
	)
}

// RedisConfig holds Redis connection details for the event publisher.
type RedisConfig struct {
	Address  string `mapstructure:"ADDRESS"`
	Password string `mapstructure:"PASSWORD"`
	DB       int    `mapstructure:"DB"`
	UseTLS   bool   `mapstructure:"USE_TLS"`
}

// GateToleranceConfig is one (absolute dollars, relative fraction) rescue
// threshold pair of the review gate's second tier.
type GateToleranceConfig struct {
	Absolute float64 `mapstructure:"ABSOLUTE"`
	Percent  float64 `mapstructure:"PERCENT"`
}

// ReconciliationConfig exposes the gate rescue tolerances so operations can
// tune them without a rebuild. Defaults match the documented gate design.
type ReconciliationConfig struct {
	Arithmetic    GateToleranceConfig `mapstructure:"ARITHMETIC"`
	CrossDocument GateToleranceConfig `mapstructure:"CROSS_DOCUMENT"`
	OCR           GateToleranceConfig `mapstructure:"OCR"`
}

// Config is the root configuration object.
type Config struct {
	Server         ServerConfig         `mapstructure:"SERVER"`
	Database       DatabaseConfig       `mapstructure:"DATABASE"`
	Redis          RedisConfig          `mapstructure:"REDIS"`
	Reconciliation ReconciliationConfig `mapstructure:"RECONCILIATION"`
}

// LoadConfig reads configuration from the environment with sane defaults.
func LoadConfig() (*Config, error) {
	v := viper.New()
	log := logger.GetLogger()

	v.SetDefault("SERVER.ENVIRONMENT", EnvDevelopment)
	v.SetDefault("SERVER.PORT", "8080")
	v.SetDefault("SERVER.ALLOWED_ORIGINS", []string{"*"})
	v.SetDefault("SERVER.VERSION", "dev")
	v.SetDefault("DATABASE.HOST", "localhost")
	v.SetDefault("DATABASE.PORT", 5432)
	v.SetDefault("DATABASE.USER", "postgres")
	v.SetDefault("DATABASE.PASSWORD", "")
	v.SetDefault("DATABASE.NAME", "dealdocs_dev")
	v.SetDefault("DATABASE.SSL_MODE", "disable")
	v.SetDefault("DATABASE.MAX_OPEN_CONNS", 5)
	v.SetDefault("REDIS.ADDRESS", "localhost:6379")
	v.SetDefault("REDIS.PASSWORD", "")
	v.SetDefault("REDIS.DB", 0)
	v.SetDefault("REDIS.USE_TLS", false)
	v.SetDefault("LOG_LEVEL", "info")
	// Gate rescue tolerances; see internal/gate for what the tiers mean.
	v.SetDefault("RECONCILIATION.ARITHMETIC.ABSOLUTE", 50.0)
	v.SetDefault("RECONCILIATION.ARITHMETIC.PERCENT", 0.02)
	v.SetDefault("RECONCILIATION.CROSS_DOCUMENT.ABSOLUTE", 100.0)
	v.SetDefault("RECONCILIATION.CROSS_DOCUMENT.PERCENT", 0.05)
	v.SetDefault("RECONCILIATION.OCR.ABSOLUTE", 25.0)
	v.SetDefault("RECONCILIATION.OCR.PERCENT", 0.03)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	envBindings := [][2]string{
		{"SERVER.ENVIRONMENT", "SERVER_ENVIRONMENT"},
		{"SERVER.PORT", "PORT"},
		{"SERVER.ALLOWED_ORIGINS", "ALLOWED_ORIGINS"},
		{"SERVER.VERSION", "VERSION"},
		{"DATABASE.HOST", "DB_HOST"},
		{"DATABASE.PORT", "DB_PORT"},
		{"DATABASE.USER", "DB_USER"},
		{"DATABASE.PASSWORD", "DB_PASSWORD"},
		{"DATABASE.NAME", "DB_NAME"},
		{"DATABASE.SSL_MODE", "DB_SSL_MODE"},
		{"REDIS.ADDRESS", "REDIS_ADDRESS"},
		{"REDIS.PASSWORD", "REDIS_PASSWORD"},
		{"REDIS.DB", "REDIS_DB"},
		{"REDIS.USE_TLS", "REDIS_USE_TLS"},
		{"RECONCILIATION.ARITHMETIC.ABSOLUTE", "GATE_ARITHMETIC_ABSOLUTE"},
		{"RECONCILIATION.ARITHMETIC.PERCENT", "GATE_ARITHMETIC_PERCENT"},
		{"RECONCILIATION.CROSS_DOCUMENT.ABSOLUTE", "GATE_CROSS_DOCUMENT_ABSOLUTE"},
		{"RECONCILIATION.CROSS_DOCUMENT.PERCENT", "GATE_CROSS_DOCUMENT_PERCENT"},
		{"RECONCILIATION.OCR.ABSOLUTE", "GATE_OCR_ABSOLUTE"},
		{"RECONCILIATION.OCR.PERCENT", "GATE_OCR_PERCENT"},
	}
	for _, binding := range envBindings {
		if err := v.BindEnv(binding[0], binding[1]); err != nil {
			return nil, fmt.Errorf("failed to bind env var %s: %w", binding[1], err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	log.Infow("Configuration loaded",
		"environment", cfg.Server.Environment,
		"port", cfg.Server.Port,
		"db_host", cfg.Database.Host,
	)
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Environment != EnvDevelopment && c.Server.Environment != EnvProduction {
		return fmt.Errorf("invalid environment: %s", c.Server.Environment)
	}
	for name, t := range map[string]GateToleranceConfig{
		"arithmetic":     c.Reconciliation.Arithmetic,
		"cross_document": c.Reconciliation.CrossDocument,
		"ocr":            c.Reconciliation.OCR,
	} {
		if t.Absolute < 0 {
			return fmt.Errorf("reconciliation.%s.absolute must be >= 0", name)
		}
		if t.Percent < 0 || t.Percent > 1 {
			return fmt.Errorf("reconciliation.%s.percent must be in [0,1]", name)
		}
	}
	return nil
}
