// Package config loads service settings from the environment.
package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Environment keys.
const (
	EnvFilePathKey    = "ENV_PATH"
	AppPortKey        = "APP_PORT"
	APIPrefixKey      = "API_PREFIX"
	DatabaseDriverKey = "DATABASE_DRIVER"
	DatabaseDSNKey    = "DATABASE_DSN"
	RabbitMQURLKey    = "RABBITMQ_URL"
	RabbitMQQueueKey  = "RABBITMQ_QUEUE"
	RabbitMQAuditKey  = "RABBITMQ_AUDIT"
	LogLevelKey       = "LOG_LEVEL"
	LogPrettyKey      = "LOG_PRETTY"

	DefaultEnvFilePath = ".env"
)

// Config is the runtime configuration of the service.
type Config struct {
	AppPort   string `validate:"required"`
	APIPrefix string `validate:"required,startswith=/"`
	Database  DatabaseConfig
	RabbitMQ  RabbitMQConfig
	Log       LogConfig
}

// DatabaseConfig selects the product store. The memory driver ignores DSN.
type DatabaseConfig struct {
	Driver string `validate:"required,oneof=postgres sqlite memory"`
	DSN    string `validate:"required_unless=Driver memory"`
}

// RabbitMQConfig configures product event publishing. An empty URL disables it.
type RabbitMQConfig struct {
	URL   string `validate:"omitempty,url"`
	Queue string `validate:"required"`
	Audit bool
}

// LogConfig configures the zerolog logger.
type LogConfig struct {
	Level  string `validate:"required,oneof=trace debug info warn error fatal panic disabled"`
	Pretty bool
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(AppPortKey, ":8080")
	v.SetDefault(APIPrefixKey, "/api")
	v.SetDefault(DatabaseDriverKey, "sqlite")
	v.SetDefault(DatabaseDSNKey, "file:catalogo.db?cache=shared")
	v.SetDefault(RabbitMQURLKey, "")
	v.SetDefault(RabbitMQQueueKey, "product_events")
	v.SetDefault(RabbitMQAuditKey, false)
	v.SetDefault(LogLevelKey, "info")
	v.SetDefault(LogPrettyKey, false)
}

// Load reads the optional .env file named by ENV_PATH, then the process
// environment, and validates the result.
func Load() (*Config, error) {
	envPath := os.Getenv(EnvFilePathKey)
	if envPath == "" {
		envPath = DefaultEnvFilePath
	}
	if _, err := os.Stat(envPath); err == nil {
		if err := godotenv.Load(envPath); err != nil {
			return nil, fmt.Errorf("failed to load env file %s: %w", envPath, err)
		}
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()
	return FromViper(v)
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	conf := &Config{
		AppPort:   v.GetString(AppPortKey),
		APIPrefix: v.GetString(APIPrefixKey),
		Database: DatabaseConfig{
			Driver: v.GetString(DatabaseDriverKey),
			DSN:    v.GetString(DatabaseDSNKey),
		},
		RabbitMQ: RabbitMQConfig{
			URL:   v.GetString(RabbitMQURLKey),
			Queue: v.GetString(RabbitMQQueueKey),
			Audit: v.GetBool(RabbitMQAuditKey),
		},
		Log: LogConfig{
			Level:  v.GetString(LogLevelKey),
			Pretty: v.GetBool(LogPrettyKey),
		},
	}

	if err := validator.New().Struct(conf); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return conf, nil
}
