// Package config loads application configuration from file and environment.
package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/viper"

	sharedConfig "github.com/guardino-io/guardino/internal/shared/config"
)

type Config struct {
	Server         sharedConfig.ServerConfig         `mapstructure:"server"`
	Database       sharedConfig.DatabaseConfig       `mapstructure:"database"`
	Logger         sharedConfig.LoggerConfig         `mapstructure:"logger"`
	Auth           sharedConfig.AuthConfig           `mapstructure:"auth"`
	Redis          sharedConfig.RedisConfig          `mapstructure:"redis"`
	Subscription   sharedConfig.SubscriptionConfig   `mapstructure:"subscription"`
	Provider       sharedConfig.ProviderConfig       `mapstructure:"provider"`
	Reconciliation sharedConfig.ReconciliationConfig `mapstructure:"reconciliation"`
}

var (
	appConfig   *Config
	appConfigMu sync.RWMutex
)

// Load loads configuration from file and environment variables
func Load(env string) (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../configs")
	viper.AddConfigPath("../../configs")

	viper.SetEnvPrefix("GUARDINO")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Allow env parameter to override server mode if provided
	if env != "" && env != "default" {
		viper.Set("server.mode", env)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	appConfigMu.Lock()
	appConfig = &config
	appConfigMu.Unlock()

	return &config, nil
}

// Get returns the loaded configuration
func Get() *Config {
	appConfigMu.RLock()
	defer appConfigMu.RUnlock()
	return appConfig
}

// setDefaults sets default configuration values
func setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.mode", "debug")
	viper.SetDefault("server.base_url", "http://localhost:8080")

	// Database defaults
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 3306)
	viper.SetDefault("database.username", "root")
	viper.SetDefault("database.password", "password")
	viper.SetDefault("database.database", "guardino_dev")
	viper.SetDefault("database.max_idle_conns", 10)
	viper.SetDefault("database.max_open_conns", 100)
	viper.SetDefault("database.conn_max_lifetime", 60)

	// Logger defaults
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.format", "console")
	viper.SetDefault("logger.output_path", "stdout")

	// Auth defaults
	viper.SetDefault("auth.password.bcrypt_cost", 12)
	viper.SetDefault("auth.jwt.access_exp_minutes", 60)

	// Redis defaults
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.db", 0)

	// Subscription defaults
	viper.SetDefault("subscription.fetch_timeout_seconds", 10)
	viper.SetDefault("subscription.cache_ttl_seconds", 60)

	// Provider defaults
	viper.SetDefault("provider.request_timeout_seconds", 15)

	// Reconciliation defaults
	viper.SetDefault("reconciliation.traffic_sync_minutes", 5)
	viper.SetDefault("reconciliation.cleanup_retry_minutes", 10)
	viper.SetDefault("reconciliation.business_timezone", "Asia/Tehran")
}
