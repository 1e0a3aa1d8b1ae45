package config

import "fmt"

type ServerConfig struct {
	Host           string   `mapstructure:"host"`
	Port           int      `mapstructure:"port"`
	Mode           string   `mapstructure:"mode"`
	BaseURL        string   `mapstructure:"base_url"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

func (s *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

func (d *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		d.Username, d.Password, d.Host, d.Port, d.Database)
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

type PasswordConfig struct {
	BcryptCost int `mapstructure:"bcrypt_cost"`
}

type JWTConfig struct {
	Secret           string `mapstructure:"secret"`
	AccessExpMinutes int    `mapstructure:"access_exp_minutes"`
}

type AuthConfig struct {
	Password PasswordConfig `mapstructure:"password"`
	JWT      JWTConfig      `mapstructure:"jwt"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// SubscriptionConfig controls the aggregate subscription endpoint.
type SubscriptionConfig struct {
	// BaseURL is the public base used to build subscription links,
	// e.g. https://sub.guardino.dev
	BaseURL string `mapstructure:"base_url"`
	// FetchTimeoutSeconds bounds each per-node payload fetch.
	FetchTimeoutSeconds int `mapstructure:"fetch_timeout_seconds"`
	// CacheTTLSeconds is how long a merged payload may be served from cache.
	// Zero disables caching.
	CacheTTLSeconds int `mapstructure:"cache_ttl_seconds"`
}

// ProviderConfig controls outbound panel API calls.
type ProviderConfig struct {
	RequestTimeoutSeconds int `mapstructure:"request_timeout_seconds"`
}

// ReconciliationConfig controls the periodic jobs.
type ReconciliationConfig struct {
	TrafficSyncMinutes  int    `mapstructure:"traffic_sync_minutes"`
	CleanupRetryMinutes int    `mapstructure:"cleanup_retry_minutes"`
	BusinessTimezone    string `mapstructure:"business_timezone"`
}
