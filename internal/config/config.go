package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Erp      ErpConfig      `mapstructure:"erp"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Admin    AdminConfig    `mapstructure:"admin"`
}

// ServerConfig holds the HTTP API configuration
type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Host string `mapstructure:"host"`
}

// ErpConfig bounds the RPC calls made against tenant ERP endpoints. The
// endpoints themselves are per-tenant configuration, not deployment
// configuration.
type ErpConfig struct {
	Timeout              int  `mapstructure:"timeout"`
	MaxRequestsPerSecond int  `mapstructure:"max_requests_per_second"`
	SearchLimit          int  `mapstructure:"search_limit"`
	ProductLimit         int  `mapstructure:"product_limit"`
	FallbackLimit        int  `mapstructure:"fallback_limit"`
	InsecureTLS          bool `mapstructure:"insecure_tls"`
}

// DatabaseConfig holds the tenant configuration database connection
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
}

// RedisConfig holds Redis connection details for fetch status and events
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	Database int    `mapstructure:"database"`
}

// AdminConfig guards the administrative API surface. A per-deployment token
// replaces the old ambient admin-password state.
type AdminConfig struct {
	Token string `mapstructure:"token"`
}

// Load loads configuration from YAML file with environment variable overrides
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	setDefaults()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil, fmt.Errorf("config.yaml file not found in current directory")
		}
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.host", "localhost")

	viper.SetDefault("erp.timeout", 30)
	viper.SetDefault("erp.max_requests_per_second", 10)
	viper.SetDefault("erp.search_limit", 2000)
	viper.SetDefault("erp.product_limit", 500)
	viper.SetDefault("erp.fallback_limit", 200)
	viper.SetDefault("erp.insecure_tls", false)

	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.name", "storefront")
	viper.SetDefault("database.user", "storefront_user")
	viper.SetDefault("database.password", "storefront_pass")

	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.database", 0)

	viper.SetDefault("admin.token", "")
}
