package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Claims   ClaimsConfig   `mapstructure:"claims"`
	Logger   LoggerConfig   `mapstructure:"logger"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// ClaimsConfig holds the validation-engine and reporting constants
type ClaimsConfig struct {
	MaxMonthlyHours     float64 `mapstructure:"max_monthly_hours"`
	HighAmountThreshold float64 `mapstructure:"high_amount_threshold"`
	StaleAfterMonths    int     `mapstructure:"stale_after_months"`
	RecentClaims        int     `mapstructure:"recent_claims"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
	BufferSize int    `mapstructure:"buffer_size"`
}

// Load loads configuration from file and environment variables. A missing
// config file is not an error; defaults and env vars apply.
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("CMCS")
	viper.AutomaticEnv()

	setDefaults()

	if _, err := os.Stat(configPath); err == nil {
		if err := viper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", 30*time.Second)
	viper.SetDefault("server.write_timeout", 30*time.Second)

	viper.SetDefault("database.path", "data/cmcs.db")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("database.conn_max_lifetime", time.Hour)

	viper.SetDefault("claims.max_monthly_hours", 200.0)
	viper.SetDefault("claims.high_amount_threshold", 50000.0)
	viper.SetDefault("claims.stale_after_months", 3)
	viper.SetDefault("claims.recent_claims", 5)

	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.output_path", "stdout")
	viper.SetDefault("logger.format", "console")
	viper.SetDefault("logger.buffer_size", 1000)
}

// Validate checks the configuration for invalid values
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database path is required")
	}
	if c.Claims.MaxMonthlyHours <= 0 {
		return fmt.Errorf("claims.max_monthly_hours must be positive, got %v", c.Claims.MaxMonthlyHours)
	}
	if c.Claims.HighAmountThreshold <= 0 {
		return fmt.Errorf("claims.high_amount_threshold must be positive, got %v", c.Claims.HighAmountThreshold)
	}
	if c.Claims.StaleAfterMonths <= 0 {
		return fmt.Errorf("claims.stale_after_months must be positive, got %d", c.Claims.StaleAfterMonths)
	}
	return nil
}
