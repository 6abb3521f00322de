package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Engine  EngineConfig  `mapstructure:"engine"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Transport string `mapstructure:"transport"`
	HTTPPort  int    `mapstructure:"http_port"`
}

// EngineConfig holds execution engine configuration
type EngineConfig struct {
	PoolSize              int    `mapstructure:"pool_size"`
	QueueDepth            int    `mapstructure:"queue_depth"`
	DefaultTimeoutMs      int    `mapstructure:"default_timeout_ms"`
	MaxTimeoutMs          int    `mapstructure:"max_timeout_ms"`
	DefaultMaxOutputBytes int    `mapstructure:"default_max_output_bytes"`
	MaxOutputBytes        int    `mapstructure:"max_output_bytes"`
	CPUTimeSec            int    `mapstructure:"cpu_time_sec"`
	MemoryMB              int    `mapstructure:"memory_mb"`
	InternalRetries       int    `mapstructure:"internal_retries"`
	LanguagesFile         string `mapstructure:"languages_file"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Mode  string `mapstructure:"mode"`
	Level string `mapstructure:"level"`
}

// New loads and validates the application configuration
func New() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	// Set default values
	viper.SetDefault("server.transport", "stdio")
	viper.SetDefault("server.http_port", 8080)

	viper.SetDefault("engine.pool_size", 4)
	viper.SetDefault("engine.queue_depth", 16)
	viper.SetDefault("engine.default_timeout_ms", 10000)
	viper.SetDefault("engine.max_timeout_ms", 60000)
	viper.SetDefault("engine.default_max_output_bytes", 64*1024)
	viper.SetDefault("engine.max_output_bytes", 1024*1024)
	viper.SetDefault("engine.cpu_time_sec", 10)
	viper.SetDefault("engine.memory_mb", 512)
	viper.SetDefault("engine.internal_retries", 1)
	viper.SetDefault("engine.languages_file", "")

	viper.SetDefault("logging.mode", "production")
	viper.SetDefault("logging.level", "info")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// If config file not found, continue with defaults
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Validate configuration
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation error: %w", err)
	}

	return &config, nil
}

// validate ensures the configuration is valid
func (c *Config) validate() error {
	if c.Server.Transport != "stdio" && c.Server.Transport != "http" {
		return fmt.Errorf("invalid server.transport: %s, must be 'stdio' or 'http'", c.Server.Transport)
	}

	if c.Engine.PoolSize <= 0 {
		return fmt.Errorf("engine.pool_size must be positive, got: %d", c.Engine.PoolSize)
	}

	if c.Engine.QueueDepth < 0 {
		return fmt.Errorf("engine.queue_depth must not be negative, got: %d", c.Engine.QueueDepth)
	}

	if c.Engine.DefaultTimeoutMs <= 0 {
		return fmt.Errorf("engine.default_timeout_ms must be positive, got: %d", c.Engine.DefaultTimeoutMs)
	}

	if c.Engine.MaxTimeoutMs < c.Engine.DefaultTimeoutMs {
		return fmt.Errorf("engine.max_timeout_ms must be at least engine.default_timeout_ms, got: %d < %d",
			c.Engine.MaxTimeoutMs, c.Engine.DefaultTimeoutMs)
	}

	if c.Engine.DefaultMaxOutputBytes <= 0 {
		return fmt.Errorf("engine.default_max_output_bytes must be positive, got: %d", c.Engine.DefaultMaxOutputBytes)
	}

	if c.Engine.MaxOutputBytes < c.Engine.DefaultMaxOutputBytes {
		return fmt.Errorf("engine.max_output_bytes must be at least engine.default_max_output_bytes, got: %d < %d",
			c.Engine.MaxOutputBytes, c.Engine.DefaultMaxOutputBytes)
	}

	if c.Engine.CPUTimeSec < 0 {
		return fmt.Errorf("engine.cpu_time_sec must not be negative, got: %d", c.Engine.CPUTimeSec)
	}

	if c.Engine.MemoryMB < 0 {
		return fmt.Errorf("engine.memory_mb must not be negative, got: %d", c.Engine.MemoryMB)
	}

	if c.Engine.InternalRetries < 0 {
		return fmt.Errorf("engine.internal_retries must not be negative, got: %d", c.Engine.InternalRetries)
	}

	if c.Logging.Mode != "production" && c.Logging.Mode != "development" {
		return fmt.Errorf("invalid logging.mode: %s, must be 'production' or 'development'", c.Logging.Mode)
	}

	return nil
}

// DefaultTimeout returns the default execution timeout as a duration
func (c *Config) DefaultTimeout() time.Duration {
	return time.Duration(c.Engine.DefaultTimeoutMs) * time.Millisecond
}

// MaxTimeout returns the hard cap applied to per-request timeout overrides
func (c *Config) MaxTimeout() time.Duration {
	return time.Duration(c.Engine.MaxTimeoutMs) * time.Millisecond
}
