// Package config loads application configuration from config files,
// environment variables, and defaults, in that order of precedence
// reversed: environment overrides file overrides defaults.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Environment values.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Default values applied when neither file nor environment provides one.
const (
	defaultDatabaseHost    = "localhost"
	defaultDatabasePort    = "5432"
	defaultDatabaseName    = "contactscout"
	defaultDatabaseSSLMode = "disable"

	defaultCrawlerMaxDepth    = 2
	defaultCrawlerMaxPages    = 25
	defaultCrawlerParallelism = 2
	defaultCrawlerDelay       = time.Second
	defaultCrawlerTimeout     = 15 * time.Second

	defaultLLMModel   = "gpt-4o-mini"
	defaultLLMTimeout = 20 * time.Second

	defaultServerAddress = ":8080"

	defaultDiscoveryBatchSize = 50
	defaultScheduleSpec       = "0 3 * * *"
)

// AppConfig holds application-level settings.
type AppConfig struct {
	Environment string `mapstructure:"environment"`
	Debug       bool   `mapstructure:"debug"`
}

// LoggerConfig holds logging settings.
type LoggerConfig struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

// CrawlerConfig holds site crawl settings.
type CrawlerConfig struct {
	MaxDepth       int           `mapstructure:"max_depth"`
	MaxPages       int           `mapstructure:"max_pages"`
	Parallelism    int           `mapstructure:"parallelism"`
	Delay          time.Duration `mapstructure:"delay"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	UserAgent      string        `mapstructure:"user_agent"`
	IgnoreRobots   bool          `mapstructure:"ignore_robots"`
}

// LLMConfig holds fallback-oracle settings.
type LLMConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Endpoint string        `mapstructure:"endpoint"`
	APIKey   string        `mapstructure:"api_key"`
	Model    string        `mapstructure:"model"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Address string `mapstructure:"address"`
}

// DiscoveryConfig holds discovery run settings.
type DiscoveryConfig struct {
	BatchSize int `mapstructure:"batch_size"`
	// Schedule is a cron expression for the scheduler command.
	Schedule string `mapstructure:"schedule"`
}

// Config is the root configuration.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Logger    LoggerConfig    `mapstructure:"logger"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Crawler   CrawlerConfig   `mapstructure:"crawler"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Server    ServerConfig    `mapstructure:"server"`
	Discovery DiscoveryConfig `mapstructure:"discovery"`
}

// InitializeViper wires Viper to the .env file, environment variables, and
// the optional config file. Must be called before Load.
func InitializeViper(cfgFile string) error {
	_ = godotenv.Load()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("./config")
	}

	setDefaults()

	// The config file is optional; defaults and environment cover everything.
	_ = viper.ReadInConfig()

	return bindEnvironmentVariables()
}

// setDefaults registers default values for every key.
func setDefaults() {
	viper.SetDefault("app.environment", EnvDevelopment)
	viper.SetDefault("app.debug", false)

	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.encoding", "console")

	viper.SetDefault("database.host", defaultDatabaseHost)
	viper.SetDefault("database.port", defaultDatabasePort)
	viper.SetDefault("database.name", defaultDatabaseName)
	viper.SetDefault("database.sslmode", defaultDatabaseSSLMode)

	viper.SetDefault("crawler.max_depth", defaultCrawlerMaxDepth)
	viper.SetDefault("crawler.max_pages", defaultCrawlerMaxPages)
	viper.SetDefault("crawler.parallelism", defaultCrawlerParallelism)
	viper.SetDefault("crawler.delay", defaultCrawlerDelay)
	viper.SetDefault("crawler.request_timeout", defaultCrawlerTimeout)

	viper.SetDefault("llm.enabled", false)
	viper.SetDefault("llm.model", defaultLLMModel)
	viper.SetDefault("llm.timeout", defaultLLMTimeout)

	viper.SetDefault("server.address", defaultServerAddress)

	viper.SetDefault("discovery.batch_size", defaultDiscoveryBatchSize)
	viper.SetDefault("discovery.schedule", defaultScheduleSpec)
}

// bindEnvironmentVariables maps well-known environment variables onto keys
// that the dot-to-underscore replacer does not cover naturally.
func bindEnvironmentVariables() error {
	bindings := map[string][]string{
		"app.environment":   {"APP_ENV"},
		"logger.level":      {"LOG_LEVEL"},
		"logger.encoding":   {"LOG_FORMAT"},
		"database.password": {"DATABASE_PASSWORD", "PGPASSWORD"},
		"llm.api_key":       {"LLM_API_KEY", "OPENAI_API_KEY"},
	}
	for key, envs := range bindings {
		if err := viper.BindEnv(append([]string{key}, envs...)...); err != nil {
			return fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}
	return nil
}

// Load unmarshals and validates the configuration.
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration for contradictions and missing
// requirements.
func (c *Config) Validate() error {
	if c.Database.Host == "" {
		return errors.New("database host is required")
	}
	if c.Database.Name == "" {
		return errors.New("database name is required")
	}
	if c.Crawler.MaxDepth <= 0 {
		return errors.New("crawler max_depth must be positive")
	}
	if c.Crawler.MaxPages <= 0 {
		return errors.New("crawler max_pages must be positive")
	}
	if c.LLM.Enabled && c.LLM.Endpoint == "" {
		return errors.New("llm endpoint is required when llm is enabled")
	}
	return nil
}

// IsDevelopment reports whether the app runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.App.Environment != EnvProduction
}
