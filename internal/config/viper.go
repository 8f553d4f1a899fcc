// Package config provides Viper-based hierarchical configuration management
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"fjacquet/pdf-ledger/internal/logging"
	"fjacquet/pdf-ledger/internal/models"
)

// EnvPrefix prefixes every environment override, e.g. LEDGER_LOG_LEVEL.
const EnvPrefix = "LEDGER"

// Config represents the complete application configuration
type Config struct {
	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"log" yaml:"log"`

	CSV struct {
		Delimiter string `mapstructure:"delimiter" yaml:"delimiter"`
	} `mapstructure:"csv" yaml:"csv"`

	Data struct {
		Directory string `mapstructure:"directory" yaml:"directory"`
	} `mapstructure:"data" yaml:"data"`

	Parsers struct {
		PDF struct {
			Extractor      string `mapstructure:"extractor" yaml:"extractor"`
			LookaheadLines int    `mapstructure:"lookahead_lines" yaml:"lookahead_lines"`
			Workers        int    `mapstructure:"workers" yaml:"workers"`
		} `mapstructure:"pdf" yaml:"pdf"`
	} `mapstructure:"parsers" yaml:"parsers"`

	AI struct {
		Enabled          bool   `mapstructure:"enabled" yaml:"enabled"`
		Model            string `mapstructure:"model" yaml:"model"`
		BatchSize        int    `mapstructure:"batch_size" yaml:"batch_size"`
		TimeoutSeconds   int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
		MaxRetries       int    `mapstructure:"max_retries" yaml:"max_retries"`
		FallbackCategory string `mapstructure:"fallback_category" yaml:"fallback_category"`
		APIKey           string `mapstructure:"api_key" yaml:"-"` // Never serialize API key
	} `mapstructure:"ai" yaml:"ai"`

	Categories struct {
		File          string `mapstructure:"file" yaml:"file"`
		MappingsFile  string `mapstructure:"mappings_file" yaml:"mappings_file"`
		LearnMappings bool   `mapstructure:"learn_mappings" yaml:"learn_mappings"`
	} `mapstructure:"categories" yaml:"categories"`

	Validation struct {
		BalanceCheck bool `mapstructure:"balance_check" yaml:"balance_check"`
	} `mapstructure:"validation" yaml:"validation"`

	Server struct {
		Addr                  string `mapstructure:"addr" yaml:"addr"`
		MaxUploadMB           int    `mapstructure:"max_upload_mb" yaml:"max_upload_mb"`
		RequestTimeoutSeconds int    `mapstructure:"request_timeout_seconds" yaml:"request_timeout_seconds"`
	} `mapstructure:"server" yaml:"server"`
}

// AITimeout returns the per-request classifier timeout.
func (c *Config) AITimeout() time.Duration {
	return time.Duration(c.AI.TimeoutSeconds) * time.Second
}

// RequestTimeout returns the HTTP request timeout.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Server.RequestTimeoutSeconds) * time.Second
}

// MaxUploadBytes returns the upload size cap in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.Server.MaxUploadMB) << 20
}

// InitializeConfig loads configuration from the default locations.
func InitializeConfig() (*Config, error) {
	return Load("")
}

// Load builds the configuration from defaults, an optional config file,
// and environment variables. An empty configFile searches the standard
// locations; a missing file there is not an error, a missing explicit file is.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	log := logging.GetLogger()

	// 1. Set defaults
	setDefaults(v)

	// 2. Config file locations
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.pdf-ledger")
		v.AddConfigPath(".pdf-ledger")
		v.AddConfigPath(".")
	}

	// 3. Environment variables
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 4. Read config file
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case configFile != "":
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		case !errors.As(err, &notFound):
			log.WithError(err).Warn("Error reading config file, using defaults",
				logging.F(logging.FieldFile, v.ConfigFileUsed()))
		}
	}

	// 5. The API key comes from the unprefixed variable
	if err := v.BindEnv("ai.api_key", "GEMINI_API_KEY"); err != nil {
		log.WithError(err).Warn("Failed to bind GEMINI_API_KEY environment variable")
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 6. Validate configuration
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("csv.delimiter", ",")

	v.SetDefault("data.directory", "data")

	v.SetDefault("parsers.pdf.extractor", "native")
	v.SetDefault("parsers.pdf.lookahead_lines", 2)
	v.SetDefault("parsers.pdf.workers", 4)

	v.SetDefault("ai.enabled", false)
	v.SetDefault("ai.model", "gemini-2.0-flash")
	v.SetDefault("ai.batch_size", 8)
	v.SetDefault("ai.timeout_seconds", 30)
	v.SetDefault("ai.max_retries", 3)
	v.SetDefault("ai.fallback_category", models.CategoryUncategorized)

	v.SetDefault("categories.file", "categories.yaml")
	v.SetDefault("categories.mappings_file", "mappings.yaml")
	v.SetDefault("categories.learn_mappings", false)

	v.SetDefault("validation.balance_check", true)

	v.SetDefault("server.addr", ":8000")
	v.SetDefault("server.max_upload_mb", 10)
	v.SetDefault("server.request_timeout_seconds", 60)
}

// validateConfig validates the configuration values
func validateConfig(config *Config) error {
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}

	if len(config.CSV.Delimiter) != 1 {
		return fmt.Errorf("CSV delimiter must be a single character, got: %s", config.CSV.Delimiter)
	}

	if config.Data.Directory == "" {
		return errors.New("data.directory must not be empty")
	}

	pdf := config.Parsers.PDF
	if pdf.Extractor != "native" && pdf.Extractor != "pdftotext" {
		return fmt.Errorf("invalid PDF extractor: %s (must be 'native' or 'pdftotext')", pdf.Extractor)
	}
	if pdf.LookaheadLines < 0 || pdf.LookaheadLines > 10 {
		return fmt.Errorf("parsers.pdf.lookahead_lines must be between 0 and 10, got: %d", pdf.LookaheadLines)
	}
	if pdf.Workers < 1 || pdf.Workers > 64 {
		return fmt.Errorf("parsers.pdf.workers must be between 1 and 64, got: %d", pdf.Workers)
	}

	if config.AI.BatchSize < 1 || config.AI.BatchSize > 100 {
		return fmt.Errorf("ai.batch_size must be between 1 and 100, got: %d", config.AI.BatchSize)
	}
	if config.AI.MaxRetries < 0 || config.AI.MaxRetries > 10 {
		return fmt.Errorf("ai.max_retries must be between 0 and 10, got: %d", config.AI.MaxRetries)
	}
	if fb := config.AI.FallbackCategory; fb != models.CategoryUncategorized && !models.IsValidCategory(fb) {
		return fmt.Errorf("ai.fallback_category is not a known category: %s", fb)
	}

	if config.AI.Enabled {
		if config.AI.APIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY required when AI is enabled")
		}

		if config.AI.TimeoutSeconds < 1 || config.AI.TimeoutSeconds > 300 {
			return fmt.Errorf("ai.timeout_seconds must be between 1 and 300, got: %d", config.AI.TimeoutSeconds)
		}
	}

	if config.Server.Addr == "" {
		return errors.New("server.addr must not be empty")
	}
	if config.Server.MaxUploadMB < 1 || config.Server.MaxUploadMB > 512 {
		return fmt.Errorf("server.max_upload_mb must be between 1 and 512, got: %d", config.Server.MaxUploadMB)
	}
	if config.Server.RequestTimeoutSeconds < 1 || config.Server.RequestTimeoutSeconds > 3600 {
		return fmt.Errorf("server.request_timeout_seconds must be between 1 and 3600, got: %d", config.Server.RequestTimeoutSeconds)
	}

	return nil
}
