package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	// Start from a clean viper so repeated loads do not see stale keys
	viper.Reset()

	// Set defaults
	config := GetDefaults()
	setDefaults(config)

	// Configure viper
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("/etc/rdap-sentinel/")
	viper.AddConfigPath("$HOME/.rdap-sentinel/")

	// Environment variable overrides, e.g. RDAP_BATCH_WORKERS
	viper.SetEnvPrefix("RDAP")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Use specific config file if provided
	if configPath != "" {
		viper.SetConfigFile(configPath)
	}

	// Read configuration
	if err := viper.ReadInConfig(); err != nil {
		// Config file not found is not an error - we'll use defaults
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Unmarshal into config struct
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate configuration
	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults registers every key with viper so env overrides apply even
// when no config file mentions the key.
func setDefaults(c *Config) {
	viper.SetDefault("redaction.enabled", c.Redaction.Enabled)
	viper.SetDefault("redaction.strict_path_lang", c.Redaction.StrictPathLang)
	viper.SetDefault("redaction.log_events", c.Redaction.LogEvents)
	viper.SetDefault("logging.level", c.Logging.Level)
	viper.SetDefault("logging.format", c.Logging.Format)
	viper.SetDefault("logging.file.enabled", c.Logging.File.Enabled)
	viper.SetDefault("logging.file.path", c.Logging.File.Path)
	viper.SetDefault("output.format", c.Output.Format)
	viper.SetDefault("batch.workers", c.Batch.Workers)
	viper.SetDefault("batch.max_files_per_second", c.Batch.MaxFilesPerSecond)
	viper.SetDefault("batch.report_format", c.Batch.ReportFormat)
	viper.SetDefault("batch.output_dir", c.Batch.OutputDir)
	viper.SetDefault("batch.include_pattern", c.Batch.IncludePattern)
}

// validateConfig validates the loaded configuration
func validateConfig(config *Config) error {
	if config.Logging.Level != "debug" && config.Logging.Level != "info" && config.Logging.Level != "warn" && config.Logging.Level != "error" {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", config.Logging.Level)
	}

	if config.Logging.Format != "json" && config.Logging.Format != "console" {
		return fmt.Errorf("invalid log format: %s (must be json or console)", config.Logging.Format)
	}

	if config.Output.Format != "json" && config.Output.Format != "pretty" {
		return fmt.Errorf("invalid output format: %s (must be json or pretty)", config.Output.Format)
	}

	if config.Batch.Workers <= 0 {
		return fmt.Errorf("invalid batch workers: %d (must be positive)", config.Batch.Workers)
	}

	if config.Batch.MaxFilesPerSecond < 0 {
		return fmt.Errorf("invalid max_files_per_second: %v", config.Batch.MaxFilesPerSecond)
	}

	switch config.Batch.ReportFormat {
	case "csv", "json", "parquet":
	default:
		return fmt.Errorf("invalid report format: %s (must be csv, json, or parquet)", config.Batch.ReportFormat)
	}

	if _, err := filepath.Match(config.Batch.IncludePattern, ""); err != nil {
		return fmt.Errorf("invalid include pattern %q: %w", config.Batch.IncludePattern, err)
	}

	return nil
}

// Watch starts watching the configuration file for changes. onError
// receives reloads that fail to decode or validate; it may be nil.
func Watch(callback func(*Config), onError func(error)) {
	viper.OnConfigChange(func(e fsnotify.Event) {
		if e.Op&(fsnotify.Write|fsnotify.Create) == 0 {
			return
		}

		newConfig := GetDefaults()
		if err := viper.Unmarshal(newConfig); err != nil {
			if onError != nil {
				onError(fmt.Errorf("failed to unmarshal %s: %w", e.Name, err))
			}
			return
		}

		if err := validateConfig(newConfig); err != nil {
			if onError != nil {
				onError(fmt.Errorf("invalid configuration in %s: %w", e.Name, err))
			}
			return
		}

		callback(newConfig)
	})
	viper.WatchConfig()
}

// Marshal renders a configuration as YAML in the layout Load reads.
func Marshal(config *Config) ([]byte, error) {
	data, err := yaml.Marshal(config)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}
