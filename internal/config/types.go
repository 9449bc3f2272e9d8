package config

import "github.com/raaihank/rdap-sentinel/internal/logger"

// Config represents the main configuration structure
type Config struct {
	Redaction RedactionConfig `yaml:"redaction" mapstructure:"redaction"`
	Logging   LoggingConfig   `yaml:"logging" mapstructure:"logging"`
	Output    OutputConfig    `yaml:"output" mapstructure:"output"`
	Batch     BatchConfig     `yaml:"batch" mapstructure:"batch"`
}

// RedactionConfig controls the redaction engine
type RedactionConfig struct {
	Enabled        bool `yaml:"enabled" mapstructure:"enabled"`
	StrictPathLang bool `yaml:"strict_path_lang" mapstructure:"strict_path_lang"`
	LogEvents      bool `yaml:"log_events" mapstructure:"log_events"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"` // json or console
	File   struct {
		Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
		Path    string `yaml:"path" mapstructure:"path"`
	} `yaml:"file" mapstructure:"file"`
}

// LoggerConfig converts the logging section into the logger's configuration.
func (l LoggingConfig) LoggerConfig() logger.Config {
	lc := logger.Config{
		Level:  l.Level,
		Format: l.Format,
	}
	if l.File.Enabled {
		lc.File = &logger.FileConfig{
			Enabled: true,
			Path:    l.File.Path,
		}
	}
	return lc
}

// OutputConfig controls how resolved documents are written
type OutputConfig struct {
	Format string `yaml:"format" mapstructure:"format"` // json or pretty
}

// BatchConfig contains directory pipeline configuration
type BatchConfig struct {
	Workers           int     `yaml:"workers" mapstructure:"workers"`
	MaxFilesPerSecond float64 `yaml:"max_files_per_second" mapstructure:"max_files_per_second"` // 0 disables pacing
	ReportFormat      string  `yaml:"report_format" mapstructure:"report_format"`               // csv, json or parquet
	OutputDir         string  `yaml:"output_dir" mapstructure:"output_dir"`
	IncludePattern    string  `yaml:"include_pattern" mapstructure:"include_pattern"`
}

// GetDefaults returns a configuration with sensible defaults
func GetDefaults() *Config {
	cfg := &Config{
		Redaction: RedactionConfig{
			Enabled:        true,
			StrictPathLang: true,
			LogEvents:      true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Output: OutputConfig{
			Format: "json",
		},
		Batch: BatchConfig{
			Workers:           4,
			MaxFilesPerSecond: 0,
			ReportFormat:      "csv",
			OutputDir:         "redacted",
			IncludePattern:    "*.json",
		},
	}
	cfg.Logging.File.Path = "logs/rdap-sentinel.log"
	return cfg
}
