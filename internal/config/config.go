package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	apperrors "gnecli/internal/errors"
	"gnecli/internal/validation"
)

// Config represents the complete application configuration
type Config struct {
	Logging    LoggingConfig    `yaml:"logging" envconfig:"LOGGING"`
	Dictionary DictionaryConfig `yaml:"dictionary" envconfig:"DICTIONARY"`
	Processing ProcessingConfig `yaml:"processing" envconfig:"PROCESSING"`
	Telemetry  TelemetryConfig  `yaml:"telemetry" envconfig:"TELEMETRY"`
	Server     ServerConfig     `yaml:"server" envconfig:"SERVER"`

	// Source is the config file that was read, if any.
	Source string `yaml:"-" ignored:"true"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" split_words:"true" json:"level" validate:"oneof=debug info warn error"`
	Format   string `yaml:"format" split_words:"true" json:"format" validate:"oneof=json text"`
	Output   string `yaml:"output" split_words:"true" json:"output" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" split_words:"true" json:"file_path"`
}

// DictionaryConfig locates the reference dictionary.
type DictionaryConfig struct {
	Path      string `yaml:"path" split_words:"true" json:"path" validate:"required"`
	Delimiter string `yaml:"delimiter" split_words:"true" json:"delimiter" validate:"delimiter"`
}

// ProcessingConfig tunes file runs.
type ProcessingConfig struct {
	HasHeaders         bool          `yaml:"has_headers" split_words:"true" json:"has_headers"`
	ProgressEvery      int           `yaml:"progress_every" split_words:"true" json:"progress_every" validate:"min=1"`
	MaxConcurrentFiles int           `yaml:"max_concurrent_files" split_words:"true" json:"max_concurrent_files" validate:"min=1,max=64"`
	Timeout            time.Duration `yaml:"timeout" split_words:"true" json:"timeout" validate:"min=0"`
}

// TelemetryConfig switches tracing and metrics.
type TelemetryConfig struct {
	ServiceName     string `yaml:"service_name" split_words:"true" json:"service_name" validate:"required"`
	EnableMetrics   bool   `yaml:"enable_metrics" split_words:"true" json:"enable_metrics"`
	EnableTracing   bool   `yaml:"enable_tracing" split_words:"true" json:"enable_tracing"`
	TraceExporter   string `yaml:"trace_exporter" split_words:"true" json:"trace_exporter" validate:"oneof=stdout none"`
	MetricsTextfile string `yaml:"metrics_textfile" split_words:"true" json:"metrics_textfile"`
}

// ServerConfig contains HTTP server configuration. RateLimit is requests
// per second across all clients; 0 disables limiting.
type ServerConfig struct {
	Port            int           `yaml:"port" split_words:"true" json:"port" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" split_words:"true" json:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" split_words:"true" json:"write_timeout" validate:"gt=0"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" split_words:"true" json:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" split_words:"true" json:"shutdown_timeout"`
	MaxBatchItems   int           `yaml:"max_batch_items" split_words:"true" json:"max_batch_items" validate:"min=1"`
	RateLimit       float64       `yaml:"rate_limit" split_words:"true" json:"rate_limit" validate:"min=0"`
	RateBurst       int           `yaml:"rate_burst" split_words:"true" json:"rate_burst" validate:"min=0"`
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "file",
			FilePath: DefaultLogFile,
		},
		Dictionary: DictionaryConfig{
			Path:      DefaultDictionaryFile,
			Delimiter: DefaultDelimiter,
		},
		Processing: ProcessingConfig{
			HasHeaders:         true,
			ProgressEvery:      DefaultProgressEvery,
			MaxConcurrentFiles: DefaultMaxConcurrentFiles,
		},
		Telemetry: TelemetryConfig{
			ServiceName:   "gnecli",
			EnableMetrics: true,
			TraceExporter: "none",
		},
		Server: ServerConfig{
			Port:            DefaultPort,
			ReadTimeout:     DefaultReadTimeout,
			WriteTimeout:    DefaultWriteTimeout,
			IdleTimeout:     DefaultIdleTimeout,
			ShutdownTimeout: DefaultShutdownTimeout,
			MaxBatchItems:   DefaultMaxBatchItems,
			RateBurst:       DefaultRateBurst,
		},
	}
}

// Load builds the configuration from defaults, then the config file when
// one is found, then GNE_* environment variables.
func Load() (*Config, error) {
	return LoadFile(findConfigFile())
}

// LoadFile is Load with an explicit config file; an empty path skips the
// file layer.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, apperrors.NewConfigError("failed to load config file", err).WithContext("path", path)
		}
		cfg.Source = path
	}

	// Fields carry no envconfig defaults or bare-name aliases, so unset
	// variables keep the values from the layers below.
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, apperrors.NewConfigError("failed to load config from env", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFromFile overlays the YAML file onto cfg.
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Validate checks every section against its validate tags.
func (c *Config) Validate() error {
	if err := validation.NewStructValidator().Struct(c); err != nil {
		return apperrors.NewConfigError("config validation failed", err).
			WithContext("errors", strings.Join(validation.Messages(err), "; "))
	}
	return nil
}

// DelimiterRune returns the dictionary delimiter as a rune.
func (c *Config) DelimiterRune() rune {
	r := []rune(c.Dictionary.Delimiter)
	if len(r) == 0 {
		return ','
	}
	return r[0]
}

// DictionaryPath resolves the dictionary path against the executable
// directory when it is relative.
func (c *Config) DictionaryPath() string {
	return resolve(c.Dictionary.Path)
}

// LogFilePath resolves the log file path against the executable directory
// when it is relative.
func (c *Config) LogFilePath() string {
	return resolve(c.Logging.FilePath)
}

// MetricsTextfilePath resolves the Prometheus textfile output path, or
// returns "" when it is disabled.
func (c *Config) MetricsTextfilePath() string {
	if c.Telemetry.MetricsTextfile == "" {
		return ""
	}
	return resolve(c.Telemetry.MetricsTextfile)
}

// Addr is the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

func resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	paths, err := GetPaths()
	if err != nil {
		return p
	}
	return paths.Resolve(p)
}

// findConfigFile returns GNE_CONFIG, or the first gne.yaml found beside the
// executable or in the working directory, or "".
func findConfigFile() string {
	if p := os.Getenv(ConfigEnvVar); p != "" {
		return p
	}
	var locations []string
	if paths, err := GetPaths(); err == nil {
		locations = append(locations, paths.ConfigFile)
	}
	locations = append(locations, ConfigFileName)

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}
	return ""
}
