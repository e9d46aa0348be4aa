package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration. It is built once at
// process start and passed explicitly into adapters and the orchestrator.
type Config struct {
	Store        StoreConfig        `yaml:"store" mapstructure:"store"`
	Places       PlacesConfig       `yaml:"places" mapstructure:"places"`
	CustomSearch CustomSearchConfig `yaml:"custom_search" mapstructure:"custom_search"`
	Directory    DirectoryConfig    `yaml:"directory" mapstructure:"directory"`
	Clearbit     ClearbitConfig     `yaml:"clearbit" mapstructure:"clearbit"`
	Pipeline     PipelineConfig     `yaml:"pipeline" mapstructure:"pipeline"`
	Batch        BatchConfig        `yaml:"batch" mapstructure:"batch"`
	Server       ServerConfig       `yaml:"server" mapstructure:"server"`
	Log          LogConfig          `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// PlacesConfig holds Google Places API settings for the google_maps source.
type PlacesConfig struct {
	Key               string `yaml:"key" mapstructure:"key"`
	BaseURL           string `yaml:"base_url" mapstructure:"base_url"`
	RequestsPerMinute int    `yaml:"requests_per_minute" mapstructure:"requests_per_minute"`
}

// CustomSearchConfig holds Google Custom Search settings for the
// google_search source. Both Key and EngineID are required for the source
// to be usable.
type CustomSearchConfig struct {
	Key               string `yaml:"key" mapstructure:"key"`
	EngineID          string `yaml:"engine_id" mapstructure:"engine_id"`
	BaseURL           string `yaml:"base_url" mapstructure:"base_url"`
	RequestsPerMinute int    `yaml:"requests_per_minute" mapstructure:"requests_per_minute"`
}

// DirectoryConfig configures the yellow_pages directory source. It needs no
// credentials, only scrape politeness settings.
type DirectoryConfig struct {
	BaseURL           string `yaml:"base_url" mapstructure:"base_url"`
	RequestsPerMinute int    `yaml:"requests_per_minute" mapstructure:"requests_per_minute"`
	MaxPages          int    `yaml:"max_pages" mapstructure:"max_pages"`
	UserAgent         string `yaml:"user_agent" mapstructure:"user_agent"`
}

// ClearbitConfig holds the optional company enrichment API settings.
type ClearbitConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// PipelineConfig holds pipeline tunables.
type PipelineConfig struct {
	DefaultMaxResults int `yaml:"default_max_results" mapstructure:"default_max_results"`
	RequestTimeoutSec int `yaml:"request_timeout_secs" mapstructure:"request_timeout_secs"`
}

// BatchConfig configures concurrent batch job execution.
type BatchConfig struct {
	MaxConcurrentJobs int `yaml:"max_concurrent_jobs" mapstructure:"max_concurrent_jobs"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port        int      `yaml:"port" mapstructure:"port"`
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("LEADGEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "leadgen.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_origins", []string{"http://localhost:3000"})
	v.SetDefault("batch.max_concurrent_jobs", 4)
	v.SetDefault("pipeline.default_max_results", 40)
	v.SetDefault("pipeline.request_timeout_secs", 20)
	v.SetDefault("places.base_url", "https://maps.googleapis.com/maps/api/place")
	v.SetDefault("places.requests_per_minute", 30)
	v.SetDefault("custom_search.base_url", "https://www.googleapis.com/customsearch/v1")
	v.SetDefault("custom_search.requests_per_minute", 20)
	v.SetDefault("directory.base_url", "https://www.yellowpages.com")
	v.SetDefault("directory.requests_per_minute", 10)
	v.SetDefault("directory.max_pages", 5)
	v.SetDefault("directory.user_agent",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	v.SetDefault("clearbit.base_url", "https://company.clearbit.com/v2")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
