package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Metadata MetadataConfig `yaml:"metadata" mapstructure:"metadata"`
	Output   OutputConfig   `yaml:"output" mapstructure:"output"`
	RunLog   RunLogConfig   `yaml:"runlog" mapstructure:"runlog"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// MetadataConfig configures the network metadata service fallback.
type MetadataConfig struct {
	ServiceURL  string  `yaml:"service_url" mapstructure:"service_url"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	UserAgent   string  `yaml:"user_agent" mapstructure:"user_agent"`
	RateLimit   float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
	Burst       int     `yaml:"burst" mapstructure:"burst"`
	MaxRetries  int     `yaml:"max_retries" mapstructure:"max_retries"`
}

// OutputConfig configures output locations and packaging.
type OutputConfig struct {
	Dir           string `yaml:"dir" mapstructure:"dir"`
	WaveformDir   string `yaml:"waveform_dir" mapstructure:"waveform_dir"`
	AbsolutePaths bool   `yaml:"absolute_paths" mapstructure:"absolute_paths"`
	Archive       bool   `yaml:"archive" mapstructure:"archive"`
}

// RunLogConfig configures the local run journal.
type RunLogConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
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
	v.SetEnvPrefix("CSS3CONVERT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("metadata.timeout_secs", 120)
	v.SetDefault("metadata.user_agent", "css3convert/1.0")
	v.SetDefault("metadata.rate_limit", 5)
	v.SetDefault("metadata.burst", 5)
	v.SetDefault("metadata.max_retries", 3)
	v.SetDefault("output.dir", ".")
	v.SetDefault("runlog.path", "css3convert.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

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
