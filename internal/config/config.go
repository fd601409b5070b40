// Package config loads application configuration and initializes logging.
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
	Fuzz  FuzzConfig  `yaml:"fuzz" mapstructure:"fuzz"`
	Store StoreConfig `yaml:"store" mapstructure:"store"`
	Log   LogConfig   `yaml:"log" mapstructure:"log"`
}

// FuzzConfig holds defaults for the fuzz command; flags override these.
type FuzzConfig struct {
	Radius    float64 `yaml:"radius" mapstructure:"radius"`
	LatCol    int     `yaml:"lat_col" mapstructure:"lat_col"`
	LonCol    int     `yaml:"lon_col" mapstructure:"lon_col"`
	Delimiter string  `yaml:"delimiter" mapstructure:"delimiter"`
	Header    bool    `yaml:"header" mapstructure:"header"`
	Encoding  string  `yaml:"encoding" mapstructure:"encoding"`
}

// StoreConfig configures the optional run-history database.
// An empty path disables run recording.
type StoreConfig struct {
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
	v.SetEnvPrefix("GEOFUZZ")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("fuzz.radius", 0.01)
	v.SetDefault("fuzz.lat_col", 0)
	v.SetDefault("fuzz.lon_col", 1)
	v.SetDefault("fuzz.delimiter", ",")
	v.SetDefault("fuzz.header", false)
	v.SetDefault("fuzz.encoding", "")
	v.SetDefault("store.path", "")
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
