// Package config loads layered settings: flags, then VISION_RENAME_*
// environment variables, then the YAML config file, then defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/fpang/vision-rename/internal/filehandler"
	"github.com/fpang/vision-rename/internal/vision"
)

// EnvPrefix is the prefix for environment overrides, e.g. VISION_RENAME_MODEL.
const EnvPrefix = "VISION_RENAME"

// Providers.
const (
	ProviderLocal  = "local"
	ProviderGemini = "gemini"
)

// Keys.
const (
	KeyBaseURL        = "base_url"
	KeyModel          = "model"
	KeyProvider       = "provider"
	KeyGeminiAPIKey   = "gemini_api_key"
	KeyMaxDimension   = "max_dimension"
	KeyJPEGQuality    = "jpeg_quality"
	KeyCheckTimeout   = "check_timeout"
	KeyRequestTimeout = "request_timeout"
	KeyDatePrefix     = "date_prefix"
	KeyJournal        = "journal"
	KeyLogLevel       = "log_level"
	KeyScratchDir     = "scratch_dir"
)

// Config holds the resolved settings.
type Config struct {
	BaseURL        string        `mapstructure:"base_url"`
	Model          string        `mapstructure:"model"`
	Provider       string        `mapstructure:"provider"`
	GeminiAPIKey   string        `mapstructure:"gemini_api_key"`
	MaxDimension   int           `mapstructure:"max_dimension"`
	JPEGQuality    int           `mapstructure:"jpeg_quality"`
	CheckTimeout   time.Duration `mapstructure:"check_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	DatePrefix     bool          `mapstructure:"date_prefix"`
	Journal        string        `mapstructure:"journal"`
	LogLevel       string        `mapstructure:"log_level"`
	ScratchDir     string        `mapstructure:"scratch_dir"`
}

// New returns a viper instance with defaults and environment binding set.
// configFile overrides the default location when non-empty.
func New(configFile string) *viper.Viper {
	v := viper.New()

	v.SetDefault(KeyBaseURL, vision.DefaultBaseURL)
	v.SetDefault(KeyModel, "")
	v.SetDefault(KeyProvider, ProviderLocal)
	v.SetDefault(KeyGeminiAPIKey, "")
	v.SetDefault(KeyMaxDimension, filehandler.DefaultMaxDimension)
	v.SetDefault(KeyJPEGQuality, filehandler.DefaultJPEGQuality)
	v.SetDefault(KeyCheckTimeout, vision.DefaultCheckTimeout)
	v.SetDefault(KeyRequestTimeout, time.Duration(0))
	v.SetDefault(KeyDatePrefix, false)
	v.SetDefault(KeyJournal, "")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyScratchDir, "")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "vision-rename"))
		}
	}
	return v
}

// Load reads the config file, if any, and returns the validated settings.
// A missing default config file is not an error; a missing explicit one is.
func Load(v *viper.Viper) (Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
	} else {
		log.Debug().Str("file", v.ConfigFileUsed()).Msg("Loaded config file")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.GeminiAPIKey == "" {
		cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = vision.DefaultBaseURL
	}
	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	var errs []error
	if c.Provider != ProviderLocal && c.Provider != ProviderGemini {
		errs = append(errs, fmt.Errorf("unknown provider %q (want %s or %s)", c.Provider, ProviderLocal, ProviderGemini))
	}
	if c.MaxDimension <= 0 {
		errs = append(errs, fmt.Errorf("max_dimension must be positive, got %d", c.MaxDimension))
	}
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		errs = append(errs, fmt.Errorf("jpeg_quality must be between 1 and 100, got %d", c.JPEGQuality))
	}
	if c.CheckTimeout <= 0 {
		errs = append(errs, fmt.Errorf("check_timeout must be positive, got %s", c.CheckTimeout))
	}
	if c.RequestTimeout < 0 {
		errs = append(errs, fmt.Errorf("request_timeout must not be negative, got %s", c.RequestTimeout))
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("unknown log_level %q", c.LogLevel))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// Redacted returns a copy safe to log.
func (c Config) Redacted() Config {
	if c.GeminiAPIKey != "" {
		c.GeminiAPIKey = "<redacted>"
	}
	return c
}
