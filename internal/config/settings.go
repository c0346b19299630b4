package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/Veraticus/depressurize/internal/common"
	"github.com/Veraticus/depressurize/internal/service"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable override, e.g. DEPCAT_DATABASE_PATH.
const EnvPrefix = "DEPCAT"

// Settings is the typed view of the application configuration.
type Settings struct {
	Logging  LoggingSettings  `mapstructure:"logging"`
	Database DatabaseSettings `mapstructure:"database"`
	Profile  ProfileSettings  `mapstructure:"profile"`
	Curator  CuratorSettings  `mapstructure:"curator"`
	Retry    RetrySettings    `mapstructure:"retry"`
}

// LoggingSettings configures the global logger.
type LoggingSettings struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DatabaseSettings locates the metadata database.
type DatabaseSettings struct {
	Path string `mapstructure:"path"`
}

// ProfileSettings locates the profile document.
type ProfileSettings struct {
	Path string `mapstructure:"path"`
}

// CuratorSettings configures the Steam curator client.
type CuratorSettings struct {
	BaseURL           string        `mapstructure:"base_url"`
	Timeout           time.Duration `mapstructure:"timeout"`
	CacheTTL          time.Duration `mapstructure:"cache_ttl"`
	PageSize          int           `mapstructure:"page_size"`
	RequestsPerMinute int           `mapstructure:"requests_per_minute"`
}

// RetrySettings configures retries of Steam store requests.
type RetrySettings struct {
	MaxAttempts  int           `mapstructure:"max_attempts"`
	InitialDelay time.Duration `mapstructure:"initial_delay"`
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("database.path", filepath.Join(DataDir(), "metadata.db"))
	v.SetDefault("profile.path", filepath.Join(ConfigDir(), "profile.xml"))
	v.SetDefault("curator.base_url", "https://store.steampowered.com")
	v.SetDefault("curator.timeout", 30*time.Second)
	v.SetDefault("curator.page_size", 100)
	v.SetDefault("curator.cache_ttl", 24*time.Hour)
	v.SetDefault("curator.requests_per_minute", 60)
	v.SetDefault("retry.max_attempts", 3)
	v.SetDefault("retry.initial_delay", 500*time.Millisecond)
}

// BindEnv makes every key overridable through DEPCAT_ prefixed variables.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// LoadEnv loads .env style files into the process environment. Missing files are
// ignored and variables already set are not overwritten.
func LoadEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(ExpandPath(p)); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load env file %s: %w", p, err)
		}
	}
	return nil
}

// Load decodes v into Settings, expands paths and validates the result.
func Load(v *viper.Viper) (*Settings, error) {
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrInvalidConfig, err)
	}
	s.Database.Path = ExpandPath(s.Database.Path)
	s.Profile.Path = ExpandPath(s.Profile.Path)
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate reports the first invalid setting.
func (s *Settings) Validate() error {
	if _, err := common.ParseLevel(s.Logging.Level); err != nil {
		return err
	}
	switch s.Logging.Format {
	case "console", "text", "json":
	default:
		return fmt.Errorf("%w: invalid log format %q", common.ErrInvalidConfig, s.Logging.Format)
	}
	if s.Database.Path == "" {
		return fmt.Errorf("%w: database.path", common.ErrMissingConfig)
	}
	if s.Profile.Path == "" {
		return fmt.Errorf("%w: profile.path", common.ErrMissingConfig)
	}
	if u, err := url.Parse(s.Curator.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: curator.base_url %q", common.ErrInvalidConfig, s.Curator.BaseURL)
	}
	if s.Curator.Timeout <= 0 {
		return fmt.Errorf("%w: curator.timeout must be positive", common.ErrInvalidConfig)
	}
	if s.Curator.PageSize <= 0 {
		return fmt.Errorf("%w: curator.page_size must be positive", common.ErrInvalidConfig)
	}
	if s.Curator.CacheTTL < 0 {
		return fmt.Errorf("%w: curator.cache_ttl cannot be negative", common.ErrInvalidConfig)
	}
	if s.Retry.MaxAttempts <= 0 {
		return fmt.Errorf("%w: retry.max_attempts must be positive", common.ErrInvalidConfig)
	}
	return nil
}

// RetryOptions converts the retry settings for common.WithRetry.
func (s *Settings) RetryOptions() service.RetryOptions {
	opts := common.DefaultRetryOptions()
	opts.MaxAttempts = s.Retry.MaxAttempts
	if s.Retry.InitialDelay > 0 {
		opts.InitialDelay = s.Retry.InitialDelay
	}
	return opts
}
