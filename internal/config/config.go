// Package config loads mediascout settings from flags, environment and YAML
// files through viper.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/corey/mediascout/internal/domain/media"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, with dots in keys
// replaced by underscores: MEDIASCOUT_LOG_LEVEL=debug.
const EnvPrefix = "MEDIASCOUT"

// FileName is the per-directory config file looked up in the working directory.
const FileName = ".mediascout.yaml"

// Keys.
const (
	KeyRoot          = "root"
	KeyDebounce      = "debounce"
	KeyScanWorkers   = "scan_workers"
	KeyExtensions    = "media.extensions"
	KeyExclude       = "media.exclude"
	KeyIncludeHidden = "media.include_hidden"
	KeyDBPath        = "db_path"
	KeySocket        = "socket"
	KeyHTTPPort      = "http.port"
	KeyHTTPEnabled   = "http.enabled"
	KeyLogLevel      = "log.level"
	KeyLogFile       = "log.file"
	KeyLogMaxSize    = "log.max_size_mb"
	KeyLogMaxBackups = "log.max_backups"
	KeyLogMaxAge     = "log.max_age_days"
)

// Config is the resolved configuration.
type Config struct {
	Root        string        `mapstructure:"root"`
	Debounce    time.Duration `mapstructure:"debounce"`
	ScanWorkers int           `mapstructure:"scan_workers"`
	Media       MediaConfig   `mapstructure:"media"`
	DBPath      string        `mapstructure:"db_path"` // empty: <root>/.mediascout/library.db
	Socket      string        `mapstructure:"socket"`  // empty: derived from root
	HTTP        HTTPConfig    `mapstructure:"http"`
	Log         LogConfig     `mapstructure:"log"`
}

// MediaConfig selects which files count as media.
type MediaConfig struct {
	Extensions    []string `mapstructure:"extensions"`
	Exclude       []string `mapstructure:"exclude"`
	IncludeHidden bool     `mapstructure:"include_hidden"`
}

// HTTPConfig controls the daemon's HTTP API.
type HTTPConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"` // 0: derived from root
}

// LogConfig controls logging output.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"` // empty: stderr
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// MatcherOptions converts the media section for media.NewMatcher.
func (c *Config) MatcherOptions() media.MatcherOptions {
	return media.MatcherOptions{
		Extensions:    c.Media.Extensions,
		Exclude:       c.Media.Exclude,
		IncludeHidden: c.Media.IncludeHidden,
	}
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyRoot, "")
	v.SetDefault(KeyDebounce, 250*time.Millisecond)
	v.SetDefault(KeyScanWorkers, 4)
	v.SetDefault(KeyExtensions, media.DefaultExtensions())
	v.SetDefault(KeyExclude, []string{})
	v.SetDefault(KeyIncludeHidden, false)
	v.SetDefault(KeyDBPath, "")
	v.SetDefault(KeySocket, "")
	v.SetDefault(KeyHTTPPort, 0)
	v.SetDefault(KeyHTTPEnabled, true)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFile, "")
	v.SetDefault(KeyLogMaxSize, 10)
	v.SetDefault(KeyLogMaxBackups, 3)
	v.SetDefault(KeyLogMaxAge, 28)
}

// New returns a viper instance with defaults and environment overrides
// registered. Flags are bound by the caller.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Candidates returns the config files searched when none is given
// explicitly, in lookup order.
func Candidates() []string {
	paths := []string{FileName}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "mediascout", "config.yaml"))
	}
	return paths
}

// ReadFile loads explicit into v, or the first existing candidate when
// explicit is empty. It returns the file used, "" when none was found.
// A missing explicit file is an error; missing candidates are not.
func ReadFile(v *viper.Viper, explicit string) (string, error) {
	path := explicit
	if path == "" {
		for _, c := range Candidates() {
			if _, err := os.Stat(c); err == nil {
				path = c
				break
			}
		}
		if path == "" {
			return "", nil
		}
	}

	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return "", fmt.Errorf("read config %s: %w", path, err)
	}
	return path, nil
}

// Load resolves v into a validated Config.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs []error
	if c.Debounce <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %s", KeyDebounce, c.Debounce))
	}
	if c.ScanWorkers < 1 {
		errs = append(errs, fmt.Errorf("%s must be at least 1, got %d", KeyScanWorkers, c.ScanWorkers))
	}
	if c.HTTP.Port < 0 || c.HTTP.Port > 65535 {
		errs = append(errs, fmt.Errorf("%s out of range: %d", KeyHTTPPort, c.HTTP.Port))
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("%s: unknown level %q", KeyLogLevel, c.Log.Level))
	}
	if _, err := media.NewMatcher(c.MatcherOptions()); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
