package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// file mirrors Config in the on-disk layout. Durations are written as
// strings ("250ms") so the file stays hand-editable.
type file struct {
	Root        string    `yaml:"root,omitempty"`
	Debounce    string    `yaml:"debounce"`
	ScanWorkers int       `yaml:"scan_workers"`
	Media       fileMedia `yaml:"media"`
	DBPath      string    `yaml:"db_path,omitempty"`
	Socket      string    `yaml:"socket,omitempty"`
	HTTP        fileHTTP  `yaml:"http"`
	Log         fileLog   `yaml:"log"`
}

type fileMedia struct {
	Extensions    []string `yaml:"extensions,flow"`
	Exclude       []string `yaml:"exclude"`
	IncludeHidden bool     `yaml:"include_hidden"`
}

type fileHTTP struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

type fileLog struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file,omitempty"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

func toFile(c *Config) file {
	exclude := c.Media.Exclude
	if exclude == nil {
		exclude = []string{}
	}
	return file{
		Root:        c.Root,
		Debounce:    c.Debounce.String(),
		ScanWorkers: c.ScanWorkers,
		Media: fileMedia{
			Extensions:    c.Media.Extensions,
			Exclude:       exclude,
			IncludeHidden: c.Media.IncludeHidden,
		},
		DBPath: c.DBPath,
		Socket: c.Socket,
		HTTP:   fileHTTP{Enabled: c.HTTP.Enabled, Port: c.HTTP.Port},
		Log: fileLog{
			Level:      c.Log.Level,
			File:       c.Log.File,
			MaxSizeMB:  c.Log.MaxSizeMB,
			MaxBackups: c.Log.MaxBackups,
			MaxAgeDays: c.Log.MaxAgeDays,
		},
	}
}

// Defaults returns the configuration used when nothing overrides it.
func Defaults() *Config {
	v := viper.New()
	SetDefaults(v)
	cfg, err := Load(v)
	if err != nil {
		panic(err)
	}
	return cfg
}

// Marshal renders c as YAML.
func Marshal(c *Config) ([]byte, error) {
	data, err := yaml.Marshal(toFile(c))
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	header := []byte("# mediascout configuration\n# Environment overrides: " + EnvPrefix + "_<KEY>, e.g. " + EnvPrefix + "_LOG_LEVEL=debug\n")
	return append(header, data...), nil
}

// WriteFile writes c to path as YAML. An existing file is left untouched
// unless force is set.
func WriteFile(path string, c *Config, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists", path)
		}
	}
	data, err := Marshal(c)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
