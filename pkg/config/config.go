// Package config loads the sgraph settings file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds the settings of sgraph. Command-line flags override them.
type Config struct {
	// NameTag is the tag key used as display name of a group.
	NameTag     string `yaml:"name_tag"`
	PaletteSize int    `yaml:"palette_size"`
	ShowUnused  bool   `yaml:"show_unused"`
	FontName    string `yaml:"font_name"`
	FontSize    int    `yaml:"font_size"`
	LogLevel    string `yaml:"log_level"`
	// LogFormat is console or json.
	LogFormat string `yaml:"log_format"`
	AWS       AWS    `yaml:"aws"`
	// VPCs restricts the aws source to these VPC ids.
	VPCs []string `yaml:"vpcs"`
}

const (
	LogConsole = "console"
	LogJSON    = "json"
)

// EC2 DescribeSecurityGroups bounds for MaxResults.
const (
	MinPageSize = 5
	MaxPageSize = 1000
)

type AWS struct {
	Region   string `yaml:"region"`
	Profile  string `yaml:"profile"`
	PageSize int32  `yaml:"page_size"`
}

func Default() Config {
	return Config{
		NameTag:     "Name",
		PaletteSize: 16,
		FontName:    "Sans",
		FontSize:    8,
		LogLevel:    "warn",
		LogFormat:   LogConsole,
		AWS:         AWS{PageSize: 100},
	}
}

// DefaultPath is $XDG_CONFIG_HOME/sgraph/config.yaml, or the equivalent on
// platforms without XDG.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "sgraph", "config.yaml"), nil
}

// Load reads the settings at path on top of Default. With an empty path the
// default location is tried and a missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		var err error
		if path, err = DefaultPath(); err != nil {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) && !explicit {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (cfg Config) validate() error {
	if cfg.PaletteSize < 1 {
		return fmt.Errorf("palette_size must be positive, got %d", cfg.PaletteSize)
	}
	if cfg.FontSize < 1 {
		return fmt.Errorf("font_size must be positive, got %d", cfg.FontSize)
	}
	if cfg.LogFormat != LogConsole && cfg.LogFormat != LogJSON {
		return fmt.Errorf("log_format must be %s or %s, got %q", LogConsole, LogJSON, cfg.LogFormat)
	}
	if err := CheckPageSize(cfg.AWS.PageSize); err != nil {
		return fmt.Errorf("aws.page_size %w", err)
	}
	return nil
}

// CheckPageSize accepts 0, meaning the server default, or a value EC2 accepts
// as MaxResults.
func CheckPageSize(size int32) error {
	if size == 0 || (size >= MinPageSize && size <= MaxPageSize) {
		return nil
	}
	return fmt.Errorf("must be 0 or between %d and %d, got %d", MinPageSize, MaxPageSize, size)
}
