package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DefaultConfigFile is read from the working directory when no path is given
const DefaultConfigFile = "scanmerge.yaml"

const xlsxExt = ".xlsx"

// Config represents the application configuration
type Config struct {
	Output OutputConfig `mapstructure:"output"`
	Log    LogConfig    `mapstructure:"log"`
}

// OutputConfig controls where merged reports are written and how they are named
type OutputConfig struct {
	Dir        string `mapstructure:"dir"`         // Directory merged reports are saved to
	Prefix     string `mapstructure:"prefix"`      // Default filename prefix
	DateFormat string `mapstructure:"date_format"` // Go time layout appended to the prefix
}

type LogConfig struct {
	File    string `mapstructure:"file"`
	Verbose bool   `mapstructure:"verbose"`
}

// Load reads configPath, falling back to defaults when the file is absent.
// An empty configPath means DefaultConfigFile.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath == "" {
		configPath = DefaultConfigFile
	}
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil && !isNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("output.dir", ".")
	v.SetDefault("output.prefix", "Scanreport_")
	v.SetDefault("output.date_format", "2006_01_02")

	v.SetDefault("log.file", defaultLogFile())
	v.SetDefault("log.verbose", false)
}

func defaultLogFile() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "scanmerge", "scanmerge.log")
}

func isNotExist(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.Output.DateFormat) == "" {
		return fmt.Errorf("output.date_format must not be empty")
	}
	if c.Output.Dir == "" {
		c.Output.Dir = "."
	}
	return nil
}

// DefaultFilename returns the suggested name for a report merged at now,
// e.g. Scanreport_2024_03_01.xlsx
func (c *Config) DefaultFilename(now time.Time) string {
	return c.Output.Prefix + now.Format(c.Output.DateFormat) + xlsxExt
}

// OutputPath resolves a user supplied filename against the output directory.
// Absolute paths are kept as given and a missing .xlsx extension is added.
func (c *Config) OutputPath(filename string) string {
	filename = strings.TrimSpace(filename)
	if filename == "" {
		return ""
	}
	if !strings.EqualFold(filepath.Ext(filename), xlsxExt) {
		filename += xlsxExt
	}
	if filepath.IsAbs(filename) {
		return filename
	}
	return filepath.Join(c.Output.Dir, filename)
}

// EnsureOutputDir creates the output directory if it doesn't exist
func (c *Config) EnsureOutputDir() error {
	if err := os.MkdirAll(c.Output.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return nil
}
