package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigWithDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ".", cfg.Output.Dir)
	assert.Equal(t, "Scanreport_", cfg.Output.Prefix)
	assert.Equal(t, "2006_01_02", cfg.Output.DateFormat)
	assert.NotEmpty(t, cfg.Log.File)
	assert.False(t, cfg.Log.Verbose)
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scanmerge.yaml")
	content := `output:
  dir: merged
  prefix: "Merged_"
log:
  verbose: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "merged", cfg.Output.Dir)
	assert.Equal(t, "Merged_", cfg.Output.Prefix)
	assert.Equal(t, "2006_01_02", cfg.Output.DateFormat, "unset keys keep their defaults")
	assert.True(t, cfg.Log.Verbose)
}

func TestLoadConfigRejectsBrokenYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scanmerge.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output: [unclosed"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestDefaultFilename(t *testing.T) {
	cfg := &Config{Output: OutputConfig{Prefix: "Scanreport_", DateFormat: "2006_01_02"}}
	now := time.Date(2024, time.March, 1, 15, 4, 5, 0, time.UTC)

	assert.Equal(t, "Scanreport_2024_03_01.xlsx", cfg.DefaultFilename(now))
}

func TestOutputPath(t *testing.T) {
	cfg := &Config{Output: OutputConfig{Dir: "out"}}
	abs := filepath.Join(t.TempDir(), "abs.xlsx")

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Keeps extension", "report.xlsx", filepath.Join("out", "report.xlsx")},
		{"Adds extension", "report", filepath.Join("out", "report.xlsx")},
		{"Upper case extension", "REPORT.XLSX", filepath.Join("out", "REPORT.XLSX")},
		{"Trims whitespace", "  report.xlsx ", filepath.Join("out", "report.xlsx")},
		{"Absolute path", abs, abs},
		{"Empty", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, cfg.OutputPath(tt.input))
		})
	}
}

func TestEnsureOutputDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	cfg := &Config{Output: OutputConfig{Dir: dir}}

	require.NoError(t, cfg.EnsureOutputDir())
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestIsNotExist(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"Path error", &os.PathError{Op: "open", Path: "scanmerge.yaml", Err: os.ErrNotExist}, true},
		{"Wrapped not exist", fmt.Errorf("read: %w", os.ErrNotExist), true},
		{"Viper not found", viper.ConfigFileNotFoundError{}, true},
		{"Message only", errors.New("open scanmerge.yaml: no such file or directory"), false},
		{"Permission", &os.PathError{Op: "open", Path: "scanmerge.yaml", Err: os.ErrPermission}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, isNotExist(tt.err))
		})
	}
}
