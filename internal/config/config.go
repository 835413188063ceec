package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/harrison/wsfix/internal/whitespace"
)

// HistoryConfig represents run-history configuration
type HistoryConfig struct {
	// Enabled records every run in the history database
	Enabled bool `yaml:"enabled"`

	// DBPath is the path to the history database (relative paths resolve against the wsfix home)
	DBPath string `yaml:"db_path"`
}

// Config represents wsfix configuration options
type Config struct {
	// LineEnding is the enforced terminator style (lf, crlf)
	LineEnding string `yaml:"line_ending"`

	// CheckOnly reports pending changes without writing them
	CheckOnly bool `yaml:"check_only"`

	// TabSize is the tab width used by the line-length advisory
	TabSize int `yaml:"tab_size"`

	// LineLength is the advisory line width limit (0 = off)
	LineLength int `yaml:"line_length"`

	// Modelines lets vim modelines override tab settings per file
	Modelines bool `yaml:"modelines"`

	// Concurrency is the number of files processed at once (0 or 1 = sequential)
	Concurrency int `yaml:"concurrency"`

	// ExcludeDirs are directory names skipped during discovery
	ExcludeDirs []string `yaml:"exclude_dirs"`

	// Extensions restricts directory scans to these extensions (empty = all files)
	Extensions []string `yaml:"extensions"`

	// Ignore holds doublestar glob patterns for files to skip
	Ignore []string `yaml:"ignore"`

	// LogLevel sets the logging verbosity (trace, debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// LogDir is the directory where run logs are written (empty = no file log)
	LogDir string `yaml:"log_dir"`

	// Report is a path to write a run report to (.md, .html, .yaml)
	Report string `yaml:"report"`

	// History contains run-history configuration
	History HistoryConfig `yaml:"history"`
}

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() *Config {
	return &Config{
		LineEnding:  "lf",
		CheckOnly:   false,
		TabSize:     4,
		LineLength:  0, // Advisory off
		Modelines:   true,
		Concurrency: 1, // Sequential
		ExcludeDirs: []string{".git", "node_modules", "vendor"},
		LogLevel:    "info",
		History: HistoryConfig{
			Enabled: false,
			DBPath:  "history.db",
		},
	}
}

// LoadConfig loads configuration from the specified file path
// If the file doesn't exist, returns default configuration without error
// If the file exists but is malformed, returns an error
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Decode into a map first so keys that are present but false/zero still
	// override the defaults
	var rawMap map[string]interface{}
	if err := yaml.Unmarshal(data, &rawMap); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	var fileCfg Config
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	has := func(key string) bool {
		_, ok := rawMap[key]
		return ok
	}

	if has("line_ending") {
		cfg.LineEnding = fileCfg.LineEnding
	}
	if has("check_only") {
		cfg.CheckOnly = fileCfg.CheckOnly
	}
	if has("tab_size") {
		cfg.TabSize = fileCfg.TabSize
	}
	if has("line_length") {
		cfg.LineLength = fileCfg.LineLength
	}
	if has("modelines") {
		cfg.Modelines = fileCfg.Modelines
	}
	if has("concurrency") {
		cfg.Concurrency = fileCfg.Concurrency
	}
	if has("exclude_dirs") {
		cfg.ExcludeDirs = fileCfg.ExcludeDirs
	}
	if has("extensions") {
		cfg.Extensions = fileCfg.Extensions
	}
	if has("ignore") {
		cfg.Ignore = fileCfg.Ignore
	}
	if has("log_level") {
		cfg.LogLevel = fileCfg.LogLevel
	}
	if has("log_dir") {
		cfg.LogDir = fileCfg.LogDir
	}
	if has("report") {
		cfg.Report = fileCfg.Report
	}

	if historySection, exists := rawMap["history"]; exists && historySection != nil {
		historyMap, _ := historySection.(map[string]interface{})
		if _, exists := historyMap["enabled"]; exists {
			cfg.History.Enabled = fileCfg.History.Enabled
		}
		if _, exists := historyMap["db_path"]; exists {
			cfg.History.DBPath = fileCfg.History.DBPath
		}
	}

	return cfg, nil
}

// LoadConfigFromHome loads configuration from config.yaml in the wsfix home directory
// If the directory or file doesn't exist, returns default configuration without error
func LoadConfigFromHome(home string) (*Config, error) {
	return LoadConfig(filepath.Join(home, "config.yaml"))
}

// Flags carries CLI flag values. A nil field means the flag was not given.
type Flags struct {
	LineEnding  *string
	CheckOnly   *bool
	TabSize     *int
	LineLength  *int
	Modelines   *bool
	Concurrency *int
	ExcludeDirs []string
	Extensions  []string
	Ignore      []string
	LogLevel    *string
	LogDir      *string
	Report      *string
	History     *bool
}

// MergeWithFlags merges CLI flags into the configuration
// Non-nil flag values override configuration values; list flags extend the lists
func (c *Config) MergeWithFlags(f Flags) {
	if f.LineEnding != nil {
		c.LineEnding = *f.LineEnding
	}
	if f.CheckOnly != nil {
		c.CheckOnly = *f.CheckOnly
	}
	if f.TabSize != nil {
		c.TabSize = *f.TabSize
	}
	if f.LineLength != nil {
		c.LineLength = *f.LineLength
	}
	if f.Modelines != nil {
		c.Modelines = *f.Modelines
	}
	if f.Concurrency != nil {
		c.Concurrency = *f.Concurrency
	}
	c.ExcludeDirs = append(c.ExcludeDirs, f.ExcludeDirs...)
	c.Extensions = append(c.Extensions, f.Extensions...)
	c.Ignore = append(c.Ignore, f.Ignore...)
	if f.LogLevel != nil {
		c.LogLevel = *f.LogLevel
	}
	if f.LogDir != nil {
		c.LogDir = *f.LogDir
	}
	if f.Report != nil {
		c.Report = *f.Report
	}
	if f.History != nil {
		c.History.Enabled = *f.History
	}
}

// Validate validates the configuration values
// Returns an error if any values are invalid
func (c *Config) Validate() error {
	if _, err := whitespace.ParseLineEnding(c.LineEnding); err != nil {
		return fmt.Errorf("invalid line_ending: %w", err)
	}

	if c.TabSize <= 0 {
		return fmt.Errorf("tab_size must be > 0, got %d", c.TabSize)
	}

	if c.LineLength < 0 {
		return fmt.Errorf("line_length must be >= 0, got %d", c.LineLength)
	}

	if c.Concurrency < 0 {
		return fmt.Errorf("concurrency must be >= 0, got %d", c.Concurrency)
	}

	validLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.LogLevel)] {
		return fmt.Errorf("invalid log_level %q, must be one of: trace, debug, info, warn, error", c.LogLevel)
	}

	for _, pattern := range c.Ignore {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid ignore pattern %q", pattern)
		}
	}

	if c.History.Enabled && c.History.DBPath == "" {
		return fmt.Errorf("history.db_path cannot be empty when history is enabled")
	}

	return nil
}

// Options resolves the configuration into the immutable options the fixer uses.
// Call Validate first; an invalid line ending falls back to LF.
func (c *Config) Options() whitespace.Options {
	lineEnding, _ := whitespace.ParseLineEnding(c.LineEnding)
	return whitespace.Options{
		LineEnding: lineEnding,
		CheckOnly:  c.CheckOnly,
		TabSize:    c.TabSize,
		LineLength: c.LineLength,
		Modelines:  c.Modelines,
	}
}
