package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/handiism/smugmug-downloader/internal/model"
	"github.com/handiism/smugmug-downloader/internal/smugmug"
	"gopkg.in/yaml.v3"
)

// Settings holds all configuration options.
type Settings struct {
	// Account settings
	BaseURL string `yaml:"base_url"`
	User    string `yaml:"user"`
	Session string `yaml:"session,omitempty"`

	// Selection settings
	OutputDir   string   `yaml:"output_dir"`
	Albums      []string `yaml:"albums,omitempty"`
	Mask        string   `yaml:"mask,omitempty"`
	FollowPages bool     `yaml:"follow_pages"`

	// Retry settings
	RetryDelay float64 `yaml:"retry_delay"` // seconds
	MaxRetries int     `yaml:"max_retries"` // 0 means unlimited

	// Post-download settings
	VerifyImages  bool `yaml:"verify_images"`
	WriteMetadata bool `yaml:"write_metadata"`

	// Logging settings
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"` // text, json
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	return &Settings{
		BaseURL:     smugmug.DefaultBaseURL,
		OutputDir:   "output/",
		FollowPages: false,

		RetryDelay: 5,
		MaxRetries: 0,

		VerifyImages:  false,
		WriteMetadata: false,

		LogLevel:  "info",
		LogFormat: "text",
	}
}

// Load reads settings from a YAML file.
// A missing file yields the defaults.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	settings := DefaultSettings()
	if err := yaml.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("failed to parse settings file: %w", err)
	}

	return settings, nil
}

// Save writes settings to a YAML file.
// The file holds the session cookie, so it is only readable by its owner.
func (s *Settings) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	return os.WriteFile(path, data, 0600)
}

// Validate checks that the settings can drive a download.
func (s *Settings) Validate() error {
	var errs []error
	if strings.TrimSpace(s.User) == "" {
		errs = append(errs, errors.New("user is required"))
	}
	if strings.TrimSpace(s.OutputDir) == "" {
		errs = append(errs, errors.New("output_dir must not be empty"))
	}
	if s.RetryDelay < 0 {
		errs = append(errs, fmt.Errorf("retry_delay must not be negative, got %v", s.RetryDelay))
	}
	if s.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("max_retries must not be negative, got %d", s.MaxRetries))
	}
	switch s.LogFormat {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log_format must be text or json, got %q", s.LogFormat))
	}
	return errors.Join(errs...)
}

// ToPathConfig converts settings to PathConfig.
func (s *Settings) ToPathConfig() *model.PathConfig {
	return &model.PathConfig{
		OutputDir: s.OutputDir,
	}
}

// ToFilter converts the album selection settings to a Filter.
func (s *Settings) ToFilter() *model.Filter {
	return model.NewFilter(s.Albums, s.Mask)
}

// ParsePagesFlag interprets the pagination option.
//
// "no", "false", "0", "off" and the empty string disable pagination; any
// other value enables it.
func ParsePagesFlag(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "no", "false", "0", "off":
		return false
	}
	return true
}
