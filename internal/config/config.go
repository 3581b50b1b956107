package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up in the working directory before
// falling back to the dotfile in the user's home directory.
const FileName = "smart_term_config.yaml"

// Config holds the resolved monitor settings. The monitor reads it once at
// startup and never re-reads it mid-session.
type Config struct {
	Provider         string `yaml:"provider"`
	APIKey           string `yaml:"api_key"`
	Model            string `yaml:"model"`
	BaseURL          string `yaml:"base_url,omitempty"`
	Language         string `yaml:"language,omitempty"`
	MaxContextChars  int    `yaml:"max_context_chars"`
	LogSummaryLength int    `yaml:"log_summary_length"`
	LogDir           string `yaml:"log_dir,omitempty"`

	// Path the config was loaded from (or will be saved to). Not serialized.
	Path string `yaml:"-"`
}

// ErrNoAPIKey indicates no API key was found in the file or environment.
var ErrNoAPIKey = errors.New("no API key configured")

// Default returns a Config with the stock settings applied.
func Default() *Config {
	return &Config{
		Provider:         "openai",
		Model:            "gpt-4o",
		MaxContextChars:  10000,
		LogSummaryLength: 100,
		LogDir:           "log",
	}
}

// HomePath returns the per-user config path (~/.smart_term_config.yaml).
func HomePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "." + FileName
	}
	return filepath.Join(home, "."+FileName)
}

// SearchPaths lists candidate config locations in precedence order:
// project-local file first, then the home dotfile.
func SearchPaths() []string {
	return []string{FileName, HomePath()}
}

// Load resolves the configuration: defaults, then the first config file
// found on the search path, then environment variable overrides
// (SMART_TERM_API_KEY, SMART_TERM_BASE_URL). A missing file is not an
// error; a malformed one is.
func Load() (*Config, error) {
	cfg := Default()
	cfg.Path = HomePath()

	for _, path := range SearchPaths() {
		data, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
		cfg.Path = path
		break
	}

	if v := strings.TrimSpace(os.Getenv("SMART_TERM_API_KEY")); v != "" {
		cfg.APIKey = v
	}
	if v := strings.TrimSpace(os.Getenv("SMART_TERM_BASE_URL")); v != "" {
		cfg.BaseURL = v
	}

	if cfg.MaxContextChars <= 0 {
		cfg.MaxContextChars = 10000
	}
	if cfg.LogSummaryLength <= 0 {
		cfg.LogSummaryLength = 100
	}
	if strings.TrimSpace(cfg.LogDir) == "" {
		cfg.LogDir = "log"
	}
	return cfg, nil
}

// Save writes the config back to cfg.Path, creating parent directories as
// needed. The file carries the API key, so permissions are kept at 0600.
func (c *Config) Save() error {
	if strings.TrimSpace(c.Path) == "" {
		c.Path = HomePath()
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if dir := filepath.Dir(c.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	if err := os.WriteFile(c.Path, data, 0o600); err != nil {
		return fmt.Errorf("write config %s: %w", c.Path, err)
	}
	return nil
}

// Validate checks that the settings are usable for starting a session.
func (c *Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Provider)) {
	case "openai", "gemini":
	default:
		return fmt.Errorf("unsupported provider %q (expected openai or gemini)", c.Provider)
	}
	if strings.TrimSpace(c.APIKey) == "" {
		return ErrNoAPIKey
	}
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("model is required")
	}
	if lang := strings.TrimSpace(c.Language); lang != "" && lang != "cn" && lang != "en" {
		return fmt.Errorf("language must be cn or en, got %q", c.Language)
	}
	return nil
}

// MaskedKey returns the API key with all but the last four characters
// replaced, for diagnostics output.
func (c *Config) MaskedKey() string {
	k := strings.TrimSpace(c.APIKey)
	if k == "" {
		return "none"
	}
	if len(k) <= 4 {
		return strings.Repeat("*", len(k))
	}
	return "*****" + k[len(k)-4:]
}
