// Package config provides unified configuration loading for mnemo.
// Settings come from defaults, then <root>/.mnemo/config.yaml, then
// environment variables, later sources winning.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mnemohq/mnemo/internal/model"
)

// DataDirName is the per-project directory holding the config file and
// workspace databases.
const DataDirName = ".mnemo"

// Config contains all mnemo settings.
type Config struct {
	// Logging configures operational and trace logging.
	Logging LoggingConfig `json:"logging" yaml:"logging"`

	// Decay tunes the experience half-lives.
	Decay DecayConfig `json:"decay" yaml:"decay"`

	// Promotion controls experience-to-node promotion.
	Promotion PromotionConfig `json:"promotion" yaml:"promotion"`

	// Router tunes keyword routing.
	Router RouterConfig `json:"router" yaml:"router"`

	// Auth configures token authentication for the MCP server.
	Auth AuthConfig `json:"auth" yaml:"auth"`

	// Workspace names the active workspace. Defaults to "default".
	Workspace string `json:"workspace" yaml:"workspace"`

	// ExtraWorkspaces maps additional workspace names to their
	// directories, searched by cross-workspace recall. Paths are
	// relative to the project root unless absolute.
	ExtraWorkspaces map[string]string `json:"extra_workspaces,omitempty" yaml:"extra_workspaces,omitempty"`
}

// LoggingConfig configures mnemo's logging behavior.
type LoggingConfig struct {
	// Level sets verbosity: "info" (default), "debug", or "trace".
	// "debug" enables trace logging to .mnemo/trace.jsonl.
	Level string `json:"level" yaml:"level"`
}

// DecayConfig overrides the base half-life, in days, per experience
// type. Types absent from the map keep their built-in half-life.
type DecayConfig struct {
	HalfLifeDays map[string]float64 `json:"half_life_days,omitempty" yaml:"half_life_days,omitempty"`
}

// PromotionConfig controls when a repeatedly accessed experience is
// promoted into a permanent node.
type PromotionConfig struct {
	// AccessThreshold is the access count at which promotion fires.
	AccessThreshold int `json:"access_threshold" yaml:"access_threshold"`
}

// RouterConfig tunes keyword extraction and routing.
type RouterConfig struct {
	// MaxKeywords caps how many keywords are extracted from a query.
	MaxKeywords int `json:"max_keywords" yaml:"max_keywords"`

	// MinConfidence filters routes below this confidence from context
	// resolution. Range 0 to 1.
	MinConfidence float64 `json:"min_confidence" yaml:"min_confidence"`
}

// AuthConfig configures token auth for the MCP server. An empty Secret
// disables auth entirely.
type AuthConfig struct {
	// Secret signs issued tokens. Supports ${VAR} expansion.
	Secret string `json:"secret,omitempty" yaml:"secret,omitempty"`

	// TokenTTL is the lifetime of issued tokens.
	TokenTTL time.Duration `json:"token_ttl,omitempty" yaml:"token_ttl,omitempty"`
}

// RedactedSecret masks the signing secret for display. Shows first and
// last 4 characters of long secrets, "(set)" otherwise.
func (c AuthConfig) RedactedSecret() string {
	if c.Secret == "" {
		return ""
	}
	if len(c.Secret) < 12 {
		return "(set)"
	}
	return c.Secret[:4] + "..." + c.Secret[len(c.Secret)-4:]
}

// String implements fmt.Stringer to keep the secret out of logs.
func (c AuthConfig) String() string {
	return fmt.Sprintf("AuthConfig{Secret:%s, TokenTTL:%v}", c.RedactedSecret(), c.TokenTTL)
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{Level: "info"},
		Promotion: PromotionConfig{
			AccessThreshold: 5,
		},
		Router: RouterConfig{
			MaxKeywords:   20,
			MinConfidence: 0.3,
		},
		Auth: AuthConfig{
			TokenTTL: 24 * time.Hour,
		},
		Workspace: "default",
	}
}

// Load loads configuration for the project rooted at root.
// Order: defaults -> <root>/.mnemo/config.yaml -> environment variables.
func Load(root string) (*Config, error) {
	cfg := Default()

	path := filepath.Join(root, DataDirName, "config.yaml")
	if _, err := os.Stat(path); err == nil {
		fileCfg, err := LoadFromFile(path)
		if err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
		cfg = fileCfg
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromFile loads configuration from a specific YAML file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.Auth.Secret = expandEnvVars(cfg.Auth.Secret)
	return cfg, nil
}

// Validate checks that the configuration is coherent.
func (c *Config) Validate() error {
	validLevels := map[string]bool{"": true, "info": true, "debug": true, "trace": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (valid: info, debug, trace)", c.Logging.Level)
	}

	if c.Promotion.AccessThreshold < 1 {
		return fmt.Errorf("access_threshold must be at least 1, got %d", c.Promotion.AccessThreshold)
	}

	if c.Router.MinConfidence < 0 || c.Router.MinConfidence > 1 {
		return fmt.Errorf("min_confidence must be between 0 and 1, got %f", c.Router.MinConfidence)
	}
	if c.Router.MaxKeywords < 1 {
		return fmt.Errorf("max_keywords must be at least 1, got %d", c.Router.MaxKeywords)
	}

	for typ, days := range c.Decay.HalfLifeDays {
		if !model.ExperienceType(typ).Valid() {
			return fmt.Errorf("unknown experience type in half_life_days: %s", typ)
		}
		if days <= 0 {
			return fmt.Errorf("half_life_days for %s must be positive, got %f", typ, days)
		}
	}

	if c.Auth.TokenTTL < 0 {
		return fmt.Errorf("token_ttl must be non-negative, got %v", c.Auth.TokenTTL)
	}

	if c.Workspace == "" {
		return fmt.Errorf("workspace name must not be empty")
	}
	return nil
}

// WorkspaceDir resolves the directory for the named workspace relative
// to the project root.
func (c *Config) WorkspaceDir(root, name string) string {
	if dir, ok := c.ExtraWorkspaces[name]; ok {
		if filepath.IsAbs(dir) {
			return dir
		}
		return filepath.Join(root, dir)
	}
	return filepath.Join(root, DataDirName, name)
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("MNEMO_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("MNEMO_WORKSPACE"); v != "" {
		cfg.Workspace = v
	}
	if v := os.Getenv("MNEMO_AUTH_SECRET"); v != "" {
		cfg.Auth.Secret = v
	}
	if v := os.Getenv("MNEMO_PROMOTION_THRESHOLD"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Promotion.AccessThreshold = n
		}
	}
	if v := os.Getenv("MNEMO_MIN_CONFIDENCE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Router.MinConfidence = f
		}
	}
}

// expandEnvVars expands ${VAR} patterns with environment values.
func expandEnvVars(s string) string {
	if !strings.Contains(s, "${") {
		return s
	}
	return os.Expand(s, os.Getenv)
}
