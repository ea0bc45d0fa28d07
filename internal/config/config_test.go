package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Logging.Level != "info" {
		t.Errorf("expected Logging.Level 'info', got '%s'", cfg.Logging.Level)
	}
	if cfg.Promotion.AccessThreshold != 5 {
		t.Errorf("expected AccessThreshold 5, got %d", cfg.Promotion.AccessThreshold)
	}
	if cfg.Router.MaxKeywords != 20 {
		t.Errorf("expected MaxKeywords 20, got %d", cfg.Router.MaxKeywords)
	}
	if cfg.Router.MinConfidence != 0.3 {
		t.Errorf("expected MinConfidence 0.3, got %f", cfg.Router.MinConfidence)
	}
	if cfg.Workspace != "default" {
		t.Errorf("expected Workspace 'default', got '%s'", cfg.Workspace)
	}
	if cfg.Auth.Secret != "" {
		t.Error("expected auth to be disabled by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
logging:
  level: debug

decay:
  half_life_days:
    workaround: 30

promotion:
  access_threshold: 3

router:
  max_keywords: 10
  min_confidence: 0.5

auth:
  secret: s3cr3t-signing-key
  token_ttl: 12h

workspace: backend
extra_workspaces:
  frontend: ../frontend/.mnemo/default
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("expected level 'debug', got '%s'", cfg.Logging.Level)
	}
	if cfg.Decay.HalfLifeDays["workaround"] != 30 {
		t.Errorf("expected workaround half-life 30, got %f", cfg.Decay.HalfLifeDays["workaround"])
	}
	if cfg.Promotion.AccessThreshold != 3 {
		t.Errorf("expected AccessThreshold 3, got %d", cfg.Promotion.AccessThreshold)
	}
	if cfg.Router.MinConfidence != 0.5 {
		t.Errorf("expected MinConfidence 0.5, got %f", cfg.Router.MinConfidence)
	}
	if cfg.Auth.Secret != "s3cr3t-signing-key" {
		t.Errorf("unexpected secret %q", cfg.Auth.Secret)
	}
	if cfg.Auth.TokenTTL != 12*time.Hour {
		t.Errorf("expected TokenTTL 12h, got %v", cfg.Auth.TokenTTL)
	}
	if cfg.Workspace != "backend" {
		t.Errorf("expected workspace 'backend', got '%s'", cfg.Workspace)
	}
	if cfg.ExtraWorkspaces["frontend"] == "" {
		t.Error("expected extra workspace 'frontend'")
	}
}

func TestLoadFromFile_ExpandsSecretEnvVar(t *testing.T) {
	t.Setenv("TEST_MNEMO_SECRET", "from-env")

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "auth:\n  secret: ${TEST_MNEMO_SECRET}\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}
	if cfg.Auth.Secret != "from-env" {
		t.Errorf("expected secret expanded from env, got %q", cfg.Auth.Secret)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected defaults, got level %q", cfg.Logging.Level)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("MNEMO_LOG_LEVEL", "trace")
	t.Setenv("MNEMO_WORKSPACE", "scratch")
	t.Setenv("MNEMO_PROMOTION_THRESHOLD", "7")

	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Logging.Level != "trace" {
		t.Errorf("expected level 'trace', got %q", cfg.Logging.Level)
	}
	if cfg.Workspace != "scratch" {
		t.Errorf("expected workspace 'scratch', got %q", cfg.Workspace)
	}
	if cfg.Promotion.AccessThreshold != 7 {
		t.Errorf("expected threshold 7, got %d", cfg.Promotion.AccessThreshold)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid defaults", func(c *Config) {}, ""},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, "log level"},
		{"zero threshold", func(c *Config) { c.Promotion.AccessThreshold = 0 }, "access_threshold"},
		{"confidence above one", func(c *Config) { c.Router.MinConfidence = 1.5 }, "min_confidence"},
		{"zero keywords", func(c *Config) { c.Router.MaxKeywords = 0 }, "max_keywords"},
		{"unknown decay type", func(c *Config) {
			c.Decay.HalfLifeDays = map[string]float64{"hunch": 10}
		}, "unknown experience type"},
		{"negative half-life", func(c *Config) {
			c.Decay.HalfLifeDays = map[string]float64{"gotcha": -1}
		}, "must be positive"},
		{"negative ttl", func(c *Config) { c.Auth.TokenTTL = -time.Hour }, "token_ttl"},
		{"empty workspace", func(c *Config) { c.Workspace = "" }, "workspace"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestWorkspaceDir(t *testing.T) {
	cfg := Default()
	cfg.ExtraWorkspaces = map[string]string{
		"relative": "other/.mnemo/default",
		"absolute": "/data/shared/.mnemo/default",
	}

	if got := cfg.WorkspaceDir("/proj", "default"); got != filepath.Join("/proj", ".mnemo", "default") {
		t.Errorf("default dir = %q", got)
	}
	if got := cfg.WorkspaceDir("/proj", "relative"); got != filepath.Join("/proj", "other/.mnemo/default") {
		t.Errorf("relative dir = %q", got)
	}
	if got := cfg.WorkspaceDir("/proj", "absolute"); got != "/data/shared/.mnemo/default" {
		t.Errorf("absolute dir = %q", got)
	}
}

func TestRedactedSecret(t *testing.T) {
	tests := []struct {
		secret string
		want   string
	}{
		{"", ""},
		{"short", "(set)"},
		{"abcdefghijklmnop", "abcd...mnop"},
	}
	for _, tt := range tests {
		c := AuthConfig{Secret: tt.secret}
		if got := c.RedactedSecret(); got != tt.want {
			t.Errorf("RedactedSecret(%q) = %q, want %q", tt.secret, got, tt.want)
		}
	}
}

func TestAuthConfigString_RedactsSecret(t *testing.T) {
	c := AuthConfig{Secret: "abcdefghijklmnop", TokenTTL: time.Hour}
	s := c.String()
	if strings.Contains(s, "abcdefghijklmnop") {
		t.Errorf("String() leaked the secret: %s", s)
	}
}
