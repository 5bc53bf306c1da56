package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

// isolate keeps the developer's own config and environment out of the test.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("GEMINI_API_KEY", "")
	for _, kv := range os.Environ() {
		if name, _, _ := strings.Cut(kv, "="); strings.HasPrefix(name, EnvPrefix+"_") {
			t.Setenv(name, "")
		}
	}
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load(New(""))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := Config{
		BaseURL:      "http://localhost:1234",
		Provider:     ProviderLocal,
		MaxDimension: 512,
		JPEGQuality:  80,
		CheckTimeout: 5 * time.Second,
		LogLevel:     "info",
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadPrecedence(t *testing.T) {
	isolate(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := "model: from-file\nbase_url: http://file:1\njpeg_quality: 70\ncheck_timeout: 2s\ndate_prefix: true\n"
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("VISION_RENAME_BASE_URL", "http://env:2")

	v := New(path)
	v.Set(KeyJPEGQuality, 90) // stands in for a bound flag

	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Model != "from-file" {
		t.Errorf("Model = %q, want from-file", cfg.Model)
	}
	if cfg.BaseURL != "http://env:2" {
		t.Errorf("BaseURL = %q, env should beat file", cfg.BaseURL)
	}
	if cfg.JPEGQuality != 90 {
		t.Errorf("JPEGQuality = %d, override should beat file", cfg.JPEGQuality)
	}
	if cfg.CheckTimeout != 2*time.Second || !cfg.DatePrefix {
		t.Errorf("file values not applied: %+v", cfg)
	}
}

func TestLoadEmptyBaseURLMeansDefault(t *testing.T) {
	isolate(t)
	v := New("")
	v.Set(KeyBaseURL, "  ")

	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BaseURL != "http://localhost:1234" {
		t.Errorf("BaseURL = %q", cfg.BaseURL)
	}
}

func TestLoadGeminiKeyFromEnv(t *testing.T) {
	isolate(t)
	t.Setenv("GEMINI_API_KEY", "abc")

	cfg, err := Load(New(""))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.GeminiAPIKey != "abc" {
		t.Errorf("GeminiAPIKey = %q", cfg.GeminiAPIKey)
	}
	if cfg.Redacted().GeminiAPIKey != "<redacted>" {
		t.Error("Redacted should hide the key")
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	isolate(t)
	if _, err := Load(New(filepath.Join(t.TempDir(), "nope.yaml"))); err == nil {
		t.Error("expected error for a missing explicit config file")
	}
}

func TestValidate(t *testing.T) {
	valid := Config{Provider: ProviderLocal, MaxDimension: 512, JPEGQuality: 80, CheckTimeout: time.Second, LogLevel: "info"}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "provider", mutate: func(c *Config) { c.Provider = "openai" }, wantErr: "unknown provider"},
		{name: "quality low", mutate: func(c *Config) { c.JPEGQuality = 0 }, wantErr: "jpeg_quality"},
		{name: "quality high", mutate: func(c *Config) { c.JPEGQuality = 101 }, wantErr: "jpeg_quality"},
		{name: "dimension", mutate: func(c *Config) { c.MaxDimension = 0 }, wantErr: "max_dimension"},
		{name: "check timeout", mutate: func(c *Config) { c.CheckTimeout = 0 }, wantErr: "check_timeout"},
		{name: "request timeout", mutate: func(c *Config) { c.RequestTimeout = -time.Second }, wantErr: "request_timeout"},
		{name: "log level", mutate: func(c *Config) { c.LogLevel = "verbose" }, wantErr: "log_level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("err = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}
