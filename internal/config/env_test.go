package config

import (
	"errors"
	"reflect"
	"testing"
)

// mapEnv returns a getenv backed by a map.
func mapEnv(vars map[string]string) func(string) string {
	return func(key string) string { return vars[key] }
}

func TestApplyEnv(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Render.BrowserBin = "/from/config"

	err := ApplyEnv(cfg, mapEnv(map[string]string{
		EnvServerAddr:     ":9999",
		EnvRateLimit:      "12",
		EnvRenderTimeout:  "2m",
		EnvRenderWorkers:  "3",
		EnvBrowserBin:     "/usr/bin/chromium",
		EnvNoSandbox:      "true",
		EnvPrivateSources: "1",
		EnvStorageBaseURL: "https://cdn.example.com",
		EnvDefaultFormat:  "ebook",
		EnvAssetsStyle:    "modern",
	}))
	if err != nil {
		t.Fatalf("ApplyEnv() unexpected error: %v", err)
	}

	if cfg.Server.Addr != ":9999" || cfg.Server.RateLimit != 12 || !cfg.Server.AllowPrivateSources {
		t.Errorf("Server = %+v", cfg.Server)
	}
	if cfg.Render.Timeout != "2m" || cfg.Render.Workers != 3 || !cfg.Render.NoSandbox {
		t.Errorf("Render = %+v", cfg.Render)
	}
	if cfg.Render.BrowserBin != "/usr/bin/chromium" {
		t.Errorf("BrowserBin = %q, environment should override config", cfg.Render.BrowserBin)
	}
	if cfg.Storage.BaseURL != "https://cdn.example.com" || cfg.Storage.Dir != "artifacts" {
		t.Errorf("Storage = %+v", cfg.Storage)
	}
	if cfg.Defaults.Format != "ebook" || cfg.Assets.Style != "modern" {
		t.Errorf("Defaults/Assets = %+v / %+v", cfg.Defaults, cfg.Assets)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() after ApplyEnv = %v", err)
	}
}

func TestApplyEnv_EmptyLeavesConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	if err := ApplyEnv(cfg, mapEnv(nil)); err != nil {
		t.Fatalf("ApplyEnv() unexpected error: %v", err)
	}
	if !reflect.DeepEqual(cfg, DefaultConfig()) {
		t.Errorf("ApplyEnv() with no variables changed config: %+v", cfg)
	}
}

func TestApplyEnv_InvalidValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		vars map[string]string
	}{
		{"non-integer workers", map[string]string{EnvRenderWorkers: "four"}},
		{"non-integer rate limit", map[string]string{EnvRateLimit: "1.5"}},
		{"non-boolean sandbox", map[string]string{EnvNoSandbox: "maybe"}},
		{"non-boolean private sources", map[string]string{EnvPrivateSources: "sometimes"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if err := ApplyEnv(DefaultConfig(), mapEnv(tt.vars)); !errors.Is(err, ErrInvalidValue) {
				t.Errorf("ApplyEnv() error = %v, want ErrInvalidValue", err)
			}
		})
	}
}

func TestUnknownEnvVars(t *testing.T) {
	t.Parallel()

	got := UnknownEnvVars([]string{
		"HOME=/root",
		"TYPESET_RENDER_TIMEOUT=30s",
		"TYPESET_RENDER_TIMOUT=30s",
		"TYPESET_AUTHOR=x",
		"TYPESET_STYLE=classic",
	})
	want := []string{"TYPESET_AUTHOR", "TYPESET_RENDER_TIMOUT"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("UnknownEnvVars() = %v, want %v", got, want)
	}
}
