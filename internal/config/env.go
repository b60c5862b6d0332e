package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// EnvPrefix marks environment variables read by ApplyEnv.
const EnvPrefix = "TYPESET_"

// Environment variable names.
const (
	EnvConfig         = "TYPESET_CONFIG"
	EnvServerAddr     = "TYPESET_SERVER_ADDR"
	EnvRateLimit      = "TYPESET_SERVER_RATE_LIMIT"
	EnvMaxUploadMB    = "TYPESET_SERVER_MAX_UPLOAD_MB"
	EnvPrivateSources = "TYPESET_SERVER_ALLOW_PRIVATE_SOURCES"
	EnvRenderTimeout  = "TYPESET_RENDER_TIMEOUT"
	EnvRenderWorkers  = "TYPESET_RENDER_WORKERS"
	EnvBrowserBin     = "TYPESET_RENDER_BROWSER_BIN"
	EnvNoSandbox      = "TYPESET_RENDER_NO_SANDBOX"
	EnvStorageDir     = "TYPESET_STORAGE_DIR"
	EnvStorageBaseURL = "TYPESET_STORAGE_BASE_URL"
	EnvJobsRetention  = "TYPESET_JOBS_RETENTION"
	EnvDefaultFormat  = "TYPESET_DEFAULT_FORMAT"
	EnvDefaultFont    = "TYPESET_DEFAULT_FONT"
	EnvAssetsBasePath = "TYPESET_ASSETS_PATH"
	EnvAssetsStyle    = "TYPESET_STYLE"
	EnvVerbose        = "TYPESET_VERBOSE"
)

// knownEnvVars lists valid TYPESET_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	EnvConfig:         true,
	EnvServerAddr:     true,
	EnvRateLimit:      true,
	EnvMaxUploadMB:    true,
	EnvPrivateSources: true,
	EnvRenderTimeout:  true,
	EnvRenderWorkers:  true,
	EnvBrowserBin:     true,
	EnvNoSandbox:      true,
	EnvStorageDir:     true,
	EnvStorageBaseURL: true,
	EnvJobsRetention:  true,
	EnvDefaultFormat:  true,
	EnvDefaultFont:    true,
	EnvAssetsBasePath: true,
	EnvAssetsStyle:    true,
	EnvVerbose:        true,
}

// ApplyEnv overrides cfg with TYPESET_* values read through getenv.
// Precedence: config file < environment < command-line flags
// (flags are applied later by the caller). Returns an error for values
// that cannot be parsed; run Validate afterwards for range checks.
func ApplyEnv(cfg *Config, getenv func(string) string) error {
	strs := []struct {
		name string
		dst  *string
	}{
		{EnvServerAddr, &cfg.Server.Addr},
		{EnvRenderTimeout, &cfg.Render.Timeout},
		{EnvBrowserBin, &cfg.Render.BrowserBin},
		{EnvStorageDir, &cfg.Storage.Dir},
		{EnvStorageBaseURL, &cfg.Storage.BaseURL},
		{EnvJobsRetention, &cfg.Jobs.Retention},
		{EnvDefaultFormat, &cfg.Defaults.Format},
		{EnvDefaultFont, &cfg.Defaults.Font},
		{EnvAssetsBasePath, &cfg.Assets.BasePath},
		{EnvAssetsStyle, &cfg.Assets.Style},
	}
	for _, s := range strs {
		if v := getenv(s.name); v != "" {
			*s.dst = v
		}
	}

	ints := []struct {
		name string
		dst  *int
	}{
		{EnvRateLimit, &cfg.Server.RateLimit},
		{EnvMaxUploadMB, &cfg.Server.MaxUploadMB},
		{EnvRenderWorkers, &cfg.Render.Workers},
	}
	for _, i := range ints {
		v := getenv(i.name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not an integer", ErrInvalidValue, i.name, v)
		}
		*i.dst = n
	}

	bools := []struct {
		name string
		dst  *bool
	}{
		{EnvNoSandbox, &cfg.Render.NoSandbox},
		{EnvPrivateSources, &cfg.Server.AllowPrivateSources},
	}
	for _, b := range bools {
		v := getenv(b.name)
		if v == "" {
			continue
		}
		on, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not a boolean", ErrInvalidValue, b.name, v)
		}
		*b.dst = on
	}

	return nil
}

// UnknownEnvVars returns TYPESET_* names in environ that ApplyEnv ignores,
// sorted. Helps catch typos like TYPESET_RENDER_TIMOUT.
func UnknownEnvVars(environ []string) []string {
	var unknown []string
	for _, env := range environ {
		if !strings.HasPrefix(env, EnvPrefix) {
			continue
		}
		name, _, _ := strings.Cut(env, "=")
		if !knownEnvVars[name] {
			unknown = append(unknown, name)
		}
	}
	sort.Strings(unknown)
	return unknown
}
