package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Browser   BrowserConfig
	Fetch     FetchConfig
	Dynamic   DynamicConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Cache     CacheConfig
	Log       LogConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"
}

// BrowserConfig controls the Rod browser instance.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// MaxPages is the page pool capacity (max concurrent tabs).
	MaxPages int // default: 10

	// DefaultProxy is the default proxy URL for all requests.
	DefaultProxy string

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: false

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string
}

// FetchConfig controls static fetching behavior.
type FetchConfig struct {
	// DefaultTimeout is the per-request timeout.
	DefaultTimeout time.Duration // default: 30s

	// MaxTimeout is the maximum allowed timeout from the client.
	MaxTimeout time.Duration // default: 120s

	// HTTPTimeout is the deadline for the plain-HTTP attempt before
	// escalating to the browser in "auto" mode.
	HTTPTimeout time.Duration // default: 8s

	// BlockedResourceTypes lists resource types blocked on browser
	// fetches. default: ["Image", "Stylesheet", "Font", "Media"]
	BlockedResourceTypes []string
}

// DynamicConfig controls the stabilize-and-extract pipeline defaults.
// Per-request values override these.
type DynamicConfig struct {
	// MaxTimeout is the maximum overall deadline from the client.
	MaxTimeout time.Duration // default: 5m

	// SettleDelay is the pause between interaction attempts, giving
	// lazy loaders time to fire.
	SettleDelay time.Duration // default: 2s

	// StableWindow is the number of consecutive no-growth samples that
	// mark a stability candidate.
	StableWindow int // default: 3

	// ConfirmWindow is the number of additional no-growth samples
	// required to confirm exhaustion.
	ConfirmWindow int // default: 2

	// StrategyTimeout bounds each extraction strategy independently.
	StrategyTimeout time.Duration // default: 15s

	// SalvageTimeout bounds the best-effort snapshot taken after the
	// overall deadline expires.
	SalvageTimeout time.Duration // default: 3s
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	// Enabled toggles API key authentication.
	Enabled bool // default: true

	// APIKeys is the list of valid API keys.
	APIKeys []string
}

// RateLimitConfig controls per-key rate limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per API key.
	RequestsPerSecond float64 // default: 5

	// Burst is the maximum burst size per API key.
	Burst int // default: 10
}

// CacheConfig controls the fetch response cache.
type CacheConfig struct {
	// MaxEntries is the maximum number of cached responses.
	MaxEntries int // default: 1000
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host: envOr("DEEPFETCH_HOST", "0.0.0.0"),
			Port: envIntOr("DEEPFETCH_PORT", 8080),
			Mode: envOr("DEEPFETCH_MODE", "release"),
		},
		Browser: BrowserConfig{
			Headless:     envBoolOr("DEEPFETCH_HEADLESS", true),
			MaxPages:     envIntOr("DEEPFETCH_MAX_PAGES", 10),
			DefaultProxy: os.Getenv("DEEPFETCH_PROXY"),
			NoSandbox:    envBoolOr("DEEPFETCH_NO_SANDBOX", false),
			BrowserBin:   os.Getenv("DEEPFETCH_BROWSER_BIN"),
		},
		Fetch: FetchConfig{
			DefaultTimeout: envDurationOr("DEEPFETCH_DEFAULT_TIMEOUT", 30*time.Second),
			MaxTimeout:     envDurationOr("DEEPFETCH_MAX_TIMEOUT", 120*time.Second),
			HTTPTimeout:    envDurationOr("DEEPFETCH_HTTP_TIMEOUT", 8*time.Second),
			BlockedResourceTypes: envSliceOr("DEEPFETCH_BLOCKED_RESOURCES", []string{
				"Image", "Stylesheet", "Font", "Media",
			}),
		},
		Dynamic: DynamicConfig{
			MaxTimeout:      envDurationOr("DEEPFETCH_DYNAMIC_MAX_TIMEOUT", 5*time.Minute),
			SettleDelay:     envDurationOr("DEEPFETCH_SETTLE_DELAY", 2*time.Second),
			StableWindow:    envIntOr("DEEPFETCH_STABLE_WINDOW", 3),
			ConfirmWindow:   envIntOr("DEEPFETCH_CONFIRM_WINDOW", 2),
			StrategyTimeout: envDurationOr("DEEPFETCH_STRATEGY_TIMEOUT", 15*time.Second),
			SalvageTimeout:  envDurationOr("DEEPFETCH_SALVAGE_TIMEOUT", 3*time.Second),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("DEEPFETCH_AUTH_ENABLED", true),
			APIKeys: envSliceOr("DEEPFETCH_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("DEEPFETCH_RATE_RPS", 5.0),
			Burst:             envIntOr("DEEPFETCH_RATE_BURST", 10),
		},
		Cache: CacheConfig{
			MaxEntries: envIntOr("DEEPFETCH_CACHE_MAX_ENTRIES", 1000),
		},
		Log: LogConfig{
			Level:  envOr("DEEPFETCH_LOG_LEVEL", "info"),
			Format: envOr("DEEPFETCH_LOG_FORMAT", "json"),
		},
	}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
