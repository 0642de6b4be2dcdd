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
	Search    SearchConfig
	Stealth   StealthConfig
	Artifact  ArtifactConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Cache     CacheConfig
	Log       LogConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 3237
	Mode string // "debug", "release", "test"; default: "release"
}

// BrowserConfig controls the shared Rod browser instance.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// MaxLeases bounds concurrent isolated browsing contexts.
	MaxLeases int // default: 8

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: true

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string

	// Proxy is an optional proxy URL applied at launch.
	Proxy string

	// BlockAds blocks requests to known ad/tracking domains on search leases.
	BlockAds bool // default: true
}

// SearchConfig controls the retry and fallback machinery.
type SearchConfig struct {
	// MaxRetries is the per-provider attempt budget.
	MaxRetries int // default: 3

	// ClassifyTimeout bounds the selector race after navigation.
	ClassifyTimeout time.Duration // default: 15s

	// InputTimeout bounds the wait for the query input field.
	InputTimeout time.Duration // default: 10s

	// WebResultLimit caps web-search results per extraction.
	WebResultLimit int // default: 3

	// ImageRetries is the attempt budget for one image-search engine.
	ImageRetries int // default: 2

	// ImageRetryBase is the base delay for image-search backoff.
	ImageRetryBase time.Duration // default: 3s

	// DefaultImageCount is the result count when the caller omits one.
	DefaultImageCount int // default: 1

	// MaxImageCount caps the caller-requested image count.
	MaxImageCount int // default: 20

	// DebugDir receives post-mortem screenshots and HTML dumps.
	DebugDir string // default: "debug"
}

// StealthConfig controls randomized lease identities.
type StealthConfig struct {
	// CookieJarPath is the shared persisted cookie store.
	CookieJarPath string // default: "data/cookies.json"
}

// ArtifactConfig controls the object store and CDN used for captured bytes.
type ArtifactConfig struct {
	Endpoint  string // S3-compatible endpoint, e.g. "s3.us-east-1.amazonaws.com"
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool   // default: true
	CDNBase   string // CDN origin mapped 1:1 to the bucket, no trailing slash
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	// Enabled toggles API key authentication.
	Enabled bool // default: false

	// APIKeys is the list of valid API keys.
	APIKeys []string
}

// RateLimitConfig controls per-key rate limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per API key.
	RequestsPerSecond float64 // default: 2

	// Burst is the maximum burst size per API key.
	Burst int // default: 5
}

// CacheConfig controls the web-search response cache.
type CacheConfig struct {
	// MaxEntries is the maximum number of cached responses.
	MaxEntries int // default: 500

	// MaxAge is how long a cached response stays valid. Zero disables caching.
	MaxAge time.Duration // default: 0
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
			Host: envOr("RELCIS_HOST", "0.0.0.0"),
			Port: envIntOr("RELCIS_PORT", 3237),
			Mode: envOr("RELCIS_MODE", "release"),
		},
		Browser: BrowserConfig{
			Headless:   envBoolOr("RELCIS_HEADLESS", true),
			MaxLeases:  envIntOr("RELCIS_MAX_LEASES", 8),
			NoSandbox:  envBoolOr("RELCIS_NO_SANDBOX", true),
			BrowserBin: os.Getenv("RELCIS_BROWSER_BIN"),
			Proxy:      os.Getenv("RELCIS_PROXY"),
			BlockAds:   envBoolOr("RELCIS_BLOCK_ADS", true),
		},
		Search: SearchConfig{
			MaxRetries:        envIntOr("RELCIS_MAX_RETRIES", 3),
			ClassifyTimeout:   envDurationOr("RELCIS_CLASSIFY_TIMEOUT", 15*time.Second),
			InputTimeout:      envDurationOr("RELCIS_INPUT_TIMEOUT", 10*time.Second),
			WebResultLimit:    envIntOr("RELCIS_WEB_RESULT_LIMIT", 3),
			ImageRetries:      envIntOr("RELCIS_IMAGE_RETRIES", 2),
			ImageRetryBase:    envDurationOr("RELCIS_IMAGE_RETRY_BASE", 3*time.Second),
			DefaultImageCount: envIntOr("RELCIS_IMAGE_COUNT", 1),
			MaxImageCount:     envIntOr("RELCIS_MAX_IMAGE_COUNT", 20),
			DebugDir:          envOr("RELCIS_DEBUG_DIR", "debug"),
		},
		Stealth: StealthConfig{
			CookieJarPath: envOr("RELCIS_COOKIE_JAR", "data/cookies.json"),
		},
		Artifact: ArtifactConfig{
			Endpoint:  os.Getenv("RELCIS_S3_ENDPOINT"),
			Region:    os.Getenv("RELCIS_S3_REGION"),
			AccessKey: os.Getenv("RELCIS_S3_ACCESS_KEY"),
			SecretKey: os.Getenv("RELCIS_S3_SECRET_KEY"),
			Bucket:    os.Getenv("RELCIS_S3_BUCKET"),
			UseSSL:    envBoolOr("RELCIS_S3_SSL", true),
			CDNBase:   strings.TrimSuffix(os.Getenv("RELCIS_CDN_BASE"), "/"),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("RELCIS_AUTH_ENABLED", false),
			APIKeys: envSliceOr("RELCIS_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("RELCIS_RATE_RPS", 2.0),
			Burst:             envIntOr("RELCIS_RATE_BURST", 5),
		},
		Cache: CacheConfig{
			MaxEntries: envIntOr("RELCIS_CACHE_MAX_ENTRIES", 500),
			MaxAge:     envDurationOr("RELCIS_CACHE_MAX_AGE", 0),
		},
		Log: LogConfig{
			Level:  envOr("RELCIS_LOG_LEVEL", "info"),
			Format: envOr("RELCIS_LOG_FORMAT", "json"),
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
