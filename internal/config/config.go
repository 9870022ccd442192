package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Provider names for the generation backend.
const (
	ProviderOllama = "ollama"
	ProviderGemini = "gemini"
)

// Defaults for the insight pipeline. Probe and generation deadlines are fixed
// configuration values, independent of any caller deadline.
const (
	DefaultOllamaEndpoint  = "http://127.0.0.1:11434"
	DefaultOllamaModel     = "llama3.2"
	DefaultGeminiModel     = "gemini-2.5-flash"
	DefaultProbeTimeout    = 3 * time.Second
	DefaultGenerateTimeout = 45 * time.Second
	DefaultRetryDelay      = 1500 * time.Millisecond
	DefaultCacheTTL        = 30 * time.Minute
)

// Config holds all environment-supplied settings for the insight service.
type Config struct {
	Port string

	// Generation backend.
	Provider       string
	OllamaEndpoint string
	OllamaModel    string
	GeminiModel    string

	// ForceLocal is the deployment-tier predicate: when true the external
	// backend is treated as unavailable without probing it. Set either by
	// DEPLOYMENT_TIER=production or by INSIGHTS_FORCE_LOCAL=true.
	ForceLocal bool

	ProbeTimeout    time.Duration
	GenerateTimeout time.Duration
	RetryDelay      time.Duration
	CacheTTL        time.Duration

	// Optional backends. Empty values disable the feature.
	RedisURL  string
	BQProject string
	BQDataset string
	GCSBucket string
}

// Load reads configuration from the environment, applying defaults for
// anything unset.
func Load() (*Config, error) {
	cfg := &Config{
		Port:            envOr("PORT", "8080"),
		Provider:        strings.ToLower(envOr("INSIGHTS_PROVIDER", ProviderOllama)),
		OllamaEndpoint:  strings.TrimRight(envOr("OLLAMA_ENDPOINT", DefaultOllamaEndpoint), "/"),
		OllamaModel:     envOr("OLLAMA_MODEL", DefaultOllamaModel),
		GeminiModel:     envOr("GEMINI_MODEL", DefaultGeminiModel),
		ProbeTimeout:    DefaultProbeTimeout,
		GenerateTimeout: DefaultGenerateTimeout,
		RetryDelay:      DefaultRetryDelay,
		CacheTTL:        DefaultCacheTTL,
		RedisURL:        os.Getenv("REDIS_URL"),
		BQProject:       os.Getenv("BQ_PROJECT"),
		BQDataset:       envOr("BQ_DATASET", "finance"),
		GCSBucket:       os.Getenv("GCS_BUCKET"),
	}

	if cfg.Provider != ProviderOllama && cfg.Provider != ProviderGemini {
		return nil, fmt.Errorf("config: unknown INSIGHTS_PROVIDER %q", cfg.Provider)
	}

	tier := strings.ToLower(os.Getenv("DEPLOYMENT_TIER"))
	cfg.ForceLocal = tier == "production" || envBool("INSIGHTS_FORCE_LOCAL")

	var err error
	if cfg.ProbeTimeout, err = envDuration("INSIGHTS_PROBE_TIMEOUT", cfg.ProbeTimeout); err != nil {
		return nil, err
	}
	if cfg.GenerateTimeout, err = envDuration("INSIGHTS_GENERATE_TIMEOUT", cfg.GenerateTimeout); err != nil {
		return nil, err
	}
	if cfg.RetryDelay, err = envDuration("INSIGHTS_RETRY_DELAY", cfg.RetryDelay); err != nil {
		return nil, err
	}
	if cfg.CacheTTL, err = envDuration("INSIGHTS_CACHE_TTL", cfg.CacheTTL); err != nil {
		return nil, err
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	return err == nil && v
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config: invalid %s %q: %w", key, v, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("config: %s must be positive, got %q", key, v)
	}
	return d, nil
}
