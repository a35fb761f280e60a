package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

// Config holds engine configuration.
type Config struct {
	// CacheTTLDays is the age in days after which a cached translation is
	// treated as absent and refreshed. Entries are never evicted by LRU.
	CacheTTLDays int `json:"cache_ttl_days"`

	// SourceLang and TargetLang are the language codes sent to the remote
	// translation provider.
	SourceLang string `json:"source_lang"`
	TargetLang string `json:"target_lang"`

	// ProviderURL is the remote translation endpoint. Empty means no remote
	// provider is configured; lookups then resolve from the bundled
	// dictionary and cache only.
	ProviderURL string `json:"provider_url,omitempty"`

	// ProviderAPIKey is sent as a bearer token when non-empty.
	ProviderAPIKey string `json:"provider_api_key,omitempty"`

	// ProviderTimeoutSeconds bounds a single remote translation call.
	ProviderTimeoutSeconds int `json:"provider_timeout_seconds,omitempty"`

	// SweepIntervalMinutes controls how often the cache sweeper compacts
	// expired entries out of the persisted cache blob.
	SweepIntervalMinutes int `json:"sweep_interval_minutes,omitempty"`

	// DBMaxOpenConns limits the maximum number of open database connections.
	// If set to 1, all database access is serialized.
	// 0 means use sql.DB default. Only set if you experience contention.
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty"`

	// DBMaxIdleConns limits the maximum number of idle database connections.
	// 0 means use sql.DB default. Typically set equal to DBMaxOpenConns.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		CacheTTLDays:           7,
		SourceLang:             "en",
		TargetLang:             "es",
		ProviderTimeoutSeconds: 10,
		SweepIntervalMinutes:   60,
	}
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir().
func Load(baseDir string) (*Config, error) {
	cfg, err := loadFileRaw(filepath.Join(baseDir, "config.json"))
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Merge combines base and overlay configs. Overlay values take precedence
// when non-zero.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	result.CacheTTLDays = overlay.CacheTTLDays
	if result.CacheTTLDays == 0 {
		result.CacheTTLDays = base.CacheTTLDays
	}

	result.SourceLang = overlay.SourceLang
	if result.SourceLang == "" {
		result.SourceLang = base.SourceLang
	}

	result.TargetLang = overlay.TargetLang
	if result.TargetLang == "" {
		result.TargetLang = base.TargetLang
	}

	result.ProviderURL = overlay.ProviderURL
	if result.ProviderURL == "" {
		result.ProviderURL = base.ProviderURL
	}

	result.ProviderAPIKey = overlay.ProviderAPIKey
	if result.ProviderAPIKey == "" {
		result.ProviderAPIKey = base.ProviderAPIKey
	}

	result.ProviderTimeoutSeconds = overlay.ProviderTimeoutSeconds
	if result.ProviderTimeoutSeconds == 0 {
		result.ProviderTimeoutSeconds = base.ProviderTimeoutSeconds
	}

	result.SweepIntervalMinutes = overlay.SweepIntervalMinutes
	if result.SweepIntervalMinutes == 0 {
		result.SweepIntervalMinutes = base.SweepIntervalMinutes
	}

	result.DBMaxOpenConns = overlay.DBMaxOpenConns
	if result.DBMaxOpenConns == 0 {
		result.DBMaxOpenConns = base.DBMaxOpenConns
	}

	result.DBMaxIdleConns = overlay.DBMaxIdleConns
	if result.DBMaxIdleConns == 0 {
		result.DBMaxIdleConns = base.DBMaxIdleConns
	}

	return result
}
