package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	tmpDir := t.TempDir()

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.CacheTTLDays != 7 {
		t.Errorf("CacheTTLDays = %d, want 7", cfg.CacheTTLDays)
	}
	if cfg.SourceLang != "en" {
		t.Errorf("SourceLang = %q, want %q", cfg.SourceLang, "en")
	}
	if cfg.SweepIntervalMinutes != 60 {
		t.Errorf("SweepIntervalMinutes = %d, want 60", cfg.SweepIntervalMinutes)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	content := `{"cache_ttl_days": 14, "target_lang": "fr", "provider_url": "https://translate.example.com/v1"}`
	if err := os.WriteFile(filepath.Join(tmpDir, "config.json"), []byte(content), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.CacheTTLDays != 14 {
		t.Errorf("CacheTTLDays = %d, want 14", cfg.CacheTTLDays)
	}
	if cfg.TargetLang != "fr" {
		t.Errorf("TargetLang = %q, want %q", cfg.TargetLang, "fr")
	}
	if cfg.ProviderURL != "https://translate.example.com/v1" {
		t.Errorf("ProviderURL = %q", cfg.ProviderURL)
	}
	// Unspecified scalars keep defaults
	if cfg.SourceLang != "en" {
		t.Errorf("SourceLang = %q, want default %q", cfg.SourceLang, "en")
	}
	if cfg.ProviderTimeoutSeconds != 10 {
		t.Errorf("ProviderTimeoutSeconds = %d, want default 10", cfg.ProviderTimeoutSeconds)
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(tmpDir, "config.json"), []byte("{not json"), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	if _, err := Load(tmpDir); err == nil {
		t.Error("Load should fail on invalid JSON")
	}
}

func TestMerge_OverlayWins(t *testing.T) {
	base := DefaultConfig()
	overlay := &Config{TargetLang: "de", DBMaxOpenConns: 1}

	merged := Merge(base, overlay)

	if merged.TargetLang != "de" {
		t.Errorf("TargetLang = %q, want %q", merged.TargetLang, "de")
	}
	if merged.DBMaxOpenConns != 1 {
		t.Errorf("DBMaxOpenConns = %d, want 1", merged.DBMaxOpenConns)
	}
	if merged.CacheTTLDays != 7 {
		t.Errorf("CacheTTLDays = %d, want base 7", merged.CacheTTLDays)
	}
}
