package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"BASE_URL", "FETCH_RETRIES", "BRANDS_CACHE_TTL", "APP_ENV", "ENABLE_SCHEDULER", "PAGE_DELAY"} {
		t.Setenv(k, "")
	}

	cfg := Load()

	if cfg.Source.BaseURL != "https://www.gsmarena.com" {
		t.Errorf("BaseURL = %q", cfg.Source.BaseURL)
	}
	if cfg.Source.MaxAttempts != 3 {
		t.Errorf("MaxAttempts = %d, want 3", cfg.Source.MaxAttempts)
	}
	if cfg.Cache.BrandsTTL != 24*time.Hour || cfg.Cache.ProductsTTL != 12*time.Hour ||
		cfg.Cache.SpecsTTL != 6*time.Hour || cfg.Cache.DefaultTTL != time.Hour {
		t.Errorf("unexpected cache TTLs: %+v", cfg.Cache)
	}
	if cfg.Source.PageDelay != 3*time.Second {
		t.Errorf("PageDelay = %v", cfg.Source.PageDelay)
	}
	if cfg.Scheduler {
		t.Error("scheduler should be off outside production")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("BASE_URL", "http://example.test/")
	t.Setenv("FETCH_RETRIES", "5")
	t.Setenv("BRANDS_CACHE_TTL", "60")
	t.Setenv("PAGE_DELAY", "250ms")
	t.Setenv("APP_ENV", "production")
	t.Setenv("ENABLE_SCHEDULER", "")

	cfg := Load()

	if cfg.Source.BaseURL != "http://example.test" {
		t.Errorf("BaseURL = %q, want trailing slash trimmed", cfg.Source.BaseURL)
	}
	if cfg.Source.MaxAttempts != 5 {
		t.Errorf("MaxAttempts = %d", cfg.Source.MaxAttempts)
	}
	if cfg.Cache.BrandsTTL != time.Minute {
		t.Errorf("BrandsTTL = %v", cfg.Cache.BrandsTTL)
	}
	if cfg.Source.PageDelay != 250*time.Millisecond {
		t.Errorf("PageDelay = %v", cfg.Source.PageDelay)
	}
	if !cfg.Scheduler {
		t.Error("scheduler should default on in production")
	}
}
