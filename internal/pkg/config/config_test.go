package config

import (
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatal("Load failed:", err.Error())
	}

	if cfg.ServicePort != "8880" {
		t.Errorf("expected default port 8880, got %s", cfg.ServicePort)
	}
	if cfg.DatabaseDriver != "sqlite" {
		t.Errorf("expected sqlite as the default driver, got %s", cfg.DatabaseDriver)
	}
	if cfg.RetainDays != 7 {
		t.Errorf("expected a 7 day default retention window, got %d", cfg.RetainDays)
	}
	if cfg.OutageThresholdPercent != 75 {
		t.Errorf("expected a 75%% default outage threshold, got %f", cfg.OutageThresholdPercent)
	}
}

func TestLoadReadsEnvironmentOverrides(t *testing.T) {
	t.Setenv("SERVICE_PORT", "9999")
	t.Setenv("LOOKING_GLASS_RETAIN_DAYS", "30")
	t.Setenv("LOOKING_GLASS_DB_DRIVER", "postgres")

	cfg, err := Load()
	if err != nil {
		t.Fatal("Load failed:", err.Error())
	}

	if cfg.ServicePort != "9999" {
		t.Errorf("expected port 9999, got %s", cfg.ServicePort)
	}
	if cfg.RetainDays != 30 {
		t.Errorf("expected 30 retain days, got %d", cfg.RetainDays)
	}
	if cfg.DatabaseDriver != "postgres" {
		t.Errorf("expected postgres driver, got %s", cfg.DatabaseDriver)
	}
}
