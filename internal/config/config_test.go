package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {

	allKeys := []string{
		"DESKD_HTTP_PORT",
		"DESKD_SQLITE_DSN",
		"DESKD_SWEEP_INTERVAL",
		"DESKD_SWEEP_AT",
		"DESKD_SWEEP_INITIAL_DELAY",
		"DESKD_BOOKING_HORIZON_DAYS",
		"DESKD_MAX_BOOKING_DATES",
		"DESKD_MAX_ACTIVE_PER_USER",
	}
	clearEnv := func(t *testing.T) {
		t.Helper()
		for _, key := range allKeys {
			if err := os.Unsetenv(key); err != nil {
				t.Fatalf("failed to unset %s: %v", key, err)
			}
		}
	}

	t.Run("applies defaults when variables are missing", func(t *testing.T) {
		clearEnv(t)

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		if cfg.HTTPPort != 8080 {
			t.Fatalf("expected default HTTP port 8080, got %d", cfg.HTTPPort)
		}
		if cfg.SQLiteDSN != "file:deskbooker.db?_foreign_keys=on" {
			t.Fatalf("unexpected default DSN: %q", cfg.SQLiteDSN)
		}
		if cfg.SweepInterval != time.Hour {
			t.Fatalf("expected default sweep interval 1h, got %s", cfg.SweepInterval)
		}
		if cfg.SweepAtSet {
			t.Fatal("expected no daily sweep time by default")
		}
		if cfg.SweepInitialDelay != 10*time.Second {
			t.Fatalf("expected default initial sweep delay 10s, got %s", cfg.SweepInitialDelay)
		}
	})

	t.Run("explicit zero disables the initial sweep delay", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("DESKD_SWEEP_INITIAL_DELAY", "0s")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}
		if cfg.SweepInitialDelay != 0 {
			t.Fatalf("expected no initial delay, got %s", cfg.SweepInitialDelay)
		}
	})

	t.Run("parses every field", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("DESKD_HTTP_PORT", "9090")
		t.Setenv("DESKD_SQLITE_DSN", "file:/tmp/desks.db")
		t.Setenv("DESKD_SWEEP_INTERVAL", "30m")
		t.Setenv("DESKD_SWEEP_AT", "02:30")
		t.Setenv("DESKD_SWEEP_INITIAL_DELAY", "45s")
		t.Setenv("DESKD_BOOKING_HORIZON_DAYS", "90")
		t.Setenv("DESKD_MAX_BOOKING_DATES", "10")
		t.Setenv("DESKD_MAX_ACTIVE_PER_USER", "40")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		if cfg.HTTPPort != 9090 {
			t.Fatalf("expected HTTP port 9090, got %d", cfg.HTTPPort)
		}
		if cfg.SQLiteDSN != "file:/tmp/desks.db" {
			t.Fatalf("unexpected DSN: %q", cfg.SQLiteDSN)
		}
		if cfg.SweepInterval != 30*time.Minute {
			t.Fatalf("expected sweep interval 30m, got %s", cfg.SweepInterval)
		}
		if !cfg.SweepAtSet || cfg.SweepAt != 2*time.Hour+30*time.Minute {
			t.Fatalf("expected daily sweep at 02:30, got %s (set=%v)", cfg.SweepAt, cfg.SweepAtSet)
		}
		if cfg.SweepInitialDelay != 45*time.Second {
			t.Fatalf("expected initial delay 45s, got %s", cfg.SweepInitialDelay)
		}
		if cfg.HorizonDays != 90 || cfg.MaxBookingDates != 10 || cfg.MaxActivePerUser != 40 {
			t.Fatalf("unexpected quota values: %+v", cfg)
		}
	})

	t.Run("collects every invalid value", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("DESKD_HTTP_PORT", "not-a-port")
		t.Setenv("DESKD_SWEEP_AT", "25:99")
		t.Setenv("DESKD_MAX_BOOKING_DATES", "-3")

		_, err := Load()
		if err == nil {
			t.Fatal("expected error for invalid values")
		}
		for _, key := range []string{"DESKD_HTTP_PORT", "DESKD_SWEEP_AT", "DESKD_MAX_BOOKING_DATES"} {
			if !strings.Contains(err.Error(), key) {
				t.Fatalf("expected %s in error, got %q", key, err.Error())
			}
		}
	})
}
