package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures environment driven configuration values for the desk
// reservation service.
type Config struct {
	HTTPPort          int
	SQLiteDSN         string
	SweepInterval     time.Duration
	SweepAt           time.Duration
	SweepAtSet        bool
	SweepInitialDelay time.Duration
	HorizonDays       int
	MaxBookingDates   int
	MaxActivePerUser  int
}

// Load parses configuration values from the current process environment.
//
// Every variable is optional and falls back to a sensible default; malformed
// values are collected and reported together instead of failing one by one.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:          8080,
		SQLiteDSN:         "file:deskbooker.db?_foreign_keys=on",
		SweepInterval:     time.Hour,
		SweepInitialDelay: 10 * time.Second,
	}

	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("DESKD_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "DESKD_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("DESKD_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if intervalValue := strings.TrimSpace(os.Getenv("DESKD_SWEEP_INTERVAL")); intervalValue != "" {
		interval, err := time.ParseDuration(intervalValue)
		if err != nil || interval <= 0 {
			invalid = append(invalid, "DESKD_SWEEP_INTERVAL")
		} else {
			cfg.SweepInterval = interval
		}
	}

	if atValue := strings.TrimSpace(os.Getenv("DESKD_SWEEP_AT")); atValue != "" {
		offset, err := parseClock(atValue)
		if err != nil {
			invalid = append(invalid, "DESKD_SWEEP_AT")
		} else {
			cfg.SweepAt = offset
			cfg.SweepAtSet = true
		}
	}

	if delayValue := strings.TrimSpace(os.Getenv("DESKD_SWEEP_INITIAL_DELAY")); delayValue != "" {
		delay, err := time.ParseDuration(delayValue)
		if err != nil || delay < 0 {
			invalid = append(invalid, "DESKD_SWEEP_INITIAL_DELAY")
		} else {
			cfg.SweepInitialDelay = delay
		}
	}

	for _, entry := range []struct {
		key    string
		target *int
	}{
		{key: "DESKD_BOOKING_HORIZON_DAYS", target: &cfg.HorizonDays},
		{key: "DESKD_MAX_BOOKING_DATES", target: &cfg.MaxBookingDates},
		{key: "DESKD_MAX_ACTIVE_PER_USER", target: &cfg.MaxActivePerUser},
	} {
		value := strings.TrimSpace(os.Getenv(entry.key))
		if value == "" {
			continue
		}
		parsed, err := strconv.Atoi(value)
		if err != nil || parsed <= 0 {
			invalid = append(invalid, entry.key)
		} else {
			*entry.target = parsed
		}
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variable values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}

// parseClock parses a HH:MM wall-clock value into an offset from midnight.
func parseClock(value string) (time.Duration, error) {
	parsed, err := time.Parse("15:04", value)
	if err != nil {
		return 0, err
	}
	return time.Duration(parsed.Hour())*time.Hour + time.Duration(parsed.Minute())*time.Minute, nil
}
