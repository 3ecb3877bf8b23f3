package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Settings holds the runtime configuration resolved from the environment.
// The API key is resolved separately by the caller (flag, env, keyring) so
// that no hidden global lookups happen inside the core packages.
type Settings struct {
	CalendarID      string
	APIKey          string
	Addr            string
	Timezone        string
	WeekStart       time.Weekday
	WindowMonths    int
	RefreshInterval time.Duration
	Language        string
}

// LoadSettings reads configuration from the environment, applying defaults
// for everything except the calendar ID, which has no sensible default.
func LoadSettings() (*Settings, error) {
	s := &Settings{
		CalendarID:      os.Getenv(EnvCalendarID),
		APIKey:          os.Getenv(EnvAPIKey),
		Addr:            envOrDefault(EnvAddr, DefaultAddr),
		Timezone:        os.Getenv(EnvTimezone),
		WeekStart:       time.Sunday,
		WindowMonths:    DefaultWindowMonths,
		RefreshInterval: DefaultRefreshMin * time.Minute,
		Language:        envOrDefault(EnvLanguage, DefaultLanguage),
	}

	if s.CalendarID == "" {
		return nil, fmt.Errorf(ErrMissingCalendar)
	}

	if v := os.Getenv(EnvWeekStart); v != "" {
		day, err := parseWeekday(v)
		if err != nil {
			return nil, err
		}
		s.WeekStart = day
	}

	if v := os.Getenv(EnvWindowMonths); v != "" {
		months, err := strconv.Atoi(v)
		if err != nil || months <= 0 {
			return nil, fmt.Errorf("%s must be a positive integer, got %q", EnvWindowMonths, v)
		}
		s.WindowMonths = months
	}

	if v := os.Getenv(EnvRefreshMin); v != "" {
		minutes, err := strconv.Atoi(v)
		if err != nil || minutes <= 0 {
			return nil, fmt.Errorf("%s must be a positive integer, got %q", EnvRefreshMin, v)
		}
		s.RefreshInterval = time.Duration(minutes) * time.Minute
	}

	return s, nil
}

// Location resolves the configured display timezone, falling back to the
// system local zone when the name is empty or unknown.
func (s *Settings) Location() *time.Location {
	if s.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		slog.Warn(ErrBadTimezone,
			LogKeyComponent, CompMain,
			LogKeyError, err,
		)
		return time.Local
	}
	return loc
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// parseWeekday accepts English weekday names, case-insensitive, full or
// three-letter ("sunday", "Mon").
func parseWeekday(v string) (time.Weekday, error) {
	name := strings.ToLower(strings.TrimSpace(v))
	for d := time.Sunday; d <= time.Saturday; d++ {
		full := strings.ToLower(d.String())
		if name == full || name == full[:3] {
			return d, nil
		}
	}
	return time.Sunday, fmt.Errorf("%s must name a weekday, got %q", EnvWeekStart, v)
}
