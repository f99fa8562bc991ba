package helpers

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// ParseDuration parses a duration string, returns default duration on error.
func ParseDuration(durationStr string, defaultDuration time.Duration) time.Duration {
	duration, err := time.ParseDuration(durationStr)
	if err != nil {
		log.Warn().Err(err).Str("durationStr", durationStr).Dur("defaultDuration", defaultDuration).Msg("Failed to parse duration string, using default")
		return defaultDuration
	}
	return duration
}

// ParseDate parses a YYYY-MM-DD date in UTC
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected %s", s, DateLayout)
	}
	return t, nil
}

// ParseOptionalDate parses a nullable date string
func ParseOptionalDate(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := ParseDate(*s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// CombineDateTime joins a YYYY-MM-DD date with an optional HH:MM time
func CombineDateTime(date string, clock *string) (time.Time, error) {
	day, err := ParseDate(date)
	if err != nil {
		return time.Time{}, err
	}
	if clock == nil || *clock == "" {
		return day, nil
	}
	tod, err := time.Parse(TimeLayout, *clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q, expected %s", *clock, TimeLayout)
	}
	return day.Add(time.Duration(tod.Hour())*time.Hour + time.Duration(tod.Minute())*time.Minute), nil
}
