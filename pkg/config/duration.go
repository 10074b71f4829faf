package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Duration is a config setting holding a length of time, written as a Go
// duration ("750ms", "3s") or a whole number of days ("7d") for retention
// settings such as media.store_ttl. "off" and "" mean zero.
type Duration struct {
	time.Duration
}

const day = 24 * time.Hour

// UnmarshalText parses the setting.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := parseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText writes whole days as "Nd" and everything else in Go syntax.
func (d Duration) MarshalText() ([]byte, error) {
	if d.Duration >= day && d.Duration%day == 0 {
		return []byte(strconv.FormatInt(int64(d.Duration/day), 10) + "d"), nil
	}
	return []byte(d.Duration.String()), nil
}

func parseDuration(s string) (time.Duration, error) {
	switch strings.ToLower(s) {
	case "", "0", "off":
		return 0, nil
	}
	if n, ok := strings.CutSuffix(s, "d"); ok {
		days, err := strconv.Atoi(n)
		if err != nil || days < 0 {
			return 0, fmt.Errorf("duration %q: want a whole number of days", s)
		}
		return time.Duration(days) * day, nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("duration %q: %w", s, err)
	}
	if v < 0 {
		return 0, fmt.Errorf("duration %q: must not be negative", s)
	}
	return v, nil
}
