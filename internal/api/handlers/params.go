package handlers

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"airdelta/internal/config"
	"airdelta/internal/delta"
	"airdelta/internal/model"
	"airdelta/internal/series"
)

// MinInterval bounds grid density; a finer grid over a full feed gets large fast.
const MinInterval = time.Minute

// MaxRange caps relative ranges such as "30d".
const MaxRange = 366 * 24 * time.Hour

// maxStepMinutes is the largest bare minute count a time.Duration can hold.
const maxStepMinutes = math.MaxInt64 / int64(time.Minute)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", delta.ErrInvalidParameter, fmt.Sprintf(format, args...))
}

// parseTimeRange turns range or start/end into a closed [start, end] filter.
// Zero bounds are open. range is relative to now and cannot be combined with
// start/end.
func parseTimeRange(rangeKey, startStr, endStr string, now time.Time) (start, end time.Time, err error) {
	if rangeKey != "" {
		if startStr != "" || endStr != "" {
			return time.Time{}, time.Time{}, invalid("range cannot be combined with start/end")
		}
		d, err := parseRelative(rangeKey)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		return now.Add(-d).UTC(), time.Time{}, nil
	}
	if startStr != "" {
		if start, err = parseBound(startStr, false); err != nil {
			return time.Time{}, time.Time{}, invalid("start: %v", err)
		}
	}
	if endStr != "" {
		if end, err = parseBound(endStr, true); err != nil {
			return time.Time{}, time.Time{}, invalid("end: %v", err)
		}
	}
	if !start.IsZero() && !end.IsZero() && start.After(end) {
		return time.Time{}, time.Time{}, invalid("start must not be after end")
	}
	return start, end, nil
}

// parseRelative accepts Go durations ("36h") plus day and week suffixes ("7d", "2w").
func parseRelative(s string) (time.Duration, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	var d time.Duration
	switch {
	case strings.HasSuffix(s, "d") || strings.HasSuffix(s, "w"):
		n, err := strconv.Atoi(s[:len(s)-1])
		if err != nil {
			return 0, invalid("range %q: expected a number before the unit", s)
		}
		unit := 24 * time.Hour
		if strings.HasSuffix(s, "w") {
			unit *= 7
		}
		d = time.Duration(n) * unit
	default:
		var err error
		if d, err = time.ParseDuration(s); err != nil {
			return 0, invalid("range %q: use e.g. 24h, 7d or 2w", s)
		}
	}
	if d <= 0 {
		return 0, invalid("range %q must be positive", s)
	}
	if d > MaxRange {
		return 0, invalid("range %q exceeds %s", s, MaxRange)
	}
	return d, nil
}

// parseBound reads an absolute bound. A bare date covers the whole day, so as
// an end bound it means the last instant of that day.
func parseBound(s string, isEnd bool) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("2006-01-02", s); err == nil {
		if isEnd {
			return t.Add(24*time.Hour - time.Nanosecond), nil
		}
		return t, nil
	}
	return series.ParseInstant(s)
}

// parseStep reads an interval or lag: a Go duration or a bare number of minutes.
func parseStep(name, s string, def time.Duration) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return def, nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		if n > maxStepMinutes || n < -maxStepMinutes {
			return 0, invalid("%s %q minutes is out of range", name, s)
		}
		return time.Duration(n) * time.Minute, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, invalid("%s %q: use a duration like 10m or a number of minutes", name, s)
	}
	return d, nil
}

func parseInterval(s string, def time.Duration) (time.Duration, error) {
	d, err := parseStep("interval", s, def)
	if err != nil {
		return 0, err
	}
	if d < MinInterval {
		return 0, invalid("interval must be at least %s, got %s", MinInterval, d)
	}
	return d, nil
}

// parseLag allows negative lags; they compare indoor with later outdoor slots.
func parseLag(s string, def time.Duration) (time.Duration, error) {
	return parseStep("lag", s, def)
}

func parseFormat(s string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return "json", nil
	case "csv":
		return "csv", nil
	}
	return "", invalid("format %q (allowed: json, csv)", s)
}

func resolveField(cfg *config.Config, name string) (model.FieldType, int, error) {
	if name == "" {
		name = string(model.FieldCO2)
	}
	ft, idx, err := cfg.FieldIndex(name)
	if err != nil {
		return "", 0, invalid("%v", err)
	}
	return ft, idx, nil
}

func resolveChannel(cfg *config.Config, location, side, sensor string) (string, error) {
	channel, err := cfg.Channel(location, side, sensor)
	if err != nil {
		return "", invalid("%v", err)
	}
	return channel, nil
}
