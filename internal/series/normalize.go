// Package series holds the pure stages of the alignment pipeline:
// normalize, intersect, resample, fill, scan gaps, align.
package series

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"airdelta/internal/model"
)

// zoneAbbrevLayout only accepts UTC and GMT. time.Parse gives any other
// unknown abbreviation a zero offset, or the local zone's offset when the
// host happens to know it.
const zoneAbbrevLayout = "2006-01-02 15:04:05 MST"

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05 -0700",
	zoneAbbrevLayout,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// epochMillisThreshold separates epoch seconds from epoch milliseconds.
// 1e12 seconds is far in the future; 1e12 ms is 2001-09-09.
const epochMillisThreshold = 1e12

var errEmptyTimestamp = errors.New("empty timestamp")

// ParseInstant parses a provider timestamp into a UTC instant.
// Layouts without a zone are read as UTC.
func ParseInstant(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errEmptyTimestamp
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return time.Time{}, errors.New("non-finite epoch")
		}
		if math.Abs(f) >= epochMillisThreshold {
			return time.UnixMilli(int64(f)).UTC(), nil
		}
		sec, frac := math.Modf(f)
		return time.Unix(int64(sec), int64(math.Round(frac*1e9))).UTC(), nil
	}
	var lastErr error
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			lastErr = err
			continue
		}
		if layout == zoneAbbrevLayout {
			if name, _ := t.Zone(); name != "UTC" && name != "GMT" {
				return time.Time{}, fmt.Errorf("unsupported zone abbreviation %q in %q", name, s)
			}
		}
		return t.UTC(), nil
	}
	return time.Time{}, lastErr
}

// ParseValue parses a raw reading value. ok is false for unparsable,
// non-finite and "not applicable" values.
func ParseValue(s string) (v float64, ok bool) {
	s = strings.TrimSpace(s)
	if isNotApplicable(s) {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func isNotApplicable(s string) bool {
	switch strings.ToLower(s) {
	case "", "null", "nan", "na", "n/a", "none":
		return true
	}
	return false
}

// Normalize turns raw readings into observations ordered by instant.
// Rows with an unparsable timestamp or value are dropped and counted; a bad
// row never fails the batch. Duplicate instants are kept in input order.
func Normalize(raw []model.RawReading) (obs []model.Observation, dropped int) {
	obs = make([]model.Observation, 0, len(raw))
	for _, r := range raw {
		t, err := ParseInstant(r.Timestamp)
		if err != nil {
			dropped++
			continue
		}
		v, ok := ParseValue(r.Value)
		if !ok {
			dropped++
			continue
		}
		obs = append(obs, model.Observation{Instant: t, Value: v})
	}
	sort.SliceStable(obs, func(i, j int) bool {
		return obs[i].Instant.Before(obs[j].Instant)
	})
	return obs, dropped
}

// FilterRange keeps observations with from <= instant <= to. Zero bounds are open.
func FilterRange(obs []model.Observation, from, to time.Time) []model.Observation {
	out := make([]model.Observation, 0, len(obs))
	for _, o := range obs {
		if !from.IsZero() && o.Instant.Before(from) {
			continue
		}
		if !to.IsZero() && o.Instant.After(to) {
			continue
		}
		out = append(out, o)
	}
	return out
}
