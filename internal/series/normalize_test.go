package series

import (
	"testing"
	"time"

	"airdelta/internal/model"
)

func TestParseInstant(t *testing.T) {
	want := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		in   string
		want time.Time
	}{
		{"rfc3339 utc", "2024-05-01T10:00:00Z", want},
		{"rfc3339 offset", "2024-05-01T12:00:00+02:00", want},
		{"space separated", "2024-05-01 10:00:00", want},
		{"space separated with zone", "2024-05-01 10:00:00 +0000", want},
		{"utc abbreviation", "2024-05-01 10:00:00 UTC", want},
		{"gmt abbreviation", "2024-05-01 10:00:00 GMT", want},
		{"epoch seconds", "1714557600", want},
		{"epoch millis", "1714557600000", want},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseInstant(tt.in)
			if err != nil {
				t.Fatalf("ParseInstant(%q) err = %v; want nil", tt.in, err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("ParseInstant(%q) = %v; want %v", tt.in, got, tt.want)
			}
			if got.Location() != time.UTC {
				t.Errorf("ParseInstant(%q) location = %v; want UTC", tt.in, got.Location())
			}
		})
	}

	// other abbreviations would silently land at offset 0
	for _, bad := range []string{"", "yesterday", "2024-13-45T00:00:00Z", "2024-05-01 10:00:00 CEST", "2024-05-01 10:00:00 PST"} {
		if _, err := ParseInstant(bad); err == nil {
			t.Errorf("ParseInstant(%q) err = nil; want non-nil", bad)
		}
	}
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		in     string
		want   float64
		wantOK bool
	}{
		{"412.5", 412.5, true},
		{" 20 ", 20, true},
		{"-3.25", -3.25, true},
		{"", 0, false},
		{"null", 0, false},
		{"NaN", 0, false},
		{"N/A", 0, false},
		{"abc", 0, false},
		{"Inf", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseValue(tt.in)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("ParseValue(%q) = (%v, %v); want (%v, %v)", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestNormalize(t *testing.T) {
	t.Run("drops malformed rows without failing the batch", func(t *testing.T) {
		raw := []model.RawReading{
			{Timestamp: "2024-05-01T10:00:00Z", Value: "400"},
			{Timestamp: "2024-05-01T10:05:00Z", Value: "not-a-number"},
			{Timestamp: "garbage", Value: "401"},
			{Timestamp: "2024-05-01T10:10:00Z", Value: "402"},
			{Timestamp: "2024-05-01 12:15:00 CEST", Value: "403"},
		}
		obs, dropped := Normalize(raw)
		if dropped != 3 {
			t.Errorf("dropped = %d; want 3", dropped)
		}
		if len(obs) != 2 {
			t.Fatalf("len(obs) = %d; want 2", len(obs))
		}
		if obs[0].Value != 400 || obs[1].Value != 402 {
			t.Errorf("values = [%v %v]; want [400 402]", obs[0].Value, obs[1].Value)
		}
	})

	t.Run("orders by instant and keeps duplicates", func(t *testing.T) {
		raw := []model.RawReading{
			{Timestamp: "2024-05-01T10:10:00Z", Value: "3"},
			{Timestamp: "2024-05-01T10:00:00Z", Value: "1"},
			{Timestamp: "2024-05-01T10:00:00Z", Value: "2"},
		}
		obs, _ := Normalize(raw)
		if len(obs) != 3 {
			t.Fatalf("len(obs) = %d; want 3", len(obs))
		}
		want := []float64{1, 2, 3}
		for i, o := range obs {
			if o.Value != want[i] {
				t.Errorf("obs[%d].Value = %v; want %v", i, o.Value, want[i])
			}
			if i > 0 && o.Instant.Before(obs[i-1].Instant) {
				t.Errorf("obs[%d] out of order", i)
			}
		}
	})

	t.Run("empty input", func(t *testing.T) {
		obs, dropped := Normalize(nil)
		if len(obs) != 0 || dropped != 0 {
			t.Errorf("Normalize(nil) = (%v, %d); want empty", obs, dropped)
		}
	})
}

func TestFilterRange(t *testing.T) {
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	obs := observationsAt(base, []int{0, 10, 20, 30}, []float64{1, 2, 3, 4})

	got := FilterRange(obs, base.Add(10*time.Minute), base.Add(20*time.Minute))
	if len(got) != 2 || got[0].Value != 2 || got[1].Value != 3 {
		t.Errorf("FilterRange closed = %v; want values [2 3]", got)
	}
	if got := FilterRange(obs, time.Time{}, time.Time{}); len(got) != 4 {
		t.Errorf("FilterRange open len = %d; want 4", len(got))
	}
}

// observationsAt builds observations at base + minutes[i].
func observationsAt(base time.Time, minutes []int, values []float64) []model.Observation {
	out := make([]model.Observation, len(minutes))
	for i, m := range minutes {
		out[i] = model.Observation{Instant: base.Add(time.Duration(m) * time.Minute), Value: values[i]}
	}
	return out
}
