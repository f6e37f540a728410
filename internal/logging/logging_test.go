package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"", slog.LevelInfo, false},
		{"DEBUG", slog.LevelDebug, false},
		{"warn", slog.LevelWarn, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) err = %v; wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v; want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestNew_Production(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, Options{Level: slog.LevelInfo, Production: true, Env: "production"})
	log.Debug("hidden")
	log.Info("fetched", "channel", "2580816")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("lines = %d; want 1 (debug filtered)", len(lines))
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("production output is not JSON: %v", err)
	}
	if rec["msg"] != "fetched" || rec["app"] != "airdelta" || rec["channel"] != "2580816" {
		t.Errorf("record = %v", rec)
	}
}

func TestNew_Development(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, Options{Level: slog.LevelDebug})
	log.Debug("resampled", "points", 5)
	if out := buf.String(); !strings.Contains(out, "resampled") || !strings.Contains(out, "points") {
		t.Errorf("output = %q", out)
	}
}
