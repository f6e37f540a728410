package data

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"airdelta/internal/model"
)

// ChannelReport is what the channel probe learned about one configured sensor.
type ChannelReport struct {
	Location    string            `json:"location"`
	Side        string            `json:"side"`
	Sensor      string            `json:"sensor"`
	ChannelID   string            `json:"channel_id"`
	Name        string            `json:"name,omitempty"`
	Fields      map[string]string `json:"fields,omitempty"` // "field4" -> "CO2"
	LastEntryAt string            `json:"last_entry_at,omitempty"`
	Error       string            `json:"error,omitempty"`
}

// ChannelReportList is the on-disk shape written by the probe.
type ChannelReportList struct {
	UpdatedAt string          `json:"updated_at"` // ISO 8601 timestamp
	Channels  []ChannelReport `json:"channels"`
}

// LoadChannelReports loads a channel report from a JSON file
func LoadChannelReports(filePath string) (*ChannelReportList, error) {
	raw, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read channel report: %w", err)
	}

	var list ChannelReportList
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("failed to parse channel report: %w", err)
	}

	return &list, nil
}

// SaveChannelReports saves a channel report to a JSON file
func SaveChannelReports(list *ChannelReportList, filePath string) error {
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	raw, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal channel report: %w", err)
	}

	if err := os.WriteFile(filePath, raw, 0644); err != nil {
		return fmt.Errorf("failed to write channel report: %w", err)
	}

	return nil
}

// GetDefaultChannelReportPath returns the default path for the channel report
func GetDefaultChannelReportPath() string {
	if path := os.Getenv("CHANNEL_REPORT_FILE"); path != "" {
		return path
	}
	return "./data/channels.json"
}

// ChannelLookup is the part of ThingSpeakClient the probe needs.
type ChannelLookup interface {
	Channel(ctx context.Context, channelID string) (*model.ThingSpeakFeed, error)
}

// ProbeChannel fills in what the provider reports for r.ChannelID. A failed
// lookup is recorded in r.Error rather than returned.
func ProbeChannel(ctx context.Context, client ChannelLookup, r ChannelReport) ChannelReport {
	feed, err := client.Channel(ctx, r.ChannelID)
	if err != nil {
		r.Error = err.Error()
		return r
	}
	r.Name = feed.Channel.Name
	r.Fields = map[string]string{}
	for n := 1; n <= 8; n++ {
		if label := feed.Channel.FieldLabel(n); label != "" {
			r.Fields[model.FieldKey(n)] = label
		}
	}
	r.LastEntryAt = feed.Channel.UpdatedAt
	if feed.Feeds != nil && len(*feed.Feeds) > 0 {
		if last := (*feed.Feeds)[len(*feed.Feeds)-1].RawReading(1).Timestamp; last != "" {
			r.LastEntryAt = last
		}
	}
	return r
}
