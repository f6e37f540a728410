package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"sort"
	"time"

	"airdelta/internal/config"
	"airdelta/internal/data"
	"airdelta/internal/logging"
)

func main() {
	var (
		cfgPath    = flag.String("config", "", "Path to YAML config (default: $AIRDELTA_CONFIG or config.yaml)")
		outputPath = flag.String("output", "", "Output file path (default: ./data/channels.json)")
		timeout    = flag.Duration("timeout", 10*time.Second, "Per-channel request timeout")
	)
	flag.Parse()

	if err := config.LoadDotEnv(); err != nil {
		log.Fatal(err)
	}
	if *cfgPath == "" {
		*cfgPath = config.Path()
	}
	cfg, err := config.LoadUnchecked(*cfgPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	cfg.ApplyEnv(os.Getenv)
	cfg.ApplyDefaults()

	if *outputPath == "" {
		*outputPath = data.GetDefaultChannelReportPath()
	}

	client := data.NewThingSpeakClient(data.ThingSpeakOptions{
		BaseURL: cfg.Feed.BaseURL,
		APIKey:  cfg.Feed.APIKey,
		Timeout: *timeout,
		Logger:  logging.New(os.Stderr, logging.Options{Level: slog.LevelWarn}),
	})

	targets := configuredChannels(cfg)
	fmt.Printf("Probing %d configured channels...\n", len(targets))

	okCount := 0
	reports := make([]data.ChannelReport, 0, len(targets))
	for _, t := range targets {
		ctx, cancel := context.WithTimeout(context.Background(), *timeout)
		r := data.ProbeChannel(ctx, client, t)
		cancel()

		if r.Error != "" {
			fmt.Printf("  ⚠️  %s/%s/%s (channel %s): %s\n", r.Location, r.Side, r.Sensor, r.ChannelID, r.Error)
		} else {
			okCount++
			fmt.Printf("  ✓ %s/%s/%s: %q last entry %s\n", r.Location, r.Side, r.Sensor, r.Name, r.LastEntryAt)
		}
		reports = append(reports, r)
	}
	fmt.Printf("Successfully probed %d/%d channels\n", okCount, len(targets))

	list := &data.ChannelReportList{
		UpdatedAt: time.Now().UTC().Format(time.RFC3339),
		Channels:  reports,
	}
	if err := data.SaveChannelReports(list, *outputPath); err != nil {
		log.Fatalf("Failed to save channel report: %v", err)
	}
	fmt.Printf("Saved %d channels to %s\n", len(reports), *outputPath)
}

// configuredChannels lists every sensor of every location in a stable order.
func configuredChannels(cfg *config.Config) []data.ChannelReport {
	var out []data.ChannelReport
	for _, loc := range cfg.LocationNames() {
		sides := []struct {
			name    string
			sensors map[string]string
		}{
			{config.SideIndoor, cfg.Locations[loc].Indoor},
			{config.SideOutdoor, cfg.Locations[loc].Outdoor},
		}
		for _, side := range sides {
			names := make([]string, 0, len(side.sensors))
			for s := range side.sensors {
				names = append(names, s)
			}
			sort.Strings(names)
			for _, s := range names {
				out = append(out, data.ChannelReport{
					Location:  loc,
					Side:      side.name,
					Sensor:    s,
					ChannelID: side.sensors[s],
				})
			}
		}
	}
	return out
}
