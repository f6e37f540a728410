// Package app assembles the runtime pieces shared by the binaries.
package app

import (
	"fmt"
	"log/slog"

	"airdelta/internal/config"
	"airdelta/internal/data"
	"airdelta/internal/delta"
)

// NewSource builds the feed source selected by cfg.Feed.Kind. The returned
// close func is never nil.
func NewSource(cfg *config.Config, log *slog.Logger) (delta.Source, func(), error) {
	noop := func() {}
	switch cfg.Feed.Kind {
	case config.FeedThingSpeak, "":
		return data.NewThingSpeakClient(data.ThingSpeakOptions{
			BaseURL:    cfg.Feed.BaseURL,
			APIKey:     cfg.Feed.APIKey,
			MaxResults: cfg.Feed.MaxResults,
			Timeout:    cfg.Feed.Timeout,
			Logger:     log,
		}), noop, nil
	case config.FeedInfluxDB:
		src, err := data.NewInfluxSource(data.InfluxOptions{
			URL:         cfg.Feed.Influx.URL,
			Token:       cfg.Feed.Influx.Token,
			Org:         cfg.Feed.Influx.Org,
			Bucket:      cfg.Feed.Influx.Bucket,
			Measurement: cfg.Feed.Influx.Measurement,
			MaxResults:  cfg.Feed.MaxResults,
			Timeout:     cfg.Feed.Timeout,
			Logger:      log,
		})
		if err != nil {
			return nil, noop, err
		}
		return src, src.Close, nil
	case config.FeedFile:
		return data.FileSource{Dir: cfg.Feed.Dir}, noop, nil
	}
	return nil, noop, fmt.Errorf("unknown feed kind %q", cfg.Feed.Kind)
}

// NewEngine builds a delta engine over src with the engine settings of cfg.
func NewEngine(cfg *config.Config, src delta.Source, log *slog.Logger) (*delta.Engine, error) {
	window, err := delta.ParseWindowPolicy(cfg.Engine.Window)
	if err != nil {
		return nil, err
	}
	return delta.New(src, delta.Options{
		FetchTimeout: cfg.Engine.FetchTimeout,
		Window:       window,
		Logger:       log,
	}), nil
}
