package app

import (
	"io"
	"log/slog"
	"testing"

	"airdelta/internal/config"
	"airdelta/internal/data"
)

func TestNewSource(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("thingspeak", func(t *testing.T) {
		src, closeFn, err := NewSource(&config.Config{Feed: config.FeedConfig{Kind: config.FeedThingSpeak}}, log)
		defer closeFn()
		if err != nil {
			t.Fatal(err)
		}
		if _, ok := src.(*data.ThingSpeakClient); !ok {
			t.Errorf("source = %T; want *data.ThingSpeakClient", src)
		}
	})

	t.Run("file", func(t *testing.T) {
		src, _, err := NewSource(&config.Config{Feed: config.FeedConfig{Kind: config.FeedFile, Dir: "feeds"}}, log)
		if err != nil {
			t.Fatal(err)
		}
		if fs, ok := src.(data.FileSource); !ok || fs.Dir != "feeds" {
			t.Errorf("source = %#v; want FileSource{feeds}", src)
		}
	})

	t.Run("influxdb", func(t *testing.T) {
		cfg := &config.Config{Feed: config.FeedConfig{Kind: config.FeedInfluxDB, Influx: config.InfluxConfig{
			URL: "http://localhost:8086", Token: "t", Org: "o", Bucket: "b",
		}}}
		src, closeFn, err := NewSource(cfg, log)
		if err != nil {
			t.Fatal(err)
		}
		defer closeFn()
		if _, ok := src.(*data.InfluxSource); !ok {
			t.Errorf("source = %T; want *data.InfluxSource", src)
		}
	})

	t.Run("incomplete influxdb", func(t *testing.T) {
		_, closeFn, err := NewSource(&config.Config{Feed: config.FeedConfig{Kind: config.FeedInfluxDB}}, log)
		closeFn()
		if err == nil {
			t.Error("err = nil; want incomplete configuration error")
		}
	})

	t.Run("unknown", func(t *testing.T) {
		if _, _, err := NewSource(&config.Config{Feed: config.FeedConfig{Kind: "mqtt"}}, log); err == nil {
			t.Error("err = nil; want unknown kind error")
		}
	})
}

func TestNewEngine(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &config.Config{Engine: config.EngineConfig{Window: "union"}}
	if _, err := NewEngine(cfg, data.FileSource{}, log); err != nil {
		t.Errorf("NewEngine() err = %v", err)
	}
	cfg.Engine.Window = "widest"
	if _, err := NewEngine(cfg, data.FileSource{}, log); err == nil {
		t.Error("NewEngine(widest) err = nil; want error")
	}
}
