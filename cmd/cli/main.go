package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"airdelta/internal/analysis"
	"airdelta/internal/app"
	"airdelta/internal/config"
	"airdelta/internal/delta"
	"airdelta/internal/logging"
	"airdelta/internal/model"
	"airdelta/internal/series"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "delta":
		cmdDelta(os.Args[2:])
	case "series":
		cmdSeries(os.Args[2:])
	case "summary":
		cmdSummary(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Println("usage:")
	fmt.Println("  cli delta   --config config.yaml --location lab --field co2 --out results/delta.csv")
	fmt.Println("  cli delta   --feed-dir data/feeds --indoor 2580816 --outdoor 2099116 --lag 0 --window union")
	fmt.Println("  cli series  --config config.yaml --location lab --side outdoor --field temperature")
	fmt.Println("  cli summary --config config.yaml --field co2")
	fmt.Println("")
	fmt.Println("notes:")
	fmt.Println("  - --feed-dir reads {dir}/{channel}.json snapshots instead of the configured feed")
	fmt.Println("  - delta writes CSV with indoor/outdoor source OBSERVED/INTERPOLATED/EXTRAPOLATED per point")
	fmt.Println("  - summary computes the delta for every configured location and ranks by mean delta")
}

// common holds the flags shared by every command.
type common struct {
	cfgPath  *string
	feedDir  *string
	field    *string
	start    *string
	end      *string
	logLevel *string
}

func addCommon(fs *flag.FlagSet) common {
	return common{
		cfgPath:  fs.String("config", "", "Path to YAML config (default: $AIRDELTA_CONFIG or none)"),
		feedDir:  fs.String("feed-dir", "", "Read feeds from {dir}/{channel}.json instead of the configured source"),
		field:    fs.String("field", "co2", "Field type: co2, temperature, humidity, pressure"),
		start:    fs.String("start", "", "Optional: only keep points at or after this instant"),
		end:      fs.String("end", "", "Optional: only keep points at or before this instant"),
		logLevel: fs.String("log-level", "warn", "debug, info, warn or error"),
	}
}

// env is what every command needs after flag parsing.
type env struct {
	cfg    *config.Config
	engine *delta.Engine
	field  model.FieldType
	index  int
	start  time.Time
	end    time.Time
	close  func()
}

func (c common) setup() env {
	level, err := logging.ParseLevel(*c.logLevel)
	if err != nil {
		fatal(err)
	}
	logger := logging.New(os.Stderr, logging.Options{Level: level})
	slog.SetDefault(logger)

	if err := config.LoadDotEnv(); err != nil {
		fatal(err)
	}
	cfg := &config.Config{}
	path := *c.cfgPath
	if path == "" && os.Getenv("AIRDELTA_CONFIG") != "" {
		path = config.Path()
	}
	if path != "" {
		if cfg, err = config.LoadUnchecked(path); err != nil {
			fatal(err)
		}
	}
	cfg.ApplyEnv(os.Getenv)
	if *c.feedDir != "" {
		cfg.Feed.Kind = config.FeedFile
		cfg.Feed.Dir = *c.feedDir
	}
	cfg.ApplyDefaults()

	src, closeSource, err := app.NewSource(cfg, logger)
	if err != nil {
		fatal(err)
	}
	engine, err := app.NewEngine(cfg, src, logger)
	if err != nil {
		fatal(err)
	}

	ft, idx, err := cfg.FieldIndex(*c.field)
	if err != nil {
		fatal(err)
	}
	e := env{cfg: cfg, engine: engine, field: ft, index: idx, close: closeSource}
	if *c.start != "" {
		if e.start, err = series.ParseInstant(*c.start); err != nil {
			fatal(fmt.Errorf("--start: %w", err))
		}
	}
	if *c.end != "" {
		if e.end, err = series.ParseInstant(*c.end); err != nil {
			fatal(fmt.Errorf("--end: %w", err))
		}
	}
	return e
}

func cmdDelta(args []string) {
	fs := flag.NewFlagSet("delta", flag.ExitOnError)
	c := addCommon(fs)
	location := fs.String("location", "", "Configured location (default: defaults.location)")
	indoor := fs.String("indoor", "", "Indoor sensor name, or a channel id when no location is configured")
	outdoor := fs.String("outdoor", "", "Outdoor sensor name, or a channel id when no location is configured")
	interval := fs.Duration("interval", 0, "Grid interval (default: engine.interval, 10m)")
	lag := fs.String("lag", "", "Outdoor lag offset, e.g. 50m or 0 (default: engine.lag)")
	window := fs.String("window", "", "overlap or union (default: engine.window)")
	outPath := fs.String("out", "-", "Output CSV path, - for stdout")
	_ = fs.Parse(args)

	e := c.setup()
	defer e.close()

	indoorCh, outdoorCh := resolvePair(e.cfg, *location, *indoor, *outdoor)
	p := delta.NewDeltaParams(indoorCh, outdoorCh, e.index)
	p.Interval = e.cfg.Engine.Interval
	if *interval > 0 {
		p.Interval = *interval
	}
	p.Lag = *e.cfg.Engine.Lag
	if *lag != "" {
		d, err := parseMinutesOrDuration(*lag)
		if err != nil {
			fatal(fmt.Errorf("--lag: %w", err))
		}
		p.Lag = d
	}
	if *window != "" {
		w, err := delta.ParseWindowPolicy(*window)
		if err != nil {
			fatal(err)
		}
		p.Window = w
	}
	p.Start, p.End = e.start, e.end

	report, err := e.engine.ComputeDelta(context.Background(), p)
	if err != nil {
		fatal(err)
	}

	if err := writeOutput(*outPath, func(w io.Writer) error { return delta.WriteReportCSV(w, report) }); err != nil {
		fatal(err)
	}

	_, _, deltas := report.Values()
	s := analysis.Summarize(deltas)
	fmt.Fprintf(os.Stderr, "Wrote %d rows (%s, interval=%s lag=%s)\n", len(report.Points), e.field, p.Interval, p.Lag)
	fmt.Fprintf(os.Stderr, "Gaps indoor=%d outdoor=%d (%.1f%% of %d grid points)\n",
		report.IndoorGapCount, report.OutdoorGapCount, report.GapPercentage, report.GridPoints)
	fmt.Fprintf(os.Stderr, "Delta mean=%.2f min=%.2f max=%.2f p05=%.2f p95=%.2f\n", s.Mean, s.Min, s.Max, s.P05, s.P95)
}

func cmdSeries(args []string) {
	fs := flag.NewFlagSet("series", flag.ExitOnError)
	c := addCommon(fs)
	location := fs.String("location", "", "Configured location (default: defaults.location)")
	side := fs.String("side", config.SideIndoor, "indoor or outdoor")
	sensor := fs.String("sensor", "", "Sensor name (default: the side's default sensor)")
	channel := fs.String("channel", "", "Channel id; bypasses the location catalog")
	outPath := fs.String("out", "-", "Output CSV path, - for stdout")
	_ = fs.Parse(args)

	e := c.setup()
	defer e.close()

	ch := *channel
	if ch == "" {
		loc := *location
		if loc == "" {
			loc = e.cfg.Defaults.Location
		}
		var err error
		if ch, err = e.cfg.Channel(loc, *side, *sensor); err != nil {
			fatal(err)
		}
	}

	obs, err := e.engine.GetSeries(context.Background(), ch, e.index, e.start, e.end)
	if err != nil {
		fatal(err)
	}
	if err := writeOutput(*outPath, func(w io.Writer) error { return delta.WriteSeriesCSV(w, obs) }); err != nil {
		fatal(err)
	}
	fmt.Fprintf(os.Stderr, "Wrote %d observations from channel %s (%s)\n", len(obs), ch, e.field)
}

func cmdSummary(args []string) {
	fs := flag.NewFlagSet("summary", flag.ExitOnError)
	c := addCommon(fs)
	_ = fs.Parse(args)

	e := c.setup()
	defer e.close()

	type row struct {
		location string
		points   int
		gapPct   float64
		s        analysis.Summary
		err      error
	}
	var rows []row
	for _, name := range e.cfg.LocationNames() {
		indoorCh, outdoorCh := resolvePair(e.cfg, name, "", "")
		p := delta.NewDeltaParams(indoorCh, outdoorCh, e.index)
		p.Interval = e.cfg.Engine.Interval
		p.Lag = *e.cfg.Engine.Lag
		p.Start, p.End = e.start, e.end

		report, err := e.engine.ComputeDelta(context.Background(), p)
		if err != nil {
			rows = append(rows, row{location: name, err: err})
			continue
		}
		_, _, deltas := report.Values()
		rows = append(rows, row{location: name, points: len(report.Points), gapPct: report.GapPercentage, s: analysis.Summarize(deltas)})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if (rows[i].err == nil) != (rows[j].err == nil) {
			return rows[i].err == nil
		}
		return rows[i].s.Mean > rows[j].s.Mean
	})

	fmt.Printf("%-4s %-18s %-8s %-8s %-10s %-10s %-10s\n", "rank", "location", "points", "gap%", "mean", "p05", "p95")
	for i, r := range rows {
		if r.err != nil {
			fmt.Printf("%-4s %-18s error: %v\n", "-", r.location, r.err)
			continue
		}
		fmt.Printf("%-4d %-18s %-8d %-8.1f %-10.2f %-10.2f %-10.2f\n",
			i+1, r.location, r.points, r.gapPct, r.s.Mean, r.s.P05, r.s.P95)
	}
}

// resolvePair finds the indoor and outdoor channels. Without any configured
// location, indoor and outdoor are taken as raw channel ids.
func resolvePair(cfg *config.Config, location, indoor, outdoor string) (string, string) {
	if len(cfg.Locations) == 0 {
		if indoor == "" || outdoor == "" {
			fatal(fmt.Errorf("--indoor and --outdoor channel ids are required without a configured location"))
		}
		return indoor, outdoor
	}
	if location == "" {
		location = cfg.Defaults.Location
	}
	in, err := cfg.Channel(location, config.SideIndoor, indoor)
	if err != nil {
		fatal(err)
	}
	out, err := cfg.Channel(location, config.SideOutdoor, outdoor)
	if err != nil {
		fatal(err)
	}
	return in, out
}

func parseMinutesOrDuration(s string) (time.Duration, error) {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		if n > math.MaxInt64/int64(time.Minute) || n < -math.MaxInt64/int64(time.Minute) {
			return 0, fmt.Errorf("%s minutes is out of range", s)
		}
		return time.Duration(n) * time.Minute, nil
	}
	return time.ParseDuration(s)
}

func writeOutput(path string, write func(w io.Writer) error) error {
	if path == "-" || path == "" {
		return write(os.Stdout)
	}
	// ensure output dir exists
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}
