package delta

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"airdelta/internal/data"
	"airdelta/internal/metrics"
	"airdelta/internal/model"
	"airdelta/internal/series"

	"golang.org/x/sync/errgroup"
)

// DefaultInterval is the grid interval used when a caller does not choose one.
const DefaultInterval = 10 * time.Minute

// DefaultLagOffset is re-exported for callers that build DeltaParams by hand.
const DefaultLagOffset = series.DefaultLagOffset

// Source is the Feed Source contract: the raw readings of one channel field.
type Source interface {
	Fetch(ctx context.Context, channelID string, field int) ([]model.RawReading, error)
}

// WindowPolicy selects the range the two grids are built over.
type WindowPolicy string

const (
	// WindowOverlap trims both series to their overlapping window.
	WindowOverlap WindowPolicy = "overlap"
	// WindowUnion requires an overlap but grids the full extent of both series,
	// so boundary slots of the shorter series are held constant.
	WindowUnion WindowPolicy = "union"
)

// ParseWindowPolicy accepts "overlap", "union" or "" (overlap).
func ParseWindowPolicy(s string) (WindowPolicy, error) {
	switch WindowPolicy(s) {
	case "", WindowOverlap:
		return WindowOverlap, nil
	case WindowUnion:
		return WindowUnion, nil
	}
	return "", invalidf("unknown window policy %q (allowed: overlap, union)", s)
}

// Options configures an Engine. Zero fields take defaults.
type Options struct {
	FetchTimeout time.Duration
	Window       WindowPolicy
	Logger       *slog.Logger
}

// Engine runs the alignment pipeline against a Feed Source. It holds no
// per-request state and is safe for concurrent use.
type Engine struct {
	source       Source
	fetchTimeout time.Duration
	window       WindowPolicy
	log          *slog.Logger
}

func New(source Source, opts Options) *Engine {
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = data.DefaultFetchTimeout
	}
	if opts.Window == "" {
		opts.Window = WindowOverlap
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Engine{
		source:       source,
		fetchTimeout: opts.FetchTimeout,
		window:       opts.Window,
		log:          opts.Logger.With("component", "delta"),
	}
}

// DeltaParams are the inputs of one delta computation. Zero Start/End leave
// that side of the output range open.
type DeltaParams struct {
	IndoorChannel  string
	OutdoorChannel string
	Field          int
	Interval       time.Duration
	Lag            time.Duration
	Start          time.Time
	End            time.Time

	// Window overrides the engine's window policy when set.
	Window WindowPolicy
}

// NewDeltaParams returns params with the default interval and lag.
func NewDeltaParams(indoorChannel, outdoorChannel string, field int) DeltaParams {
	return DeltaParams{
		IndoorChannel:  indoorChannel,
		OutdoorChannel: outdoorChannel,
		Field:          field,
		Interval:       DefaultInterval,
		Lag:            DefaultLagOffset,
	}
}

func (p DeltaParams) validate() error {
	if p.IndoorChannel == "" || p.OutdoorChannel == "" {
		return invalidf("indoor and outdoor channels are required")
	}
	if p.Field < 1 {
		return invalidf("field index must be >= 1, got %d", p.Field)
	}
	if p.Interval <= 0 {
		return invalidf("interval must be > 0, got %s", p.Interval)
	}
	if !p.Start.IsZero() && !p.End.IsZero() && p.Start.After(p.End) {
		return invalidf("start must not be after end")
	}
	if p.Window != "" {
		if _, err := ParseWindowPolicy(string(p.Window)); err != nil {
			return err
		}
	}
	return nil
}

// GetSeries returns the normalized observations of one channel field within
// [start, end], without resampling.
func (e *Engine) GetSeries(ctx context.Context, channelID string, field int, start, end time.Time) ([]model.Observation, error) {
	if channelID == "" {
		return nil, invalidf("channel is required")
	}
	if field < 1 {
		return nil, invalidf("field index must be >= 1, got %d", field)
	}
	raw, err := e.fetch(ctx, "series", channelID, field)
	if err != nil {
		return nil, err
	}
	obs, dropped := series.Normalize(raw)
	metrics.AddDropped(dropped)
	if dropped > 0 {
		e.log.Debug("dropped readings", "channel", channelID, "field", field, "dropped", dropped)
	}
	return series.FilterRange(obs, start, end), nil
}

// ComputeDelta fetches both feeds concurrently and builds the delta report.
// It fails with a *FetchError if either fetch fails and with
// ErrInsufficientData if the feeds do not overlap; it never returns a partial report.
func (e *Engine) ComputeDelta(ctx context.Context, p DeltaParams) (*model.DeltaReport, error) {
	started := time.Now()
	report, err := e.computeDelta(ctx, p)
	outcome := "ok"
	switch {
	case err == nil:
		metrics.ObserveGapPercentage(report.GapPercentage)
	case errors.Is(err, ErrFetchFailure):
		outcome = "fetch_failure"
	case errors.Is(err, ErrInsufficientData):
		outcome = "insufficient_data"
	default:
		outcome = "error"
	}
	metrics.ObserveDelta(outcome, time.Since(started))
	if err != nil {
		e.log.Warn("delta failed",
			"indoor", p.IndoorChannel, "outdoor", p.OutdoorChannel, "field", p.Field,
			"outcome", outcome, "err", err)
		return nil, err
	}
	e.log.Info("delta computed",
		"indoor", p.IndoorChannel, "outdoor", p.OutdoorChannel, "field", p.Field,
		"points", len(report.Points), "grid_points", report.GridPoints,
		"gap_percentage", report.GapPercentage, "duration", time.Since(started))
	return report, nil
}

func (e *Engine) computeDelta(ctx context.Context, p DeltaParams) (*model.DeltaReport, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	var indoorRaw, outdoorRaw []model.RawReading
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		indoorRaw, err = e.fetch(gctx, "indoor", p.IndoorChannel, p.Field)
		return err
	})
	g.Go(func() error {
		var err error
		outdoorRaw, err = e.fetch(gctx, "outdoor", p.OutdoorChannel, p.Field)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	indoor, droppedIn := series.Normalize(indoorRaw)
	outdoor, droppedOut := series.Normalize(outdoorRaw)
	metrics.AddDropped(droppedIn + droppedOut)
	if droppedIn+droppedOut > 0 {
		e.log.Debug("dropped readings", "indoor", droppedIn, "outdoor", droppedOut)
	}

	policy := p.Window
	if policy == "" {
		policy = e.window
	}
	return Build(indoor, outdoor, p, policy)
}

func (e *Engine) fetch(ctx context.Context, side, channelID string, field int) ([]model.RawReading, error) {
	ctx, cancel := context.WithTimeout(ctx, e.fetchTimeout)
	defer cancel()

	started := time.Now()
	raw, err := e.source.Fetch(ctx, channelID, field)
	metrics.ObserveFetch(side, time.Since(started), err)
	if err != nil {
		return nil, &FetchError{Side: side, Channel: channelID, Field: field, Err: err}
	}
	return raw, nil
}
