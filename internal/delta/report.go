package delta

import (
	"time"

	"airdelta/internal/model"
	"airdelta/internal/series"
)

// Build runs the pure part of the pipeline on two normalized sequences:
// window selection, resampling, gap filling, phase alignment and report
// assembly. p.Start/p.End narrow the returned points and gap periods only;
// gap counts and the percentage always describe the full pre-join grids.
func Build(indoor, outdoor []model.Observation, p DeltaParams, policy WindowPolicy) (*model.DeltaReport, error) {
	if p.Interval <= 0 {
		return nil, invalidf("interval must be > 0, got %s", p.Interval)
	}

	var (
		w   series.Window
		err error
	)
	switch policy {
	case WindowUnion:
		// union still needs the feeds to meet somewhere
		if _, err = series.Overlap(indoor, outdoor); err != nil {
			return nil, err
		}
		if w, err = series.Span(indoor, outdoor); err != nil {
			return nil, err
		}
	default:
		if indoor, outdoor, w, err = series.Intersect(indoor, outdoor); err != nil {
			return nil, err
		}
	}

	indoorGrid, err := resampleAndFill(indoor, p.Interval, w)
	if err != nil {
		return nil, err
	}
	outdoorGrid, err := resampleAndFill(outdoor, p.Interval, w)
	if err != nil {
		return nil, err
	}

	points := series.Align(indoorGrid, outdoorGrid, p.Lag)
	return assemble(indoorGrid, outdoorGrid, points, p, w), nil
}

func resampleAndFill(obs []model.Observation, interval time.Duration, w series.Window) (*model.GridSeries, error) {
	g, err := series.Resample(obs, interval, w)
	if err != nil {
		return nil, invalidf("%v", err)
	}
	if err := series.Fill(g); err != nil {
		return nil, err
	}
	return g, nil
}

func assemble(indoor, outdoor *model.GridSeries, points []model.DeltaPoint, p DeltaParams, w series.Window) *model.DeltaReport {
	report := &model.DeltaReport{
		Points:          filterPoints(points, p.Start, p.End),
		IndoorGaps:      filterGaps(series.Gaps(indoor), p.Start, p.End),
		OutdoorGaps:     filterGaps(series.Gaps(outdoor), p.Start, p.End),
		IndoorGapCount:  indoor.InterpolatedCount(),
		OutdoorGapCount: outdoor.InterpolatedCount(),
		GridPoints:      indoor.Len(),
		GapPercentage:   series.GapPercentage(indoor, outdoor),
		Interval:        p.Interval,
		Lag:             p.Lag,
		WindowStart:     w.Start,
		WindowEnd:       w.End,
	}
	return report
}

func filterPoints(points []model.DeltaPoint, from, to time.Time) []model.DeltaPoint {
	out := make([]model.DeltaPoint, 0, len(points))
	for _, pt := range points {
		if !from.IsZero() && pt.Instant.Before(from) {
			continue
		}
		if !to.IsZero() && pt.Instant.After(to) {
			continue
		}
		out = append(out, pt)
	}
	return out
}

func filterGaps(gaps []model.GapInterval, from, to time.Time) []model.GapInterval {
	out := make([]model.GapInterval, 0, len(gaps))
	for _, g := range gaps {
		if g.Overlaps(from, to) {
			out = append(out, g)
		}
	}
	return out
}
