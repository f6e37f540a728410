package model

import "time"

// RawReading is one provider-native row: a timestamp in whatever form the
// provider uses (RFC3339, "YYYY-MM-DD HH:MM:SS", epoch) and an unparsed value.
type RawReading struct {
	Timestamp string
	Value     string
}

// Observation is a parsed reading. Instants are always UTC.
type Observation struct {
	Instant time.Time
	Value   float64
}

// GridPoint is one bucket of a regular grid.
// Set is false for a bucket that no observation fell into and that has not
// been filled yet. Interpolated records that the bucket was empty before filling.
type GridPoint struct {
	Instant      time.Time
	Value        float64
	Set          bool
	Interpolated bool
	Source       PointSource
}

// GridSeries is a gap-free sequence of buckets at a fixed interval starting at Origin.
type GridSeries struct {
	Origin   time.Time
	Interval time.Duration
	Points   []GridPoint
}

// Len returns the number of grid slots.
func (g *GridSeries) Len() int {
	if g == nil {
		return 0
	}
	return len(g.Points)
}

// End returns the instant of the last slot, or the zero time for an empty grid.
func (g *GridSeries) End() time.Time {
	if g.Len() == 0 {
		return time.Time{}
	}
	return g.Points[len(g.Points)-1].Instant
}

// InterpolatedCount is the number of slots that were synthesized.
func (g *GridSeries) InterpolatedCount() int {
	n := 0
	if g == nil {
		return n
	}
	for _, p := range g.Points {
		if p.Interpolated {
			n++
		}
	}
	return n
}

// GapInterval is a contiguous run of synthesized grid slots.
// Start and End are the first and last synthesized instants (inclusive).
type GapInterval struct {
	Start           time.Time
	End             time.Time
	DurationMinutes int
}

// Overlaps reports whether the gap intersects [from, to]. Zero bounds are open.
func (g GapInterval) Overlaps(from, to time.Time) bool {
	if !from.IsZero() && g.End.Before(from) {
		return false
	}
	if !to.IsZero() && g.Start.After(to) {
		return false
	}
	return true
}
