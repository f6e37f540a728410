package model

import "time"

// TimestampLayout is the wire format for report instants, always UTC.
const TimestampLayout = "2006-01-02 15:04:05"

// DeltaPoint is one joined instant. Outdoor values were taken from the outdoor
// grid slot at Instant minus the lag offset.
type DeltaPoint struct {
	Instant time.Time

	Indoor  float64
	Outdoor float64
	Delta   float64 // Indoor - Outdoor

	IndoorSource  PointSource
	OutdoorSource PointSource
}

// IndoorInterpolated reports whether the indoor value was synthesized.
func (p DeltaPoint) IndoorInterpolated() bool { return p.IndoorSource != SourceObserved }

// OutdoorInterpolated reports whether the outdoor value was synthesized.
func (p DeltaPoint) OutdoorInterpolated() bool { return p.OutdoorSource != SourceObserved }

// DeltaReport is the terminal output of a delta computation.
//
// Gap counts, GridPoints and GapPercentage describe the pre-join grids; Points
// and the gap periods may have been narrowed to a requested date range.
type DeltaReport struct {
	Points []DeltaPoint

	IndoorGaps  []GapInterval
	OutdoorGaps []GapInterval

	IndoorGapCount  int
	OutdoorGapCount int
	GridPoints      int
	GapPercentage   float64

	Interval time.Duration
	Lag      time.Duration

	WindowStart time.Time
	WindowEnd   time.Time
}

// Values splits the report into parallel slices, in instant order.
func (r *DeltaReport) Values() (indoor, outdoor, delta []float64) {
	indoor = make([]float64, len(r.Points))
	outdoor = make([]float64, len(r.Points))
	delta = make([]float64, len(r.Points))
	for i, p := range r.Points {
		indoor[i] = p.Indoor
		outdoor[i] = p.Outdoor
		delta[i] = p.Delta
	}
	return indoor, outdoor, delta
}
