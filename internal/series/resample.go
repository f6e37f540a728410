package series

import (
	"errors"
	"fmt"
	"time"

	"airdelta/internal/model"
)

// MaxGridPoints caps the slots of one resampled series. A year of one-minute
// slots fits.
const MaxGridPoints = 600_000

// ErrGridTooLarge is returned when a window and interval need more than
// MaxGridPoints slots.
var ErrGridTooLarge = errors.New("grid too large")

// AlignDown truncates t to the nearest interval boundary at or before it,
// measured from the Unix epoch so that every caller gets the same grid.
func AlignDown(t time.Time, interval time.Duration) time.Time {
	ns := t.UnixNano()
	step := int64(interval)
	rem := ns % step
	if rem < 0 {
		rem += step
	}
	return time.Unix(0, ns-rem).UTC()
}

// Resample maps obs onto a regular grid covering [AlignDown(w.Start), w.End]
// at the given interval. Each slot holds the mean of the observations in
// [slot, slot+interval); slots without observations are left unset.
// Observations outside the grid are ignored.
func Resample(obs []model.Observation, interval time.Duration, w Window) (*model.GridSeries, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("resample interval must be > 0, got %s", interval)
	}
	if w.End.Before(w.Start) {
		return nil, fmt.Errorf("resample window end %s is before start %s", w.End, w.Start)
	}

	origin := AlignDown(w.Start, interval)
	slots := int64(w.End.Sub(origin)/interval) + 1
	if slots > MaxGridPoints {
		return nil, fmt.Errorf("%w: %s to %s at %s needs %d slots, max %d",
			ErrGridTooLarge, origin.Format(time.RFC3339), w.End.Format(time.RFC3339), interval, slots, MaxGridPoints)
	}
	n := int(slots)

	sums := make([]float64, n)
	counts := make([]int, n)
	for _, o := range obs {
		if o.Instant.Before(origin) {
			continue
		}
		idx := int(o.Instant.Sub(origin) / interval)
		if idx >= n {
			continue
		}
		sums[idx] += o.Value
		counts[idx]++
	}

	g := &model.GridSeries{
		Origin:   origin,
		Interval: interval,
		Points:   make([]model.GridPoint, n),
	}
	for i := range g.Points {
		p := model.GridPoint{Instant: origin.Add(time.Duration(i) * interval)}
		if counts[i] > 0 {
			p.Value = sums[i] / float64(counts[i])
			p.Set = true
			p.Source = model.SourceObserved
		}
		g.Points[i] = p
	}
	return g, nil
}
