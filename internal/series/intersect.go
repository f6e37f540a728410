package series

import (
	"errors"
	"time"

	"airdelta/internal/model"
)

// ErrInsufficientData means there is no overlapping observation window to
// compare, as opposed to a failure to fetch the data.
var ErrInsufficientData = errors.New("insufficient data: no overlapping observations")

// Window is a closed time range [Start, End].
type Window struct {
	Start time.Time
	End   time.Time
}

// Bounds returns the first and last instant of an ordered sequence.
func Bounds(obs []model.Observation) (Window, bool) {
	if len(obs) == 0 {
		return Window{}, false
	}
	return Window{Start: obs[0].Instant, End: obs[len(obs)-1].Instant}, true
}

// Overlap computes [max(min_a, min_b), min(max_a, max_b)] for two ordered
// sequences. It fails with ErrInsufficientData if either is empty or the
// ranges do not meet.
func Overlap(a, b []model.Observation) (Window, error) {
	wa, okA := Bounds(a)
	wb, okB := Bounds(b)
	if !okA || !okB {
		return Window{}, ErrInsufficientData
	}
	w := Window{Start: maxTime(wa.Start, wb.Start), End: minTime(wa.End, wb.End)}
	if w.Start.After(w.End) {
		return Window{}, ErrInsufficientData
	}
	return w, nil
}

// Span is the union range [min(min_a, min_b), max(max_a, max_b)]. Both
// sequences must be non-empty.
func Span(a, b []model.Observation) (Window, error) {
	wa, okA := Bounds(a)
	wb, okB := Bounds(b)
	if !okA || !okB {
		return Window{}, ErrInsufficientData
	}
	return Window{Start: minTime(wa.Start, wb.Start), End: maxTime(wa.End, wb.End)}, nil
}

// Intersect trims both sequences to their overlapping window.
func Intersect(a, b []model.Observation) (ta, tb []model.Observation, w Window, err error) {
	w, err = Overlap(a, b)
	if err != nil {
		return nil, nil, Window{}, err
	}
	return FilterRange(a, w.Start, w.End), FilterRange(b, w.Start, w.End), w, nil
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
