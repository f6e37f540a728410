package analysis

import (
	"math"
	"sort"
)

// Summary is a distribution snapshot of one value series, used to describe the
// indoor, outdoor and delta columns of a report without shipping every point.
type Summary struct {
	Count int     `json:"count"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Mean  float64 `json:"mean"`
	P05   float64 `json:"p05"`
	P95   float64 `json:"p95"`
}

// Summarize computes a Summary. An empty input yields the zero Summary.
func Summarize(values []float64) Summary {
	s := Summary{}
	if len(values) == 0 {
		return s
	}
	s.Count = len(values)

	sum := 0.0
	minv := math.Inf(1)
	maxv := math.Inf(-1)
	sorted := make([]float64, 0, len(values))
	for _, v := range values {
		sorted = append(sorted, v)
		sum += v
		if v < minv {
			minv = v
		}
		if v > maxv {
			maxv = v
		}
	}
	sort.Float64s(sorted)
	s.Min = minv
	s.Max = maxv
	s.Mean = sum / float64(len(sorted))
	s.P05 = percentileSorted(sorted, 0.05)
	s.P95 = percentileSorted(sorted, 0.95)
	return s
}

func percentileSorted(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	// Linear interpolation between order stats.
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
