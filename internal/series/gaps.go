package series

import (
	"airdelta/internal/model"
)

type scanState int

const (
	outsideGap scanState = iota
	insideGap
)

// Gaps extracts the runs of Interpolated slots as gap intervals, in order.
// A run still open at the end of the grid is reported with the last slot as End.
func Gaps(g *model.GridSeries) []model.GapInterval {
	var (
		out   []model.GapInterval
		state = outsideGap
		start int
	)
	for i, p := range g.Points {
		switch state {
		case outsideGap:
			if p.Interpolated {
				state = insideGap
				start = i
			}
		case insideGap:
			if !p.Interpolated {
				out = append(out, gapBetween(g.Points[start], g.Points[i-1]))
				state = outsideGap
			}
		}
	}
	if state == insideGap {
		out = append(out, gapBetween(g.Points[start], g.Points[len(g.Points)-1]))
	}
	return out
}

func gapBetween(first, last model.GridPoint) model.GapInterval {
	return model.GapInterval{
		Start:           first.Instant,
		End:             last.Instant,
		DurationMinutes: int(last.Instant.Sub(first.Instant).Minutes()),
	}
}

// GapPercentage is the share of synthesized slots across both grids, 0..100.
func GapPercentage(indoor, outdoor *model.GridSeries) float64 {
	total := indoor.Len() + outdoor.Len()
	if total == 0 {
		return 0
	}
	gaps := indoor.InterpolatedCount() + outdoor.InterpolatedCount()
	return float64(gaps) / float64(total) * 100
}
