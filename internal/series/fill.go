package series

import "airdelta/internal/model"

// Fill sets every unset slot of g in place and marks it Interpolated.
// Interior slots are linearly interpolated between the nearest set neighbours;
// leading and trailing slots hold the nearest set value. A grid without any
// set slot cannot be filled and yields ErrInsufficientData.
func Fill(g *model.GridSeries) error {
	pts := g.Points
	prev := -1
	for i := range pts {
		if !pts[i].Set {
			continue
		}
		switch {
		case prev == -1:
			for j := 0; j < i; j++ {
				hold(&pts[j], pts[i].Value)
			}
		case i-prev > 1:
			lo, hi := pts[prev].Value, pts[i].Value
			span := float64(i - prev)
			for j := prev + 1; j < i; j++ {
				frac := float64(j-prev) / span
				pts[j].Value = lo + (hi-lo)*frac
				pts[j].Set = true
				pts[j].Interpolated = true
				pts[j].Source = model.SourceInterpolated
			}
		}
		prev = i
	}
	if prev == -1 {
		return ErrInsufficientData
	}
	for j := prev + 1; j < len(pts); j++ {
		hold(&pts[j], pts[prev].Value)
	}
	return nil
}

func hold(p *model.GridPoint, v float64) {
	p.Value = v
	p.Set = true
	p.Interpolated = true
	p.Source = model.SourceExtrapolated
}
