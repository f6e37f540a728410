package series

import (
	"time"

	"airdelta/internal/model"
)

// DefaultLagOffset is the assumed outdoor-to-indoor propagation delay. It has
// never been measured; keep it overridable rather than deriving a value.
const DefaultLagOffset = 50 * time.Minute

// Align shifts every outdoor slot forward by lag, inner-joins the result with
// the indoor grid on exact instants and computes indoor - outdoor.
// Instants present on only one side are dropped; no join yields an empty slice.
func Align(indoor, outdoor *model.GridSeries, lag time.Duration) []model.DeltaPoint {
	shifted := make(map[int64]model.GridPoint, outdoor.Len())
	for _, p := range outdoor.Points {
		shifted[p.Instant.Add(lag).UnixNano()] = p
	}

	out := make([]model.DeltaPoint, 0, min(indoor.Len(), outdoor.Len()))
	for _, in := range indoor.Points {
		o, ok := shifted[in.Instant.UnixNano()]
		if !ok {
			continue
		}
		out = append(out, model.DeltaPoint{
			Instant:       in.Instant,
			Indoor:        in.Value,
			Outdoor:       o.Value,
			Delta:         in.Value - o.Value,
			IndoorSource:  in.Source,
			OutdoorSource: o.Source,
		})
	}
	return out
}
