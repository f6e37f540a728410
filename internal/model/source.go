package model

// PointSource says where a grid value came from.
// Keep these values stable; they are intended for CSV output.
type PointSource string

const (
	SourceObserved     PointSource = "OBSERVED"
	SourceInterpolated PointSource = "INTERPOLATED"
	SourceExtrapolated PointSource = "EXTRAPOLATED"
)
