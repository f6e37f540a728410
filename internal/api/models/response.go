package models

import "airdelta/internal/analysis"

// DeltaResponse is the serialized delta report. Arrays are parallel and
// ordered by timestamp.
type DeltaResponse struct {
	Location string `json:"location,omitempty"`
	Field    string `json:"field,omitempty"`
	Unit     string `json:"unit,omitempty"`

	Timestamps          []string  `json:"timestamps"` // YYYY-MM-DD HH:MM:SS, UTC
	IndoorValues        []float64 `json:"indoor_values"`
	OutdoorValues       []float64 `json:"outdoor_values"`
	DeltaValues         []float64 `json:"delta_values"`
	IndoorInterpolated  []bool    `json:"indoor_interpolated"`
	OutdoorInterpolated []bool    `json:"outdoor_interpolated"`

	GapMetadata     GapMetadata  `json:"gap_metadata"`
	Summary         DeltaSummary `json:"summary"`
	IntervalMinutes float64      `json:"interval_minutes"`
	LagMinutes      float64      `json:"lag_minutes"`
	Window          TimeWindow   `json:"window"`
}

// GapMetadata describes how much of the two grids was synthesized.
type GapMetadata struct {
	IndoorGaps        int         `json:"indoor_gaps"`
	OutdoorGaps       int         `json:"outdoor_gaps"`
	GapPercentage     float64     `json:"gap_percentage"`
	IndoorGapPeriods  []GapPeriod `json:"indoor_gap_periods"`
	OutdoorGapPeriods []GapPeriod `json:"outdoor_gap_periods"`
}

// GapPeriod is one contiguous run of synthesized grid points.
type GapPeriod struct {
	Start           string `json:"start"`
	End             string `json:"end"`
	DurationMinutes int    `json:"duration_minutes"`
}

// DeltaSummary holds distribution statistics per output column.
type DeltaSummary struct {
	Indoor  analysis.Summary `json:"indoor"`
	Outdoor analysis.Summary `json:"outdoor"`
	Delta   analysis.Summary `json:"delta"`
}

// TimeWindow is the range the grids were built over.
type TimeWindow struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// SeriesResponse is a single sensor's normalized readings.
type SeriesResponse struct {
	Location   string           `json:"location"`
	Side       string           `json:"side"`
	Sensor     string           `json:"sensor"`
	Channel    string           `json:"channel"`
	Field      string           `json:"field"`
	Unit       string           `json:"unit,omitempty"`
	Count      int              `json:"count"`
	Timestamps []string         `json:"timestamps"`
	Values     []float64        `json:"values"`
	Summary    analysis.Summary `json:"summary"`
}

// LegacyDataResponse is the body of GET /api/data/:chart_type
type LegacyDataResponse struct {
	Timestamps []string  `json:"timestamps"`
	Values     []float64 `json:"values"`
}

// LegacyDeltaCO2Response is the body of GET /api/delta-co2
type LegacyDeltaCO2Response struct {
	Timestamps []string  `json:"timestamps"`
	IndoorCO2  []float64 `json:"indoor_co2"`
	OutdoorCO2 []float64 `json:"outdoor_co2"`
	DeltaCO2   []float64 `json:"delta_co2"`
}

// LocationInfo represents information about a location
type LocationInfo struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Indoor  []string `json:"indoor"`  // sensor names
	Outdoor []string `json:"outdoor"` // sensor names
	Default bool     `json:"default,omitempty"`

	// Channels is filled from the last probe-channels run, when there is one.
	Channels []ChannelStatus `json:"channels,omitempty"`
}

// ChannelStatus is the probe result for one sensor of a location.
type ChannelStatus struct {
	Side        string `json:"side"`
	Sensor      string `json:"sensor"`
	ChannelID   string `json:"channel_id"`
	Name        string `json:"name,omitempty"`
	LastEntryAt string `json:"last_entry_at,omitempty"`
	Error       string `json:"error,omitempty"`
}

// FieldInfo describes a supported field type
type FieldInfo struct {
	Name  string `json:"name"`
	Index int    `json:"index"`
	Unit  string `json:"unit"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
