package models

// SeriesQuery is the query string of GET /api/v1/series/:location/:side/:sensor
type SeriesQuery struct {
	Field  string `form:"field"` // default: co2
	Range  string `form:"range"` // e.g. 24h, 7d; exclusive with start/end
	Start  string `form:"start"` // RFC3339, "YYYY-MM-DD HH:MM:SS" or YYYY-MM-DD
	End    string `form:"end"`
	Format string `form:"format"` // json (default) or csv
}

// DeltaQuery is the query string of GET /api/v1/delta/:location
type DeltaQuery struct {
	Field    string `form:"field"`    // default: co2
	Indoor   string `form:"indoor"`   // indoor sensor name; default from config
	Outdoor  string `form:"outdoor"`  // outdoor sensor name; default from config
	Interval string `form:"interval"` // Go duration or minutes, e.g. 10m or 10
	Lag      string `form:"lag"`      // Go duration or minutes, e.g. 50m or 0
	Window   string `form:"window"`   // overlap or union
	Range    string `form:"range"`
	Start    string `form:"start"`
	End      string `form:"end"`
	Format   string `form:"format"`
}
