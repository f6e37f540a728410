package handlers

import (
	"fmt"
	"net/http"
	"time"

	"airdelta/internal/analysis"
	"airdelta/internal/api/models"
	"airdelta/internal/config"
	"airdelta/internal/delta"
	"airdelta/internal/model"

	"github.com/gin-gonic/gin"
)

// DeltaHandler handles indoor/outdoor delta requests
type DeltaHandler struct {
	engine Engine
	cfg    *config.Config
	now    func() time.Time
}

// NewDeltaHandler creates a new delta handler
func NewDeltaHandler(engine Engine, cfg *config.Config) *DeltaHandler {
	return &DeltaHandler{engine: engine, cfg: cfg, now: time.Now}
}

// GetDelta handles GET /api/v1/delta/:location
func (h *DeltaHandler) GetDelta(c *gin.Context) {
	var q models.DeltaQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondError(c, invalid("%v", err))
		return
	}
	location := c.Param("location")

	// Everything is validated before the feeds are touched.
	params, ft, err := h.buildParams(location, q)
	if err != nil {
		respondError(c, err)
		return
	}
	format, err := parseFormat(q.Format)
	if err != nil {
		respondError(c, err)
		return
	}

	report, err := h.engine.ComputeDelta(c.Request.Context(), params)
	if err != nil {
		respondError(c, err)
		return
	}

	if format == "csv" {
		writeCSV(c, fmt.Sprintf("delta-%s-%s.csv", location, ft), func(c *gin.Context) error {
			return delta.WriteReportCSV(c.Writer, report)
		})
		return
	}

	resp := buildDeltaResponse(report)
	resp.Location = location
	resp.Field = string(ft)
	resp.Unit = model.FieldUnits[ft]
	c.JSON(http.StatusOK, resp)
}

func (h *DeltaHandler) buildParams(location string, q models.DeltaQuery) (delta.DeltaParams, model.FieldType, error) {
	var p delta.DeltaParams

	indoor, err := resolveChannel(h.cfg, location, config.SideIndoor, q.Indoor)
	if err != nil {
		return p, "", err
	}
	outdoor, err := resolveChannel(h.cfg, location, config.SideOutdoor, q.Outdoor)
	if err != nil {
		return p, "", err
	}
	ft, idx, err := resolveField(h.cfg, q.Field)
	if err != nil {
		return p, "", err
	}

	p = delta.NewDeltaParams(indoor, outdoor, idx)
	if p.Interval, err = parseInterval(q.Interval, h.cfg.Engine.Interval); err != nil {
		return p, "", err
	}
	defaultLag := delta.DefaultLagOffset
	if h.cfg.Engine.Lag != nil {
		defaultLag = *h.cfg.Engine.Lag
	}
	if p.Lag, err = parseLag(q.Lag, defaultLag); err != nil {
		return p, "", err
	}
	if q.Window != "" {
		if p.Window, err = delta.ParseWindowPolicy(q.Window); err != nil {
			return p, "", err
		}
	}
	if p.Start, p.End, err = parseTimeRange(q.Range, q.Start, q.End, h.now()); err != nil {
		return p, "", err
	}
	return p, ft, nil
}

// buildDeltaResponse serializes a report into parallel arrays.
func buildDeltaResponse(report *model.DeltaReport) models.DeltaResponse {
	n := len(report.Points)
	resp := models.DeltaResponse{
		Timestamps:          make([]string, n),
		IndoorInterpolated:  make([]bool, n),
		OutdoorInterpolated: make([]bool, n),
		GapMetadata: models.GapMetadata{
			IndoorGaps:        report.IndoorGapCount,
			OutdoorGaps:       report.OutdoorGapCount,
			GapPercentage:     report.GapPercentage,
			IndoorGapPeriods:  gapPeriods(report.IndoorGaps),
			OutdoorGapPeriods: gapPeriods(report.OutdoorGaps),
		},
		IntervalMinutes: report.Interval.Minutes(),
		LagMinutes:      report.Lag.Minutes(),
		Window: models.TimeWindow{
			Start: formatInstant(report.WindowStart),
			End:   formatInstant(report.WindowEnd),
		},
	}
	resp.IndoorValues, resp.OutdoorValues, resp.DeltaValues = report.Values()
	for i, p := range report.Points {
		resp.Timestamps[i] = formatInstant(p.Instant)
		resp.IndoorInterpolated[i] = p.IndoorInterpolated()
		resp.OutdoorInterpolated[i] = p.OutdoorInterpolated()
	}
	resp.Summary = models.DeltaSummary{
		Indoor:  analysis.Summarize(resp.IndoorValues),
		Outdoor: analysis.Summarize(resp.OutdoorValues),
		Delta:   analysis.Summarize(resp.DeltaValues),
	}
	return resp
}

func gapPeriods(gaps []model.GapInterval) []models.GapPeriod {
	out := make([]models.GapPeriod, len(gaps))
	for i, g := range gaps {
		out[i] = models.GapPeriod{
			Start:           formatInstant(g.Start),
			End:             formatInstant(g.End),
			DurationMinutes: g.DurationMinutes,
		}
	}
	return out
}
