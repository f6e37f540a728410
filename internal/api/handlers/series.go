package handlers

import (
	"context"
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

// Engine is the part of *delta.Engine the handlers depend on.
type Engine interface {
	GetSeries(ctx context.Context, channelID string, field int, start, end time.Time) ([]model.Observation, error)
	ComputeDelta(ctx context.Context, p delta.DeltaParams) (*model.DeltaReport, error)
}

// SeriesHandler serves single-sensor readings
type SeriesHandler struct {
	engine Engine
	cfg    *config.Config
	now    func() time.Time
}

// NewSeriesHandler creates a new series handler
func NewSeriesHandler(engine Engine, cfg *config.Config) *SeriesHandler {
	return &SeriesHandler{engine: engine, cfg: cfg, now: time.Now}
}

// GetSeries handles GET /api/v1/series/:location/:side/:sensor
func (h *SeriesHandler) GetSeries(c *gin.Context) {
	var q models.SeriesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondError(c, invalid("%v", err))
		return
	}
	location, side, sensor := c.Param("location"), c.Param("side"), c.Param("sensor")

	channel, err := resolveChannel(h.cfg, location, side, sensor)
	if err != nil {
		respondError(c, err)
		return
	}
	ft, idx, err := resolveField(h.cfg, q.Field)
	if err != nil {
		respondError(c, err)
		return
	}
	start, end, err := parseTimeRange(q.Range, q.Start, q.End, h.now())
	if err != nil {
		respondError(c, err)
		return
	}
	format, err := parseFormat(q.Format)
	if err != nil {
		respondError(c, err)
		return
	}

	obs, err := h.engine.GetSeries(c.Request.Context(), channel, idx, start, end)
	if err != nil {
		respondError(c, err)
		return
	}

	if format == "csv" {
		writeCSV(c, fmt.Sprintf("%s-%s-%s-%s.csv", location, side, sensor, ft), func(c *gin.Context) error {
			return delta.WriteSeriesCSV(c.Writer, obs)
		})
		return
	}

	timestamps, values := splitObservations(obs)
	c.JSON(http.StatusOK, models.SeriesResponse{
		Location:   location,
		Side:       side,
		Sensor:     sensor,
		Channel:    channel,
		Field:      string(ft),
		Unit:       model.FieldUnits[ft],
		Count:      len(obs),
		Timestamps: timestamps,
		Values:     values,
		Summary:    analysis.Summarize(values),
	})
}

func splitObservations(obs []model.Observation) ([]string, []float64) {
	timestamps := make([]string, len(obs))
	values := make([]float64, len(obs))
	for i, o := range obs {
		timestamps[i] = formatInstant(o.Instant)
		values[i] = o.Value
	}
	return timestamps, values
}

func formatInstant(t time.Time) string {
	return t.UTC().Format(model.TimestampLayout)
}

// writeCSV streams a CSV attachment. Headers are committed before the body,
// so a write error can only be logged.
func writeCSV(c *gin.Context, filename string, write func(c *gin.Context) error) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Status(http.StatusOK)
	if err := write(c); err != nil {
		_ = c.Error(err)
	}
}
