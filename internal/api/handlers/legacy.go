package handlers

import (
	"errors"
	"net/http"
	"time"

	"airdelta/internal/api/models"
	"airdelta/internal/config"
	"airdelta/internal/delta"
	"airdelta/internal/model"

	"github.com/gin-gonic/gin"
)

// LegacyDeltaInterval is the hourly grid of the original delta-co2 route.
const LegacyDeltaInterval = time.Hour

var errNoDefaultLocation = errors.New("no default location configured")

// LegacyHandler keeps the routes and payloads existing dashboards were built against.
type LegacyHandler struct {
	engine Engine
	cfg    *config.Config
}

// NewLegacyHandler creates a new legacy handler
func NewLegacyHandler(engine Engine, cfg *config.Config) *LegacyHandler {
	return &LegacyHandler{engine: engine, cfg: cfg}
}

// GetData handles GET /api/data/:chart_type
func (h *LegacyHandler) GetData(c *gin.Context) {
	_, idx, err := h.cfg.FieldIndex(c.Param("chart_type"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid chart type"})
		return
	}
	channel := h.cfg.Defaults.LegacyChannel
	if channel == "" {
		if h.cfg.Defaults.Location == "" {
			h.noDefault(c)
			return
		}
		if channel, err = resolveChannel(h.cfg, h.cfg.Defaults.Location, config.SideIndoor, ""); err != nil {
			respondError(c, err)
			return
		}
	}

	obs, err := h.engine.GetSeries(c.Request.Context(), channel, idx, time.Time{}, time.Time{})
	if err != nil {
		respondError(c, err)
		return
	}
	timestamps, values := splitObservations(obs)
	c.JSON(http.StatusOK, models.LegacyDataResponse{
		Timestamps: timestamps,
		Values:     values,
	})
}

// GetDeltaCO2 handles GET /api/delta-co2: default location, CO2, hourly grid,
// overlap window and no lag.
func (h *LegacyHandler) GetDeltaCO2(c *gin.Context) {
	location := h.cfg.Defaults.Location
	if location == "" {
		h.noDefault(c)
		return
	}
	indoor, err := resolveChannel(h.cfg, location, config.SideIndoor, "")
	if err != nil {
		respondError(c, err)
		return
	}
	outdoor, err := resolveChannel(h.cfg, location, config.SideOutdoor, "")
	if err != nil {
		respondError(c, err)
		return
	}
	_, idx, err := h.cfg.FieldIndex(string(model.FieldCO2))
	if err != nil {
		respondError(c, invalid("%v", err))
		return
	}

	p := delta.NewDeltaParams(indoor, outdoor, idx)
	p.Interval = LegacyDeltaInterval
	p.Lag = 0
	p.Window = delta.WindowOverlap

	report, err := h.engine.ComputeDelta(c.Request.Context(), p)
	if err != nil {
		respondError(c, err)
		return
	}
	timestamps := make([]string, len(report.Points))
	for i, pt := range report.Points {
		timestamps[i] = formatInstant(pt.Instant)
	}
	indoorValues, outdoorValues, deltaValues := report.Values()
	c.JSON(http.StatusOK, models.LegacyDeltaCO2Response{
		Timestamps: timestamps,
		IndoorCO2:  indoorValues,
		OutdoorCO2: outdoorValues,
		DeltaCO2:   deltaValues,
	})
}

func (h *LegacyHandler) noDefault(c *gin.Context) {
	_ = c.Error(errNoDefaultLocation)
	c.JSON(http.StatusNotFound, models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    "NO_DEFAULT_LOCATION",
			Message: "defaults.location must be set to use this route",
		},
	})
}
