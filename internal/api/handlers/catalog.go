package handlers

import (
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"sort"

	"airdelta/internal/api/models"
	"airdelta/internal/config"
	"airdelta/internal/data"
	"airdelta/internal/model"

	"github.com/gin-gonic/gin"
)

// CatalogHandler serves the configured locations and field types
type CatalogHandler struct {
	cfg        *config.Config
	reportPath string
	log        *slog.Logger
}

// NewCatalogHandler creates a new catalog handler. reportPath points at the
// file written by probe-channels; it may not exist.
func NewCatalogHandler(cfg *config.Config, reportPath string, log *slog.Logger) *CatalogHandler {
	return &CatalogHandler{cfg: cfg, reportPath: reportPath, log: log}
}

// ListLocations handles GET /api/v1/locations
func (h *CatalogHandler) ListLocations(c *gin.Context) {
	reports, probedAt := h.channelReports()

	names := h.cfg.LocationNames()
	locations := make([]models.LocationInfo, 0, len(names))
	for _, id := range names {
		loc := h.cfg.Locations[id]
		name := loc.Name
		if name == "" {
			name = id
		}
		locations = append(locations, models.LocationInfo{
			ID:       id,
			Name:     name,
			Indoor:   sortedKeys(loc.Indoor),
			Outdoor:  sortedKeys(loc.Outdoor),
			Default:  id == h.cfg.Defaults.Location,
			Channels: reports[id],
		})
	}

	resp := gin.H{
		"locations": locations,
		"count":     len(locations),
	}
	if probedAt != "" {
		resp["probed_at"] = probedAt
	}
	c.JSON(http.StatusOK, resp)
}

// channelReports groups the last probe results by location.
func (h *CatalogHandler) channelReports() (map[string][]models.ChannelStatus, string) {
	if h.reportPath == "" {
		return nil, ""
	}
	list, err := data.LoadChannelReports(h.reportPath)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			h.log.Warn("channel report unreadable", "path", h.reportPath, "err", err)
		}
		return nil, ""
	}
	out := make(map[string][]models.ChannelStatus)
	for _, r := range list.Channels {
		out[r.Location] = append(out[r.Location], models.ChannelStatus{
			Side:        r.Side,
			Sensor:      r.Sensor,
			ChannelID:   r.ChannelID,
			Name:        r.Name,
			LastEntryAt: r.LastEntryAt,
			Error:       r.Error,
		})
	}
	return out, list.UpdatedAt
}

// ListFields handles GET /api/v1/fields
func (h *CatalogHandler) ListFields(c *gin.Context) {
	names := model.FieldTypeNames()
	fields := make([]models.FieldInfo, 0, len(names))
	for _, name := range names {
		ft, idx, err := h.cfg.FieldIndex(name)
		if err != nil {
			continue
		}
		fields = append(fields, models.FieldInfo{
			Name:  string(ft),
			Index: idx,
			Unit:  model.FieldUnits[ft],
		})
	}
	c.JSON(http.StatusOK, gin.H{"fields": fields})
}

func sortedKeys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
