// Package api wires the HTTP surface: middleware, API routes, the legacy
// routes, metrics and the optional static frontend.
package api

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"airdelta/internal/api/handlers"
	"airdelta/internal/api/middleware"
	"airdelta/internal/config"
	"airdelta/internal/data"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter builds the gin engine for cfg. engine is usually a *delta.Engine.
func NewRouter(cfg *config.Config, engine handlers.Engine, log *slog.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(middleware.ErrorHandler(log))
	router.Use(middleware.CORS(cfg.Server.AllowedOrigins))

	catalogHandler := handlers.NewCatalogHandler(cfg, data.GetDefaultChannelReportPath(), log)
	seriesHandler := handlers.NewSeriesHandler(engine, cfg)
	deltaHandler := handlers.NewDeltaHandler(engine, cfg)
	legacyHandler := handlers.NewLegacyHandler(engine, cfg)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/locations", catalogHandler.ListLocations)
		v1.GET("/fields", catalogHandler.ListFields)
		v1.GET("/series/:location/:side/:sensor", seriesHandler.GetSeries)
		v1.GET("/delta/:location", deltaHandler.GetDelta)
	}

	legacy := router.Group("/api")
	{
		legacy.GET("/data/:chart_type", legacyHandler.GetData)
		legacy.GET("/delta-co2", legacyHandler.GetDeltaCO2)
	}

	serveStatic(router, cfg.Server.StaticDir, log)
	return router
}

// serveStatic serves a built SPA from dir when it exists. Unknown non-API
// paths fall back to index.html for client-side routing.
func serveStatic(router *gin.Engine, dir string, log *slog.Logger) {
	notFound := func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"code": "NOT_FOUND", "message": "Not found"}})
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		log.Info("static directory not found, skipping static file serving", "dir", dir)
		router.NoRoute(notFound)
		return
	}

	router.Static("/assets", filepath.Join(dir, "assets"))
	router.StaticFile("/favicon.ico", filepath.Join(dir, "favicon.ico"))
	index := filepath.Join(dir, "index.html")
	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			notFound(c)
			return
		}
		c.File(index)
	})
	log.Info("serving static files", "dir", dir)
}
