// Package api implements the HTTP API for the watch service.
package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jonesrussell/poliswatch/internal/aggregate"
	"github.com/jonesrussell/poliswatch/internal/config"
	"github.com/jonesrussell/poliswatch/internal/constants"
	"github.com/jonesrussell/poliswatch/internal/coordinate"
	"github.com/jonesrussell/poliswatch/internal/domain"
	"github.com/jonesrussell/poliswatch/internal/logger"
	"github.com/jonesrussell/poliswatch/internal/view"
)

// Coordinator defines the refresh operations the API exposes.
type Coordinator interface {
	// Snapshot returns the most recent successful snapshot, or nil.
	Snapshot() *domain.Snapshot

	// Status reports the coordinator state.
	Status() coordinate.Status

	// Options returns the active watch options and refresh interval.
	Options() (aggregate.Options, time.Duration)

	// Refresh runs a cycle now, joining one already in flight.
	Refresh(ctx context.Context) (*domain.Snapshot, error)

	// Subscribe registers a listener for published snapshots.
	Subscribe(fn coordinate.Listener)
}

// Suggester defines the area name lookup the API exposes.
type Suggester interface {
	// Suggestions returns known area names.
	Suggestions(ctx context.Context) []string
}

// Constants
const (
	readHeaderTimeout = 10 * time.Second // Timeout for reading headers
)

// SetupRouter creates and configures the Gin router with all routes
func SetupRouter(
	log logger.Interface,
	coord Coordinator,
	suggester Suggester,
	gatherer prometheus.Gatherer,
	cfg *config.Config,
) *gin.Engine {
	// Disable Gin's default logging
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(loggingMiddleware(log))
	router.Use(corsMiddleware())

	broker := NewBroker(log)
	coord.Subscribe(func(snap *domain.Snapshot) {
		broker.Publish(snapshotEvent(snap))
	})
	stream := NewStreamHandler(broker, coord, log)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	// API v1 routes
	v1 := router.Group("/api/v1")
	v1.GET("/status", handleStatus(coord))
	v1.GET("/areas", handleAreas(coord, cfg.Watch.Combined))
	v1.GET("/areas/:area", handleArea(coord))
	v1.GET("/events", handleEvents(coord))
	v1.POST("/refresh", handleRefresh(coord))
	v1.GET("/suggestions", handleSuggestions(suggester))
	v1.GET("/stream", stream.Stream)

	return router
}

// loggingMiddleware creates a middleware that logs HTTP requests
func loggingMiddleware(log logger.Interface) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		statusCode := c.Writer.Status()

		log.Info("HTTP Request",
			"method", c.Request.Method,
			"path", path,
			"query", query,
			"status", statusCode,
			"latency", latency,
		)
	}
}

// corsMiddleware adds CORS headers to allow frontend access
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers",
			"Content-Type, Content-Length, Accept-Encoding, Cache-Control, "+
				"Last-Event-ID, accept, origin, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// handleStatus creates a handler reporting the coordinator state
func handleStatus(coord Coordinator) gin.HandlerFunc {
	return func(c *gin.Context) {
		opts, _ := coord.Options()

		resp := StatusResponse{
			Status: coord.Status(),
			Areas:  opts.Areas,
		}
		if resp.Areas == nil {
			resp.Areas = []string{}
		}
		if snap := coord.Snapshot(); snap != nil {
			resp.Cycle = snap.Cycle
			generated := snap.GeneratedAt
			resp.GeneratedAt = &generated
		}

		c.JSON(http.StatusOK, resp)
	}
}

// handleAreas creates a handler listing one view per watched area
func handleAreas(coord Coordinator, combined bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		snap := coord.Snapshot()
		if snap == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no snapshot available yet"})
			return
		}

		settings := watchSettings(coord)
		views := make([]view.AreaView, 0, len(snap.Areas)+1)
		for _, area := range snap.Areas {
			if av, ok := view.PerArea(snap, area, settings); ok {
				views = append(views, av)
			}
		}
		if combined {
			views = append(views, view.Combined(snap, settings))
		}

		c.JSON(http.StatusOK, AreasResponse{
			Cycle:       snap.Cycle,
			GeneratedAt: snap.GeneratedAt,
			Areas:       views,
		})
	}
}

// handleArea creates a handler for a single area view
func handleArea(coord Coordinator) gin.HandlerFunc {
	return func(c *gin.Context) {
		snap := coord.Snapshot()
		if snap == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no snapshot available yet"})
			return
		}

		area := c.Param("area")
		settings := watchSettings(coord)

		// The combined label resolves even when the listing hides it.
		if strings.EqualFold(area, view.CombinedArea) {
			c.JSON(http.StatusOK, view.Combined(snap, settings))
			return
		}

		av, ok := view.PerArea(snap, area, settings)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("unknown area: %q", area)})
			return
		}

		c.JSON(http.StatusOK, av)
	}
}

// handleEvents creates a handler for the combined event list
func handleEvents(coord Coordinator) gin.HandlerFunc {
	return func(c *gin.Context) {
		snap := coord.Snapshot()
		if snap == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no snapshot available yet"})
			return
		}

		c.JSON(http.StatusOK, view.Combined(snap, watchSettings(coord)))
	}
}

// handleRefresh creates a handler that runs a refresh cycle on demand
func handleRefresh(coord Coordinator) gin.HandlerFunc {
	return func(c *gin.Context) {
		snap, err := coord.Refresh(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, RefreshResponse{
			Cycle:       snap.Cycle,
			GeneratedAt: snap.GeneratedAt,
			Summaries:   view.Summaries(snap),
		})
	}
}

// handleSuggestions creates a handler listing known area names
func handleSuggestions(suggester Suggester) gin.HandlerFunc {
	return func(c *gin.Context) {
		names := suggester.Suggestions(c.Request.Context())

		c.JSON(http.StatusOK, SuggestionsResponse{
			Suggestions: names,
			Count:       len(names),
		})
	}
}

// watchSettings mirrors the active options onto view payloads.
func watchSettings(coord Coordinator) view.Settings {
	opts, interval := coord.Options()

	settings := view.Settings{
		Areas:          opts.Areas,
		MatchMode:      string(opts.Mode),
		Hours:          opts.Hours,
		MaxItems:       opts.MaxItems,
		UpdateInterval: interval.String(),
	}
	if settings.Areas == nil {
		settings.Areas = []string{}
	}

	return settings
}

// StartHTTPServer builds the HTTP server with the given configuration
func StartHTTPServer(router *gin.Engine, cfg *config.ServerConfig) *http.Server {
	return &http.Server{
		Addr:              cfg.Address,
		Handler:           router,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
		MaxHeaderBytes:    constants.DefaultMaxHeaderBytes,
	}
}
