// Package httpapi exposes the engine operations over HTTP.
package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/cioddi/stlmaps-wasm-sub000/internal/engine"
)

// Server wraps the engine with a gin router.
type Server struct {
	eng    *engine.Engine
	log    *zap.Logger
	router *gin.Engine
}

func New(eng *engine.Engine, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	gin.SetMode(gin.ReleaseMode)
	s := &Server{eng: eng, log: log, router: gin.New()}
	s.router.Use(gin.Recovery())
	s.routes()
	return s
}

// Handler returns the root handler for an http.Server.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() {
	s.router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := s.router.Group("/v1")
	v1.POST("/elevation", s.handleElevation)
	v1.POST("/terrain", s.handleTerrain)
	v1.POST("/extrude", s.handleExtrude)
	v1.POST("/polygons", s.handlePolygons)
	v1.POST("/export/3mf", s.handleExport3MF)

	v1.POST("/groups/:id", s.handleRegisterGroup)
	v1.DELETE("/groups/:id", s.handleFreeGroup)
	v1.DELETE("/caches", s.handleClearCaches)
	v1.GET("/caches/stats", s.handleCacheStats)
	v1.POST("/cancel/:id", s.handleCancel)
}

// fail maps engine error kinds to HTTP statuses.
func (s *Server) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case isKind(err, engine.ErrInvalidInput):
		status = http.StatusBadRequest
	case isKind(err, engine.ErrTransport):
		status = http.StatusBadGateway
	case isKind(err, engine.ErrCancelled):
		// Client closed request, nginx convention.
		status = 499
	}
	s.log.Warn("request failed", zap.Int("status", status), zap.Error(err))
	c.JSON(status, gin.H{"error": err.Error()})
}
