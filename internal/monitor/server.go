// Package monitor exposes the live run counters over HTTP so long
// batch runs can be watched from outside the process.
package monitor

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pratama/articleforge/internal/config"
	"github.com/pratama/articleforge/internal/domain"
	"github.com/pratama/articleforge/internal/logger"
)

// Server serves run stats while a batch run is in flight.
type Server struct {
	srv *http.Server
	log *logger.Logger
}

// New builds the monitor server, or nil when monitoring is disabled.
func New(cfg *config.MonitorConfig, stats *domain.RunStats, log *logger.Logger) *Server {
	if !cfg.Enabled {
		return nil
	}

	mode := cfg.Mode
	if mode == "" {
		mode = gin.ReleaseMode
	}
	gin.SetMode(mode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(log))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/api/v1/run", func(c *gin.Context) {
		c.JSON(http.StatusOK, stats.Snapshot())
	})

	return &Server{
		srv: &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Port),
			Handler: router,
		},
		log: log,
	}
}

// Start runs the server in the background. ErrServerClosed from a
// clean shutdown is not an error.
func (s *Server) Start() {
	if s == nil {
		return
	}
	s.log.WithField("addr", s.srv.Addr).Info("monitor server listening")
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.log.WithError(err).Error("monitor server failed")
		}
	}()
}

// Stop shuts the server down, bounded by a short timeout.
func (s *Server) Stop() {
	if s == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.srv.Shutdown(ctx); err != nil {
		s.log.WithError(err).Warn("monitor server shutdown failed")
	}
}

// requestLogger logs each request with latency, in the same shape as
// the rest of the structured logs.
func requestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.WithFields(logger.Fields{
			"method":               c.Request.Method,
			"path":                 c.Request.URL.Path,
			logger.FieldStatus:     c.Writer.Status(),
			logger.FieldDurationMs: time.Since(start).Milliseconds(),
		}).Debug("monitor request")
	}
}
