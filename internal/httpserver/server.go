// Package httpserver exposes the analysis engine over HTTP and bridges
// live sessions over WebSocket.
package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/scamshield/scamshield/internal/config"
	"github.com/scamshield/scamshield/internal/core"
	"github.com/scamshield/scamshield/internal/live"
	"github.com/scamshield/scamshield/internal/metrics"
)

// Dependencies carries everything the server needs to route requests.
type Dependencies struct {
	Service       *core.AnalysisService
	Transcriber   core.Transcriber
	Speech        core.SpeechSynthesizer
	LiveConnector live.Connector
	Metrics       *metrics.Metrics
	Registry      *prometheus.Registry
	Audio         config.AudioConfig
	FrameInterval time.Duration
	Logger        *zap.Logger
}

// Server is the HTTP front of the analysis engine.
type Server struct {
	deps   Dependencies
	engine *gin.Engine
	srv    *http.Server
	dojo   *dojoSessions
	logger *zap.Logger
}

// NewServer builds the router and wires all routes.
func NewServer(cfg *config.Config, deps Dependencies) (*Server, error) {
	readTimeout, err := cfg.GetDuration("server.read_timeout")
	if err != nil {
		return nil, fmt.Errorf("invalid server read timeout: %w", err)
	}
	writeTimeout, err := cfg.GetDuration("server.write_timeout")
	if err != nil {
		return nil, fmt.Errorf("invalid server write timeout: %w", err)
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.MaxMultipartMemory = int64(cfg.GetInt("server.max_upload_bytes"))

	s := &Server{
		deps:   deps,
		engine: engine,
		dojo:   newDojoSessions(),
		logger: deps.Logger,
	}
	s.routes()

	s.srv = &http.Server{
		Addr:         cfg.GetString("server.listen_address"),
		Handler:      engine,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	return s, nil
}

func (s *Server) routes() {
	s.engine.GET("/healthz", s.handleHealth)
	if s.deps.Registry != nil {
		s.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.deps.Registry, promhttp.HandlerOpts{})))
	}

	api := s.engine.Group("/api/v1")
	api.POST("/analyze", s.handleAnalyze)
	api.POST("/transcribe", s.handleTranscribe)
	api.GET("/alerts", s.handleAlerts)
	api.GET("/dojo/scenarios", s.handleScenarios)
	api.POST("/dojo/session", s.handleDojoStart)
	api.POST("/dojo/session/:id/answer", s.handleDojoAnswer)
	api.POST("/speech", s.handleSpeech)
	api.GET("/live", s.handleLive)
}

// Start begins serving. It blocks until the listener fails or Shutdown is
// called.
func (s *Server) Start() error {
	s.logger.Info("HTTP server listening", zap.String("address", s.srv.Addr))
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to serve HTTP: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.srv.Shutdown(ctx)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
