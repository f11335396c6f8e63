// Package di wires the application graph.
package di

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/scamshield/scamshield/internal/adapters/gemini"
	"github.com/scamshield/scamshield/internal/config"
	"github.com/scamshield/scamshield/internal/core"
	"github.com/scamshield/scamshield/internal/factory"
	"github.com/scamshield/scamshield/internal/httpserver"
	"github.com/scamshield/scamshield/internal/live"
	"github.com/scamshield/scamshield/internal/logging"
	"github.com/scamshield/scamshield/internal/metrics"
	"github.com/scamshield/scamshield/internal/trustlist"
	"github.com/scamshield/scamshield/internal/utils"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	// Register text processor
	if err := container.Provide(func(logger *zap.Logger) *utils.TextProcessor {
		return factory.NewTextProcessorFactory(logger).CreateTextProcessor()
	}); err != nil {
		return nil, err
	}

	// Register the shared Gemini client
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) (*gemini.Client, error) {
		return factory.NewGeminiClientFactory(cfg, logger).CreateClient(context.Background())
	}); err != nil {
		return nil, err
	}

	// Register the content analyzer
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger, tp *utils.TextProcessor, client *gemini.Client) (core.ContentAnalyzer, error) {
		return factory.NewAnalyzerFactory(cfg, logger, tp, client).CreateAnalyzer()
	}); err != nil {
		return nil, err
	}

	// Register the Gemini-backed adapters
	if err := container.Provide(func(client *gemini.Client, logger *zap.Logger) core.IntelligenceClient {
		return gemini.NewIntelligence(client, logger)
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(client *gemini.Client, logger *zap.Logger) core.ScenarioSource {
		return gemini.NewScenarioGenerator(client, logger)
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(client *gemini.Client, logger *zap.Logger) core.Transcriber {
		return gemini.NewTranscriber(client, logger)
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(client *gemini.Client, tp *utils.TextProcessor, logger *zap.Logger) core.SpeechSynthesizer {
		return gemini.NewSpeech(client, tp, logger)
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(client *gemini.Client, logger *zap.Logger) live.Connector {
		return gemini.NewLiveConnector(client, logger)
	}); err != nil {
		return nil, err
	}

	// Register cache repository
	if err := container.Provide(factory.NewCacheFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.CacheFactory) (core.CacheRepository, error) {
		return f.CreateCacheRepository()
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.CacheFactory) (time.Duration, error) {
		return f.GetCacheTTL()
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.CacheFactory) bool {
		return f.IsCacheEnabled()
	}); err != nil {
		return nil, err
	}

	// Register trusted sender checker
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) core.TrustedSenderChecker {
		senders := cfg.GetStringSlice("trustlist.senders")
		if len(senders) > 0 {
			logger.Info("Loaded trusted senders", zap.Strings("senders", senders))
		}
		return trustlist.NewChecker(senders, logger)
	}); err != nil {
		return nil, err
	}

	// Register the analysis service
	if err := container.Provide(core.NewAnalysisService); err != nil {
		return nil, err
	}

	// Register metrics
	if err := container.Provide(prometheus.NewRegistry); err != nil {
		return nil, err
	}
	if err := container.Provide(func(reg *prometheus.Registry) *metrics.Metrics {
		return metrics.New(reg)
	}); err != nil {
		return nil, err
	}

	// Register the HTTP server
	if err := container.Provide(func(
		cfg *config.Config,
		logger *zap.Logger,
		service *core.AnalysisService,
		transcriber core.Transcriber,
		speech core.SpeechSynthesizer,
		connector live.Connector,
		m *metrics.Metrics,
		registry *prometheus.Registry,
	) (*httpserver.Server, error) {
		frameInterval, err := cfg.GetDuration("live.frame_interval")
		if err != nil {
			return nil, fmt.Errorf("invalid live frame interval: %w", err)
		}
		return httpserver.NewServer(cfg, httpserver.Dependencies{
			Service:       service,
			Transcriber:   transcriber,
			Speech:        speech,
			LiveConnector: connector,
			Metrics:       m,
			Registry:      registry,
			Audio:         cfg.GetAudio(),
			FrameInterval: frameInterval,
			Logger:        logger,
		})
	}); err != nil {
		return nil, err
	}

	return container, nil
}
