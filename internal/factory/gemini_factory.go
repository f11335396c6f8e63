package factory

import (
	"context"

	"go.uber.org/zap"

	"github.com/scamshield/scamshield/internal/adapters/gemini"
	"github.com/scamshield/scamshield/internal/config"
)

// GeminiClientFactory creates the shared Gemini client
type GeminiClientFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewGeminiClientFactory creates a new Gemini client factory
func NewGeminiClientFactory(cfg *config.Config, logger *zap.Logger) *GeminiClientFactory {
	return &GeminiClientFactory{cfg: cfg, logger: logger}
}

// CreateClient creates the shared Gemini client from configuration
func (f *GeminiClientFactory) CreateClient(ctx context.Context) (*gemini.Client, error) {
	geminiCfg := f.cfg.GetGemini()

	return gemini.NewClient(ctx, gemini.Options{
		APIKey:      geminiCfg.APIKey,
		ModelName:   geminiCfg.ModelName,
		TTSModel:    geminiCfg.TTSModel,
		LiveModel:   geminiCfg.LiveModel,
		Temperature: geminiCfg.Temperature,
		TopP:        geminiCfg.TopP,
		MaxTokens:   int32(geminiCfg.MaxTokens),
		MaxBodySize: geminiCfg.MaxBodySize,
	}, f.logger)
}
