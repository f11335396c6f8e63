package factory

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/scamshield/scamshield/internal/adapters/bedrock"
	"github.com/scamshield/scamshield/internal/adapters/gemini"
	"github.com/scamshield/scamshield/internal/adapters/openai"
	"github.com/scamshield/scamshield/internal/config"
	"github.com/scamshield/scamshield/internal/core"
	"github.com/scamshield/scamshield/internal/utils"
)

// AnalyzerFactory creates content analyzers
type AnalyzerFactory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
	geminiClient  *gemini.Client
}

// NewAnalyzerFactory creates a new analyzer factory. The Gemini client is
// shared with the other Gemini-backed adapters and may be nil when a
// different provider is configured.
func NewAnalyzerFactory(cfg *config.Config, logger *zap.Logger, textProcessor *utils.TextProcessor, geminiClient *gemini.Client) *AnalyzerFactory {
	return &AnalyzerFactory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
		geminiClient:  geminiClient,
	}
}

// CreateAnalyzer creates a content analyzer based on the configuration.
// Gemini is the only provider covering image analysis, grounding, speech
// and live streaming; openai and bedrock are text-only alternatives.
func (f *AnalyzerFactory) CreateAnalyzer() (core.ContentAnalyzer, error) {
	llmConfig := f.cfg.GetLLM()

	switch llmConfig.Provider {
	case "gemini":
		if f.geminiClient == nil {
			return nil, fmt.Errorf("gemini provider selected but client is not configured")
		}
		return gemini.NewAnalyzer(f.geminiClient, f.textProcessor, f.logger), nil
	case "openai":
		factory := openai.NewFactory(f.cfg, f.logger, f.textProcessor)
		return factory.CreateAnalyzer()
	case "bedrock":
		factory := bedrock.NewFactory(f.cfg, f.logger, f.textProcessor)
		return factory.CreateAnalyzer()
	default:
		return nil, fmt.Errorf("unsupported analysis provider: %s", llmConfig.Provider)
	}
}
