package di

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/scamshield/scamshield/internal/adapters/gemini"
	"github.com/scamshield/scamshield/internal/config"
	"github.com/scamshield/scamshield/internal/core"
	"github.com/scamshield/scamshield/internal/factory"
	"github.com/scamshield/scamshield/internal/logging"
	"github.com/scamshield/scamshield/internal/utils"
)

// CLIFlags holds command-line flags for the one-shot analyzer
type CLIFlags struct {
	Provider     string
	GeminiAPIKey string
	GeminiModel  string
	OpenAIAPIKey string
	OpenAIModel  string
	BedrockModel string
	AWSRegion    string
	MaxTokens    int
	Temperature  float64
	ContentType  string
	Context      string
	Language     string
	Sender       string
	InputFile    string
	Verbose      bool
	JSONLog      bool
	ConfigFile   string
}

// ParseFlags parses command-line flags
func ParseFlags() *CLIFlags {
	flags := &CLIFlags{}

	flag.StringVar(&flags.Provider, "provider", "gemini", "Analysis provider (gemini, openai, bedrock)")
	flag.StringVar(&flags.GeminiAPIKey, "gemini-api-key", "", "Gemini API key (or GEMINI_API_KEY env var)")
	flag.StringVar(&flags.GeminiModel, "gemini-model", "gemini-3-flash-preview", "Gemini model name")
	flag.StringVar(&flags.OpenAIAPIKey, "openai-api-key", "", "OpenAI API key (or OPENAI_API_KEY env var)")
	flag.StringVar(&flags.OpenAIModel, "openai-model", "gpt-4", "OpenAI model name")
	flag.StringVar(&flags.BedrockModel, "bedrock-model", "anthropic.claude-v2", "Bedrock model ID")
	flag.StringVar(&flags.AWSRegion, "aws-region", "ap-south-1", "AWS region for Bedrock")
	flag.IntVar(&flags.MaxTokens, "max-tokens", 1000, "Maximum tokens for the model response")
	flag.Float64Var(&flags.Temperature, "temperature", 0.1, "Model temperature")
	flag.StringVar(&flags.ContentType, "type", "text", "Input type (text, url, image)")
	flag.StringVar(&flags.Context, "context", "other", "Where the content was received (sms, email, whatsapp, dating_app, social_media, marketplace, phone_call, other)")
	flag.StringVar(&flags.Language, "language", "en", "Language code for the advice (en, hi, or)")
	flag.StringVar(&flags.Sender, "sender", "", "Sender identifier, checked against the trustlist")
	flag.StringVar(&flags.InputFile, "file", "", "Read content from file instead of stdin")
	flag.BoolVar(&flags.Verbose, "verbose", false, "Enable verbose logging")
	flag.BoolVar(&flags.JSONLog, "json-log", false, "Output logs in JSON format")
	flag.StringVar(&flags.ConfigFile, "config", "", "Path to config file (optional)")

	flag.Parse()

	if flags.GeminiAPIKey == "" {
		flags.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	}
	if flags.OpenAIAPIKey == "" {
		flags.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	}

	return flags
}

// BuildCLIContainer creates a dependency injection container for the CLI tool
func BuildCLIContainer(flags *CLIFlags) (*dig.Container, error) {
	container := dig.New()

	if err := container.Provide(func() *CLIFlags {
		return flags
	}); err != nil {
		return nil, err
	}

	// Register console logger
	if err := container.Provide(func(f *CLIFlags) (*zap.Logger, error) {
		return logging.InitConsoleLogger(f.Verbose, f.JSONLog)
	}); err != nil {
		return nil, err
	}

	// Register configuration built from flags
	if err := container.Provide(createConfigFromFlags); err != nil {
		return nil, err
	}

	// Register text processor
	if err := container.Provide(func(logger *zap.Logger) *utils.TextProcessor {
		return factory.NewTextProcessorFactory(logger).CreateTextProcessor()
	}); err != nil {
		return nil, err
	}

	// Register the Gemini client; other providers do not need one
	if err := container.Provide(func(f *CLIFlags, cfg *config.Config, logger *zap.Logger) (*gemini.Client, error) {
		if f.Provider != "gemini" {
			return nil, nil
		}
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

	// Register the analysis service without cache or trustlist
	if err := container.Provide(func(analyzer core.ContentAnalyzer, logger *zap.Logger) *core.AnalysisService {
		return core.NewAnalysisService(analyzer, nil, nil, nil, nil, logger, false, time.Hour)
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// createConfigFromFlags builds a configuration from command-line flags
func createConfigFromFlags(flags *CLIFlags) (*config.Config, error) {
	if flags.ConfigFile != "" {
		v := viper.New()
		v.SetConfigFile(flags.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		return config.NewFromViper(v), nil
	}

	v := config.NewEmptyViper()
	v.Set("llm.provider", flags.Provider)

	switch flags.Provider {
	case "gemini":
		v.Set("gemini.api_key", flags.GeminiAPIKey)
		v.Set("gemini.model_name", flags.GeminiModel)
		v.Set("gemini.max_tokens", flags.MaxTokens)
		v.Set("gemini.temperature", flags.Temperature)
	case "openai":
		v.Set("openai.api_key", flags.OpenAIAPIKey)
		v.Set("openai.model_name", flags.OpenAIModel)
		v.Set("openai.max_tokens", flags.MaxTokens)
		v.Set("openai.temperature", flags.Temperature)
	case "bedrock":
		v.Set("bedrock.model_id", flags.BedrockModel)
		v.Set("bedrock.region", flags.AWSRegion)
		v.Set("bedrock.max_tokens", flags.MaxTokens)
		v.Set("bedrock.temperature", flags.Temperature)
	default:
		return nil, fmt.Errorf("unsupported analysis provider: %s", flags.Provider)
	}

	return config.NewFromViper(v), nil
}
