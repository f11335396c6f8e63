// Package gemini implements the model-facing adapters: the
// schema-validated completion client, the grounded intelligence client,
// scenario generation, transcription, speech synthesis and the live
// streaming connection.
package gemini

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/scamshield/scamshield/internal/core"
)

// Options configures the Gemini adapters.
type Options struct {
	APIKey      string
	ModelName   string
	TTSModel    string
	LiveModel   string
	Temperature float32
	TopP        float32
	MaxTokens   int32
	MaxBodySize int
}

// Client wraps the shared genai client. One instance is constructed at
// startup and injected into every adapter; a missing API key is a fatal
// configuration error detected here.
type Client struct {
	genai  *genai.Client
	opts   Options
	logger *zap.Logger
}

// NewClient creates the shared Gemini client.
func NewClient(ctx context.Context, opts Options, logger *zap.Logger) (*Client, error) {
	if opts.APIKey == "" {
		logger.Error("CRITICAL: Gemini API key is missing; all model calls will fail",
			zap.String("setting", "gemini.api_key"))
		return nil, core.ErrMissingAPIKey
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: opts.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &Client{
		genai:  client,
		opts:   opts,
		logger: logger,
	}, nil
}

// generate issues one completion request and classifies transport failures.
func (c *Client) generate(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	resp, err := c.genai.Models.GenerateContent(ctx, model, contents, config)
	if err != nil {
		return nil, &core.NetworkError{Op: "generate_content", Err: err}
	}
	return resp, nil
}
