// Package openai provides a text-only ContentAnalyzer backed by the
// OpenAI chat completion API. It covers text and URL requests; image
// analysis stays on the primary provider.
package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/scamshield/scamshield/internal/core"
	"github.com/scamshield/scamshield/internal/utils"
)

const promptFormat = `You are a scam detection system for Indian users. Analyze the following message and determine if it's a scam.
Respond with a JSON object containing:
- is_scam: boolean (true if the message is a scam attempt)
- risk_score: integer between 0 and 100 (higher means more dangerous)
- scam_type: string (e.g. "UPI Fraud", "Digital Arrest", "Phishing"; empty string if safe)
- advice: string (short actionable advice in %s)
- triggers: array of strings (the specific phrases or patterns that drove the verdict)

Message context: %s
Message:
%s

Respond only with the JSON object and nothing else.`

// Analyzer is a ContentAnalyzer implementation using OpenAI
type Analyzer struct {
	client        *openai.Client
	modelName     string
	maxTokens     int
	temperature   float32
	topP          float32
	maxBodySize   int
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewAnalyzer creates a new OpenAI analyzer
func NewAnalyzer(
	client *openai.Client,
	modelName string,
	maxTokens int,
	temperature float32,
	topP float32,
	maxBodySize int,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
) *Analyzer {
	return &Analyzer{
		client:        client,
		modelName:     modelName,
		maxTokens:     maxTokens,
		temperature:   temperature,
		topP:          topP,
		maxBodySize:   maxBodySize,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// AnalyzeContent analyzes a text or URL request for scam potential
func (a *Analyzer) AnalyzeContent(ctx context.Context, req *core.AnalysisRequest) (*core.AnalysisResult, error) {
	if req.Type == core.AnalysisTypeImage {
		return nil, &core.ValidationError{Reason: "openai provider does not support image analysis"}
	}

	content := a.textProcessor.ProcessText(req.Content, a.maxBodySize)
	prompt := fmt.Sprintf(promptFormat,
		utils.LanguageDisplayName(req.Language), string(req.Context), content)

	chatReq := openai.ChatCompletionRequest{
		Model: a.modelName,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are a scam detection system. Respond only with JSON.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxTokens:   a.maxTokens,
		Temperature: a.temperature,
		TopP:        a.topP,
	}

	responseFormat := openai.ChatCompletionResponseFormat{
		Type: "json_object",
	}
	chatReq.ResponseFormat = &responseFormat

	resp, err := a.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, &core.NetworkError{Op: "chat_completion", Err: err}
	}

	if len(resp.Choices) == 0 {
		return nil, &core.ValidationError{Reason: "empty response from OpenAI"}
	}

	result, err := ParseResponse(resp.Choices[0].Message.Content, req.Language)
	if err != nil {
		return nil, err
	}

	result.AnalyzedAt = time.Now()
	result.ModelUsed = a.modelName
	result.ProcessingID = resp.ID
	if result.ProcessingID == "" {
		result.ProcessingID = uuid.NewString()
	}
	return result, nil
}

// analysisResponse mirrors the requested reply shape. Pointer fields
// distinguish absent required fields from zero values.
type analysisResponse struct {
	IsScam    *bool    `json:"is_scam"`
	RiskScore *int     `json:"risk_score"`
	ScamType  *string  `json:"scam_type"`
	Advice    *string  `json:"advice"`
	Triggers  []string `json:"triggers"`
}

// ParseResponse parses and validates the model's JSON reply, tolerating
// prose wrapped around the JSON object. A reply missing any required field
// is rejected rather than read as a safe verdict.
func ParseResponse(text string, language core.Language) (*core.AnalysisResult, error) {
	var parsed analysisResponse
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		extracted, ok := extractJSON(text)
		if !ok {
			return nil, &core.ValidationError{Reason: "response is not valid JSON", Err: err}
		}
		if err := json.Unmarshal([]byte(extracted), &parsed); err != nil {
			return nil, &core.ValidationError{Reason: "response is not valid JSON", Err: err}
		}
	}

	switch {
	case parsed.IsScam == nil:
		return nil, &core.ValidationError{Reason: "missing required field is_scam"}
	case parsed.RiskScore == nil:
		return nil, &core.ValidationError{Reason: "missing required field risk_score"}
	case parsed.ScamType == nil:
		return nil, &core.ValidationError{Reason: "missing required field scam_type"}
	case parsed.Advice == nil:
		return nil, &core.ValidationError{Reason: "missing required field advice"}
	case parsed.Triggers == nil:
		return nil, &core.ValidationError{Reason: "missing required field triggers"}
	}

	if *parsed.IsScam && *parsed.ScamType == "" {
		return nil, &core.ValidationError{Reason: "scam flagged without a scam_type"}
	}

	result := &core.AnalysisResult{
		IsScam:    *parsed.IsScam,
		RiskScore: *parsed.RiskScore,
		ScamType:  *parsed.ScamType,
		Advice:    *parsed.Advice,
		Triggers:  parsed.Triggers,
		Language:  language,
	}
	if result.RiskScore < 0 {
		result.RiskScore = 0
	}
	if result.RiskScore > 100 {
		result.RiskScore = 100
	}
	return result, nil
}

// extractJSON slices out the outermost JSON object in a text reply.
func extractJSON(text string) (string, bool) {
	start := -1
	for i := 0; i < len(text); i++ {
		if text[i] == '{' {
			start = i
			break
		}
	}
	end := -1
	for i := len(text) - 1; i >= 0; i-- {
		if text[i] == '}' {
			end = i + 1
			break
		}
	}
	if start < 0 || end <= start {
		return "", false
	}
	return text[start:end], true
}
