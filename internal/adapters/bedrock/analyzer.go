// Package bedrock provides a text-only ContentAnalyzer backed by Amazon
// Bedrock. Request and response payloads vary per model family.
package bedrock

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/google/uuid"
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

// Analyzer is a ContentAnalyzer implementation using Amazon Bedrock
type Analyzer struct {
	client        *bedrockruntime.Client
	modelID       string
	maxTokens     int
	temperature   float32
	topP          float32
	maxBodySize   int
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewAnalyzer creates a new Bedrock analyzer
func NewAnalyzer(
	client *bedrockruntime.Client,
	modelID string,
	maxTokens int,
	temperature float32,
	topP float32,
	maxBodySize int,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
) *Analyzer {
	return &Analyzer{
		client:        client,
		modelID:       modelID,
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
		return nil, &core.ValidationError{Reason: "bedrock provider does not support image analysis"}
	}

	content := a.textProcessor.ProcessText(req.Content, a.maxBodySize)
	prompt := fmt.Sprintf(promptFormat,
		utils.LanguageDisplayName(req.Language), string(req.Context), content)

	payload, err := a.buildPayload(prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request payload: %w", err)
	}

	resp, err := a.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     &a.modelID,
		Body:        payload,
		Accept:      aws.String("application/json"),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return nil, &core.NetworkError{Op: "invoke_model", Err: err}
	}

	responseText, err := a.extractText(resp.Body)
	if err != nil {
		return nil, err
	}

	result, err := ParseResponse(responseText, req.Language)
	if err != nil {
		return nil, err
	}

	result.AnalyzedAt = time.Now()
	result.ModelUsed = a.modelID
	result.ProcessingID = uuid.NewString()
	return result, nil
}

// buildPayload shapes the request body for the configured model family.
func (a *Analyzer) buildPayload(prompt string) ([]byte, error) {
	switch {
	case a.isAnthropicModel():
		return json.Marshal(map[string]interface{}{
			"prompt":               prompt,
			"max_tokens_to_sample": a.maxTokens,
			"temperature":          a.temperature,
			"top_p":                a.topP,
		})
	case a.isAmazonTitanModel():
		return json.Marshal(map[string]interface{}{
			"inputText": prompt,
			"textGenerationConfig": map[string]interface{}{
				"maxTokenCount": a.maxTokens,
				"temperature":   a.temperature,
				"topP":          a.topP,
			},
		})
	default:
		return json.Marshal(map[string]interface{}{
			"prompt":      prompt,
			"max_tokens":  a.maxTokens,
			"temperature": a.temperature,
			"top_p":       a.topP,
		})
	}
}

// extractText pulls the completion text out of the model-specific
// response body.
func (a *Analyzer) extractText(body []byte) (string, error) {
	switch {
	case a.isAnthropicModel():
		var claudeResp struct {
			Completion string `json:"completion"`
		}
		if err := json.Unmarshal(body, &claudeResp); err != nil {
			return "", fmt.Errorf("failed to unmarshal Claude response: %w", err)
		}
		return claudeResp.Completion, nil

	case a.isAmazonTitanModel():
		var titanResp struct {
			Results []struct {
				OutputText string `json:"outputText"`
			} `json:"results"`
		}
		if err := json.Unmarshal(body, &titanResp); err != nil {
			return "", fmt.Errorf("failed to unmarshal Titan response: %w", err)
		}
		if len(titanResp.Results) == 0 {
			return "", &core.ValidationError{Reason: "empty response from Titan model"}
		}
		return titanResp.Results[0].OutputText, nil

	default:
		var genericResp struct {
			Output   string `json:"output"`
			Text     string `json:"text"`
			Response string `json:"response"`
		}
		if err := json.Unmarshal(body, &genericResp); err != nil {
			return "", fmt.Errorf("failed to unmarshal generic response: %w", err)
		}
		switch {
		case genericResp.Output != "":
			return genericResp.Output, nil
		case genericResp.Text != "":
			return genericResp.Text, nil
		case genericResp.Response != "":
			return genericResp.Response, nil
		default:
			return string(body), nil
		}
	}
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
		start := strings.IndexByte(text, '{')
		end := strings.LastIndexByte(text, '}')
		if start < 0 || end <= start {
			return nil, &core.ValidationError{Reason: "response is not valid JSON", Err: err}
		}
		if err := json.Unmarshal([]byte(text[start:end+1]), &parsed); err != nil {
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

// isAnthropicModel checks if the model is an Anthropic Claude model
func (a *Analyzer) isAnthropicModel() bool {
	return strings.HasPrefix(a.modelID, "anthropic.claude")
}

// isAmazonTitanModel checks if the model is an Amazon Titan model
func (a *Analyzer) isAmazonTitanModel() bool {
	return strings.HasPrefix(a.modelID, "amazon.titan")
}
