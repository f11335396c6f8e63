package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/scamshield/scamshield/internal/core"
	"github.com/scamshield/scamshield/internal/utils"
)

// systemInstructionFormat encodes the risk taxonomy the product judges by.
// The single %s is the response-language name.
const systemInstructionFormat = `You are a specialized **AI Safety Assistant** for Indian users.
Your goal is to help users **assess the risk** of content (text, images, URLs) related to digital finance and communication.
You do NOT provide legal judgments or guaranteed protection. You provide **risk assessments** and **educational advice**.

**Differentiation Logic (Safe vs. Suspicious vs. High Risk):**

1. **Safe (Score 0-20):**
   - **Source:** Verified Sender IDs (e.g., AD-HDFCBK, JM-SBIINB) or known contacts.
   - **Content:** Transaction alerts (money debited/credited), requested OTPs, account statements.
   - **Tone:** Informational, neutral. No urgency to click links immediately.

2. **Suspicious (Score 21-50):**
   - **Source:** Unknown personal numbers (+91 98...) sending marketing or vague messages.
   - **Content:** "You won a lottery", "Job offer w/o interview", "Click to claim gift", generic promotional spam.
   - **Tone:** Exciting, promotional, slightly urgent but not threatening.
   - **Link:** Generic short links (bit.ly) but not mimicking banking URLs.

3. **High Risk / Scam (Score 51-100):**
   - **Source:** Personal number posing as "Bank Manager", "Police", "Electricity Officer".
   - **Content:**
     - **"Digital Arrest"**: Threats of CBI/Narco/Customs seizing package or arresting user via video call. (Score: 90-100)
     - **UPI Fraud**: "Scan QR code to RECEIVE money", "Enter PIN to verify refund". (Score: 90-100)
     - **KYC/PAN Blocking**: "Update PAN now or account blocked tonight", "SIM deactivation warning". (Score: 80-95)
     - **Electricity Cut**: "Bill unpaid, power cut at 9:30 PM". (Score: 80-95)
     - **APK Files**: Links ending in .apk or asking to install AnyDesk/TeamViewer/QuickSupport. (Score: 95-100)
     - **Sextortion**: Threats to leak video/photos. (Score: 95-100)
   - **Tone:** Threatening, false urgency ("Immediately", "Within 24 hours"), authoritative.
   - **Link:** Look-alike domains (e.g., sbi-kyc-update.com, hdfc-netbanking.org).

**Critical Indian Context Rules:**
- **Banks/Govt never ask for OTP/PIN over call/WhatsApp.**
- **Banks never threaten immediate account blocking via SMS/WhatsApp.**
- **Police/CBI never conduct interrogations via Skype/WhatsApp video calls.**
- **PIN is ONLY for sending money, never for receiving.**

**Output Rules:**
- **Language**: Provide 'advice' and 'triggers' in **%[1]s**.
- **Triggers**: Be specific (e.g., "Personal number used for official claim", "Threat of disconnection", "Request for PIN to receive money").
- **Advice**: Frame as suggestions. Use phrases like "Consider verifying...", "It is risky to...", "We recommend...". Do not use authoritative commands like "Arrest them".
- **Risk Score**: Provide a score from 0 to 100 based on the differentiation logic.

You must return a strictly valid JSON object.`

// analysisSchema declares the output contract: field names, types and the
// required set. The model call requests JSON output constrained to it.
func analysisSchema(langName string) *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"is_scam":    {Type: genai.TypeBoolean},
			"risk_score": {Type: genai.TypeInteger},
			"scam_type":  {Type: genai.TypeString},
			"advice":     {Type: genai.TypeString, Description: fmt.Sprintf("The advice in %s", langName)},
			"triggers": {
				Type:        genai.TypeArray,
				Items:       &genai.Schema{Type: genai.TypeString},
				Description: fmt.Sprintf("List of triggers in %s", langName),
			},
		},
		Required: []string{"is_scam", "risk_score", "scam_type", "advice", "triggers"},
	}
}

// Analyzer is the schema-validated completion client. It fails closed: a
// response that cannot be parsed into the declared shape yields a
// ValidationError, never a partial result.
type Analyzer struct {
	client        *Client
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewAnalyzer creates the completion client.
func NewAnalyzer(client *Client, textProcessor *utils.TextProcessor, logger *zap.Logger) *Analyzer {
	return &Analyzer{
		client:        client,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// AnalyzeContent judges one request against the risk taxonomy.
func (a *Analyzer) AnalyzeContent(ctx context.Context, req *core.AnalysisRequest) (*core.AnalysisResult, error) {
	if req.Type == core.AnalysisTypeText || req.Type == core.AnalysisTypeURL {
		req = a.truncated(req)
	}

	contents, err := BuildContents(req)
	if err != nil {
		return nil, err
	}

	langName := utils.LanguageDisplayName(req.Language)
	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: fmt.Sprintf(systemInstructionFormat, langName)}},
		},
		ResponseMIMEType: "application/json",
		ResponseSchema:   analysisSchema(langName),
		Temperature:      genai.Ptr(a.client.opts.Temperature),
		TopP:             genai.Ptr(a.client.opts.TopP),
		MaxOutputTokens:  a.client.opts.MaxTokens,
	}

	resp, err := a.client.generate(ctx, a.client.opts.ModelName, contents, config)
	if err != nil {
		return nil, err
	}

	result, err := ParseAnalysisResponse(resp.Text(), req.Language)
	if err != nil {
		a.logger.Error("Model response failed validation", zap.Error(err))
		return nil, err
	}

	result.AnalyzedAt = time.Now()
	result.ModelUsed = a.client.opts.ModelName
	result.ProcessingID = uuid.NewString()
	return result, nil
}

// truncated returns a copy of the request with oversized text content cut
// to the configured limit. The original request is never mutated.
func (a *Analyzer) truncated(req *core.AnalysisRequest) *core.AnalysisRequest {
	maxSize := a.client.opts.MaxBodySize
	if maxSize <= 0 || len(req.Content) <= maxSize {
		return req
	}
	clone := *req
	clone.Content = a.textProcessor.ProcessText(req.Content, maxSize)
	return &clone
}

// analysisResponse mirrors the declared schema. Pointer fields distinguish
// absent required fields from zero values.
type analysisResponse struct {
	IsScam    *bool    `json:"is_scam"`
	RiskScore *int     `json:"risk_score"`
	ScamType  *string  `json:"scam_type"`
	Advice    *string  `json:"advice"`
	Triggers  []string `json:"triggers"`
}

// ParseAnalysisResponse parses and validates the model's JSON text against
// the analysis schema. The language is stamped onto the result here, after
// the parse, mirroring the request.
func ParseAnalysisResponse(text string, language core.Language) (*core.AnalysisResult, error) {
	if text == "" {
		return nil, &core.ValidationError{Reason: "empty response from model"}
	}

	var parsed analysisResponse
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return nil, &core.ValidationError{Reason: "response is not valid JSON", Err: err}
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
