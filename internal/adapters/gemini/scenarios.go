package gemini

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/scamshield/scamshield/internal/core"
	"github.com/scamshield/scamshield/internal/utils"
)

const scenarioPromptFormat = `
Generate 5 UNIQUE and REALISTIC scam/safe message scenarios for an Indian user in %[1]s.

Requirements:
1. **Mix**: 3 Scams, 2 Safe messages.
2. **Context**: Use Indian contexts (UPI, HDFC/SBI/ICICI, Electricity Board, Jio/Airtel, WhatsApp "Digital Arrest").
3. **Scam Examples**:
   - "Your electricity will be cut at 9:30 PM"
   - "CBI: Arrest warrant issued against you"
   - "Part-time job: Earn 5000/day"
   - "Credit Card points expiring"
4. **Safe Examples**:
   - Genuine OTP message (e.g. "Your OTP is 123456. Do not share.")
   - Transaction alert (e.g. "Rs 500 debited via UPI")
   - Service update (e.g. "Your recharge was successful")
5. **Difficulty**: Make some tricky (e.g. a safe message that looks slightly scary but is actually genuine, or a scam that looks very professional).

**Output Rules for 'reason'**:
- Do NOT simply say "It is a scam."
- Explain the **manipulation technique** (e.g., "This uses false urgency to make you panic.")
- Tell the user **what to check** (e.g., "Check the sender ID; banks don't use personal numbers.")
- Keep it educational and supportive.

Output a JSON array where each element has id, sender, text, isScam, reason (short educational explanation in %[1]s) and difficulty.`

func scenarioSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeArray,
		Items: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"id":         {Type: genai.TypeString},
				"sender":     {Type: genai.TypeString},
				"text":       {Type: genai.TypeString},
				"isScam":     {Type: genai.TypeBoolean},
				"reason":     {Type: genai.TypeString},
				"difficulty": {Type: genai.TypeString, Enum: []string{"Easy", "Hard"}},
			},
		},
	}
}

// ScenarioGenerator produces dojo quiz batches. Failures are surfaced to
// the caller; the core service owns the fallback substitution.
type ScenarioGenerator struct {
	client *Client
	logger *zap.Logger
}

// NewScenarioGenerator creates the scenario source.
func NewScenarioGenerator(client *Client, logger *zap.Logger) *ScenarioGenerator {
	return &ScenarioGenerator{client: client, logger: logger}
}

// Scenarios generates a batch of 5 scenarios (3 scam, 2 safe).
func (g *ScenarioGenerator) Scenarios(ctx context.Context, language core.Language) ([]core.DojoScenario, error) {
	prompt := fmt.Sprintf(scenarioPromptFormat, utils.LanguageDisplayName(language))

	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   scenarioSchema(),
	}

	resp, err := g.client.generate(ctx, g.client.opts.ModelName, genai.Text(prompt), config)
	if err != nil {
		return nil, err
	}

	return ParseScenarios(resp.Text())
}

// ParseScenarios parses and validates a generated scenario batch.
func ParseScenarios(text string) ([]core.DojoScenario, error) {
	if text == "" {
		return nil, &core.ValidationError{Reason: "no scenarios generated"}
	}

	var scenarios []core.DojoScenario
	if err := json.Unmarshal([]byte(text), &scenarios); err != nil {
		return nil, &core.ValidationError{Reason: "scenario response is not valid JSON", Err: err}
	}
	if len(scenarios) == 0 {
		return nil, &core.ValidationError{Reason: "scenario response is empty"}
	}

	for i := range scenarios {
		if scenarios[i].Text == "" || scenarios[i].Reason == "" {
			return nil, &core.ValidationError{Reason: fmt.Sprintf("scenario %d is missing text or reason", i)}
		}
		if scenarios[i].Difficulty != core.DifficultyEasy && scenarios[i].Difficulty != core.DifficultyHard {
			scenarios[i].Difficulty = core.DifficultyEasy
		}
	}
	return scenarios, nil
}
