package gemini

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/scamshield/scamshield/internal/core"
)

const intelligenceInstruction = `You are a real-time Scam Intelligence Analyst.
You must ALWAYS use Google Search to find real, recent data.
Do not hallucinate incidents. If no specific local news is found, fallback to state-level or national trends but clearly mention the location scope.`

const intelligencePromptFormat = `
1. Identify the specific City and State in India for the coordinates: %f, %f.
2. Using Google Search, find the latest news, police warnings, and cybercrime alerts specifically for this city/region from the last 3-6 months.
3. Look for terms like "Digital Arrest", "Electricity Bill Scam", "FedEx Scam", "Part-time job scam", "Cyber police warning".
4. Summarize the **actual** found trends into the JSON format.
5. For 'topScams', estimate a 'count' based on the intensity of news reports (e.g. widely reported = high count).
6. For 'recentIncidents', summarize 2-3 specific real news headlines found.`

func alertSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"location":  {Type: genai.TypeString, Description: "The identified City and State."},
			"riskLevel": {Type: genai.TypeString, Enum: []string{"Low", "Medium", "High", "Critical"}},
			"topScams": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"title": {Type: genai.TypeString},
						"count": {Type: genai.TypeInteger, Description: "Estimated intensity/reports"},
					},
				},
			},
			"recentIncidents": {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
			"safetyTip":       {Type: genai.TypeString},
		},
	}
}

// Intelligence is the grounded variant of the completion client: it enables
// the web-search tool and extracts source citations from grounding
// metadata. Citations are best-effort; the primary answer stands without
// them.
type Intelligence struct {
	client *Client
	logger *zap.Logger
}

// NewIntelligence creates the grounded intelligence client.
func NewIntelligence(client *Client, logger *zap.Logger) *Intelligence {
	return &Intelligence{client: client, logger: logger}
}

// RegionalAlerts summarizes recent scam activity around the coordinates.
func (i *Intelligence) RegionalAlerts(ctx context.Context, latitude, longitude float64) (*core.RegionalAlert, error) {
	prompt := fmt.Sprintf(intelligencePromptFormat, latitude, longitude)

	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: intelligenceInstruction}},
		},
		Tools:            []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}},
		ResponseMIMEType: "application/json",
		ResponseSchema:   alertSchema(),
	}

	resp, err := i.client.generate(ctx, i.client.opts.ModelName, genai.Text(prompt), config)
	if err != nil {
		return nil, err
	}

	text := resp.Text()
	if text == "" {
		return nil, &core.ValidationError{Reason: "no intelligence data received"}
	}

	var alert core.RegionalAlert
	if err := json.Unmarshal([]byte(text), &alert); err != nil {
		return nil, &core.ValidationError{Reason: "intelligence response is not valid JSON", Err: err}
	}

	alert.Sources = extractSources(resp)
	return &alert, nil
}

// extractSources pulls web citations out of the response's grounding
// metadata. Absent metadata yields an empty list, not an error.
func extractSources(resp *genai.GenerateContentResponse) []core.Source {
	if len(resp.Candidates) == 0 || resp.Candidates[0].GroundingMetadata == nil {
		return nil
	}

	var sources []core.Source
	for _, chunk := range resp.Candidates[0].GroundingMetadata.GroundingChunks {
		if chunk.Web == nil {
			continue
		}
		sources = append(sources, core.Source{
			Title: chunk.Web.Title,
			URI:   chunk.Web.URI,
		})
	}
	return sources
}
