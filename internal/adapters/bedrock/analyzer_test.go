package bedrock

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/scamshield/scamshield/internal/core"
)

const validReply = `{
	"is_scam": true,
	"risk_score": 75,
	"scam_type": "Digital Arrest",
	"advice": "Hang up. Police never demand money on a call.",
	"triggers": ["impersonation", "urgency"]
}`

func TestParseResponse_Valid(t *testing.T) {
	result, err := ParseResponse(validReply, core.LanguageEnglish)
	require.NoError(t, err)

	assert.True(t, result.IsScam)
	assert.Equal(t, 75, result.RiskScore)
	assert.Equal(t, "Digital Arrest", result.ScamType)
	assert.Equal(t, []string{"impersonation", "urgency"}, result.Triggers)
}

func TestParseResponse_ProseWrappedJSON(t *testing.T) {
	text := "Analysis follows.\n" + validReply + "\nEnd of analysis."
	result, err := ParseResponse(text, core.LanguageOdia)
	require.NoError(t, err)

	assert.True(t, result.IsScam)
	assert.Equal(t, core.LanguageOdia, result.Language)
}

func TestParseResponse_EmptyObjectRejected(t *testing.T) {
	result, err := ParseResponse("{}", core.LanguageEnglish)
	assert.Nil(t, result)
	assert.True(t, core.IsValidationError(err))
}

func TestParseResponse_MissingFields(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"no is_scam", `{"risk_score":10,"scam_type":"","advice":"ok","triggers":[]}`},
		{"no risk_score", `{"is_scam":false,"scam_type":"","advice":"ok","triggers":[]}`},
		{"no scam_type", `{"is_scam":false,"risk_score":10,"advice":"ok","triggers":[]}`},
		{"no advice", `{"is_scam":false,"risk_score":10,"scam_type":"","triggers":[]}`},
		{"no triggers", `{"is_scam":false,"risk_score":10,"scam_type":"","advice":"ok"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ParseResponse(tt.text, core.LanguageEnglish)
			assert.Nil(t, result)
			assert.True(t, core.IsValidationError(err))
		})
	}
}

func TestParseResponse_NotJSON(t *testing.T) {
	result, err := ParseResponse("no verdict available", core.LanguageEnglish)
	assert.Nil(t, result)
	assert.True(t, core.IsValidationError(err))
}

func TestParseResponse_ClampsRiskScore(t *testing.T) {
	text := `{"is_scam":false,"risk_score":-5,"scam_type":"","advice":"Looks fine.","triggers":[]}`
	result, err := ParseResponse(text, core.LanguageEnglish)
	require.NoError(t, err)
	assert.Equal(t, 0, result.RiskScore)
}

func TestBuildPayload_PerModelFamily(t *testing.T) {
	tests := []struct {
		modelID string
		wantKey string
	}{
		{"anthropic.claude-v2", "max_tokens_to_sample"},
		{"amazon.titan-text-express-v1", "inputText"},
		{"meta.llama2-13b", "max_tokens"},
	}

	for _, tt := range tests {
		t.Run(tt.modelID, func(t *testing.T) {
			a := NewAnalyzer(nil, tt.modelID, 500, 0.1, 0.9, 4096, zap.NewNop(), nil)
			payload, err := a.buildPayload("check this message")
			require.NoError(t, err)

			var decoded map[string]interface{}
			require.NoError(t, json.Unmarshal(payload, &decoded))
			assert.Contains(t, decoded, tt.wantKey)
		})
	}
}
