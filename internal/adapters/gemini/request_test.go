package gemini

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scamshield/scamshield/internal/core"
)

func TestBuildContents_Text(t *testing.T) {
	req := &core.AnalysisRequest{
		Type:    core.AnalysisTypeText,
		Context: core.ContextSMS,
		Content: `Dear customer, your KYC is expired. Click http://bit.ly/xyz`,
	}

	contents, err := BuildContents(req)
	require.NoError(t, err)
	require.Len(t, contents, 1)
	require.Len(t, contents[0].Parts, 1)

	prompt := contents[0].Parts[0].Text
	assert.Contains(t, prompt, "Context: SMS.")
	// Content goes through verbatim, no escaping or re-encoding
	assert.Contains(t, prompt, req.Content)
}

func TestBuildContents_ContextHeader(t *testing.T) {
	req := &core.AnalysisRequest{
		Type:    core.AnalysisTypeText,
		Context: core.ContextDatingApp,
		Content: "hello",
	}

	contents, err := BuildContents(req)
	require.NoError(t, err)
	assert.Contains(t, contents[0].Parts[0].Text, "Context: DATING APP.")
}

func TestBuildContents_URL(t *testing.T) {
	req := &core.AnalysisRequest{
		Type:    core.AnalysisTypeURL,
		Context: core.ContextURL,
		Content: "http://sbi-kyc-update.xyz",
	}

	contents, err := BuildContents(req)
	require.NoError(t, err)

	prompt := contents[0].Parts[0].Text
	assert.Contains(t, prompt, "phishing/scam potential")
	assert.Contains(t, prompt, "banking URL patterns in India")
	assert.Contains(t, prompt, req.Content)
}

func TestBuildContents_Image(t *testing.T) {
	req := &core.AnalysisRequest{
		Type:     core.AnalysisTypeImage,
		Context:  core.ContextWhatsApp,
		Binary:   []byte{0xff, 0xd8, 0xff},
		MIMEType: "image/png",
	}

	contents, err := BuildContents(req)
	require.NoError(t, err)
	require.Len(t, contents, 1)
	require.Len(t, contents[0].Parts, 2)

	blob := contents[0].Parts[0].InlineData
	require.NotNil(t, blob)
	assert.Equal(t, "image/png", blob.MIMEType)
	assert.Equal(t, req.Binary, blob.Data)
	assert.Contains(t, contents[0].Parts[1].Text, "Context: WHATSAPP.")
}

func TestBuildContents_ImageDefaultsToJPEG(t *testing.T) {
	req := &core.AnalysisRequest{
		Type:    core.AnalysisTypeImage,
		Context: core.ContextOther,
		Binary:  []byte{0x01},
	}

	contents, err := BuildContents(req)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", contents[0].Parts[0].InlineData.MIMEType)
}

func TestBuildContents_ImageWithoutBinary(t *testing.T) {
	req := &core.AnalysisRequest{Type: core.AnalysisTypeImage, Context: core.ContextOther}

	_, err := BuildContents(req)
	assert.True(t, core.IsValidationError(err))
}

func TestBuildContents_UnknownType(t *testing.T) {
	req := &core.AnalysisRequest{Type: core.AnalysisType("video"), Context: core.ContextOther}

	_, err := BuildContents(req)
	assert.True(t, core.IsValidationError(err))
}
