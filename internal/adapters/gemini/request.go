package gemini

import (
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/scamshield/scamshield/internal/core"
)

// BuildContents converts an analysis request into the model payload. Text
// and URL requests become a single text part carrying a context header and
// the literal content; image requests become a two-part payload of inline
// binary plus a contextual instruction. Pure transformation, no network.
func BuildContents(req *core.AnalysisRequest) ([]*genai.Content, error) {
	contextHeader := fmt.Sprintf("Context: %s",
		strings.ToUpper(strings.ReplaceAll(string(req.Context), "_", " ")))

	switch req.Type {
	case core.AnalysisTypeText:
		prompt := fmt.Sprintf(`%s. Analyze this text for Indian context scam potential: "%s"`,
			contextHeader, req.Content)
		return genai.Text(prompt), nil

	case core.AnalysisTypeURL:
		prompt := fmt.Sprintf(`Analyze this URL for phishing/scam potential: "%s". Check against known banking URL patterns in India.`,
			req.Content)
		return genai.Text(prompt), nil

	case core.AnalysisTypeImage:
		if len(req.Binary) == 0 {
			return nil, &core.ValidationError{Reason: "image request carries no binary content"}
		}
		mimeType := req.MIMEType
		if mimeType == "" {
			mimeType = "image/jpeg"
		}
		content := &genai.Content{
			Role: genai.RoleUser,
			Parts: []*genai.Part{
				{InlineData: &genai.Blob{MIMEType: mimeType, Data: req.Binary}},
				{Text: fmt.Sprintf("%s. Analyze this image for scam potential in India.", contextHeader)},
			},
		}
		return []*genai.Content{content}, nil

	default:
		return nil, &core.ValidationError{Reason: fmt.Sprintf("unsupported analysis type %q", req.Type)}
	}
}
