package gemini

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/scamshield/scamshield/internal/core"
)

// Transcriber converts recorded voice clips to text for the voice-input
// analysis path.
type Transcriber struct {
	client *Client
	logger *zap.Logger
}

// NewTranscriber creates the transcription client.
func NewTranscriber(client *Client, logger *zap.Logger) *Transcriber {
	return &Transcriber{client: client, logger: logger}
}

// Transcribe returns the spoken text of the audio clip.
func (t *Transcriber) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	if len(audio) == 0 {
		return "", &core.ValidationError{Reason: "audio clip is empty"}
	}
	if mimeType == "" {
		mimeType = "audio/webm"
	}

	contents := []*genai.Content{{
		Role: genai.RoleUser,
		Parts: []*genai.Part{
			{InlineData: &genai.Blob{MIMEType: mimeType, Data: audio}},
			{Text: "Transcribe the spoken audio exactly. Return only the transcription text."},
		},
	}}

	resp, err := t.client.generate(ctx, t.client.opts.ModelName, contents, nil)
	if err != nil {
		return "", err
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", &core.ValidationError{Reason: "no transcription returned"}
	}
	return text, nil
}
