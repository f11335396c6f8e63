package gemini

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/scamshield/scamshield/internal/core"
	"github.com/scamshield/scamshield/internal/utils"
)

// speechVoice is the prebuilt voice used for spoken advice.
const speechVoice = "Puck"

// Speech renders advice text as 24kHz mono PCM16 audio.
type Speech struct {
	client        *Client
	textProcessor *utils.TextProcessor
	logger        *zap.Logger
}

// NewSpeech creates the speech synthesizer.
func NewSpeech(client *Client, textProcessor *utils.TextProcessor, logger *zap.Logger) *Speech {
	return &Speech{
		client:        client,
		textProcessor: textProcessor,
		logger:        logger,
	}
}

// Synthesize generates spoken audio for the text. Markdown is stripped and
// the text capped before synthesis.
func (s *Speech) Synthesize(ctx context.Context, text string, language core.Language) ([]byte, error) {
	clean := s.textProcessor.PrepareForSpeech(text)
	if clean == "" {
		return nil, &core.ValidationError{Reason: "text is empty, cannot generate audio"}
	}

	// A plain instruction keeps the model treating the text as content to speak
	prompt := fmt.Sprintf("Say the following message clearly: %s", clean)

	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: speechVoice},
			},
		},
	}

	resp, err := s.client.generate(ctx, s.client.opts.TTSModel, genai.Text(prompt), config)
	if err != nil {
		return nil, err
	}

	pcm := inlineAudio(resp)
	if len(pcm) == 0 {
		s.logger.Warn("Speech synthesis returned no audio", zap.String("finish_reason", finishReason(resp)))
		return nil, &core.ValidationError{Reason: "speech generation returned no audio"}
	}
	return pcm, nil
}

// inlineAudio extracts the first inline audio payload from a response.
func inlineAudio(resp *genai.GenerateContentResponse) []byte {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.InlineData != nil && len(part.InlineData.Data) > 0 {
			return part.InlineData.Data
		}
	}
	return nil
}

func finishReason(resp *genai.GenerateContentResponse) string {
	if len(resp.Candidates) == 0 {
		return ""
	}
	return string(resp.Candidates[0].FinishReason)
}
