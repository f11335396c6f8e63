package gemini

import (
	"context"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/scamshield/scamshield/internal/core"
	"github.com/scamshield/scamshield/internal/live"
)

// liveSystemInstruction steers the streaming assistant. The visual and
// audio trigger lists mirror the scam patterns the completion taxonomy
// covers, compressed for spoken delivery.
const liveSystemInstruction = `You are 'ScamShield', a helpful **AI Safety Assistant** for India.

**Mission**: Help users identify potential financial fraud triggers in real-time visuals and audio.

**Rules**:
1. **Be Concise**: Speak short, clear sentences.
2. **Visual Triggers**:
   - QR Codes: Warn "Be careful. Do NOT scan to receive money."
   - Letters: Look for fake logos or typos (CBI, RBI).
   - ATMs: Look for loose parts or skimmers.
3. **Audio Triggers**:
   - "Digital Arrest" / "Police": Warn "Police do not arrest via video call."
   - "OTP" / "Refund": Warn "Do not share OTP with anyone."

**Tone**: Helpful, alert, and calm. Avoid acting like law enforcement. If safe, say "Looks okay, but stay alert."`

const (
	// liveVoice is authoritative without sounding alarmist.
	liveVoice = "Kore"

	inputAudioMIMEType = "audio/pcm;rate=16000"
	inputVideoMIMEType = "image/jpeg"
)

// LiveConnector dials the bidirectional streaming endpoint. It implements
// live.Connector.
type LiveConnector struct {
	client *Client
	logger *zap.Logger
}

// NewLiveConnector creates the streaming connector.
func NewLiveConnector(client *Client, logger *zap.Logger) *LiveConnector {
	return &LiveConnector{client: client, logger: logger}
}

// Connect opens a live session configured for audio responses.
func (c *LiveConnector) Connect(ctx context.Context) (live.Stream, error) {
	config := &genai.LiveConnectConfig{
		ResponseModalities: []genai.Modality{genai.Modality("AUDIO")},
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: liveSystemInstruction}},
		},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: liveVoice},
			},
		},
	}

	session, err := c.client.genai.Live.Connect(ctx, c.client.opts.LiveModel, config)
	if err != nil {
		c.logger.Error("Failed to connect live session",
			zap.String("model", c.client.opts.LiveModel),
			zap.Error(err))
		return nil, &core.NetworkError{Op: "live_connect", Err: err}
	}

	c.logger.Info("Live session stream opened", zap.String("model", c.client.opts.LiveModel))
	return &liveStream{session: session}, nil
}

// liveStream adapts a genai live session to live.Stream.
type liveStream struct {
	session *genai.Session
}

func (s *liveStream) SendAudio(pcm []byte) error {
	err := s.session.SendRealtimeInput(genai.LiveRealtimeInput{
		Audio: &genai.Blob{Data: pcm, MIMEType: inputAudioMIMEType},
	})
	if err != nil {
		return &core.NetworkError{Op: "send_audio", Err: err}
	}
	return nil
}

func (s *liveStream) SendVideo(jpeg []byte) error {
	err := s.session.SendRealtimeInput(genai.LiveRealtimeInput{
		Video: &genai.Blob{Data: jpeg, MIMEType: inputVideoMIMEType},
	})
	if err != nil {
		return &core.NetworkError{Op: "send_video", Err: err}
	}
	return nil
}

// Receive blocks for the next server message and flattens it into the
// event shape the session engine consumes. Messages with no relevant
// payload come back as empty events; the engine ignores those.
func (s *liveStream) Receive() (*live.ServerEvent, error) {
	msg, err := s.session.Receive()
	if err != nil {
		return nil, &core.NetworkError{Op: "live_receive", Err: err}
	}

	ev := &live.ServerEvent{}
	if sc := msg.ServerContent; sc != nil {
		if sc.ModelTurn != nil {
			for _, part := range sc.ModelTurn.Parts {
				if part.InlineData != nil && len(part.InlineData.Data) > 0 {
					ev.Audio = append(ev.Audio, part.InlineData.Data...)
				}
			}
		}
		ev.Interrupted = sc.Interrupted
		ev.TurnComplete = sc.TurnComplete
	}
	return ev, nil
}

func (s *liveStream) Close() error {
	return s.session.Close()
}
