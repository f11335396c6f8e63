package httpserver

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/scamshield/scamshield/internal/audio"
	"github.com/scamshield/scamshield/internal/core"
)

// wsConn serializes writes to a websocket connection. gorilla/websocket
// allows only one concurrent writer.
type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (w *wsConn) writeJSON(v interface{}) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.conn.WriteJSON(v)
}

// wsMediaSource implements live.MediaSource over the websocket bridge.
// The browser owns the physical devices; this side sees their outcome: an
// acquisition verdict, a stream of PCM16 audio frames and the most recent
// JPEG video frame.
type wsMediaSource struct {
	acquireCh chan error
	frames    chan []byte

	mu          sync.Mutex
	latestFrame []byte
}

func newWSMediaSource() *wsMediaSource {
	return &wsMediaSource{
		acquireCh: make(chan error, 1),
		frames:    make(chan []byte, 32),
	}
}

// Acquire waits for the client to report the device outcome.
func (m *wsMediaSource) Acquire(ctx context.Context) error {
	select {
	case err := <-m.acquireCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *wsMediaSource) AudioFrames() <-chan []byte {
	return m.frames
}

// CaptureFrame returns the most recent video frame the client pushed.
func (m *wsMediaSource) CaptureFrame(ctx context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.latestFrame == nil {
		return nil, errors.New("no video frame received yet")
	}
	return m.latestFrame, nil
}

// Release is a no-op: the physical devices live on the client, which
// releases them on its own when the session ends.
func (m *wsMediaSource) Release() error {
	return nil
}

// resolveAcquire delivers the device outcome once; later calls are ignored.
func (m *wsMediaSource) resolveAcquire(err error) {
	select {
	case m.acquireCh <- err:
	default:
	}
}

// pushAudio hands a captured audio frame to the session, dropping the
// oldest pending frame under backpressure. Live audio is only useful fresh.
func (m *wsMediaSource) pushAudio(pcm []byte) {
	select {
	case m.frames <- pcm:
	default:
		select {
		case <-m.frames:
		default:
		}
		select {
		case m.frames <- pcm:
		default:
		}
	}
}

func (m *wsMediaSource) setFrame(jpeg []byte) {
	m.mu.Lock()
	m.latestFrame = jpeg
	m.mu.Unlock()
}

// deviceErrorFromName maps browser getUserMedia error names to the device
// error taxonomy.
func deviceErrorFromName(name string) *core.DeviceError {
	kind := core.DeviceUnknown
	switch name {
	case "NotAllowedError", "PermissionDeniedError":
		kind = core.DevicePermissionDenied
	case "NotFoundError", "DevicesNotFoundError":
		kind = core.DeviceNotFound
	case "NotReadableError", "TrackStartError":
		kind = core.DeviceBusy
	}
	return &core.DeviceError{Kind: kind, Cause: name}
}

// wsSink implements audio.Sink by shipping scheduled playback envelopes to
// the client, which renders them against its own output clock.
type wsSink struct {
	conn *wsConn
}

type playbackMessage struct {
	Type       string `json:"type"`
	ID         string `json:"id"`
	StartMs    int64  `json:"start_ms"`
	DurationMs int64  `json:"duration_ms"`
	Data       string `json:"data"`
}

func (s *wsSink) Play(p audio.Playback) {
	msg := playbackMessage{
		Type:       "audio",
		ID:         p.ID,
		StartMs:    p.StartAt.Milliseconds(),
		DurationMs: p.Duration.Milliseconds(),
		Data:       base64.StdEncoding.EncodeToString(p.PCM),
	}
	// Write failures surface via the session's stream, not here
	_ = s.conn.writeJSON(msg)
}

func (s *wsSink) Stop(id string) {
	_ = s.conn.writeJSON(map[string]interface{}{"type": "audio_stop", "id": id})
}

// clientMessage is the envelope for client-to-server text messages.
type clientMessage struct {
	Type string `json:"type"`
	Name string `json:"name,omitempty"`
	Data string `json:"data,omitempty"`
}

func parseClientMessage(raw []byte) (*clientMessage, error) {
	var msg clientMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
