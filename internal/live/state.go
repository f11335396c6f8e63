// Package live implements the live scanning session: a persistent
// bidirectional model stream multiplexing periodic camera frames and
// continuous microphone audio outbound, with streamed speech and
// interruption signals inbound.
package live

import (
	"context"

	"github.com/scamshield/scamshield/internal/core"
)

// State is the session lifecycle state. Owned exclusively by the Session;
// surfaces observe transitions through the event channel.
type State int

const (
	// StateIdle is before open and after close.
	StateIdle State = iota
	// StateConnecting covers media acquisition and the stream handshake.
	StateConnecting
	// StateConnected means both capture producers are running.
	StateConnected
	// StateError is a terminal failure until retry or close.
	StateError
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// EventType discriminates session events.
type EventType string

const (
	// EventStateChanged reports a lifecycle transition.
	EventStateChanged EventType = "state_changed"
	// EventSpeaking reports the assistant starting or stopping speech.
	EventSpeaking EventType = "speaking"
)

// Event is one observable session occurrence.
type Event struct {
	Type EventType
	// State is set for state_changed events.
	State State
	// Message carries the user-facing cause for error states.
	Message string
	// Speaking is set for speaking events.
	Speaking bool
}

// ServerEvent is one inbound message from the model stream.
type ServerEvent struct {
	// Audio is a chunk of 24kHz mono PCM16 speech, nil when absent.
	Audio []byte
	// Interrupted signals that in-flight audio must be discarded.
	Interrupted bool
	// TurnComplete marks the end of a model turn.
	TurnComplete bool
}

// Stream is an open bidirectional model connection.
type Stream interface {
	// SendAudio submits one microphone frame (16kHz mono PCM16).
	SendAudio(pcm []byte) error
	// SendVideo submits one compressed camera frame (JPEG).
	SendVideo(jpeg []byte) error
	// Receive blocks for the next server event.
	Receive() (*ServerEvent, error)
	// Close tears the connection down.
	Close() error
}

// Connector opens model streams.
type Connector interface {
	Connect(ctx context.Context) (Stream, error)
}

// MediaSource supplies device media for one session. Acquisition failures
// are reported as *core.DeviceError so the session can classify them.
type MediaSource interface {
	// Acquire requests camera and microphone access.
	Acquire(ctx context.Context) error
	// AudioFrames streams captured microphone frames (16kHz mono PCM16,
	// ~2048 samples each). The channel closes when the source is released.
	AudioFrames() <-chan []byte
	// CaptureFrame grabs the current camera frame as JPEG.
	CaptureFrame(ctx context.Context) ([]byte, error)
	// Release stops all tracks and frees the devices. Idempotent.
	Release() error
}

// classifyAcquireError maps an acquisition failure to its user-facing
// message.
func classifyAcquireError(err error) string {
	if de, ok := core.AsDeviceError(err); ok {
		return de.Kind.Message()
	}
	return core.DeviceUnknown.Message()
}
