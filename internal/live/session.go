package live

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/scamshield/scamshield/internal/audio"
	"github.com/scamshield/scamshield/internal/core"
	"github.com/scamshield/scamshield/internal/metrics"
)

// defaultFrameInterval is how often a camera snapshot is sent upstream.
const defaultFrameInterval = 1500 * time.Millisecond

const networkErrorMessage = "Connection interrupted. Please check your internet."

// Session drives one live scanning session. It owns the connection handle
// and the lifecycle state; only one session may be open per instance.
type Session struct {
	connector     Connector
	source        MediaSource
	pipeline      *audio.Pipeline
	logger        *zap.Logger
	metrics       *metrics.Metrics
	frameInterval time.Duration

	mu       sync.Mutex
	state    State
	stream   Stream
	cancel   context.CancelFunc
	speaking bool

	wg     sync.WaitGroup
	events chan Event
}

// Option tunes a session.
type Option func(*Session)

// WithFrameInterval overrides the camera snapshot cadence.
func WithFrameInterval(d time.Duration) Option {
	return func(s *Session) { s.frameInterval = d }
}

// WithMetrics attaches Prometheus instrumentation.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Session) { s.metrics = m }
}

// NewSession creates a session in the idle state.
func NewSession(connector Connector, source MediaSource, pipeline *audio.Pipeline, logger *zap.Logger, opts ...Option) *Session {
	s := &Session{
		connector:     connector,
		source:        source,
		pipeline:      pipeline,
		logger:        logger,
		frameInterval: defaultFrameInterval,
		state:         StateIdle,
		events:        make(chan Event, 32),
	}
	for _, opt := range opts {
		opt(s)
	}
	pipeline.SetIdleFunc(func() { s.setSpeaking(false) })
	return s
}

// Events is the stream of state and speaking transitions. The channel is
// never closed; consumers stop on an idle or error state event.
func (s *Session) Events() <-chan Event {
	return s.events
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Open acquires device media, connects the model stream and starts the
// capture producers. Allowed from idle and from error (retry).
func (s *Session) Open(ctx context.Context) error {
	s.mu.Lock()
	if s.state == StateConnecting || s.state == StateConnected {
		s.mu.Unlock()
		return errors.New("live session already open")
	}
	s.setStateLocked(StateConnecting, "")
	s.mu.Unlock()

	if err := s.source.Acquire(ctx); err != nil {
		s.logger.Error("Media acquisition failed", zap.Error(err))
		s.countError(err)
		s.fail(classifyAcquireError(err))
		return err
	}

	stream, err := s.connector.Connect(ctx)
	if err != nil {
		s.logger.Error("Live stream connect failed", zap.Error(err))
		s.countError(err)
		s.fail(networkErrorMessage)
		return err
	}

	sessionCtx, cancel := context.WithCancel(context.Background())

	s.mu.Lock()
	s.stream = stream
	s.cancel = cancel
	s.setStateLocked(StateConnected, "")
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.LiveSessionsActive.Inc()
	}

	s.wg.Add(3)
	go s.frameLoop(sessionCtx, stream)
	go s.audioLoop(sessionCtx, stream)
	go s.recvLoop(sessionCtx, stream)

	s.logger.Info("Live session connected")
	return nil
}

// Close tears the session down from any state: cancels the producers,
// closes the stream, releases the devices and clears queued audio.
// Idempotent; runs on every exit path.
func (s *Session) Close() error {
	s.shutdown()
	s.wg.Wait()
	s.setSpeaking(false)
	s.setState(StateIdle, "")
	return nil
}

// shutdown releases every resource exactly once per acquisition. It never
// waits on the producer goroutines, so it is safe to call from them.
func (s *Session) shutdown() {
	s.mu.Lock()
	cancel := s.cancel
	stream := s.stream
	wasConnected := s.stream != nil
	s.cancel = nil
	s.stream = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if stream != nil {
		if err := stream.Close(); err != nil {
			s.logger.Debug("Stream close", zap.Error(err))
		}
	}
	if err := s.source.Release(); err != nil {
		s.logger.Debug("Media release", zap.Error(err))
	}
	s.pipeline.InterruptAll()

	if wasConnected && s.metrics != nil {
		s.metrics.LiveSessionsActive.Dec()
	}
}

// fail moves the session to the error state after releasing resources.
// The transition only applies while the session is opening or open, so a
// failure that loses the race with Close cannot overwrite the final idle
// state.
func (s *Session) fail(message string) {
	s.shutdown()
	s.setSpeaking(false)

	s.mu.Lock()
	if s.state == StateConnecting || s.state == StateConnected {
		s.setStateLocked(StateError, message)
	}
	s.mu.Unlock()
}

// frameLoop captures and sends a camera snapshot on a fixed cadence.
func (s *Session) frameLoop(ctx context.Context, stream Stream) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.frameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			frame, err := s.source.CaptureFrame(ctx)
			if err != nil {
				if ctx.Err() == nil {
					s.logger.Debug("Frame capture failed", zap.Error(err))
				}
				continue
			}
			if err := stream.SendVideo(frame); err != nil {
				s.onStreamFailure(ctx, err)
				return
			}
		}
	}
}

// audioLoop forwards microphone frames as soon as they are captured.
func (s *Session) audioLoop(ctx context.Context, stream Stream) {
	defer s.wg.Done()

	frames := s.source.AudioFrames()
	for {
		select {
		case <-ctx.Done():
			return
		case frame, ok := <-frames:
			if !ok {
				return
			}
			if err := stream.SendAudio(frame); err != nil {
				s.onStreamFailure(ctx, err)
				return
			}
		}
	}
}

// recvLoop handles inbound server events: audio chunks feed the rendering
// pipeline, interruption signals clear it.
func (s *Session) recvLoop(ctx context.Context, stream Stream) {
	defer s.wg.Done()

	for {
		ev, err := stream.Receive()
		if err != nil {
			s.onStreamFailure(ctx, err)
			return
		}

		if len(ev.Audio) > 0 {
			if _, err := s.pipeline.SchedulePCM16(ev.Audio); err != nil {
				s.logger.Warn("Dropping malformed audio chunk", zap.Error(err))
			} else {
				s.setSpeaking(true)
				if s.metrics != nil {
					s.metrics.AudioScheduled.Inc()
				}
			}
		}

		if ev.Interrupted {
			s.pipeline.InterruptAll()
			s.setSpeaking(false)
			if s.metrics != nil {
				s.metrics.AudioInterrupts.Inc()
			}
		}
	}
}

// onStreamFailure distinguishes expected teardown from a transport error.
func (s *Session) onStreamFailure(ctx context.Context, err error) {
	if ctx.Err() != nil {
		return
	}
	s.logger.Error("Live stream failed", zap.Error(err))
	s.countError(err)
	go s.fail(networkErrorMessage)
}

func (s *Session) countError(err error) {
	if s.metrics == nil {
		return
	}
	kind := "network"
	if de, ok := core.AsDeviceError(err); ok {
		kind = de.Kind.String()
	}
	s.metrics.LiveSessionErrors.WithLabelValues(kind).Inc()
}

func (s *Session) setState(state State, message string) {
	s.mu.Lock()
	s.setStateLocked(state, message)
	s.mu.Unlock()
}

func (s *Session) setStateLocked(state State, message string) {
	if s.state == state {
		return
	}
	s.state = state
	s.emit(Event{Type: EventStateChanged, State: state, Message: message})
	s.logger.Info("Live session state changed",
		zap.String("state", state.String()),
		zap.String("message", message))
}

func (s *Session) setSpeaking(speaking bool) {
	s.mu.Lock()
	changed := s.speaking != speaking
	s.speaking = speaking
	s.mu.Unlock()

	if changed {
		s.emit(Event{Type: EventSpeaking, Speaking: speaking})
	}
}

// emit never blocks; a full consumer loses the oldest semantics in favor
// of staying live.
func (s *Session) emit(ev Event) {
	select {
	case s.events <- ev:
	default:
		s.logger.Warn("Dropping session event", zap.String("type", string(ev.Type)))
	}
}
