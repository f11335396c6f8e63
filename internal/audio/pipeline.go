// Package audio implements the rendering pipeline for model speech: PCM
// decoding, gapless playback scheduling against an output clock, and
// interruption handling.
package audio

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/scamshield/scamshield/internal/codec"
)

// Playback describes one scheduled buffer for the output surface.
type Playback struct {
	ID       string
	PCM      []byte
	StartAt  time.Duration
	Duration time.Duration
}

// Sink receives scheduled playbacks and stop notices. The live bridge
// forwards them to the client; tests record them.
type Sink interface {
	Play(p Playback)
	Stop(id string)
}

// Pipeline owns the in-flight playback set and the schedule cursor. Both
// are mutated only here; buffers scheduled in receipt order never overlap
// and never leave gaps, because each start time is pinned to the end of
// the previous buffer, clamped to not start in the past.
type Pipeline struct {
	clock      Clock
	sink       Sink
	sampleRate int
	channels   int
	logger     *zap.Logger

	mu       sync.Mutex
	cursor   time.Duration
	inflight map[string]*scheduled
	onIdle   func()
}

type scheduled struct {
	playback Playback
	timer    Timer
}

// NewPipeline creates a pipeline for the given playback format (24kHz mono
// for model speech).
func NewPipeline(clock Clock, sink Sink, sampleRate, channels int, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		clock:      clock,
		sink:       sink,
		sampleRate: sampleRate,
		channels:   channels,
		logger:     logger,
		inflight:   make(map[string]*scheduled),
	}
}

// SetIdleFunc registers the callback fired when the in-flight set drains
// to empty after natural playback end.
func (p *Pipeline) SetIdleFunc(f func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onIdle = f
}

// Decode converts base64 PCM16 into a playable buffer.
func (p *Pipeline) Decode(base64Audio string) (*codec.AudioBuffer, error) {
	raw, err := codec.DecodeBase64(base64Audio)
	if err != nil {
		return nil, err
	}
	return codec.PCM16ToAudioBuffer(raw, p.sampleRate, p.channels)
}

// SchedulePCM16 decodes raw PCM16 bytes and schedules them for playback.
func (p *Pipeline) SchedulePCM16(pcm []byte) (string, error) {
	buf, err := codec.PCM16ToAudioBuffer(pcm, p.sampleRate, p.channels)
	if err != nil {
		return "", err
	}
	return p.Schedule(buf), nil
}

// Schedule queues a decoded buffer. The start time is
// max(current clock time, cursor); the cursor advances by the buffer's
// duration.
func (p *Pipeline) Schedule(buf *codec.AudioBuffer) string {
	p.mu.Lock()

	now := p.clock.Now()
	start := p.cursor
	if now > start {
		start = now
	}
	duration := time.Duration(buf.DurationSeconds() * float64(time.Second))
	p.cursor = start + duration

	playback := Playback{
		ID:       uuid.NewString(),
		PCM:      codec.AudioBufferToPCM16(buf),
		StartAt:  start,
		Duration: duration,
	}

	entry := &scheduled{playback: playback}
	entry.timer = p.clock.AfterFunc(p.cursor-now, func() { p.complete(playback.ID) })
	p.inflight[playback.ID] = entry
	p.mu.Unlock()

	// The sink may block on a slow client; keep it outside the lock so
	// InterruptAll is never delayed behind a write.
	p.sink.Play(playback)

	p.logger.Debug("Scheduled playback",
		zap.String("id", playback.ID),
		zap.Duration("start_at", start),
		zap.Duration("duration", duration))

	return playback.ID
}

// complete is the natural end of one playback.
func (p *Pipeline) complete(id string) {
	p.mu.Lock()
	_, ok := p.inflight[id]
	if ok {
		delete(p.inflight, id)
	}
	idle := ok && len(p.inflight) == 0
	onIdle := p.onIdle
	p.mu.Unlock()

	if idle && onIdle != nil {
		onIdle()
	}
}

// InterruptAll immediately stops every in-flight playback, clears the set
// and rewinds the cursor to the clock's current time so subsequent audio
// starts immediately. Safe to call repeatedly.
func (p *Pipeline) InterruptAll() {
	p.mu.Lock()
	stopped := make([]string, 0, len(p.inflight))
	for id, entry := range p.inflight {
		entry.timer.Stop()
		stopped = append(stopped, id)
		delete(p.inflight, id)
	}
	p.cursor = p.clock.Now()
	p.mu.Unlock()

	for _, id := range stopped {
		p.sink.Stop(id)
	}

	if len(stopped) > 0 {
		p.logger.Debug("Interrupted playback", zap.Int("stopped", len(stopped)))
	}
}

// StopOne stops a single named playback and signals idle if it was the
// last one. Used for the non-streaming spoken-advice surface.
func (p *Pipeline) StopOne(id string) {
	p.mu.Lock()
	entry, ok := p.inflight[id]
	if ok {
		entry.timer.Stop()
		delete(p.inflight, id)
	}
	idle := ok && len(p.inflight) == 0
	onIdle := p.onIdle
	p.mu.Unlock()

	if !ok {
		return
	}
	p.sink.Stop(id)
	if idle && onIdle != nil {
		onIdle()
	}
}

// InFlight returns the number of scheduled, unfinished playbacks.
func (p *Pipeline) InFlight() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.inflight)
}

// Cursor returns the schedule cursor position, for observability.
func (p *Pipeline) Cursor() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cursor
}
