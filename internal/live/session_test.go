package live

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/scamshield/scamshield/internal/audio"
	"github.com/scamshield/scamshield/internal/core"
)

// fakeSource implements MediaSource.
type fakeSource struct {
	mu         sync.Mutex
	acquireErr error
	acquired   bool
	released   bool
	frames     chan []byte
}

func newFakeSource() *fakeSource {
	return &fakeSource{frames: make(chan []byte, 16)}
}

func (f *fakeSource) Acquire(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.acquireErr != nil {
		return f.acquireErr
	}
	f.acquired = true
	f.released = false
	return nil
}

func (f *fakeSource) AudioFrames() <-chan []byte { return f.frames }

func (f *fakeSource) CaptureFrame(ctx context.Context) ([]byte, error) {
	return []byte{0xff, 0xd8}, nil
}

func (f *fakeSource) Release() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.acquired = false
	f.released = true
	return nil
}

func (f *fakeSource) isReleased() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.released
}

// fakeStream implements Stream with scripted server events.
type fakeStream struct {
	mu       sync.Mutex
	inbound  chan *ServerEvent
	closed   bool
	audioIn  [][]byte
	videoIn  [][]byte
	sendErr  error
	closeCh  chan struct{}
}

func newFakeStream() *fakeStream {
	return &fakeStream{
		inbound: make(chan *ServerEvent, 16),
		closeCh: make(chan struct{}),
	}
}

func (f *fakeStream) SendAudio(pcm []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.audioIn = append(f.audioIn, pcm)
	return nil
}

func (f *fakeStream) SendVideo(jpeg []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.videoIn = append(f.videoIn, jpeg)
	return nil
}

func (f *fakeStream) Receive() (*ServerEvent, error) {
	select {
	case ev := <-f.inbound:
		return ev, nil
	case <-f.closeCh:
		return nil, io.EOF
	}
}

func (f *fakeStream) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.closed {
		f.closed = true
		close(f.closeCh)
	}
	return nil
}

func (f *fakeStream) sentAudio() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.audioIn)
}

type fakeConnector struct {
	stream *fakeStream
	err    error
}

func (f *fakeConnector) Connect(ctx context.Context) (Stream, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.stream, nil
}

type nullSink struct{}

func (nullSink) Play(audio.Playback) {}
func (nullSink) Stop(string)         {}

func newTestSession(connector Connector, source MediaSource) *Session {
	pipeline := audio.NewPipeline(audio.NewSystemClock(), nullSink{}, 24000, 1, zap.NewNop())
	return NewSession(connector, source, pipeline, zap.NewNop(), WithFrameInterval(20*time.Millisecond))
}

// collectStates drains state events until the wanted state arrives or the
// timeout passes.
func waitForState(t *testing.T, s *Session, want State) Event {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev := <-s.Events():
			if ev.Type == EventStateChanged && ev.State == want {
				return ev
			}
		case <-deadline:
			t.Fatalf("timed out waiting for state %s (current %s)", want, s.State())
		}
	}
}

func TestOpen_PermissionDenied(t *testing.T) {
	source := newFakeSource()
	source.acquireErr = &core.DeviceError{Kind: core.DevicePermissionDenied, Cause: "NotAllowedError"}
	session := newTestSession(&fakeConnector{stream: newFakeStream()}, source)

	err := session.Open(context.Background())
	require.Error(t, err)

	ev := waitForState(t, session, StateError)
	assert.Contains(t, ev.Message, "grant camera and microphone access")
	// No media handles remain open afterward
	assert.True(t, source.isReleased())
}

func TestOpen_DeviceErrorMessages(t *testing.T) {
	tests := []struct {
		kind core.DeviceErrorKind
		want string
	}{
		{core.DeviceNotFound, "No camera or microphone found"},
		{core.DeviceBusy, "in use by another app"},
	}

	for _, tt := range tests {
		source := newFakeSource()
		source.acquireErr = &core.DeviceError{Kind: tt.kind, Cause: "test"}
		session := newTestSession(&fakeConnector{stream: newFakeStream()}, source)

		require.Error(t, session.Open(context.Background()))
		ev := waitForState(t, session, StateError)
		assert.Contains(t, ev.Message, tt.want)
	}
}

func TestOpen_ConnectFailure(t *testing.T) {
	source := newFakeSource()
	connector := &fakeConnector{err: &core.NetworkError{Op: "live_connect", Err: errors.New("dial failed")}}
	session := newTestSession(connector, source)

	require.Error(t, session.Open(context.Background()))

	ev := waitForState(t, session, StateError)
	assert.Contains(t, ev.Message, "internet")
	assert.True(t, source.isReleased())
}

func TestSession_AudioForwarding(t *testing.T) {
	source := newFakeSource()
	stream := newFakeStream()
	session := newTestSession(&fakeConnector{stream: stream}, source)

	require.NoError(t, session.Open(context.Background()))
	waitForState(t, session, StateConnected)

	source.frames <- make([]byte, 2048*2)
	source.frames <- make([]byte, 2048*2)

	assert.Eventually(t, func() bool { return stream.sentAudio() == 2 },
		time.Second, 5*time.Millisecond)

	require.NoError(t, session.Close())
	assert.Equal(t, StateIdle, session.State())
	assert.True(t, source.isReleased())
}

func TestSession_SpeakingAndInterrupt(t *testing.T) {
	source := newFakeSource()
	stream := newFakeStream()
	session := newTestSession(&fakeConnector{stream: stream}, source)

	require.NoError(t, session.Open(context.Background()))
	waitForState(t, session, StateConnected)

	// One second of model speech
	stream.inbound <- &ServerEvent{Audio: make([]byte, 24000*2)}

	var speaking Event
	deadline := time.After(2 * time.Second)
	for done := false; !done; {
		select {
		case ev := <-session.Events():
			if ev.Type == EventSpeaking && ev.Speaking {
				speaking = ev
				done = true
			}
		case <-deadline:
			t.Fatal("timed out waiting for speaking event")
		}
	}
	assert.True(t, speaking.Speaking)

	// Interruption clears the queue and ends speaking
	stream.inbound <- &ServerEvent{Interrupted: true}

	deadline = time.After(2 * time.Second)
	for done := false; !done; {
		select {
		case ev := <-session.Events():
			if ev.Type == EventSpeaking && !ev.Speaking {
				done = true
			}
		case <-deadline:
			t.Fatal("timed out waiting for speaking to end")
		}
	}

	require.NoError(t, session.Close())
}

func TestSession_StreamErrorTransitionsToError(t *testing.T) {
	source := newFakeSource()
	stream := newFakeStream()
	session := newTestSession(&fakeConnector{stream: stream}, source)

	require.NoError(t, session.Open(context.Background()))
	waitForState(t, session, StateConnected)

	// Server-side failure surfaces through Receive
	stream.Close()

	ev := waitForState(t, session, StateError)
	assert.Contains(t, ev.Message, "internet")
	assert.True(t, source.isReleased())
}

func TestSession_CloseIsIdempotent(t *testing.T) {
	source := newFakeSource()
	stream := newFakeStream()
	session := newTestSession(&fakeConnector{stream: stream}, source)

	require.NoError(t, session.Open(context.Background()))
	waitForState(t, session, StateConnected)

	require.NoError(t, session.Close())
	require.NoError(t, session.Close())
	assert.Equal(t, StateIdle, session.State())
}

func TestSession_RetryFromError(t *testing.T) {
	source := newFakeSource()
	source.acquireErr = &core.DeviceError{Kind: core.DevicePermissionDenied, Cause: "denied"}
	stream := newFakeStream()
	session := newTestSession(&fakeConnector{stream: stream}, source)

	require.Error(t, session.Open(context.Background()))
	waitForState(t, session, StateError)

	// Permission granted on the second attempt
	source.mu.Lock()
	source.acquireErr = nil
	source.mu.Unlock()

	require.NoError(t, session.Open(context.Background()))
	waitForState(t, session, StateConnected)
	require.NoError(t, session.Close())
}

func TestSession_DoubleOpenRejected(t *testing.T) {
	source := newFakeSource()
	stream := newFakeStream()
	session := newTestSession(&fakeConnector{stream: stream}, source)

	require.NoError(t, session.Open(context.Background()))
	waitForState(t, session, StateConnected)

	assert.Error(t, session.Open(context.Background()))
	require.NoError(t, session.Close())
}

func TestSession_FrameCapture(t *testing.T) {
	source := newFakeSource()
	stream := newFakeStream()
	session := newTestSession(&fakeConnector{stream: stream}, source)

	require.NoError(t, session.Open(context.Background()))
	waitForState(t, session, StateConnected)

	assert.Eventually(t, func() bool {
		stream.mu.Lock()
		defer stream.mu.Unlock()
		return len(stream.videoIn) >= 2
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, session.Close())
}

func TestSession_LateFailureAfterCloseStaysIdle(t *testing.T) {
	source := newFakeSource()
	stream := newFakeStream()
	session := newTestSession(&fakeConnector{stream: stream}, source)

	require.NoError(t, session.Open(context.Background()))
	waitForState(t, session, StateConnected)
	require.NoError(t, session.Close())
	require.Equal(t, StateIdle, session.State())

	// A stream failure delivered after teardown must not resurrect the
	// session into the error state.
	session.fail(networkErrorMessage)
	assert.Equal(t, StateIdle, session.State())
}
