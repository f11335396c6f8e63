package httpserver

import (
	"encoding/base64"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/scamshield/scamshield/internal/audio"
	"github.com/scamshield/scamshield/internal/live"
)

var liveUpgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// handleLive bridges one live session over a websocket.
//
// Client to server:
//
//	{"type":"start"}                         devices acquired, begin session
//	{"type":"media_error","name":"..."}      getUserMedia failed with this name
//	{"type":"frame","data":"<base64 jpeg>"}  latest camera frame
//	{"type":"stop"}                          end the session
//	binary message                           one PCM16 16kHz audio frame
//
// Server to client:
//
//	{"type":"state","state":"...","message":"..."}
//	{"type":"speaking","speaking":true}
//	{"type":"audio","id":"...","start_ms":...,"duration_ms":...,"data":"..."}
//	{"type":"audio_stop","id":"..."}
func (s *Server) handleLive(c *gin.Context) {
	conn, err := liveUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade live connection", zap.Error(err))
		return
	}
	defer conn.Close()

	wc := &wsConn{conn: conn}
	source := newWSMediaSource()
	pipeline := audio.NewPipeline(
		audio.NewSystemClock(),
		&wsSink{conn: wc},
		s.deps.Audio.OutputSampleRate,
		s.deps.Audio.OutputChannels,
		s.logger,
	)

	opts := []live.Option{}
	if s.deps.FrameInterval > 0 {
		opts = append(opts, live.WithFrameInterval(s.deps.FrameInterval))
	}
	if s.deps.Metrics != nil {
		opts = append(opts, live.WithMetrics(s.deps.Metrics))
	}
	session := live.NewSession(s.deps.LiveConnector, source, pipeline, s.logger, opts...)
	defer session.Close()

	// Forward session events to the client
	quit := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-quit:
				return
			case ev := <-session.Events():
				switch ev.Type {
				case live.EventStateChanged:
					_ = wc.writeJSON(map[string]interface{}{
						"type":    "state",
						"state":   ev.State.String(),
						"message": ev.Message,
					})
				case live.EventSpeaking:
					_ = wc.writeJSON(map[string]interface{}{
						"type":     "speaking",
						"speaking": ev.Speaking,
					})
				}
			}
		}
	}()

	opened := false
readLoop:
	for {
		msgType, raw, err := conn.ReadMessage()
		if err != nil {
			break
		}

		if msgType == websocket.BinaryMessage {
			source.pushAudio(raw)
			continue
		}

		msg, err := parseClientMessage(raw)
		if err != nil {
			s.logger.Warn("Ignoring malformed live message", zap.Error(err))
			continue
		}

		switch msg.Type {
		case "start":
			source.resolveAcquire(nil)
			if !opened {
				opened = true
				go func() {
					if err := session.Open(c.Request.Context()); err != nil {
						s.logger.Error("Live session open failed", zap.Error(err))
					}
				}()
			}

		case "media_error":
			source.resolveAcquire(deviceErrorFromName(msg.Name))
			if !opened {
				opened = true
				go func() {
					if err := session.Open(c.Request.Context()); err != nil {
						s.logger.Error("Live session open failed", zap.Error(err))
					}
				}()
			}

		case "frame":
			jpeg, err := base64.StdEncoding.DecodeString(msg.Data)
			if err != nil {
				s.logger.Warn("Ignoring malformed video frame", zap.Error(err))
				continue
			}
			source.setFrame(jpeg)

		case "stop":
			break readLoop
		}
	}

	_ = session.Close()
	close(quit)
	<-done
}
