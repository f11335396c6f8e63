package httpserver

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/scamshield/scamshield/internal/config"
	"github.com/scamshield/scamshield/internal/core"
)

type stubAnalyzer struct {
	result *core.AnalysisResult
	err    error
}

func (s *stubAnalyzer) AnalyzeContent(ctx context.Context, req *core.AnalysisRequest) (*core.AnalysisResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := *s.result
	return &out, nil
}

type stubIntelligence struct {
	alert *core.RegionalAlert
	err   error
}

func (s *stubIntelligence) RegionalAlerts(ctx context.Context, lat, lng float64) (*core.RegionalAlert, error) {
	return s.alert, s.err
}

type stubScenarios struct {
	scenarios []core.DojoScenario
	err       error
}

func (s *stubScenarios) Scenarios(ctx context.Context, language core.Language) ([]core.DojoScenario, error) {
	return s.scenarios, s.err
}

type stubTranscriber struct {
	text string
	err  error
}

func (s *stubTranscriber) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	return s.text, s.err
}

type stubSpeech struct {
	pcm []byte
	err error
}

func (s *stubSpeech) Synthesize(ctx context.Context, text string, language core.Language) ([]byte, error) {
	return s.pcm, s.err
}

func newTestServer(t *testing.T, analyzer core.ContentAnalyzer, intel core.IntelligenceClient, scen core.ScenarioSource) *Server {
	t.Helper()

	logger := zap.NewNop()
	service := core.NewAnalysisService(analyzer, intel, scen, nil, nil, logger, false, time.Hour)

	cfg := config.NewFromViper(config.NewEmptyViper())
	server, err := NewServer(cfg, Dependencies{
		Service:     service,
		Transcriber: &stubTranscriber{text: "hello"},
		Speech:      &stubSpeech{pcm: []byte{0, 1, 2, 3}},
		Audio:       cfg.GetAudio(),
		Logger:      logger,
	})
	require.NoError(t, err)
	return server
}

func scamResult() *core.AnalysisResult {
	return &core.AnalysisResult{
		IsScam:    true,
		RiskScore: 90,
		ScamType:  "UPI Fraud",
		Advice:    "Do not approve the request.",
		Triggers:  []string{"urgency"},
	}
}

func doJSON(t *testing.T, server *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHandleAnalyze(t *testing.T) {
	server := newTestServer(t, &stubAnalyzer{result: scamResult()}, &stubIntelligence{}, &stubScenarios{})

	rec := doJSON(t, server, http.MethodPost, "/api/v1/analyze",
		`{"type":"text","context":"sms","language":"en","content":"Your KYC expired"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var result core.AnalysisResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.IsScam)
	assert.Equal(t, 90, result.RiskScore)
	assert.Equal(t, "UPI Fraud", result.ScamType)
}

func TestHandleAnalyze_BadRequest(t *testing.T) {
	server := newTestServer(t, &stubAnalyzer{result: scamResult()}, &stubIntelligence{}, &stubScenarios{})

	rec := doJSON(t, server, http.MethodPost, "/api/v1/analyze", `{"content":"no type"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleAnalyze_InvalidBase64(t *testing.T) {
	server := newTestServer(t, &stubAnalyzer{result: scamResult()}, &stubIntelligence{}, &stubScenarios{})

	rec := doJSON(t, server, http.MethodPost, "/api/v1/analyze",
		`{"type":"image","data":"%%%not-base64%%%"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleAnalyze_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", &core.ValidationError{Reason: "bad schema"}, http.StatusUnprocessableEntity},
		{"network", &core.NetworkError{Op: "generate", Err: errors.New("timeout")}, http.StatusBadGateway},
		{"configuration", core.ErrMissingAPIKey, http.StatusServiceUnavailable},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newTestServer(t, &stubAnalyzer{err: tt.err}, &stubIntelligence{}, &stubScenarios{})
			rec := doJSON(t, server, http.MethodPost, "/api/v1/analyze",
				`{"type":"text","content":"x"}`)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestHandleAlerts(t *testing.T) {
	alert := &core.RegionalAlert{
		Location:  "Bhubaneswar, Odisha",
		RiskLevel: core.RiskHigh,
		SafetyTip: "Verify the caller.",
	}
	server := newTestServer(t, &stubAnalyzer{}, &stubIntelligence{alert: alert}, &stubScenarios{})

	rec := doJSON(t, server, http.MethodGet, "/api/v1/alerts?lat=20.29&lng=85.82", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got core.RegionalAlert
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Bhubaneswar, Odisha", got.Location)
}

func TestHandleAlerts_FallbackOnFailure(t *testing.T) {
	server := newTestServer(t, &stubAnalyzer{}, &stubIntelligence{err: errors.New("offline")}, &stubScenarios{})

	rec := doJSON(t, server, http.MethodGet, "/api/v1/alerts?lat=20.29&lng=85.82", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got core.RegionalAlert
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "India (Connection Error)", got.Location)
	assert.Equal(t, core.RiskHigh, got.RiskLevel)
}

func TestHandleAlerts_MissingCoordinates(t *testing.T) {
	server := newTestServer(t, &stubAnalyzer{}, &stubIntelligence{}, &stubScenarios{})

	rec := doJSON(t, server, http.MethodGet, "/api/v1/alerts", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleScenarios_FallbackOnFailure(t *testing.T) {
	server := newTestServer(t, &stubAnalyzer{}, &stubIntelligence{}, &stubScenarios{err: errors.New("offline")})

	rec := doJSON(t, server, http.MethodGet, "/api/v1/dojo/scenarios?lang=hi", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got []core.DojoScenario
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 2)
	assert.True(t, got[0].IsScam)
	assert.False(t, got[1].IsScam)
}

func TestHandleTranscribe(t *testing.T) {
	server := newTestServer(t, &stubAnalyzer{}, &stubIntelligence{}, &stubScenarios{})

	audio := base64.StdEncoding.EncodeToString([]byte("webm-bytes"))
	rec := doJSON(t, server, http.MethodPost, "/api/v1/transcribe",
		`{"audio":"`+audio+`","mime_type":"audio/webm"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "hello")
}

func TestHandleSpeech(t *testing.T) {
	server := newTestServer(t, &stubAnalyzer{}, &stubIntelligence{}, &stubScenarios{})

	rec := doJSON(t, server, http.MethodPost, "/api/v1/speech",
		`{"text":"This looks like a scam.","language":"en"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var got struct {
		Audio      string `json:"audio"`
		SampleRate int    `json:"sample_rate"`
		Channels   int    `json:"channels"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 24000, got.SampleRate)
	assert.Equal(t, 1, got.Channels)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte{0, 1, 2, 3}), got.Audio)
}

func TestHandleHealth(t *testing.T) {
	server := newTestServer(t, &stubAnalyzer{}, &stubIntelligence{}, &stubScenarios{})

	rec := doJSON(t, server, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
