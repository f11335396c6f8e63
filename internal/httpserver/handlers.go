package httpserver

import (
	"encoding/base64"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/scamshield/scamshield/internal/core"
	"github.com/scamshield/scamshield/internal/utils"
)

// analyzeRequest is the wire form of an analysis request. Binary content
// arrives base64-encoded in data.
type analyzeRequest struct {
	Type     string `json:"type" binding:"required"`
	Context  string `json:"context"`
	Language string `json:"language"`
	Content  string `json:"content"`
	Data     string `json:"data"`
	MIMEType string `json:"mime_type"`
	Sender   string `json:"sender"`
}

type transcribeRequest struct {
	Audio    string `json:"audio" binding:"required"`
	MIMEType string `json:"mime_type"`
}

type speechRequest struct {
	Text     string `json:"text" binding:"required"`
	Language string `json:"language"`
}

func (s *Server) handleAnalyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	analysisReq := &core.AnalysisRequest{
		Content:  req.Content,
		MIMEType: req.MIMEType,
		Type:     core.AnalysisType(req.Type),
		Context:  core.ScamContext(req.Context),
		Language: language(req.Language),
		Sender:   req.Sender,
	}
	if analysisReq.Context == "" {
		analysisReq.Context = core.ContextOther
	}

	if req.Data != "" {
		binary, err := base64.StdEncoding.DecodeString(req.Data)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "data is not valid base64"})
			return
		}
		analysisReq.Binary = binary
	}

	start := time.Now()
	result, err := s.deps.Service.Analyze(c.Request.Context(), analysisReq)
	if s.deps.Metrics != nil {
		s.deps.Metrics.AnalysisDuration.Observe(time.Since(start).Seconds())
		s.deps.Metrics.AnalysesTotal.WithLabelValues(req.Type, outcomeLabel(result, err)).Inc()
	}
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (s *Server) handleTranscribe(c *gin.Context) {
	var req transcribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	audio, err := base64.StdEncoding.DecodeString(req.Audio)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "audio is not valid base64"})
		return
	}

	text, err := s.deps.Transcriber.Transcribe(c.Request.Context(), audio, req.MIMEType)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"text": text})
}

func (s *Server) handleAlerts(c *gin.Context) {
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat is required and must be a number"})
		return
	}
	lng, err := strconv.ParseFloat(c.Query("lng"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lng is required and must be a number"})
		return
	}

	// Always answers: failures degrade to the fixed fallback payload
	alert := s.deps.Service.RegionalAlerts(c.Request.Context(), lat, lng)
	c.JSON(http.StatusOK, alert)
}

func (s *Server) handleScenarios(c *gin.Context) {
	scenarios := s.deps.Service.DojoScenarios(c.Request.Context(), language(c.Query("lang")))
	c.JSON(http.StatusOK, scenarios)
}

func (s *Server) handleSpeech(c *gin.Context) {
	var req speechRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	pcm, err := s.deps.Speech.Synthesize(c.Request.Context(), req.Text, language(req.Language))
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"audio":       base64.StdEncoding.EncodeToString(pcm),
		"sample_rate": s.deps.Audio.OutputSampleRate,
		"channels":    s.deps.Audio.OutputChannels,
	})
}

// writeError maps the error taxonomy to HTTP status codes.
func (s *Server) writeError(c *gin.Context, err error) {
	switch {
	case core.IsConfigurationError(err):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	case core.IsNetworkError(err):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	case core.IsValidationError(err):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		s.logger.Error("Unclassified handler error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func language(code string) core.Language {
	return utils.ResolveLanguage(code)
}

func outcomeLabel(result *core.AnalysisResult, err error) string {
	switch {
	case err != nil:
		return "error"
	case result.IsScam:
		return "scam"
	default:
		return "safe"
	}
}
