package core

import (
	"context"
)

// ContentAnalyzer defines the interface for model-backed risk analysis.
type ContentAnalyzer interface {
	// AnalyzeContent judges one request and returns a validated result.
	// It fails closed: a response that does not match the declared schema
	// yields a ValidationError, never a partial result.
	AnalyzeContent(ctx context.Context, req *AnalysisRequest) (*AnalysisResult, error)
}

// IntelligenceClient defines the interface for grounded regional lookups.
type IntelligenceClient interface {
	// RegionalAlerts resolves coordinates to a place and summarizes recent
	// scam activity there, with best-effort web citations.
	RegionalAlerts(ctx context.Context, latitude, longitude float64) (*RegionalAlert, error)
}

// ScenarioSource defines the interface for dojo scenario generation.
type ScenarioSource interface {
	// Scenarios produces a batch of quiz scenarios in the given language.
	Scenarios(ctx context.Context, language Language) ([]DojoScenario, error)
}

// Transcriber defines the interface for audio-to-text conversion.
type Transcriber interface {
	// Transcribe converts a recorded audio clip to its spoken text.
	Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error)
}

// SpeechSynthesizer defines the interface for spoken-advice generation.
type SpeechSynthesizer interface {
	// Synthesize renders text as 24kHz mono PCM16 audio.
	Synthesize(ctx context.Context, text string, language Language) ([]byte, error)
}

// CacheRepository defines the interface for caching analysis results.
type CacheRepository interface {
	// Get retrieves a cached entry by content hash.
	Get(ctx context.Context, contentHash string) (*CacheEntry, error)

	// Set stores a cache entry.
	Set(ctx context.Context, entry *CacheEntry) error

	// Delete removes a cache entry.
	Delete(ctx context.Context, contentHash string) error

	// Cleanup removes expired entries.
	Cleanup(ctx context.Context) error
}
