package core

import (
	"time"
)

// AnalysisType declares what kind of content an analysis request carries.
type AnalysisType string

const (
	AnalysisTypeText  AnalysisType = "text"
	AnalysisTypeImage AnalysisType = "image"
	AnalysisTypeURL   AnalysisType = "url"
)

// ScamContext tags where the user encountered the content.
type ScamContext string

const (
	ContextSMS         ScamContext = "sms"
	ContextEmail       ScamContext = "email"
	ContextWhatsApp    ScamContext = "whatsapp"
	ContextSocialMedia ScamContext = "social_media"
	ContextDatingApp   ScamContext = "dating_app"
	ContextMarketplace ScamContext = "marketplace"
	ContextBanking     ScamContext = "banking"
	ContextURL         ScamContext = "url"
	ContextOther       ScamContext = "other"
)

// Language selects the language for advice and trigger text.
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageHindi   Language = "hi"
	LanguageOdia    Language = "or"
)

// AnalysisRequest is one user-submitted piece of content awaiting a risk
// judgment. It is immutable once built.
type AnalysisRequest struct {
	// Content holds the literal text for text/url requests. For image
	// requests it is empty and Binary carries the payload.
	Content string
	// Binary holds raw image bytes for image requests.
	Binary []byte
	// MIMEType describes Binary (e.g. image/jpeg). Empty for text requests.
	MIMEType string
	Type     AnalysisType
	Context  ScamContext
	Language Language
	// Sender is the claimed sender identifier, when the surface knows it.
	Sender string
}

// AnalysisResult is the structured risk assessment for one request.
// RiskScore is always within [0,100]; Language mirrors the request language.
type AnalysisResult struct {
	IsScam       bool     `json:"is_scam"`
	RiskScore    int      `json:"risk_score"`
	ScamType     string   `json:"scam_type"`
	Advice       string   `json:"advice"`
	Triggers     []string `json:"triggers"`
	Language     Language `json:"language"`
	AnalyzedAt   time.Time `json:"analyzed_at"`
	ModelUsed    string    `json:"model_used"`
	ProcessingID string    `json:"processing_id"`
}

// RiskLevel bands a regional alert.
type RiskLevel string

const (
	RiskLow      RiskLevel = "Low"
	RiskMedium   RiskLevel = "Medium"
	RiskHigh     RiskLevel = "High"
	RiskCritical RiskLevel = "Critical"
)

// ScamTrend is one reported scam pattern with an estimated report count.
type ScamTrend struct {
	Title string `json:"title"`
	Count int    `json:"count"`
}

// Source is a web citation extracted from grounding metadata.
type Source struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

// RegionalAlert summarizes recent scam activity around a location.
// Sources is best-effort: empty when the response carried no grounding
// metadata.
type RegionalAlert struct {
	Location        string      `json:"location"`
	RiskLevel       RiskLevel   `json:"riskLevel"`
	TopScams        []ScamTrend `json:"topScams"`
	RecentIncidents []string    `json:"recentIncidents"`
	SafetyTip       string      `json:"safetyTip"`
	Sources         []Source    `json:"sources,omitempty"`
}

// Difficulty grades a dojo scenario.
type Difficulty string

const (
	DifficultyEasy Difficulty = "Easy"
	DifficultyHard Difficulty = "Hard"
)

// DojoScenario is one quiz item: a message plus its ground-truth label and
// an educational explanation.
type DojoScenario struct {
	ID         string     `json:"id"`
	Sender     string     `json:"sender"`
	Text       string     `json:"text"`
	IsScam     bool       `json:"isScam"`
	Reason     string     `json:"reason"`
	Difficulty Difficulty `json:"difficulty"`
}

// CacheEntry is a completed analysis result stored for reuse. Only
// successful analyses are cached; failures never produce an entry.
type CacheEntry struct {
	ContentHash string
	Result      AnalysisResult
	LastSeen    time.Time
	ExpiresAt   time.Time
}
