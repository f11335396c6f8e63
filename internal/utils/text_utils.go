package utils

import (
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/scamshield/scamshield/internal/core"
)

// TextProcessor provides utilities for preparing user content and model
// output text.
type TextProcessor struct {
	logger *zap.Logger
}

// NewTextProcessor creates a new TextProcessor
func NewTextProcessor(logger *zap.Logger) *TextProcessor {
	return &TextProcessor{
		logger: logger,
	}
}

// TruncateText safely truncates text to the specified maximum size
// and ensures the result is valid UTF-8
func (tp *TextProcessor) TruncateText(text string, maxSize int) string {
	// If no limit or text is already within limits, return as is
	if maxSize <= 0 || len(text) <= maxSize {
		return text
	}

	// First truncate to the byte limit
	truncated := text[:maxSize]

	// Ensure the truncated text ends with a valid UTF-8 sequence
	for !utf8.ValidString(truncated) && len(truncated) > 0 {
		// Remove bytes until we have valid UTF-8
		truncated = truncated[:len(truncated)-1]
	}

	tp.logger.Debug("Text truncated",
		zap.Int("original_size", len(text)),
		zap.Int("truncated_size", len(truncated)),
		zap.Int("max_size", maxSize))

	return truncated + "\n[... Content truncated due to size limits ...]"
}

// SanitizeUTF8 ensures the string contains only valid UTF-8 characters
func (tp *TextProcessor) SanitizeUTF8(text string) string {
	if utf8.ValidString(text) {
		return text
	}

	// Replace invalid UTF-8 sequences with the Unicode replacement character
	result := make([]rune, 0, len(text))
	for i, r := range text {
		if r == utf8.RuneError {
			_, size := utf8.DecodeRuneInString(text[i:])
			if size == 1 {
				// Skip invalid UTF-8 sequences
				continue
			}
		}
		result = append(result, r)
	}

	tp.logger.Debug("Text sanitized",
		zap.Int("original_size", len(text)),
		zap.Int("sanitized_size", len(string(result))))

	return string(result)
}

// ProcessText truncates and sanitizes text in one operation
func (tp *TextProcessor) ProcessText(text string, maxSize int) string {
	// First truncate
	truncated := tp.TruncateText(text, maxSize)

	// Then sanitize
	sanitized := tp.SanitizeUTF8(truncated)

	return sanitized
}

const speechMaxChars = 400

// PrepareForSpeech strips markdown characters that confuse speech synthesis
// and caps the length to keep generation within limits.
func (tp *TextProcessor) PrepareForSpeech(text string) string {
	clean := strings.NewReplacer("*", "", "_", "", "#", "", "`", "").Replace(text)
	clean = strings.TrimSpace(clean)

	if len(clean) > speechMaxChars {
		truncated := clean[:speechMaxChars-3]
		for !utf8.ValidString(truncated) && len(truncated) > 0 {
			truncated = truncated[:len(truncated)-1]
		}
		clean = truncated + "..."
	}

	return clean
}

var supportedLanguages = []language.Tag{
	language.English,         // en: first entry is the fallback
	language.Hindi,           // hi
	language.MustParse("or"), // Odia has no predefined tag constant
}

var languageMatcher = language.NewMatcher(supportedLanguages)

// ResolveLanguage maps an arbitrary BCP-47 tag from the client (e.g.
// "en-IN", "hi") to one of the supported analysis languages, falling back
// to English.
func ResolveLanguage(tag string) core.Language {
	parsed, err := language.Parse(tag)
	if err != nil {
		return core.LanguageEnglish
	}
	_, index, _ := languageMatcher.Match(parsed)
	switch index {
	case 1:
		return core.LanguageHindi
	case 2:
		return core.LanguageOdia
	default:
		return core.LanguageEnglish
	}
}

// LanguageDisplayName returns the English name used inside model
// instructions ("Provide advice in Hindi").
func LanguageDisplayName(l core.Language) string {
	switch l {
	case core.LanguageHindi:
		return "Hindi"
	case core.LanguageOdia:
		return "Odia"
	default:
		return "English"
	}
}
