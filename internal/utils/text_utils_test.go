package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/scamshield/scamshield/internal/core"
)

func TestPrepareForSpeech_StripsMarkdown(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())

	got := tp.PrepareForSpeech("**Warning**: do _not_ share your `OTP` # ever")
	assert.Equal(t, "Warning: do not share your OTP  ever", got)
}

func TestPrepareForSpeech_CapsLength(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())

	got := tp.PrepareForSpeech(strings.Repeat("a", 1000))
	assert.Equal(t, 400, len(got))
	assert.True(t, strings.HasSuffix(got, "..."))
}

func TestTruncateText_ValidUTF8(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())

	// Multibyte rune straddling the cut point must not produce invalid UTF-8
	text := strings.Repeat("x", 9) + "₹" + strings.Repeat("y", 10)
	got := tp.TruncateText(text, 10)
	assert.True(t, strings.HasPrefix(got, strings.Repeat("x", 9)))
	assert.True(t, strings.Contains(got, "truncated"))
}

func TestResolveLanguage(t *testing.T) {
	tests := []struct {
		tag  string
		want core.Language
	}{
		{"en", core.LanguageEnglish},
		{"en-IN", core.LanguageEnglish},
		{"hi", core.LanguageHindi},
		{"hi-IN", core.LanguageHindi},
		{"or", core.LanguageOdia},
		{"or-IN", core.LanguageOdia},
		{"", core.LanguageEnglish},
		{"zz-bogus", core.LanguageEnglish},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ResolveLanguage(tt.tag), "tag %q", tt.tag)
	}
}

func TestLanguageDisplayName(t *testing.T) {
	assert.Equal(t, "English", LanguageDisplayName(core.LanguageEnglish))
	assert.Equal(t, "Hindi", LanguageDisplayName(core.LanguageHindi))
	assert.Equal(t, "Odia", LanguageDisplayName(core.LanguageOdia))
}
