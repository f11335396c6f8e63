package trustlist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestIsTrusted(t *testing.T) {
	checker := NewChecker([]string{"AD-HDFCBK", "sbiinb", " jiopay "}, zap.NewNop())

	assert.True(t, checker.IsTrusted("AD-HDFCBK"))
	assert.True(t, checker.IsTrusted("ad-hdfcbk"))
	// Bare entity ID matches regardless of operator prefix
	assert.True(t, checker.IsTrusted("JM-SBIINB"))
	assert.True(t, checker.IsTrusted("JIOPAY"))

	assert.False(t, checker.IsTrusted("+91 9876543210"))
	assert.False(t, checker.IsTrusted("AD-ICICIB"))
	assert.False(t, checker.IsTrusted(""))
}

func TestIsTrusted_EmptyList(t *testing.T) {
	checker := NewChecker(nil, nil)
	assert.False(t, checker.IsTrusted("AD-HDFCBK"))
}
