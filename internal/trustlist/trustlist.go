// Package trustlist short-circuits analysis for verified transactional
// sender IDs (DLT headers like AD-HDFCBK or JM-SBIINB). Messages from a
// trusted header are reported safe without a model call.
package trustlist

import (
	"strings"

	"go.uber.org/zap"
)

// Checker provides functionality to check if sender IDs are trusted
type Checker struct {
	senders map[string]struct{}
	logger  *zap.Logger
}

// NewChecker creates a new trustlist checker
func NewChecker(senders []string, logger *zap.Logger) *Checker {
	// Normalize sender IDs (uppercase, trimmed)
	normalized := make(map[string]struct{}, len(senders))
	for _, s := range senders {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s != "" {
			normalized[s] = struct{}{}
		}
	}

	if len(normalized) > 0 && logger != nil {
		logger.Info("Initialized trustlist checker", zap.Int("senders", len(normalized)))
	}

	return &Checker{
		senders: normalized,
		logger:  logger,
	}
}

// IsTrusted checks if the sender ID is in the trustlist. DLT headers carry
// an operator prefix ("AD-HDFCBK"); both the full header and the bare
// entity ID ("HDFCBK") match a trustlist entry for the entity.
func (c *Checker) IsTrusted(sender string) bool {
	if len(c.senders) == 0 {
		return false
	}

	normalized := strings.ToUpper(strings.TrimSpace(sender))
	if _, ok := c.senders[normalized]; ok {
		c.debugHit(normalized)
		return true
	}

	// Strip the operator/route prefix and retry
	if i := strings.IndexByte(normalized, '-'); i > 0 && i < len(normalized)-1 {
		entity := normalized[i+1:]
		if _, ok := c.senders[entity]; ok {
			c.debugHit(entity)
			return true
		}
	}

	return false
}

func (c *Checker) debugHit(id string) {
	if c.logger != nil {
		c.logger.Debug("Sender is trusted", zap.String("sender_id", id))
	}
}
