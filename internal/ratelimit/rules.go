package ratelimit

import (
	"errors"
	"time"

	"github.com/lewis-cheung/grocery-bot/pkg/config"
)

// Rules encapsulates configured rate limits and helper methods.
type Rules struct {
	config config.RateLimitConfig
}

// NewRules constructs rate limiting rules from configuration settings.
func NewRules(cfg config.RateLimitConfig) *Rules {
	return &Rules{config: cfg}
}

// Enabled reports whether rate limiting is switched on.
func (r *Rules) Enabled() bool {
	return r.config.Enabled
}

// IsWhitelisted returns true if the userID bypasses rate limits.
func (r *Rules) IsWhitelisted(userID int64) bool {
	for _, id := range r.config.Whitelist {
		if id == userID {
			return true
		}
	}
	return false
}

// GetPerUserLimit returns the per-user rate limiting rule.
func (r *Rules) GetPerUserLimit() (int, time.Duration, error) {
	rule := r.config.PerUser
	if rule.Limit <= 0 {
		return 0, 0, errors.New("per-user limit is not set")
	}
	if rule.Window <= 0 {
		return 0, 0, errors.New("window duration is not set")
	}
	return rule.Limit, rule.Window, nil
}
