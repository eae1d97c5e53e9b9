package ratelimit

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/blissevent/invitation/internal/config"
	internalsettings "github.com/blissevent/invitation/internal/settings"
	log "github.com/sirupsen/logrus"
)

// SettingsReader supplies runtime overrides stored in the settings table.
type SettingsReader interface {
	Value(ctx context.Context, key string) (json.RawMessage, bool, error)
}

// Quotas resolves the effective quota per action: a settings override wins
// over the configured default.
type Quotas struct {
	defaults map[string]Quota
	settings SettingsReader
}

// NewQuotas constructs a resolver. settings may be nil.
func NewQuotas(defaults map[string]Quota, settings SettingsReader) *Quotas {
	copied := make(map[string]Quota, len(defaults))
	for action, quota := range defaults {
		copied[action] = quota
	}
	return &Quotas{defaults: copied, settings: settings}
}

// DefaultQuotas maps the configured per-action quotas.
func DefaultQuotas(cfg config.RateLimitConfig) map[string]Quota {
	return map[string]Quota{
		ActionLogin: {Max: cfg.Login.Max, Window: cfg.Login.Window},
		ActionRSVP:  {Max: cfg.RSVP.Max, Window: cfg.RSVP.Window},
		ActionGift:  {Max: cfg.Gift.Max, Window: cfg.Gift.Window},
		ActionAdmin: {Max: cfg.Admin.Max, Window: cfg.Admin.Window},
	}
}

// For returns the quota for action. Unreadable overrides fall back to the default.
func (q *Quotas) For(ctx context.Context, action string) (Quota, error) {
	if q == nil {
		return Quota{}, fmt.Errorf("%w: no quotas configured", ErrInvalidArgument)
	}
	quota, ok := q.defaults[action]
	if !ok {
		return Quota{}, fmt.Errorf("%w: unknown action %q", ErrInvalidArgument, action)
	}
	if q.settings == nil {
		return quota, nil
	}

	upper := strings.ToUpper(action)
	if raw, found := q.lookup(ctx, fmt.Sprintf(internalsettings.RateLimitMaxKeyFormat, upper)); found {
		if maxAttempts, okParse := internalsettings.ParsePositiveInt(raw); okParse {
			quota.Max = maxAttempts
		}
	}
	if raw, found := q.lookup(ctx, fmt.Sprintf(internalsettings.RateLimitWindowKeyFormat, upper)); found {
		if seconds, okParse := internalsettings.ParsePositiveInt(raw); okParse {
			quota.Window = time.Duration(seconds) * time.Second
		}
	}
	return quota, nil
}

func (q *Quotas) lookup(ctx context.Context, key string) (json.RawMessage, bool) {
	raw, found, errValue := q.settings.Value(ctx, key)
	if errValue != nil {
		log.WithError(errValue).WithField("key", key).Warn("rate limit: settings override unavailable, using default")
		return nil, false
	}
	return raw, found
}
