package ratelimit

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"github.com/MrDNightCore/warden/internal/application/ports"
)

// Action names a rate-limited operation.
type Action string

const (
	ActionLogin    Action = "login"
	ActionRegister Action = "register"
)

// Rule is the attempt budget for one action.
type Rule struct {
	Limit  int64
	Window time.Duration
}

// DefaultRules returns the stock budgets: 5 login and 3 registration
// attempts per 5 minutes.
func DefaultRules() map[Action]Rule {
	return map[Action]Rule{
		ActionLogin:    {Limit: 5, Window: 5 * time.Minute},
		ActionRegister: {Limit: 3, Window: 5 * time.Minute},
	}
}

// Decision is the outcome of CheckAndRecord.
type Decision struct {
	Allowed   bool
	Remaining int64
	// RetryAfter is the time left in the current window when blocked. It is
	// for logs and operators only; handlers must not surface it to clients.
	RetryAfter time.Duration
}

var (
	ErrEmptyAction     = errors.New("ratelimit: action is required")
	ErrEmptyIdentifier = errors.New("ratelimit: identifier is required")
	ErrUnknownAction   = errors.New("ratelimit: no rule for action")
)

var (
	rateLimited = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "warden_rate_limited_total",
			Help: "Attempts blocked by the per-action rate limiter",
		},
		[]string{"action"},
	)
	storeFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "warden_attempt_store_failures_total",
			Help: "Attempt-store errors absorbed by the rate limiter",
		},
	)
)

// Limiter enforces a fixed attempt budget per (action, identifier) key. The
// window is fixed, starting at the first attempt for a key; a burst of up to
// twice the limit across a window boundary is accepted imprecision. Every
// attempt is recorded, including blocked ones, so hammering a blocked key
// does not push the reset out.
type Limiter struct {
	store      ports.AttemptStore
	rules      map[Action]Rule
	failClosed bool
	log        zerolog.Logger
}

// NewLimiter creates a limiter over store. When failClosed is false (the
// default deployment posture) a store outage admits traffic instead of
// rejecting all of it; either way the outage is logged and counted.
func NewLimiter(store ports.AttemptStore, rules map[Action]Rule, failClosed bool, log zerolog.Logger) *Limiter {
	if rules == nil {
		rules = DefaultRules()
	}
	return &Limiter{store: store, rules: rules, failClosed: failClosed, log: log}
}

// CheckAndRecord counts one attempt for (action, identifier) and decides
// whether it is within budget. The returned error covers caller mistakes
// only (empty inputs, unknown action); store outages are absorbed into the
// decision per the configured failure posture.
func (l *Limiter) CheckAndRecord(ctx context.Context, action Action, identifier string) (Decision, error) {
	if action == "" {
		return Decision{}, ErrEmptyAction
	}
	if identifier == "" {
		return Decision{}, ErrEmptyIdentifier
	}
	rule, ok := l.rules[action]
	if !ok {
		return Decision{}, ErrUnknownAction
	}

	key := "rate_limit:" + string(action) + ":" + identifier
	count, expiresIn, err := l.store.Incr(ctx, key, rule.Window)
	if err != nil {
		storeFailures.Inc()
		l.log.Warn().Err(err).Str("action", string(action)).Bool("fail_closed", l.failClosed).
			Msg("attempt store unavailable")
		if l.failClosed {
			return Decision{Allowed: false, RetryAfter: rule.Window}, nil
		}
		return Decision{Allowed: true, Remaining: rule.Limit}, nil
	}

	if count > rule.Limit {
		rateLimited.WithLabelValues(string(action)).Inc()
		l.log.Warn().Str("action", string(action)).Str("identifier", identifier).
			Dur("retry_after", expiresIn).Msg("rate limit exceeded")
		return Decision{Allowed: false, RetryAfter: expiresIn}, nil
	}
	return Decision{Allowed: true, Remaining: rule.Limit - count}, nil
}
