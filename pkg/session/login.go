package session

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/openlearnco/classgate/pkg/auth"
	"github.com/openlearnco/classgate/pkg/backend"
	"github.com/openlearnco/classgate/pkg/observability"
	"github.com/openlearnco/classgate/pkg/ratelimit"
)

// Credentials are the login form fields
type Credentials struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

// LoginResult is the outcome of a login attempt. Failures deliberately
// carry generic messages: a caller cannot tell a wrong password from a
// nonexistent account or a provider outage.
type LoginResult struct {
	Success bool       `json:"success"`
	User    *auth.User `json:"user,omitempty"`
	Error   string     `json:"error,omitempty"`

	// RateLimitResetAt is set (epoch ms) when the attempt was throttled
	RateLimitResetAt int64 `json:"rateLimitResetAt,omitempty"`
	// RateLimitRemaining is the minimum remaining-attempt count across
	// both limiter namespaces, surfaced on failed credential checks
	RateLimitRemaining int `json:"rateLimitRemaining,omitempty"`

	// Token is the provider-issued JWT on success. Never serialized; the
	// handler moves it into an HttpOnly cookie.
	Token string `json:"-"`
}

// Orchestrator ties the rate limiter, the identity provider, and session
// composition together for the login use case.
type Orchestrator struct {
	limiter  ratelimit.Limiter
	provider Provider
	logger   *observability.Logger
	metrics  *observability.Metrics
}

// NewOrchestrator creates a login orchestrator
func NewOrchestrator(limiter ratelimit.Limiter, provider Provider, logger *observability.Logger, metrics *observability.Metrics) *Orchestrator {
	return &Orchestrator{
		limiter:  limiter,
		provider: provider,
		logger:   logger,
		metrics:  metrics,
	}
}

// Login runs the full login flow for one attempt from clientIP.
//
// The limiter is consulted for two independent namespaces: the source
// address (distributed brute force: many accounts, one network) and the
// account identifier (targeted brute force: one account, many networks).
// Both checks count the attempt; neither is reverted if the request is
// later cancelled, since the attempt genuinely occurred.
func (o *Orchestrator) Login(ctx context.Context, creds Credentials, clientIP string) LoginResult {
	ipResult := o.limiter.Check(ctx, "ip:"+clientIP)
	if !ipResult.Allowed {
		o.countAttempt("rate_limited")
		if o.metrics != nil {
			o.metrics.RateLimitRejections.WithLabelValues("ip").Inc()
		}
		return LoginResult{
			Error: fmt.Sprintf(
				"Too many login attempts from your network. Please try again in %d minutes.",
				minutesUntil(ipResult.ResetAt)),
			RateLimitResetAt: ipResult.ResetAt.UnixMilli(),
		}
	}

	accountResult := o.limiter.Check(ctx, "account:"+creds.Identifier)
	if !accountResult.Allowed {
		o.countAttempt("rate_limited")
		if o.metrics != nil {
			o.metrics.RateLimitRejections.WithLabelValues("account").Inc()
		}
		return LoginResult{
			Error: fmt.Sprintf(
				"Too many login attempts for this account. Please try again in %d minutes.",
				minutesUntil(accountResult.ResetAt)),
			RateLimitResetAt: accountResult.ResetAt.UnixMilli(),
		}
	}

	minRemaining := ipResult.Remaining
	if accountResult.Remaining < minRemaining {
		minRemaining = accountResult.Remaining
	}

	resp, err := o.provider.Login(ctx, creds.Identifier, creds.Password)
	if err != nil {
		var apiErr *backend.APIError
		if errors.As(err, &apiErr) {
			// Wrong password and unknown account look identical
			o.countAttempt("invalid_credentials")
			return LoginResult{
				Error:              "Login failed. Please check your credentials.",
				RateLimitRemaining: minRemaining,
			}
		}

		// Network or timeout failure. Reported just as generically so the
		// response does not reveal which stage failed.
		o.countAttempt("provider_unavailable")
		o.logger.WithError(err).Warn("identity provider unreachable during login")
		return LoginResult{
			Error:              "An unknown error occurred.",
			RateLimitRemaining: minRemaining,
		}
	}

	// A legitimate login should not be penalized for earlier typos
	o.limiter.Reset(ctx, "ip:"+clientIP)
	o.limiter.Reset(ctx, "account:"+creds.Identifier)
	o.countAttempt("success")

	// Best-effort profile fetch for the role; the credential-check
	// response is the fallback
	user := &resp.User
	if profile, err := o.provider.Me(ctx, resp.JWT); err == nil {
		user = profile
	} else {
		o.logger.WithError(err).Warn("profile fetch after login failed, using login response identity")
	}

	return LoginResult{
		Success: true,
		User:    user,
		Token:   resp.JWT,
	}
}

func (o *Orchestrator) countAttempt(outcome string) {
	if o.metrics != nil {
		o.metrics.LoginAttemptsTotal.WithLabelValues(outcome).Inc()
	}
}

// minutesUntil reports the whole minutes until t, rounded up, never
// below 1 so the user always gets an actionable wait time.
func minutesUntil(t time.Time) int {
	minutes := int(math.Ceil(time.Until(t).Minutes()))
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}
