// Package observability provides structured logging and Prometheus metrics.
package observability

import (
	"sync"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RateLimitDenials counts throttled attempts by operation.
	RateLimitDenials = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gatehouse_ratelimit_denials_total",
		Help: "Total number of requests denied by the rate limiter",
	}, []string{"operation"})

	// LoginOutcomes counts login attempts by result.
	LoginOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gatehouse_login_outcomes_total",
		Help: "Total number of login attempts by outcome",
	}, []string{"outcome"})

	// SignupOutcomes counts signup submissions by result.
	SignupOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gatehouse_signup_outcomes_total",
		Help: "Total number of signup submissions by outcome",
	}, []string{"outcome"})

	// AdminActions counts state-machine transitions driven by admins.
	AdminActions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gatehouse_admin_actions_total",
		Help: "Total number of admin approve/decline actions by target and action",
	}, []string{"target", "action"})

	// RedisErrors counts cache errors by command so degraded caching is visible.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gatehouse_redis_errors_total",
		Help: "Total number of Redis errors by command",
	}, []string{"command"})
)

// Outcome labels for LoginOutcomes and SignupOutcomes.
const (
	OutcomeSuccess     = "success"
	OutcomeBadInput    = "bad_input"
	OutcomeBadPassword = "bad_credentials"
	OutcomeNotApproved = "not_approved"
	OutcomeConflict    = "conflict"
	OutcomeError       = "error"
)

var (
	promOnce sync.Once
	promMW   *fiberprometheus.FiberPrometheus
)

// HTTPMetrics returns the fiberprometheus middleware used to export
// per-route HTTP metrics. Collectors register against the default registry,
// so construction happens once per process regardless of how many servers
// are built (tests build several).
func HTTPMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	promOnce.Do(func() {
		promMW = fiberprometheus.New(serviceName)
	})
	return promMW
}
