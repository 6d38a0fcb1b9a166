package resilience

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sony/gobreaker"
)

const unnamedBreaker = "default"

// Breaker metrics share the "breaker" label so one dashboard query covers
// every upstream guarded by a CircuitBreaker.
var (
	breakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "resilience",
		Name:      "breaker_open",
		Help:      "1 when the breaker rejects calls, 0.5 while probing, 0 when closed",
	}, []string{"breaker"})

	breakerCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "resilience",
		Name:      "breaker_calls_total",
		Help:      "Calls passed to a breaker, by outcome",
	}, []string{"breaker", "outcome"})

	breakerTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "resilience",
		Name:      "breaker_transitions_total",
		Help:      "Breaker state transitions",
	}, []string{"breaker", "to"})
)

const (
	outcomeAttempt  = "attempt"
	outcomeFailure  = "failure"
	outcomeFallback = "fallback"
)

func breakerName(name string) string {
	if name == "" {
		return unnamedBreaker
	}
	return name
}

func recordBreakerState(name string, state gobreaker.State) {
	var v float64
	switch state {
	case gobreaker.StateHalfOpen:
		v = 0.5
	case gobreaker.StateOpen:
		v = 1
	}
	breakerState.WithLabelValues(name).Set(v)
}

func recordBreakerStateChange(name string, _, to gobreaker.State) {
	breakerTransitions.WithLabelValues(name, to.String()).Inc()
	recordBreakerState(name, to)
}

func recordBreakerRequest(name string) {
	breakerCalls.WithLabelValues(name, outcomeAttempt).Inc()
}

func recordBreakerFailure(name string) {
	breakerCalls.WithLabelValues(name, outcomeFailure).Inc()
}

func recordBreakerFallback(name string) {
	breakerCalls.WithLabelValues(name, outcomeFallback).Inc()
}
