// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package metrics provides Prometheus instrumentation for the Auth0 login
// flow. A nil *Metrics is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Login outcomes recorded by ObserveLogin.
const (
	OutcomeSuccess             = "success"
	OutcomeDenied              = "denied"
	OutcomeInvalidCallback     = "invalid_callback"
	OutcomeInvalidToken        = "invalid_token"
	OutcomeEmailNotVerified    = "email_not_verified"
	OutcomeProviderUnavailable = "provider_unavailable"
	OutcomeError               = "error"
)

// Metrics tracks callback outcomes, silent authentication escalations, guard
// redirects and the duration of the token exchange.
type Metrics struct {
	Logins            *prometheus.CounterVec
	SilentEscalations prometheus.Counter
	GuardRedirects    prometheus.Counter
	Logouts           prometheus.Counter
	ExchangeDuration  prometheus.Histogram
}

// New creates a Metrics instance with every metric registered on reg. A nil
// reg registers on prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		Logins: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "auth0_logins_total",
			Help: "Total number of callback requests by outcome",
		}, []string{"outcome"}),
		SilentEscalations: factory.NewCounter(prometheus.CounterOpts{
			Name: "auth0_silent_escalations_total",
			Help: "Total number of silent authentication attempts retried interactively",
		}),
		GuardRedirects: factory.NewCounter(prometheus.CounterOpts{
			Name: "auth0_guard_redirects_total",
			Help: "Total number of unauthenticated requests redirected to the provider",
		}),
		Logouts: factory.NewCounter(prometheus.CounterOpts{
			Name: "auth0_logouts_total",
			Help: "Total number of logouts",
		}),
		ExchangeDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "auth0_token_exchange_duration_seconds",
			Help:    "Duration of the authorization code exchange and id_token verification",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
	}
}

// ObserveLogin records a callback outcome.
func (m *Metrics) ObserveLogin(outcome string) {
	if m == nil {
		return
	}
	m.Logins.WithLabelValues(outcome).Inc()
}

// IncrementSilentEscalation records a silent attempt retried interactively.
func (m *Metrics) IncrementSilentEscalation() {
	if m == nil {
		return
	}
	m.SilentEscalations.Inc()
}

// IncrementGuardRedirect records a redirect issued by the auth guard.
func (m *Metrics) IncrementGuardRedirect() {
	if m == nil {
		return
	}
	m.GuardRedirects.Inc()
}

// IncrementLogout records a logout.
func (m *Metrics) IncrementLogout() {
	if m == nil {
		return
	}
	m.Logouts.Inc()
}

// ObserveExchange records the duration of a token exchange.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveExchange(start time.Time) {
	if m == nil {
		return
	}
	m.ExchangeDuration.Observe(time.Since(start).Seconds())
}
