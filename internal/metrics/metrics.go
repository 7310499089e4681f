// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package metrics exposes Prometheus collectors for the content store, the
// content generator and the logger.
package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/olegiv/charity-cms/internal/hooks"
)

const namespace = "charity"

// Generator call outcomes.
const (
	OutcomeOK          = "ok"
	OutcomeError       = "error"
	OutcomeRateLimited = "rate_limited"
)

// Metrics owns a private registry so tests can build as many as they need.
type Metrics struct {
	registry *prometheus.Registry

	ContentChanges *prometheus.CounterVec
	Submissions    *prometheus.CounterVec
	GeneratorCalls *prometheus.CounterVec
	GeneratorTime  *prometheus.HistogramVec
	LogRecords     *prometheus.CounterVec
	Backups        *prometheus.CounterVec
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		ContentChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "content_changes_total",
			Help:      "Content document changes by source (write or external).",
		}, []string{"source"}),
		Submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_total",
			Help:      "Public submissions stored, by collection.",
		}, []string{"kind"}),
		GeneratorCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generator_calls_total",
			Help:      "Content generator calls by provider, kind and outcome.",
		}, []string{"provider", "kind", "outcome"}),
		GeneratorTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generator_duration_seconds",
			Help:      "Content generator call latency.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80},
		}, []string{"provider", "kind"}),
		LogRecords: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "log_records_total",
			Help:      "Warning and error log records by level and category.",
		}, []string{"level", "category"}),
		Backups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backups_total",
			Help:      "Scheduled backups by outcome.",
		}, []string{"outcome"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.ContentChanges,
		m.Submissions,
		m.GeneratorCalls,
		m.GeneratorTime,
		m.LogRecords,
		m.Backups,
	)
	return m
}

// Registry returns the registry holding every collector.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// CountLog matches logging.CountFunc.
func (m *Metrics) CountLog(level, category string) {
	m.LogRecords.WithLabelValues(level, category).Inc()
}

// ObserveGenerator records one generator call.
func (m *Metrics) ObserveGenerator(provider, kind, outcome string, seconds float64) {
	m.GeneratorCalls.WithLabelValues(provider, kind, outcome).Inc()
	m.GeneratorTime.WithLabelValues(provider, kind).Observe(seconds)
}

// Bind subscribes the change and submission counters to r.
func (m *Metrics) Bind(r *hooks.Registry) (unbind func()) {
	offChange := r.Register(hooks.HookContentChanged, hooks.Handler{
		Name:     "metrics",
		Priority: -100,
		Fn: func(_ context.Context, ev hooks.Event) error {
			m.ContentChanges.WithLabelValues(ev.Source).Inc()
			return nil
		},
	})
	offSubmit := r.Register(hooks.HookSubmissionReceived, hooks.Handler{
		Name:     "metrics",
		Priority: -100,
		Fn: func(_ context.Context, ev hooks.Event) error {
			m.Submissions.WithLabelValues(ev.Kind).Inc()
			return nil
		},
	})
	return func() {
		offChange()
		offSubmit()
	}
}
