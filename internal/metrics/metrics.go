// Package metrics: коллекторы Prometheus сервиса.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "tracker"

var (
	// SessionsOpened: открытые сессии по шаблонам.
	SessionsOpened = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_opened_total",
		Help:      "Tracker sessions opened, by template.",
	}, []string{"template"})

	SessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "sessions_active",
		Help:      "Tracker sessions currently held in memory.",
	})

	SessionsExpired = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_expired_total",
		Help:      "Tracker sessions closed after sitting idle past the TTL.",
	})

	// TicketsCreated: успешные вызовы createfdTicket.
	TicketsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tickets_created_total",
		Help:      "Tickets created, by template.",
	}, []string{"template"})

	// SubmitFailures: неудачные отправки, reason из missing_field, render, encode, api.
	SubmitFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ticket_submit_failures_total",
		Help:      "Failed ticket submissions, by template and reason.",
	}, []string{"template", "reason"})

	SubjectWarnings = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "subject_rule_warnings_total",
		Help:      "Submissions whose subject line broke a template rule.",
	}, []string{"template"})

	// RequestDuration: время запросов к Freshdesk по request template.
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "freshdesk_request_duration_seconds",
		Help:      "Freshdesk API latency, by request template and status code.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"template", "code"})

	AttachmentsUploaded = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "attachments_uploaded_total",
		Help:      "Attachments uploaded to Freshdesk.",
	})
)
