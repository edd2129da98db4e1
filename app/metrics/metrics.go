// Package metrics holds domain counters for registrations and downloads.
package metrics

import (
	coremetrics "github.com/m3rciful/satbot/core/metrics"

	"github.com/prometheus/client_golang/prometheus"
)

// Registration outcomes.
const (
	OutcomeCompleted = "completed"
	OutcomeExisting  = "existing"
	OutcomeFailed    = "failed"
	OutcomeCancelled = "cancelled"
)

// Download and listing results.
const (
	ResultOK       = "ok"
	ResultEmpty    = "empty"
	ResultNotFound = "not_found"
	ResultError    = "error"
)

var (
	registrations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "satbot_registrations_total",
			Help: "Registration attempts by outcome.",
		},
		[]string{"outcome"},
	)

	validationFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "satbot_validation_failures_total",
			Help: "Rejected registration input by field.",
		},
		[]string{"field"},
	)

	listings = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "satbot_catalog_listings_total",
			Help: "Catalog listings shown, by category, subject and result.",
		},
		[]string{"category", "subject", "result"},
	)

	downloads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "satbot_downloads_total",
			Help: "File delivery attempts by result.",
		},
		[]string{"result"},
	)

	adminNotifyFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "satbot_admin_notify_failures_total",
			Help: "Admin notifications that could not be sent.",
		},
	)
)

func init() {
	coremetrics.Register(registrations, validationFailures, listings, downloads, adminNotifyFailures)
}

func Registration(outcome string) { registrations.WithLabelValues(outcome).Inc() }

func ValidationFailure(field string) { validationFailures.WithLabelValues(field).Inc() }

func Listing(category, subject, result string) {
	listings.WithLabelValues(category, subject, result).Inc()
}

func Download(result string) { downloads.WithLabelValues(result).Inc() }

func AdminNotifyFailure() { adminNotifyFailures.Inc() }
