package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RegistrationsTotal tracks account registrations by outcome
	RegistrationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "authguard_registrations_total",
		Help: "Total number of account registration attempts",
	}, []string{"result"})

	// LoginsTotal tracks credential authentications by outcome
	LoginsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "authguard_logins_total",
		Help: "Total number of login attempts",
	}, []string{"result"})

	// TokenVerificationsTotal tracks bearer token checks at the boundary
	TokenVerificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "authguard_token_verifications_total",
		Help: "Total number of bearer token verifications",
	}, []string{"result"})

	// APIKeyValidationsTotal tracks programmatic key validations
	APIKeyValidationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "authguard_apikey_validations_total",
		Help: "Total number of API key validations",
	}, []string{"result"})

	// RequestDuration tracks HTTP handler latency; hashing dominates the
	// register/login buckets by design
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "authguard_request_duration_seconds",
		Help:    "Histogram of HTTP request handling duration",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
)
