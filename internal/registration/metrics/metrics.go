package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the registration module.
// Tracks session creation, step completions, document uploads and final
// submission outcomes.
type Metrics struct {
	SessionsInitialized prometheus.Counter
	StepsCompleted      *prometheus.CounterVec
	DocumentsUploaded   prometheus.Counter
	Finalized           prometheus.Counter
	FinalizeRejected    prometheus.Counter
}

// New creates a new Metrics instance with all registration metrics registered.
func New() *Metrics {
	return &Metrics{
		SessionsInitialized: promauto.NewCounter(prometheus.CounterOpts{
			Name: "beam_registrations_initialized_total",
			Help: "Total number of registration sessions created",
		}),
		StepsCompleted: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "beam_registration_steps_completed_total",
			Help: "Total number of wizard step submissions accepted, by step",
		}, []string{"step"}),
		DocumentsUploaded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "beam_registration_documents_uploaded_total",
			Help: "Total number of documents stored",
		}),
		Finalized: promauto.NewCounter(prometheus.CounterOpts{
			Name: "beam_registrations_finalized_total",
			Help: "Total number of registrations submitted for review",
		}),
		FinalizeRejected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "beam_registration_finalize_rejected_total",
			Help: "Total number of finalize attempts rejected for incomplete steps",
		}),
	}
}
