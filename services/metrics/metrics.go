package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	GateChecks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gate_checks_total",
			Help: "Passphrase and email checks by outcome.",
		},
		[]string{"check", "result"},
	)

	PresenceWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "presence_writes_total",
			Help: "User status upserts by reported state.",
		},
		[]string{"state"},
	)

	PartnerLookups = promauto.NewCounter(prometheus.CounterOpts{
		Name: "presence_partner_lookups_total",
		Help: "Partner status lookups.",
	})

	Uploads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recording_uploads_total",
			Help: "Recording uploads by outcome.",
		},
		[]string{"result"},
	)

	Reactions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reactions_created_total",
		Help: "Reactions written.",
	})

	ProviderErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "provider_errors_total",
			Help: "Failures returned by the external provider.",
		},
		[]string{"op"},
	)
)

func Result(ok bool) string {
	if ok {
		return "accepted"
	}
	return "rejected"
}
