package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	contributionsCreatedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blackboxscan_contributions_created_total",
		Help: "Total number of stored contributions, by type.",
	}, []string{"type"})
	contributionsRejectedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "blackboxscan_contributions_rejected_total",
		Help: "Total number of contribution submissions that failed validation.",
	})
	eventPublishFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blackboxscan_event_publish_failures_total",
		Help: "Total number of events that could not be published, by event.",
	}, []string{"event"})
	contactMessagesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "blackboxscan_contact_messages_total",
		Help: "Total number of contact messages accepted.",
	})
)
