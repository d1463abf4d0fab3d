package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MessagesSeen = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sticker_messages_seen_total",
		Help: "The total number of inbound text messages inspected",
	}, []string{"kind"})

	MessagesSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sticker_messages_skipped_total",
		Help: "Messages rejected before matching, by reason",
	}, []string{"reason"})

	CooldownDenied = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sticker_cooldown_denied_total",
		Help: "Messages denied by the per-sender cooldown gate",
	})

	StickersSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sticker_responses_sent_total",
		Help: "The total number of sticker replies sent",
	})

	SendFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sticker_send_failures_total",
		Help: "Sticker replies the transport failed to deliver",
	})

	TriggersLoaded = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sticker_triggers_loaded",
		Help: "Number of triggers in the loaded index",
	})

	DatasetAppends = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sticker_dataset_appends_total",
		Help: "Trigger rows appended through the registration workflow",
	})

	CooldownRecords = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sticker_cooldown_records",
		Help: "Current number of live cooldown records",
	})
)
