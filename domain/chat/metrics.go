package chat

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	connectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "chackgpt",
		Subsystem: "hub",
		Name:      "connections_active",
		Help:      "Open hub connections.",
	})

	messagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chackgpt",
		Subsystem: "hub",
		Name:      "messages_total",
		Help:      "Chat messages handled, by transport and outcome.",
	}, []string{"transport", "outcome"})

	tokensSent = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "chackgpt",
		Subsystem: "hub",
		Name:      "tokens_sent_total",
		Help:      "Filtered text chunks delivered to clients.",
	})

	framesDropped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "chackgpt",
		Subsystem: "hub",
		Name:      "frames_dropped_total",
		Help:      "Frames dropped because a client's send buffer was full.",
	})
)
