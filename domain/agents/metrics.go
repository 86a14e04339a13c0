package agents

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	toolInvocations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chackgpt",
		Subsystem: "agent",
		Name:      "tool_invocations_total",
		Help:      "Tool calls made by agents, by outcome.",
	}, []string{"agent", "tool", "outcome"})

	toolDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "chackgpt",
		Subsystem: "agent",
		Name:      "tool_duration_seconds",
		Help:      "Agent tool call latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"agent", "tool"})
)
