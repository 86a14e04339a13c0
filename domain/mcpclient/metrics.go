package mcpclient

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	callsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chackgpt",
		Subsystem: "mcp_client",
		Name:      "calls_total",
		Help:      "Remote MCP tool calls by tool and outcome.",
	}, []string{"tool", "outcome"})

	callDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "chackgpt",
		Subsystem: "mcp_client",
		Name:      "call_duration_seconds",
		Help:      "Remote MCP tool call latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"tool"})
)
