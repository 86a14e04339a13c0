package mcp

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	toolCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chackgpt",
		Subsystem: "mcp_server",
		Name:      "tool_calls_total",
		Help:      "MCP tool invocations by tool and outcome.",
	}, []string{"tool", "outcome"})

	toolDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "chackgpt",
		Subsystem: "mcp_server",
		Name:      "tool_duration_seconds",
		Help:      "MCP tool handler latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"tool"})
)
