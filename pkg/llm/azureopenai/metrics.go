package azureopenai

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var retriesTotal = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "chackgpt",
	Subsystem: "llm",
	Name:      "retries_total",
	Help:      "Chat completion requests retried after a retryable failure.",
})
