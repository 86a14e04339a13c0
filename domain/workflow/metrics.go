package workflow

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chackgpt",
		Subsystem: "workflow",
		Name:      "runs_total",
		Help:      "Group chat runs by outcome.",
	}, []string{"outcome"})

	turnsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chackgpt",
		Subsystem: "workflow",
		Name:      "turns_total",
		Help:      "Agent turns taken.",
	}, []string{"agent"})

	modelCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chackgpt",
		Subsystem: "workflow",
		Name:      "model_calls_total",
		Help:      "Streaming model calls, one per tool round.",
	}, []string{"agent"})

	runDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "chackgpt",
		Subsystem: "workflow",
		Name:      "run_duration_seconds",
		Help:      "Wall time of a whole group chat run.",
		Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 40, 80},
	})

	budgetGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "chackgpt",
		Subsystem: "workflow",
		Name:      "iteration_budget",
		Help:      "Current process-wide turn limit.",
	})
)
