package avatar

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var emotionChanges = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "chackgpt",
	Subsystem: "avatar",
	Name:      "emotion_changes_total",
	Help:      "Avatar emotion changes by character and new emotion.",
}, []string{"character", "emotion"})
