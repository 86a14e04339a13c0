package health

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsHandler exposes the default Prometheus registry.
type MetricsHandler struct {
	h http.Handler
}

func NewMetricsHandler() *MetricsHandler {
	return &MetricsHandler{h: promhttp.Handler()}
}

// Prometheus serves the scrape endpoint.
// @Router       /metrics [get]
func (m *MetricsHandler) Prometheus(c echo.Context) error {
	m.h.ServeHTTP(c.Response(), c.Request())
	return nil
}
