package health

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
	"go.uber.org/fx"

	"github.com/drewby/chackgpt/internal/config"
	"github.com/drewby/chackgpt/internal/version"
)

// Checker reports the state of one dependency.
type Checker interface {
	Name() string
	Check(ctx context.Context) error
}

// Handler handles health check requests
type Handler struct {
	checkers []Checker
	cfg      *config.Config
	startAt  time.Time

	getLoadAvg  func(context.Context) (*load.AvgStat, error)
	getCPUCount func(context.Context, bool) (int, error)
	getMemStats func(context.Context) (*mem.VirtualMemoryStat, error)
}

// HandlerParams are the dependencies of NewHandler.
type HandlerParams struct {
	fx.In

	Config   *config.Config
	Checkers []Checker `group:"health_checkers"`
}

// NewHandler creates a new health handler
func NewHandler(p HandlerParams) *Handler {
	return &Handler{
		checkers:    p.Checkers,
		cfg:         p.Config,
		startAt:     time.Now(),
		getLoadAvg:  load.AvgWithContext,
		getCPUCount: cpu.CountsWithContext,
		getMemStats: mem.VirtualMemoryWithContext,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string           `json:"status"`
	Timestamp string           `json:"timestamp"`
	Uptime    string           `json:"uptime"`
	Version   string           `json:"version"`
	Checks    map[string]Check `json:"checks"`
}

// Check represents an individual health check result
type Check struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

func (h *Handler) runChecks(ctx context.Context) (map[string]Check, bool) {
	checks := make(map[string]Check, len(h.checkers))
	healthy := true
	for _, ck := range h.checkers {
		if err := ck.Check(ctx); err != nil {
			healthy = false
			checks[ck.Name()] = Check{Status: "unhealthy", Message: err.Error()}
			continue
		}
		checks[ck.Name()] = Check{Status: "healthy"}
	}
	return checks, healthy
}

// Health returns the overall service health
// @Summary      Get service health
// @Description  Returns dependency checks and uptime
// @Tags         health
// @Produce      json
// @Success      200 {object} HealthResponse "Service is healthy"
// @Success      503 {object} HealthResponse "Service is unhealthy"
// @Router       /health [get]
func (h *Handler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	checks, healthy := h.runChecks(ctx)

	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Uptime:    time.Since(h.startAt).String(),
		Version:   version.Version,
		Checks:    checks,
	}

	statusCode := http.StatusOK
	if !healthy {
		response.Status = "unhealthy"
		statusCode = http.StatusServiceUnavailable
	}

	return c.JSON(statusCode, response)
}

// Healthz is the liveness probe; it never consults dependencies.
// @Router       /alive [get]
func (h *Handler) Healthz(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

// Ready returns readiness status
// @Summary      Readiness probe
// @Tags         health
// @Produce      json
// @Success      200 {object} map[string]any "Service is ready"
// @Success      503 {object} map[string]any "Service is not ready"
// @Router       /ready [get]
func (h *Handler) Ready(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	checks, healthy := h.runChecks(ctx)
	if !healthy {
		return c.JSON(http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"checks": checks,
		})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"status": "ready",
	})
}

// Debug returns runtime and host statistics outside production.
// @Router       /debug [get]
func (h *Handler) Debug(c echo.Context) error {
	if h.cfg.Environment == "production" {
		return echo.NewHTTPError(http.StatusNotFound, "Not found")
	}
	ctx := c.Request().Context()

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	host := map[string]any{}
	if n, err := h.getCPUCount(ctx, true); err == nil {
		host["cpus"] = n
	}
	if avg, err := h.getLoadAvg(ctx); err == nil {
		host["load1"] = avg.Load1
		host["load5"] = avg.Load5
	}
	if vm, err := h.getMemStats(ctx); err == nil {
		host["memory_used_percent"] = vm.UsedPercent
	}

	return c.JSON(http.StatusOK, map[string]any{
		"environment": h.cfg.Environment,
		"debug":       h.cfg.Debug,
		"version":     version.Info(),
		"go_version":  runtime.Version(),
		"goroutines":  runtime.NumGoroutine(),
		"memory": map[string]any{
			"alloc_mb":       ms.Alloc / 1024 / 1024,
			"total_alloc_mb": ms.TotalAlloc / 1024 / 1024,
			"sys_mb":         ms.Sys / 1024 / 1024,
			"num_gc":         ms.NumGC,
		},
		"host": host,
	})
}
