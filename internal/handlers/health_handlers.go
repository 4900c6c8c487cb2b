package handlers

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/labstack/echo/v4"
)

// Version is reported by the health endpoints
const Version = "1.0.0"

// DependencyCheck probes one backing service. Critical dependencies decide
// readiness; the rest only degrade the health report.
type DependencyCheck struct {
	Name     string
	Critical bool
	Check    func(ctx context.Context) error
}

// HealthHandlers handles health check and monitoring endpoints
type HealthHandlers struct {
	checks    []DependencyCheck
	jobStatus func() map[string]interface{}
	started   time.Time
	timeout   time.Duration
}

// NewHealthHandlers creates a new health handlers instance. jobStatus may be nil.
func NewHealthHandlers(checks []DependencyCheck, jobStatus func() map[string]interface{}) *HealthHandlers {
	return &HealthHandlers{
		checks:    checks,
		jobStatus: jobStatus,
		started:   time.Now(),
		timeout:   2 * time.Second,
	}
}

// HealthStatus represents the overall health status
type HealthStatus struct {
	Status     string                 `json:"status"`
	Timestamp  string                 `json:"timestamp"`
	Services   map[string]string      `json:"services"`
	Uptime     string                 `json:"uptime"`
	Version    string                 `json:"version"`
	Goroutines int                    `json:"goroutines"`
	Jobs       map[string]interface{} `json:"jobs,omitempty"`
}

// run probes every dependency and reports which failed
func (h *HealthHandlers) run(ctx context.Context) (services map[string]string, degraded, critical bool) {
	services = make(map[string]string, len(h.checks))
	for _, check := range h.checks {
		checkCtx, cancel := context.WithTimeout(ctx, h.timeout)
		err := check.Check(checkCtx)
		cancel()
		if err != nil {
			services[check.Name] = "unhealthy"
			degraded = true
			critical = critical || check.Critical
			continue
		}
		services[check.Name] = "healthy"
	}
	return services, degraded, critical
}

// HealthCheck handles GET /health
func (h *HealthHandlers) HealthCheck(c echo.Context) error {
	services, degraded, _ := h.run(c.Request().Context())
	health := &HealthStatus{
		Status:     "healthy",
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Services:   services,
		Uptime:     time.Since(h.started).Round(time.Second).String(),
		Version:    Version,
		Goroutines: runtime.NumGoroutine(),
	}
	if h.jobStatus != nil {
		health.Jobs = h.jobStatus()
	}

	statusCode := http.StatusOK
	if degraded {
		health.Status = "degraded"
		statusCode = http.StatusPartialContent
	}
	return c.JSON(statusCode, health)
}

// ReadinessCheck handles GET /health/ready
func (h *HealthHandlers) ReadinessCheck(c echo.Context) error {
	services, _, critical := h.run(c.Request().Context())
	if critical {
		return c.JSON(http.StatusServiceUnavailable, map[string]interface{}{
			"status":   "not_ready",
			"message":  "Critical services unavailable",
			"services": services,
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":   "ready",
		"message":  "All critical systems operational",
		"services": services,
	})
}

// LivenessCheck handles GET /health/live
func (h *HealthHandlers) LivenessCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":    "alive",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
