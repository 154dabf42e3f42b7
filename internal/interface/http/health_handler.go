package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthCheck is a named readiness probe for a backing service.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

type HealthHandler struct {
	Checks  []HealthCheck
	Timeout time.Duration
}

func NewHealthHandler(checks ...HealthCheck) *HealthHandler {
	return &HealthHandler{Checks: checks, Timeout: 2 * time.Second}
}

// Health handles GET /api/health. It returns 503 when any check fails.
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.Timeout)
	defer cancel()

	status := http.StatusOK
	checks := make(map[string]string, len(h.Checks))
	for _, hc := range h.Checks {
		if err := hc.Check(ctx); err != nil {
			checks[hc.Name] = "down"
			status = http.StatusServiceUnavailable
			continue
		}
		checks[hc.Name] = "up"
	}

	state := "ok"
	if status != http.StatusOK {
		state = "degraded"
	}
	c.JSON(status, gin.H{"status": state, "checks": checks})
}
