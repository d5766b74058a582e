package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/DealDocs/dealdocs-backend/types"
)

// HealthHandler reports liveness and component readiness.
type HealthHandler struct {
	checks  map[string]func(ctx context.Context) error
	version string
}

func NewHealthHandler(version string, checks map[string]func(ctx context.Context) error) *HealthHandler {
	return &HealthHandler{checks: checks, version: version}
}

// LivenessCheck handles the kubernetes liveness probe.
func (h *HealthHandler) LivenessCheck(c *gin.Context) {
	c.Status(http.StatusOK)
}

// ReadinessCheck pings each registered component. Anything short of fully
// healthy answers 503 so the load balancer stops routing here.
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	health := h.check(c.Request.Context())
	if health.Status != types.HealthStatusUp {
		c.JSON(http.StatusServiceUnavailable, health)
		return
	}
	c.JSON(http.StatusOK, health)
}

func (h *HealthHandler) check(ctx context.Context) types.HealthCheck {
	health := types.HealthCheck{
		Status:     types.HealthStatusUp,
		Components: make(map[string]types.HealthComponent),
		Version:    h.version,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	}
	for name, ping := range h.checks {
		if err := ping(ctx); err != nil {
			health.Components[name] = types.HealthComponent{
				Status:  types.HealthStatusDown,
				Details: err.Error(),
			}
			// Every registered component is load-bearing; one down means
			// this instance cannot serve.
			health.Status = types.HealthStatusDown
			continue
		}
		health.Components[name] = types.HealthComponent{Status: types.HealthStatusUp}
	}
	return health
}
