package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Check reports whether one dependency is reachable.
type Check func(ctx context.Context) error

type namedCheck struct {
	name  string
	check Check
}

type HealthHandler struct {
	checks  []namedCheck
	timeout time.Duration
}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{timeout: 2 * time.Second}
}

// With registers a readiness check. Checks run in registration order.
func (h *HealthHandler) With(name string, check Check) *HealthHandler {
	h.checks = append(h.checks, namedCheck{name: name, check: check})
	return h
}

func (h *HealthHandler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *HealthHandler) Readyz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	body := gin.H{"status": "ok"}
	status := http.StatusOK
	for _, nc := range h.checks {
		if err := nc.check(ctx); err != nil {
			body[nc.name] = "unavailable"
			body["status"] = "error"
			status = http.StatusServiceUnavailable
			continue
		}
		body[nc.name] = "connected"
	}
	c.JSON(status, body)
}
