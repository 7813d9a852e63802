package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Pinger is a dependency the readiness probe checks.
type Pinger interface {
	Ping(ctx context.Context) error
}

// SubscriptionCounter reports live realtime subscriptions.
type SubscriptionCounter interface {
	Count() int
}

// HealthHandler responds to liveness and readiness probes.
type HealthHandler struct {
	serviceName   string
	version       string
	deps          map[string]Pinger
	subscriptions SubscriptionCounter
}

// NewHealthHandler returns a new handler instance. deps maps a
// dependency name to its pinger.
func NewHealthHandler(serviceName, version string, deps map[string]Pinger, subscriptions SubscriptionCounter) *HealthHandler {
	return &HealthHandler{serviceName: serviceName, version: version, deps: deps, subscriptions: subscriptions}
}

// Live reports service liveness.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "alive",
		"service": h.serviceName,
		"version": h.version,
	})
}

// Ready reports service readiness by checking dependencies.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	depStatus := fiber.Map{}
	ready := true
	for name, dep := range h.deps {
		if err := dep.Ping(ctx); err != nil {
			depStatus[name] = err.Error()
			ready = false
			continue
		}
		depStatus[name] = "ok"
	}

	if ready {
		body := fiber.Map{
			"status":       "ready",
			"dependencies": depStatus,
		}
		if h.subscriptions != nil {
			body["realtime_subscriptions"] = h.subscriptions.Count()
		}
		return c.JSON(body)
	}

	return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    "DEPENDENCY_UNAVAILABLE",
			"message": "one or more dependencies unavailable",
			"details": depStatus,
		},
	})
}
