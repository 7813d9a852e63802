package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/fleetflow/console/internal/api/dto"
	"github.com/fleetflow/console/internal/auth"
	"github.com/fleetflow/console/internal/clock"
	"github.com/fleetflow/console/internal/events"
	"github.com/fleetflow/console/internal/service"
	apperrors "github.com/fleetflow/console/pkg/util/errorutil"
)

// RealtimeHandler exposes polling subscriptions over HTTP.
type RealtimeHandler struct {
	watch         *service.WatchService
	notifications *service.NotificationService
	clock         clock.Clock
}

// NewRealtimeHandler constructs handler.
func NewRealtimeHandler(watch *service.WatchService, notifications *service.NotificationService, clk clock.Clock) *RealtimeHandler {
	if clk == nil {
		clk = clock.Real()
	}
	return &RealtimeHandler{watch: watch, notifications: notifications, clock: clk}
}

// Create POST /realtime/subscriptions.
func (h *RealtimeHandler) Create(c *fiber.Ctx) error {
	principal, err := requireUser(c)
	if err != nil {
		return err
	}
	var req dto.CreateSubscriptionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	view, err := h.watch.Create(c.UserContext(), principal.User.ID, principal.Scope, req.WatchRequest())
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": h.response(view)})
}

// List GET /realtime/subscriptions.
func (h *RealtimeHandler) List(c *fiber.Ctx) error {
	principal, err := requireUser(c)
	if err != nil {
		return err
	}
	views := h.watch.List(principal.User.ID)
	items := make([]dto.SubscriptionResponse, 0, len(views))
	for _, v := range views {
		items = append(items, h.response(v))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /realtime/subscriptions/:id.
func (h *RealtimeHandler) Get(c *fiber.Ctx) error {
	principal, err := requireUser(c)
	if err != nil {
		return err
	}
	view, err := h.watch.Get(principal.User.ID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": h.response(view)})
}

// Refresh POST /realtime/subscriptions/:id/refresh.
func (h *RealtimeHandler) Refresh(c *fiber.Ctx) error {
	principal, err := requireUser(c)
	if err != nil {
		return err
	}
	view, err := h.watch.Refresh(principal.User.ID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.Status(http.StatusAccepted).JSON(fiber.Map{"data": h.response(view)})
}

// Update PATCH /realtime/subscriptions/:id.
func (h *RealtimeHandler) Update(c *fiber.Ctx) error {
	principal, err := requireUser(c)
	if err != nil {
		return err
	}
	var req dto.UpdateSubscriptionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}
	view, err := h.watch.Update(principal.User.ID, c.Params("id"), req.WatchUpdate())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": h.response(view)})
}

// Delete DELETE /realtime/subscriptions/:id.
func (h *RealtimeHandler) Delete(c *fiber.Ctx) error {
	principal, err := requireUser(c)
	if err != nil {
		return err
	}
	if err := h.watch.Delete(principal.User.ID, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// StatusChanges GET /realtime/status-changes. Entries for resources the
// caller cannot view are dropped before the limit is applied.
func (h *RealtimeHandler) StatusChanges(c *fiber.Ctx) error {
	principal, err := requireUser(c)
	if err != nil {
		return err
	}
	if h.notifications == nil {
		return c.JSON(fiber.Map{"data": []dto.StatusChangeResponse{}})
	}
	limit := parseInt(c.Query("limit"), 50)
	recent, err := h.notifications.RecentVisible(c.UserContext(), int64(limit), func(e events.Event) bool {
		return canViewStatusChange(principal, e)
	})
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	items := make([]dto.StatusChangeResponse, 0, len(recent))
	for _, e := range recent {
		items = append(items, dto.NewStatusChangeResponse(e))
	}
	return c.JSON(fiber.Map{"data": items})
}

func canViewStatusChange(principal *auth.Principal, e events.Event) bool {
	perm, ok := service.WatchResource(e.Resource).Permission()
	if !ok {
		return false
	}
	return principal.Scope.HasPermission(perm)
}

func (h *RealtimeHandler) response(v service.SubscriptionView) dto.SubscriptionResponse {
	return dto.NewSubscriptionResponse(v, h.clock.Now())
}

func requireUser(c *fiber.Ctx) (*auth.Principal, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return nil, apperrors.NewUnauthorized("user required")
	}
	return principal, nil
}
