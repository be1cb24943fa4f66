package handlers

import (
	"errors"
	"net/http"
	"time"

	"subtrack/internal/common"
	"subtrack/internal/jobs"
	"subtrack/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// SubscriptionHandlers handles HTTP requests for subscriptions
type SubscriptionHandlers struct {
	subscriptionService services.SubscriptionService
	preferenceService   services.PreferenceService
}

// NewSubscriptionHandlers creates a new subscription handlers instance
func NewSubscriptionHandlers(subscriptionService services.SubscriptionService, preferenceService services.PreferenceService) *SubscriptionHandlers {
	return &SubscriptionHandlers{
		subscriptionService: subscriptionService,
		preferenceService:   preferenceService,
	}
}

func (h *SubscriptionHandlers) serviceError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return common.SendNotFoundError(c, "Subscription")
	case errors.Is(err, services.ErrInvalidInput):
		return common.SendClientError(c, err.Error())
	default:
		return common.SendServerError(c, "operation could not be completed")
	}
}

// CreateSubscription handles POST /subscriptions
func (h *SubscriptionHandlers) CreateSubscription(c echo.Context) error {
	ctx := c.Request().Context()

	ownerID, ok := common.GetOwnerIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var input services.SubscriptionInput
	if err := c.Bind(&input); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	subscription, err := h.subscriptionService.Create(ctx, ownerID, input)
	if err != nil {
		return h.serviceError(c, err)
	}

	return c.JSON(http.StatusCreated, subscription)
}

// ListSubscriptions handles GET /subscriptions with an optional ?q= name filter
func (h *SubscriptionHandlers) ListSubscriptions(c echo.Context) error {
	ctx := c.Request().Context()

	ownerID, ok := common.GetOwnerIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	subscriptions, err := h.subscriptionService.List(ctx, ownerID, c.QueryParam("q"))
	if err != nil {
		return h.serviceError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"subscriptions": subscriptions,
		"count":         len(subscriptions),
	})
}

// UpcomingRenewals handles GET /subscriptions/upcoming: the interactive
// lookahead path, windowed by the owner's reminder-days preference.
func (h *SubscriptionHandlers) UpcomingRenewals(c echo.Context) error {
	ctx := c.Request().Context()

	ownerID, ok := common.GetOwnerIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	reminderDays, err := h.preferenceService.GetReminderDays(ctx, ownerID)
	if err != nil {
		return h.serviceError(c, err)
	}

	subscriptions, err := h.subscriptionService.List(ctx, ownerID, "")
	if err != nil {
		return h.serviceError(c, err)
	}

	upcoming := jobs.Upcoming(subscriptions, time.Now(), reminderDays)
	jobs.SortByRenewDate(upcoming)

	return c.JSON(http.StatusOK, map[string]interface{}{
		"upcoming":      upcoming,
		"count":         len(upcoming),
		"reminder_days": reminderDays,
	})
}

// GetSubscription handles GET /subscriptions/:id
func (h *SubscriptionHandlers) GetSubscription(c echo.Context) error {
	ctx := c.Request().Context()

	ownerID, ok := common.GetOwnerIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.SendClientError(c, "Invalid UUID format")
	}

	subscription, err := h.subscriptionService.Get(ctx, ownerID, id)
	if err != nil {
		return h.serviceError(c, err)
	}

	return c.JSON(http.StatusOK, subscription)
}

// UpdateSubscription handles PUT /subscriptions/:id
func (h *SubscriptionHandlers) UpdateSubscription(c echo.Context) error {
	ctx := c.Request().Context()

	ownerID, ok := common.GetOwnerIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.SendClientError(c, "Invalid UUID format")
	}

	var input services.SubscriptionInput
	if err := c.Bind(&input); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	subscription, err := h.subscriptionService.Update(ctx, ownerID, id, input)
	if err != nil {
		return h.serviceError(c, err)
	}

	return c.JSON(http.StatusOK, subscription)
}

// DeleteSubscription handles DELETE /subscriptions/:id
func (h *SubscriptionHandlers) DeleteSubscription(c echo.Context) error {
	ctx := c.Request().Context()

	ownerID, ok := common.GetOwnerIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return common.SendClientError(c, "Invalid UUID format")
	}

	if err := h.subscriptionService.Delete(ctx, ownerID, id); err != nil {
		return h.serviceError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// DeleteAllSubscriptions handles DELETE /subscriptions
func (h *SubscriptionHandlers) DeleteAllSubscriptions(c echo.Context) error {
	ctx := c.Request().Context()

	ownerID, ok := common.GetOwnerIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	deleted, err := h.subscriptionService.DeleteAll(ctx, ownerID)
	if err != nil {
		return h.serviceError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "All subscriptions deleted",
		"deleted": deleted,
	})
}
