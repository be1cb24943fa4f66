package handlers

import (
	"errors"
	"net/http"

	"subtrack/internal/common"
	"subtrack/internal/services"

	"github.com/labstack/echo/v4"
)

// SettingsHandlers handles reminder preferences and account removal.
type SettingsHandlers struct {
	preferenceService services.PreferenceService
	accountService    services.AccountService
}

// NewSettingsHandlers creates a new settings handlers instance
func NewSettingsHandlers(preferenceService services.PreferenceService, accountService services.AccountService) *SettingsHandlers {
	return &SettingsHandlers{
		preferenceService: preferenceService,
		accountService:    accountService,
	}
}

// GetReminderSettings handles GET /settings/reminders. Reading the
// setting for the first time creates it with the default.
func (h *SettingsHandlers) GetReminderSettings(c echo.Context) error {
	ctx := c.Request().Context()

	ownerID, ok := common.GetOwnerIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	reminderDays, err := h.preferenceService.GetReminderDays(ctx, ownerID)
	if err != nil {
		return common.SendServerError(c, "operation could not be completed")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"reminder_days": reminderDays,
	})
}

// UpdateReminderSettings handles PUT /settings/reminders
func (h *SettingsHandlers) UpdateReminderSettings(c echo.Context) error {
	ctx := c.Request().Context()

	ownerID, ok := common.GetOwnerIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req struct {
		ReminderDays int `json:"reminder_days"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	if err := h.preferenceService.SetReminderDays(ctx, ownerID, req.ReminderDays); err != nil {
		if errors.Is(err, services.ErrInvalidInput) {
			return common.SendClientError(c, err.Error())
		}
		return common.SendServerError(c, "operation could not be completed")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":       "Settings saved",
		"reminder_days": req.ReminderDays,
	})
}

// DeleteAccountData handles DELETE /account: all subscriptions first,
// then the preference record.
func (h *SettingsHandlers) DeleteAccountData(c echo.Context) error {
	ctx := c.Request().Context()

	ownerID, ok := common.GetOwnerIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	if err := h.accountService.DeleteAccountData(ctx, ownerID); err != nil {
		return common.SendServerError(c, "operation could not be completed")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Account data deleted",
	})
}
