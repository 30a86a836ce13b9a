package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"example.com/bill-reminder/backend/internal/auth"
	"example.com/bill-reminder/backend/internal/models"
	"example.com/bill-reminder/backend/internal/notifications"
	"example.com/bill-reminder/backend/internal/repository"
	"example.com/bill-reminder/backend/internal/scheduler"
)

type NotificationHandler struct {
	Hub       *notifications.Hub
	Users     *repository.UserRepository
	Alerts    *repository.AlertRepository
	Scheduler *scheduler.Scheduler
}

// NewNotificationHandler создает обработчик уведомлений и SSE-потока.
func NewNotificationHandler(hub *notifications.Hub, users *repository.UserRepository, alerts *repository.AlertRepository, sched *scheduler.Scheduler) *NotificationHandler {
	return &NotificationHandler{Hub: hub, Users: users, Alerts: alerts, Scheduler: sched}
}

type PermissionRequest struct {
	State string `json:"state" validate:"required"`
}

type PermissionResponse struct {
	State models.PermissionState `json:"state"`
}

type ClickedRequest struct {
	Tag string `json:"tag"`
}

// Stream открывает SSE-поток событий оповещений для пользователя.
func (h *NotificationHandler) Stream(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	c.Response().Header().Set(echo.HeaderContentType, "text/event-stream")
	c.Response().Header().Set(echo.HeaderCacheControl, "no-cache")
	c.Response().Header().Set(echo.HeaderConnection, "keep-alive")
	c.Response().WriteHeader(http.StatusOK)

	flusher, ok := c.Response().Writer.(http.Flusher)
	if !ok {
		return serverError(c)
	}

	ch, unsubscribe := h.Hub.Subscribe(userID)
	defer unsubscribe()

	_ = writeSSE(c, notifications.Event{Type: "connected", Data: map[string]string{"user_id": userID.String()}})
	flusher.Flush()

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-ch:
			if !ok {
				return nil
			}
			if err := writeSSE(c, event); err != nil {
				return nil
			}
			flusher.Flush()
		}
	}
}

// GetPermission сообщает сохраненное состояние разрешения на уведомления.
func (h *NotificationHandler) GetPermission(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	user, err := h.Users.GetByID(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "user not found")
		}
		return serverError(c)
	}

	return c.JSON(http.StatusOK, PermissionResponse{State: user.Permission})
}

// SetPermission записывает ответ браузера на запрос разрешения.
// Отказ не ошибка: пользователь продолжает получать тосты.
func (h *NotificationHandler) SetPermission(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req PermissionRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	state := models.PermissionState(strings.ToLower(strings.TrimSpace(req.State)))
	if !state.Valid() {
		return badRequest(c, "invalid permission state")
	}

	user, err := h.Users.SetPermission(c.Request().Context(), userID, state)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "user not found")
		}
		return serverError(c)
	}

	return c.JSON(http.StatusOK, PermissionResponse{State: user.Permission})
}

// Clicked обрабатывает клик по браузерному уведомлению: глушит звук и
// транслирует NOTIFICATION_CLICKED открытым вкладкам.
func (h *NotificationHandler) Clicked(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req ClickedRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}

	h.Scheduler.StopSound(userID)
	h.Hub.Publish(userID, notifications.Clicked(strings.TrimSpace(req.Tag)))

	return c.NoContent(http.StatusNoContent)
}

// Foreground вызывается при возврате вкладки на передний план и глушит звук.
func (h *NotificationHandler) Foreground(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	h.Scheduler.StopSound(userID)

	return c.NoContent(http.StatusNoContent)
}

// History возвращает журнал срабатываний пользователя, новые первыми.
func (h *NotificationHandler) History(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	records, err := h.Alerts.ListFired(c.Request().Context(), userID)
	if err != nil {
		return serverError(c)
	}

	if records == nil {
		records = []models.AlertRecord{}
	}

	return c.JSON(http.StatusOK, map[string][]models.AlertRecord{"alerts": records})
}

// Clear стирает историю срабатываний пользователя и глушит звук.
func (h *NotificationHandler) Clear(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	if err := h.Scheduler.ClearHistory(c.Request().Context(), userID); err != nil {
		return serverError(c)
	}

	return c.NoContent(http.StatusNoContent)
}

func writeSSE(c echo.Context, event notifications.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if _, err := c.Response().Write([]byte("event: " + event.Type + "\n")); err != nil {
		return err
	}
	if _, err := c.Response().Write([]byte("data: " + string(payload) + "\n\n")); err != nil {
		return err
	}

	return nil
}
