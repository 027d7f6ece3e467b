package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"workshop/internal/middleware"
	"workshop/internal/service"
)

// NotificationHandler serves the caller's notifications.
type NotificationHandler struct {
	svc service.NotificationService
}

// NewNotificationHandler creates a notification handler.
func NewNotificationHandler(svc service.NotificationService) *NotificationHandler {
	return &NotificationHandler{svc: svc}
}

// CreateNotificationRequest sends a notification to a user.
type CreateNotificationRequest struct {
	UserID uint   `json:"user_id" validate:"required"`
	Title  string `json:"title" validate:"required,max=255"`
	Body   string `json:"body"`
}

// MarkAllReadResponse reports how many notifications changed.
type MarkAllReadResponse struct {
	Updated int64 `json:"updated"`
}

// List godoc
// @Summary List notifications
// @Description The caller's notifications, newest first.
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param unread query bool false "Only unread"
// @Success 200 {object} Response{data=[]model.Notification}
// @Router /notifications [get]
func (h *NotificationHandler) List(c echo.Context) error {
	caller, err := middleware.Identity(c)
	if err != nil {
		return err
	}
	unread := c.QueryParam("unread")
	notifications, err := h.svc.List(c.Request().Context(), caller, unread == "true" || unread == "1")
	if err != nil {
		return err
	}
	return ok(c, notifications)
}

// Create godoc
// @Summary Send notification
// @Tags notifications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateNotificationRequest true "Notification"
// @Success 201 {object} Response{data=model.Notification}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /notifications [post]
func (h *NotificationHandler) Create(c echo.Context) error {
	caller, err := middleware.Identity(c)
	if err != nil {
		return err
	}
	var req CreateNotificationRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	notification, err := h.svc.Create(c.Request().Context(), caller, service.NotificationInput{
		UserID: req.UserID,
		Title:  req.Title,
		Body:   req.Body,
	})
	if err != nil {
		return err
	}
	return created(c, "notification created", notification)
}

// MarkRead godoc
// @Summary Mark notification read
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param id path int true "Notification ID"
// @Success 200 {object} Response{data=model.Notification}
// @Failure 404 {object} errors.ErrorResponse
// @Router /notifications/{id}/read [post]
func (h *NotificationHandler) MarkRead(c echo.Context) error {
	caller, err := middleware.Identity(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	notification, err := h.svc.MarkRead(c.Request().Context(), caller, id)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "notification read", notification)
}

// MarkAllRead godoc
// @Summary Mark all notifications read
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=MarkAllReadResponse}
// @Router /notifications/read-all [post]
func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	caller, err := middleware.Identity(c)
	if err != nil {
		return err
	}
	n, err := h.svc.MarkAllRead(c.Request().Context(), caller)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "notifications read", MarkAllReadResponse{Updated: n})
}

// Delete godoc
// @Summary Delete notification
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param id path int true "Notification ID"
// @Success 200 {object} Response
// @Failure 404 {object} errors.ErrorResponse
// @Router /notifications/{id} [delete]
func (h *NotificationHandler) Delete(c echo.Context) error {
	caller, err := middleware.Identity(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), caller, id); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "notification deleted", nil)
}
