package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"workshop/internal/middleware"
	"workshop/internal/service"
)

// MessageHandler serves message threads.
type MessageHandler struct {
	svc service.MessageService
}

// NewMessageHandler creates a message handler.
func NewMessageHandler(svc service.MessageService) *MessageHandler {
	return &MessageHandler{svc: svc}
}

// CreateThreadRequest opens a thread, optionally about a customer or order.
type CreateThreadRequest struct {
	Title      string `json:"title" validate:"required,max=255"`
	CustomerID *uint  `json:"customer_id"`
	OrderID    *uint  `json:"order_id"`
}

// RenameThreadRequest changes a thread title.
type RenameThreadRequest struct {
	Title string `json:"title" validate:"required,max=255"`
}

// SendMessageRequest posts a message to a thread.
type SendMessageRequest struct {
	Text string `json:"text" validate:"required"`
}

// ListThreads godoc
// @Summary List threads
// @Description Most recently active first, each with its last message.
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Param q query string false "Search title or customer name"
// @Success 200 {object} Response{data=[]model.ThreadSummary}
// @Router /messages/threads [get]
func (h *MessageHandler) ListThreads(c echo.Context) error {
	threads, err := h.svc.ListThreads(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return err
	}
	return ok(c, threads)
}

// GetThread godoc
// @Summary Get thread
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Param id path int true "Thread ID"
// @Success 200 {object} Response{data=model.MessageThread}
// @Failure 404 {object} errors.ErrorResponse
// @Router /messages/threads/{id} [get]
func (h *MessageHandler) GetThread(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	thread, err := h.svc.GetThread(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return ok(c, thread)
}

// CreateThread godoc
// @Summary Open thread
// @Tags messages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateThreadRequest true "Thread"
// @Success 201 {object} Response{data=model.MessageThread}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /messages/threads [post]
func (h *MessageHandler) CreateThread(c echo.Context) error {
	caller, err := middleware.Identity(c)
	if err != nil {
		return err
	}
	var req CreateThreadRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	thread, err := h.svc.CreateThread(c.Request().Context(), caller, service.ThreadInput{
		Title:      req.Title,
		CustomerID: req.CustomerID,
		OrderID:    req.OrderID,
	})
	if err != nil {
		return err
	}
	return created(c, "thread created", thread)
}

// RenameThread godoc
// @Summary Rename thread
// @Tags messages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Thread ID"
// @Param request body RenameThreadRequest true "Title"
// @Success 200 {object} Response{data=model.MessageThread}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /messages/threads/{id} [patch]
func (h *MessageHandler) RenameThread(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req RenameThreadRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	thread, err := h.svc.RenameThread(c.Request().Context(), id, req.Title)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "thread updated", thread)
}

// DeleteThread godoc
// @Summary Delete thread
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Param id path int true "Thread ID"
// @Success 200 {object} Response
// @Failure 404 {object} errors.ErrorResponse
// @Router /messages/threads/{id} [delete]
func (h *MessageHandler) DeleteThread(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.DeleteThread(c.Request().Context(), id); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "thread deleted", nil)
}

// ListMessages godoc
// @Summary List messages
// @Description Messages of a thread, oldest first.
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Param id path int true "Thread ID"
// @Success 200 {object} Response{data=[]model.Message}
// @Failure 404 {object} errors.ErrorResponse
// @Router /messages/threads/{id}/messages [get]
func (h *MessageHandler) ListMessages(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	messages, err := h.svc.ListMessages(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return ok(c, messages)
}

// SendMessage godoc
// @Summary Send message
// @Tags messages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Thread ID"
// @Param request body SendMessageRequest true "Message"
// @Success 201 {object} Response{data=model.Message}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /messages/threads/{id}/messages [post]
func (h *MessageHandler) SendMessage(c echo.Context) error {
	caller, err := middleware.Identity(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req SendMessageRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	message, err := h.svc.SendMessage(c.Request().Context(), caller, id, req.Text)
	if err != nil {
		return err
	}
	return created(c, "message sent", message)
}
