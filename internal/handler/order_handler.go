package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"workshop/internal/ledger"
	"workshop/internal/middleware"
	"workshop/internal/model"
	"workshop/internal/repository"
)

// OrderHandler serves repair order endpoints. Non-admin callers only see
// orders they created.
type OrderHandler struct {
	ledger *ledger.Ledger
}

// NewOrderHandler creates an order handler.
func NewOrderHandler(l *ledger.Ledger) *OrderHandler {
	return &OrderHandler{ledger: l}
}

// CreateOrderRequest represents a new repair order.
type CreateOrderRequest struct {
	Service        string     `json:"service" validate:"required,max=255"`
	CustomerID     uint       `json:"customer_id" validate:"required"`
	VehicleID      uint       `json:"vehicle_id" validate:"required"`
	MechanicUserID *uint      `json:"mechanic_user_id"`
	Description    string     `json:"description"`
	StartAt        *Timestamp `json:"start_at" swaggertype:"string"`
	EndAt          *Timestamp `json:"end_at" swaggertype:"string"`
}

// UpdateOrderRequest holds the order fields to change.
type UpdateOrderRequest struct {
	Status         *model.OrderStatus `json:"status" swaggertype:"string" enums:"new,in_progress,done,cancelled"`
	Description    *string            `json:"description"`
	MechanicUserID OptionalID         `json:"mechanic_user_id" swaggertype:"integer" extensions:"x-nullable"`
	StartAt        *Timestamp         `json:"start_at" swaggertype:"string"`
	EndAt          *Timestamp         `json:"end_at" swaggertype:"string"`
}

// List godoc
// @Summary List repair orders
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param q query string false "Search service or description"
// @Param status query string false "Status"
// @Param customer_id query int false "Customer"
// @Param vehicle_id query int false "Vehicle"
// @Success 200 {object} Response{data=[]model.Order}
// @Failure 400 {object} errors.ErrorResponse
// @Router /orders [get]
func (h *OrderHandler) List(c echo.Context) error {
	caller, err := middleware.Identity(c)
	if err != nil {
		return err
	}
	customerID, err := queryID(c, "customer_id")
	if err != nil {
		return err
	}
	vehicleID, err := queryID(c, "vehicle_id")
	if err != nil {
		return err
	}
	orders, err := h.ledger.ListOrders(c.Request().Context(), caller, repository.OrderFilter{
		Query:      c.QueryParam("q"),
		Status:     model.OrderStatus(c.QueryParam("status")),
		CustomerID: customerID,
		VehicleID:  vehicleID,
	})
	if err != nil {
		return err
	}
	return ok(c, orders)
}

// Get godoc
// @Summary Get repair order
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param id path int true "Order ID"
// @Success 200 {object} Response{data=model.Order}
// @Failure 404 {object} errors.ErrorResponse
// @Router /orders/{id} [get]
func (h *OrderHandler) Get(c echo.Context) error {
	caller, err := middleware.Identity(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	order, err := h.ledger.GetOrder(c.Request().Context(), caller, id)
	if err != nil {
		return err
	}
	return ok(c, order)
}

// Create godoc
// @Summary Open repair order
// @Description The vehicle must belong to the customer. New orders start in status new.
// @Tags orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateOrderRequest true "Order"
// @Success 201 {object} Response{data=model.Order}
// @Failure 400 {object} errors.ErrorResponse
// @Router /orders [post]
func (h *OrderHandler) Create(c echo.Context) error {
	caller, err := middleware.Identity(c)
	if err != nil {
		return err
	}
	var req CreateOrderRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	order, err := h.ledger.CreateOrder(c.Request().Context(), caller, ledger.OrderInput{
		Service:        req.Service,
		CustomerID:     req.CustomerID,
		VehicleID:      req.VehicleID,
		MechanicUserID: req.MechanicUserID,
		Description:    req.Description,
		StartAt:        req.StartAt.Ptr(),
		EndAt:          req.EndAt.Ptr(),
	})
	if err != nil {
		return err
	}
	return created(c, "order created", order)
}

// Update godoc
// @Summary Update repair order
// @Description Status changes follow new -> in_progress -> done, with cancelled reachable from new and in_progress.
// @Tags orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Order ID"
// @Param request body UpdateOrderRequest true "Fields to change"
// @Success 200 {object} Response{data=model.Order}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /orders/{id} [patch]
func (h *OrderHandler) Update(c echo.Context) error {
	caller, err := middleware.Identity(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req UpdateOrderRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	order, err := h.ledger.UpdateOrder(c.Request().Context(), caller, id, ledger.OrderPatch{
		Status:         req.Status,
		Description:    req.Description,
		MechanicUserID: req.MechanicUserID.Value,
		ClearMechanic:  req.MechanicUserID.Cleared(),
		StartAt:        req.StartAt.Ptr(),
		EndAt:          req.EndAt.Ptr(),
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "order updated", order)
}

// Delete godoc
// @Summary Delete repair order
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param id path int true "Order ID"
// @Success 200 {object} Response
// @Failure 404 {object} errors.ErrorResponse
// @Router /orders/{id} [delete]
func (h *OrderHandler) Delete(c echo.Context) error {
	caller, err := middleware.Identity(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.ledger.DeleteOrder(c.Request().Context(), caller, id); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "order deleted", nil)
}
