package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"workshop/internal/ledger"
)

// CustomerHandler serves customer endpoints.
type CustomerHandler struct {
	ledger *ledger.Ledger
}

// NewCustomerHandler creates a customer handler.
func NewCustomerHandler(l *ledger.Ledger) *CustomerHandler {
	return &CustomerHandler{ledger: l}
}

// CreateCustomerRequest represents a new customer.
type CreateCustomerRequest struct {
	Name  string `json:"name" validate:"required,max=255"`
	Email string `json:"email" validate:"omitempty,email"`
	Phone string `json:"phone" validate:"omitempty,max=50"`
	Notes string `json:"notes"`
}

// UpdateCustomerRequest holds the customer fields to change.
type UpdateCustomerRequest struct {
	Name  *string `json:"name" validate:"omitempty,max=255"`
	Email *string `json:"email" validate:"omitempty,email"`
	Phone *string `json:"phone" validate:"omitempty,max=50"`
	Notes *string `json:"notes"`
}

// List godoc
// @Summary List customers
// @Tags customers
// @Produce json
// @Security BearerAuth
// @Param q query string false "Search name, email or phone"
// @Success 200 {object} Response{data=[]model.Customer}
// @Failure 401 {object} errors.ErrorResponse
// @Router /customers [get]
func (h *CustomerHandler) List(c echo.Context) error {
	customers, err := h.ledger.ListCustomers(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return err
	}
	return ok(c, customers)
}

// Get godoc
// @Summary Get customer
// @Tags customers
// @Produce json
// @Security BearerAuth
// @Param id path int true "Customer ID"
// @Success 200 {object} Response{data=model.Customer}
// @Failure 404 {object} errors.ErrorResponse
// @Router /customers/{id} [get]
func (h *CustomerHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	customer, err := h.ledger.GetCustomer(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return ok(c, customer)
}

// Create godoc
// @Summary Create customer
// @Tags customers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateCustomerRequest true "Customer"
// @Success 201 {object} Response{data=model.Customer}
// @Failure 400 {object} errors.ErrorResponse
// @Router /customers [post]
func (h *CustomerHandler) Create(c echo.Context) error {
	var req CreateCustomerRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	customer, err := h.ledger.CreateCustomer(c.Request().Context(), ledger.CustomerInput{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
		Notes: req.Notes,
	})
	if err != nil {
		return err
	}
	return created(c, "customer created", customer)
}

// Update godoc
// @Summary Update customer
// @Tags customers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Customer ID"
// @Param request body UpdateCustomerRequest true "Fields to change"
// @Success 200 {object} Response{data=model.Customer}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /customers/{id} [patch]
func (h *CustomerHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req UpdateCustomerRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	customer, err := h.ledger.UpdateCustomer(c.Request().Context(), id, ledger.CustomerPatch{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
		Notes: req.Notes,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "customer updated", customer)
}

// Delete godoc
// @Summary Delete customer
// @Description Vehicles, orders and invoices of the customer are removed with it.
// @Tags customers
// @Produce json
// @Security BearerAuth
// @Param id path int true "Customer ID"
// @Success 200 {object} Response
// @Failure 404 {object} errors.ErrorResponse
// @Router /customers/{id} [delete]
func (h *CustomerHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.ledger.DeleteCustomer(c.Request().Context(), id); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "customer deleted", nil)
}
