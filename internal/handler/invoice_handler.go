package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"workshop/internal/ledger"
	"workshop/internal/model"
	"workshop/internal/repository"
)

// InvoiceHandler serves invoice endpoints.
type InvoiceHandler struct {
	ledger *ledger.Ledger
}

// NewInvoiceHandler creates an invoice handler.
func NewInvoiceHandler(l *ledger.Ledger) *InvoiceHandler {
	return &InvoiceHandler{ledger: l}
}

// CreateInvoiceRequest represents a new invoice.
type CreateInvoiceRequest struct {
	Number     string              `json:"number" validate:"required,max=64"`
	CustomerID uint                `json:"customer_id" validate:"required"`
	OrderID    *uint               `json:"order_id"`
	IssueDate  *Timestamp          `json:"issue_date" swaggertype:"string"`
	DueDate    *Timestamp          `json:"due_date" swaggertype:"string"`
	Amount     *decimal.Decimal    `json:"amount" validate:"required" swaggertype:"string" example:"250.00"`
	Status     model.InvoiceStatus `json:"status" swaggertype:"string" enums:"pending,paid,cancelled,overdue"`
	PDFPath    string              `json:"pdf_path" validate:"omitempty,max=512"`
}

// UpdateInvoiceRequest holds the invoice fields to change.
type UpdateInvoiceRequest struct {
	Number     *string              `json:"number" validate:"omitempty,max=64"`
	CustomerID *uint                `json:"customer_id"`
	OrderID    *uint                `json:"order_id"`
	IssueDate  *Timestamp           `json:"issue_date" swaggertype:"string"`
	DueDate    *Timestamp           `json:"due_date" swaggertype:"string"`
	Amount     *decimal.Decimal     `json:"amount" swaggertype:"string" example:"250.00"`
	Status     *model.InvoiceStatus `json:"status" swaggertype:"string" enums:"pending,paid,cancelled,overdue"`
	PDFPath    *string              `json:"pdf_path" validate:"omitempty,max=512"`
}

// List godoc
// @Summary List invoices
// @Tags invoices
// @Produce json
// @Security BearerAuth
// @Param q query string false "Search number or customer name"
// @Param status query string false "Status"
// @Param customer_id query int false "Customer"
// @Success 200 {object} Response{data=[]model.Invoice}
// @Failure 400 {object} errors.ErrorResponse
// @Router /invoices [get]
func (h *InvoiceHandler) List(c echo.Context) error {
	customerID, err := queryID(c, "customer_id")
	if err != nil {
		return err
	}
	invoices, err := h.ledger.ListInvoices(c.Request().Context(), repository.InvoiceFilter{
		Query:      c.QueryParam("q"),
		Status:     model.InvoiceStatus(c.QueryParam("status")),
		CustomerID: customerID,
	})
	if err != nil {
		return err
	}
	return ok(c, invoices)
}

// Get godoc
// @Summary Get invoice
// @Tags invoices
// @Produce json
// @Security BearerAuth
// @Param id path int true "Invoice ID"
// @Success 200 {object} Response{data=model.Invoice}
// @Failure 404 {object} errors.ErrorResponse
// @Router /invoices/{id} [get]
func (h *InvoiceHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	invoice, err := h.ledger.GetInvoice(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return ok(c, invoice)
}

// Create godoc
// @Summary Issue invoice
// @Tags invoices
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateInvoiceRequest true "Invoice"
// @Success 201 {object} Response{data=model.Invoice}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /invoices [post]
func (h *InvoiceHandler) Create(c echo.Context) error {
	var req CreateInvoiceRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	invoice, err := h.ledger.CreateInvoice(c.Request().Context(), ledger.InvoiceInput{
		Number:     req.Number,
		CustomerID: req.CustomerID,
		OrderID:    req.OrderID,
		IssueDate:  req.IssueDate.Ptr(),
		DueDate:    req.DueDate.Ptr(),
		Amount:     req.Amount,
		Status:     req.Status,
		PDFPath:    req.PDFPath,
	})
	if err != nil {
		return err
	}
	return created(c, "invoice created", invoice)
}

// Update godoc
// @Summary Update invoice
// @Tags invoices
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Invoice ID"
// @Param request body UpdateInvoiceRequest true "Fields to change"
// @Success 200 {object} Response{data=model.Invoice}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /invoices/{id} [patch]
func (h *InvoiceHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req UpdateInvoiceRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	invoice, err := h.ledger.UpdateInvoice(c.Request().Context(), id, ledger.InvoicePatch{
		Number:     req.Number,
		CustomerID: req.CustomerID,
		OrderID:    req.OrderID,
		IssueDate:  req.IssueDate.Ptr(),
		DueDate:    req.DueDate.Ptr(),
		Amount:     req.Amount,
		Status:     req.Status,
		PDFPath:    req.PDFPath,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "invoice updated", invoice)
}

// Delete godoc
// @Summary Delete invoice
// @Tags invoices
// @Produce json
// @Security BearerAuth
// @Param id path int true "Invoice ID"
// @Success 200 {object} Response
// @Failure 404 {object} errors.ErrorResponse
// @Router /invoices/{id} [delete]
func (h *InvoiceHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.ledger.DeleteInvoice(c.Request().Context(), id); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "invoice deleted", nil)
}
