package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"workshop/internal/ledger"
)

// PartHandler serves inventory endpoints.
type PartHandler struct {
	ledger *ledger.Ledger
}

// NewPartHandler creates a part handler.
func NewPartHandler(l *ledger.Ledger) *PartHandler {
	return &PartHandler{ledger: l}
}

// CreatePartRequest represents a new inventory part.
type CreatePartRequest struct {
	Name     string          `json:"name" validate:"required,max=255"`
	SKU      string          `json:"sku" validate:"required,max=64"`
	Brand    string          `json:"brand" validate:"omitempty,max=100"`
	Stock    int             `json:"stock"`
	MinStock int             `json:"min_stock"`
	Price    decimal.Decimal `json:"price" swaggertype:"string" example:"49.90"`
	Location string          `json:"location" validate:"omitempty,max=100"`
}

// UpdatePartRequest holds the part fields to change.
type UpdatePartRequest struct {
	Name     *string          `json:"name" validate:"omitempty,max=255"`
	SKU      *string          `json:"sku" validate:"omitempty,max=64"`
	Brand    *string          `json:"brand" validate:"omitempty,max=100"`
	Stock    *int             `json:"stock"`
	MinStock *int             `json:"min_stock"`
	Price    *decimal.Decimal `json:"price" swaggertype:"string" example:"49.90"`
	Location *string          `json:"location" validate:"omitempty,max=100"`
}

// StockRequest carries a reserve or restock quantity.
type StockRequest struct {
	Quantity int `json:"quantity" validate:"required,gt=0"`
}

// List godoc
// @Summary List parts
// @Tags parts
// @Produce json
// @Security BearerAuth
// @Param q query string false "Search name, SKU or brand"
// @Success 200 {object} Response{data=[]model.Part}
// @Router /parts [get]
func (h *PartHandler) List(c echo.Context) error {
	parts, err := h.ledger.ListParts(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return err
	}
	return ok(c, parts)
}

// LowStock godoc
// @Summary Low stock report
// @Description Parts at or below their minimum stock, largest shortfall first.
// @Tags parts
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=[]ledger.LowStockPart}
// @Router /parts/low-stock [get]
func (h *PartHandler) LowStock(c echo.Context) error {
	parts, err := h.ledger.ListLowStock(c.Request().Context())
	if err != nil {
		return err
	}
	return ok(c, parts)
}

// Get godoc
// @Summary Get part
// @Tags parts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Part ID"
// @Success 200 {object} Response{data=model.Part}
// @Failure 404 {object} errors.ErrorResponse
// @Router /parts/{id} [get]
func (h *PartHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	part, err := h.ledger.GetPart(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return ok(c, part)
}

// Create godoc
// @Summary Create part
// @Tags parts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreatePartRequest true "Part"
// @Success 201 {object} Response{data=model.Part}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /parts [post]
func (h *PartHandler) Create(c echo.Context) error {
	var req CreatePartRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	part, err := h.ledger.CreatePart(c.Request().Context(), ledger.PartInput{
		Name:     req.Name,
		SKU:      req.SKU,
		Brand:    req.Brand,
		Stock:    req.Stock,
		MinStock: req.MinStock,
		Price:    req.Price,
		Location: req.Location,
	})
	if err != nil {
		return err
	}
	return created(c, "part created", part)
}

// Update godoc
// @Summary Update part
// @Tags parts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Part ID"
// @Param request body UpdatePartRequest true "Fields to change"
// @Success 200 {object} Response{data=model.Part}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /parts/{id} [patch]
func (h *PartHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req UpdatePartRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	part, err := h.ledger.UpdatePart(c.Request().Context(), id, ledger.PartPatch{
		Name:     req.Name,
		SKU:      req.SKU,
		Brand:    req.Brand,
		Stock:    req.Stock,
		MinStock: req.MinStock,
		Price:    req.Price,
		Location: req.Location,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "part updated", part)
}

// Reserve godoc
// @Summary Reserve stock
// @Description Takes quantity units out of stock. Fails with 409 when stock is insufficient.
// @Tags parts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Part ID"
// @Param request body StockRequest true "Quantity"
// @Success 200 {object} Response{data=model.Part}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /parts/{id}/reserve [post]
func (h *PartHandler) Reserve(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req StockRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	part, err := h.ledger.ReserveStock(c.Request().Context(), id, req.Quantity)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "stock reserved", part)
}

// Restock godoc
// @Summary Restock part
// @Tags parts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Part ID"
// @Param request body StockRequest true "Quantity"
// @Success 200 {object} Response{data=model.Part}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /parts/{id}/restock [post]
func (h *PartHandler) Restock(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req StockRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	part, err := h.ledger.RestockPart(c.Request().Context(), id, req.Quantity)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "part restocked", part)
}

// Delete godoc
// @Summary Delete part
// @Tags parts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Part ID"
// @Success 200 {object} Response
// @Failure 404 {object} errors.ErrorResponse
// @Router /parts/{id} [delete]
func (h *PartHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.ledger.DeletePart(c.Request().Context(), id); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "part deleted", nil)
}
