package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"workshop/internal/ledger"
	"workshop/internal/repository"
)

// VehicleHandler serves vehicle endpoints.
type VehicleHandler struct {
	ledger *ledger.Ledger
}

// NewVehicleHandler creates a vehicle handler.
func NewVehicleHandler(l *ledger.Ledger) *VehicleHandler {
	return &VehicleHandler{ledger: l}
}

// CreateVehicleRequest represents a new vehicle.
type CreateVehicleRequest struct {
	CustomerID    uint       `json:"customer_id" validate:"required"`
	Make          string     `json:"make" validate:"required,max=100"`
	Model         string     `json:"model" validate:"required,max=100"`
	Year          *int       `json:"year"`
	Plate         string     `json:"plate" validate:"required,max=20"`
	VIN           string     `json:"vin" validate:"omitempty,max=17"`
	LastServiceAt *Timestamp `json:"last_service_at" swaggertype:"string"`
}

// UpdateVehicleRequest holds the vehicle fields to change.
type UpdateVehicleRequest struct {
	CustomerID    *uint      `json:"customer_id"`
	Make          *string    `json:"make" validate:"omitempty,max=100"`
	Model         *string    `json:"model" validate:"omitempty,max=100"`
	Year          *int       `json:"year"`
	Plate         *string    `json:"plate" validate:"omitempty,max=20"`
	VIN           *string    `json:"vin" validate:"omitempty,max=17"`
	LastServiceAt *Timestamp `json:"last_service_at" swaggertype:"string"`
}

// List godoc
// @Summary List vehicles
// @Tags vehicles
// @Produce json
// @Security BearerAuth
// @Param q query string false "Search make, model, plate or VIN"
// @Param customer_id query int false "Owner"
// @Success 200 {object} Response{data=[]model.Vehicle}
// @Failure 400 {object} errors.ErrorResponse
// @Router /vehicles [get]
func (h *VehicleHandler) List(c echo.Context) error {
	customerID, err := queryID(c, "customer_id")
	if err != nil {
		return err
	}
	vehicles, err := h.ledger.ListVehicles(c.Request().Context(), repository.VehicleFilter{
		Query:      c.QueryParam("q"),
		CustomerID: customerID,
	})
	if err != nil {
		return err
	}
	return ok(c, vehicles)
}

// Get godoc
// @Summary Get vehicle
// @Tags vehicles
// @Produce json
// @Security BearerAuth
// @Param id path int true "Vehicle ID"
// @Success 200 {object} Response{data=model.Vehicle}
// @Failure 404 {object} errors.ErrorResponse
// @Router /vehicles/{id} [get]
func (h *VehicleHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	vehicle, err := h.ledger.GetVehicle(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return ok(c, vehicle)
}

// Create godoc
// @Summary Register vehicle
// @Description The plate is normalized to upper case without separators and must be unique.
// @Tags vehicles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateVehicleRequest true "Vehicle"
// @Success 201 {object} Response{data=model.Vehicle}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /vehicles [post]
func (h *VehicleHandler) Create(c echo.Context) error {
	var req CreateVehicleRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	vehicle, err := h.ledger.CreateVehicle(c.Request().Context(), ledger.VehicleInput{
		CustomerID:    req.CustomerID,
		Make:          req.Make,
		Model:         req.Model,
		Year:          req.Year,
		Plate:         req.Plate,
		VIN:           req.VIN,
		LastServiceAt: req.LastServiceAt.Ptr(),
	})
	if err != nil {
		return err
	}
	return created(c, "vehicle created", vehicle)
}

// Update godoc
// @Summary Update vehicle
// @Tags vehicles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Vehicle ID"
// @Param request body UpdateVehicleRequest true "Fields to change"
// @Success 200 {object} Response{data=model.Vehicle}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /vehicles/{id} [patch]
func (h *VehicleHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req UpdateVehicleRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	vehicle, err := h.ledger.UpdateVehicle(c.Request().Context(), id, ledger.VehiclePatch{
		CustomerID:    req.CustomerID,
		Make:          req.Make,
		Model:         req.Model,
		Year:          req.Year,
		Plate:         req.Plate,
		VIN:           req.VIN,
		LastServiceAt: req.LastServiceAt.Ptr(),
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "vehicle updated", vehicle)
}

// Delete godoc
// @Summary Delete vehicle
// @Tags vehicles
// @Produce json
// @Security BearerAuth
// @Param id path int true "Vehicle ID"
// @Success 200 {object} Response
// @Failure 404 {object} errors.ErrorResponse
// @Router /vehicles/{id} [delete]
func (h *VehicleHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.ledger.DeleteVehicle(c.Request().Context(), id); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "vehicle deleted", nil)
}
