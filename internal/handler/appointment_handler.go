package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"workshop/internal/ledger"
	"workshop/internal/model"
	"workshop/internal/repository"
)

// AppointmentHandler serves calendar endpoints.
type AppointmentHandler struct {
	ledger *ledger.Ledger
}

// NewAppointmentHandler creates an appointment handler.
func NewAppointmentHandler(l *ledger.Ledger) *AppointmentHandler {
	return &AppointmentHandler{ledger: l}
}

// CreateAppointmentRequest represents a new appointment.
type CreateAppointmentRequest struct {
	Title      string                  `json:"title" validate:"required,max=255"`
	StartAt    *Timestamp              `json:"start_at" validate:"required" swaggertype:"string"`
	EndAt      *Timestamp              `json:"end_at" swaggertype:"string"`
	Status     model.AppointmentStatus `json:"status" swaggertype:"string" enums:"scheduled,in_progress,done,cancelled"`
	CustomerID *uint                   `json:"customer_id"`
	VehicleID  *uint                   `json:"vehicle_id"`
	OrderID    *uint                   `json:"order_id"`
	Notes      string                  `json:"notes"`
}

// UpdateAppointmentRequest holds the appointment fields to change.
type UpdateAppointmentRequest struct {
	Title      *string                  `json:"title" validate:"omitempty,max=255"`
	StartAt    *Timestamp               `json:"start_at" swaggertype:"string"`
	EndAt      *Timestamp               `json:"end_at" swaggertype:"string"`
	Status     *model.AppointmentStatus `json:"status" swaggertype:"string" enums:"scheduled,in_progress,done,cancelled"`
	CustomerID *uint                    `json:"customer_id"`
	VehicleID  *uint                    `json:"vehicle_id"`
	OrderID    *uint                    `json:"order_id"`
	Notes      *string                  `json:"notes"`
}

// List godoc
// @Summary List appointments
// @Description Appointments are ordered by start time. from and to select those starting inside the window.
// @Tags appointments
// @Produce json
// @Security BearerAuth
// @Param q query string false "Search title or notes"
// @Param from query string false "Window start"
// @Param to query string false "Window end"
// @Param status query string false "Status"
// @Success 200 {object} Response{data=[]model.Appointment}
// @Failure 400 {object} errors.ErrorResponse
// @Router /appointments [get]
func (h *AppointmentHandler) List(c echo.Context) error {
	from, err := queryTime(c, "from")
	if err != nil {
		return err
	}
	to, err := queryTime(c, "to")
	if err != nil {
		return err
	}
	appointments, err := h.ledger.ListAppointments(c.Request().Context(), repository.AppointmentFilter{
		Query:  c.QueryParam("q"),
		From:   from,
		To:     to,
		Status: model.AppointmentStatus(c.QueryParam("status")),
	})
	if err != nil {
		return err
	}
	return ok(c, appointments)
}

// Get godoc
// @Summary Get appointment
// @Tags appointments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Appointment ID"
// @Success 200 {object} Response{data=model.Appointment}
// @Failure 404 {object} errors.ErrorResponse
// @Router /appointments/{id} [get]
func (h *AppointmentHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	appointment, err := h.ledger.GetAppointment(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return ok(c, appointment)
}

// Create godoc
// @Summary Schedule appointment
// @Tags appointments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateAppointmentRequest true "Appointment"
// @Success 201 {object} Response{data=model.Appointment}
// @Failure 400 {object} errors.ErrorResponse
// @Router /appointments [post]
func (h *AppointmentHandler) Create(c echo.Context) error {
	var req CreateAppointmentRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	appointment, err := h.ledger.CreateAppointment(c.Request().Context(), ledger.AppointmentInput{
		Title:      req.Title,
		StartAt:    req.StartAt.Ptr(),
		EndAt:      req.EndAt.Ptr(),
		Status:     req.Status,
		CustomerID: req.CustomerID,
		VehicleID:  req.VehicleID,
		OrderID:    req.OrderID,
		Notes:      req.Notes,
	})
	if err != nil {
		return err
	}
	return created(c, "appointment created", appointment)
}

// Update godoc
// @Summary Update appointment
// @Tags appointments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Appointment ID"
// @Param request body UpdateAppointmentRequest true "Fields to change"
// @Success 200 {object} Response{data=model.Appointment}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /appointments/{id} [patch]
func (h *AppointmentHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req UpdateAppointmentRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	appointment, err := h.ledger.UpdateAppointment(c.Request().Context(), id, ledger.AppointmentPatch{
		Title:      req.Title,
		StartAt:    req.StartAt.Ptr(),
		EndAt:      req.EndAt.Ptr(),
		Status:     req.Status,
		CustomerID: req.CustomerID,
		VehicleID:  req.VehicleID,
		OrderID:    req.OrderID,
		Notes:      req.Notes,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "appointment updated", appointment)
}

// Delete godoc
// @Summary Delete appointment
// @Tags appointments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Appointment ID"
// @Success 200 {object} Response
// @Failure 404 {object} errors.ErrorResponse
// @Router /appointments/{id} [delete]
func (h *AppointmentHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.ledger.DeleteAppointment(c.Request().Context(), id); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "appointment deleted", nil)
}
