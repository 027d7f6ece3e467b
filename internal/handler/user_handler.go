package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"workshop/internal/middleware"
	"workshop/internal/model"
	"workshop/internal/service"
)

// UserHandler serves account administration for admins.
type UserHandler struct {
	svc service.UserService
}

// NewUserHandler creates a user handler.
func NewUserHandler(svc service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// CreateUserRequest represents an account created by an administrator.
type CreateUserRequest struct {
	FirstName string     `json:"first_name" validate:"required,max=100"`
	LastName  string     `json:"last_name" validate:"required,max=100"`
	Email     string     `json:"email" validate:"required,email"`
	Phone     string     `json:"phone" validate:"omitempty,max=50"`
	Password  string     `json:"password" validate:"required,min=6"`
	Role      model.Role `json:"role" swaggertype:"string" enums:"user,admin,mechanic"`
}

// UpdateUserRequest changes an account's role or status.
type UpdateUserRequest struct {
	Role   *model.Role       `json:"role" swaggertype:"string" enums:"user,admin,mechanic"`
	Status *model.UserStatus `json:"status" swaggertype:"string" enums:"active,blocked"`
}

// AdminResetPasswordRequest sets a user's password without a reset token.
type AdminResetPasswordRequest struct {
	NewPassword string `json:"new_password" validate:"required,min=6"`
}

// ListUsers godoc
// @Summary List users
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param q query string false "Search email or name"
// @Success 200 {object} Response{data=[]model.User}
// @Failure 403 {object} errors.ErrorResponse
// @Router /admin/users [get]
func (h *UserHandler) ListUsers(c echo.Context) error {
	users, err := h.svc.ListUsers(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return err
	}
	return ok(c, users)
}

// CreateUser godoc
// @Summary Create user
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateUserRequest true "User"
// @Success 201 {object} Response{data=model.User}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /admin/users [post]
func (h *UserHandler) CreateUser(c echo.Context) error {
	var req CreateUserRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	user, err := h.svc.CreateUser(c.Request().Context(), service.CreateUserInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Password:  req.Password,
		Role:      req.Role,
	})
	if err != nil {
		return err
	}
	return created(c, "user created", user)
}

// GetUser godoc
// @Summary Get user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} Response{data=model.User}
// @Failure 404 {object} errors.ErrorResponse
// @Router /admin/users/{id} [get]
func (h *UserHandler) GetUser(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	user, err := h.svc.GetUser(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return ok(c, user)
}

// UpdateUser godoc
// @Summary Change role or status
// @Description Blocking a user revokes their access on the next request.
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param request body UpdateUserRequest true "Fields to change"
// @Success 200 {object} Response{data=model.User}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /admin/users/{id} [patch]
func (h *UserHandler) UpdateUser(c echo.Context) error {
	caller, err := middleware.Identity(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req UpdateUserRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	user, err := h.svc.UpdateUser(c.Request().Context(), caller, id, service.UserPatch{
		Role:   req.Role,
		Status: req.Status,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "user updated", user)
}

// ResetPassword godoc
// @Summary Set a user's password
// @Description Replaces the password of any account; no reset token is needed.
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param request body AdminResetPasswordRequest true "New password"
// @Success 200 {object} Response
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /admin/users/{id}/password [post]
func (h *UserHandler) ResetPassword(c echo.Context) error {
	caller, err := middleware.Identity(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req AdminResetPasswordRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := h.svc.ResetUserPassword(c.Request().Context(), caller, id, req.NewPassword); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "password updated", nil)
}
