package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"clientapi/internal/model"
	"clientapi/internal/service"
)

// UserHandler handles admin-gated user management endpoints.
type UserHandler struct {
	svc service.UserService
}

// NewUserHandler creates a new user handler.
func NewUserHandler(svc service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// CreateUserRequest represents an admin user-creation request.
type CreateUserRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
	FirstName   string `json:"first_name" validate:"required,max=50"`
	LastName    string `json:"last_name" validate:"required,max=50"`
	Phone       string `json:"phone,omitempty" validate:"omitempty,max=20"`
	CompanyName string `json:"company_name,omitempty" validate:"omitempty,max=100"`
	Role        string `json:"role" validate:"required,oneof=CLIENT ADMIN"`
	Status      string `json:"status,omitempty" validate:"omitempty,oneof=ACTIVE INACTIVE SUSPENDED PENDING"`
}

// UpdateUserRequest represents a partial user update.
type UpdateUserRequest struct {
	Email       string `json:"email,omitempty" validate:"omitempty,email"`
	FirstName   string `json:"first_name,omitempty" validate:"omitempty,max=50"`
	LastName    string `json:"last_name,omitempty" validate:"omitempty,max=50"`
	Phone       string `json:"phone,omitempty" validate:"omitempty,max=20"`
	CompanyName string `json:"company_name,omitempty" validate:"omitempty,max=100"`
}

// CreateUser godoc
// @Summary Create a user
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateUserRequest true "User payload"
// @Success 201 {object} model.User
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /users [post]
func (h *UserHandler) CreateUser(c echo.Context) error {
	var req CreateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.svc.CreateUser(c.Request().Context(), service.CreateUserInput{
		Email:       req.Email,
		Password:    req.Password,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Phone:       req.Phone,
		CompanyName: req.CompanyName,
		Role:        req.Role,
		Status:      req.Status,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, user)
}

// GetUser godoc
// @Summary Get user by id
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} model.User
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(c echo.Context) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	user, err := h.svc.GetUser(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// GetUserByEmail godoc
// @Summary Get user by email
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param email path string true "User email"
// @Success 200 {object} model.User
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/email/{email} [get]
func (h *UserHandler) GetUserByEmail(c echo.Context) error {
	user, err := h.svc.GetUserByEmail(c.Request().Context(), emailParam(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// ListUsers godoc
// @Summary List users
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page (1-based)"
// @Param size query int false "Page size"
// @Success 200 {object} repository.Page[model.User]
// @Router /users [get]
func (h *UserHandler) ListUsers(c echo.Context) error {
	page, err := h.svc.ListUsers(c.Request().Context(), pageRequest(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

// ListClients godoc
// @Summary List users with role CLIENT
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} repository.Page[model.User]
// @Router /users/clients [get]
func (h *UserHandler) ListClients(c echo.Context) error {
	page, err := h.svc.ListUsersByRole(c.Request().Context(), model.RoleClient, pageRequest(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

// ListAdmins godoc
// @Summary List users with role ADMIN
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} repository.Page[model.User]
// @Router /users/admins [get]
func (h *UserHandler) ListAdmins(c echo.Context) error {
	page, err := h.svc.ListUsersByRole(c.Request().Context(), model.RoleAdmin, pageRequest(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

// ListByStatus godoc
// @Summary List users by status
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param status path string true "Status"
// @Success 200 {object} repository.Page[model.User]
// @Router /users/status/{status} [get]
func (h *UserHandler) ListByStatus(c echo.Context) error {
	page, err := h.svc.ListUsersByStatus(c.Request().Context(), c.Param("status"), pageRequest(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

// ListByRole godoc
// @Summary List users by role
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param role path string true "Role"
// @Success 200 {object} repository.Page[model.User]
// @Router /users/role/{role} [get]
func (h *UserHandler) ListByRole(c echo.Context) error {
	page, err := h.svc.ListUsersByRole(c.Request().Context(), c.Param("role"), pageRequest(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

// SearchUsers godoc
// @Summary Search users by name, email or company
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param q query string true "Search term"
// @Success 200 {object} repository.Page[model.User]
// @Router /users/search [get]
func (h *UserHandler) SearchUsers(c echo.Context) error {
	term := c.QueryParam("q")
	if term == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing search term")
	}
	page, err := h.svc.SearchUsers(c.Request().Context(), term, pageRequest(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

// UpdateUser godoc
// @Summary Update a user
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param request body UpdateUserRequest true "Fields to update"
// @Success 200 {object} model.User
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /users/{id} [put]
func (h *UserHandler) UpdateUser(c echo.Context) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	var req UpdateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.svc.UpdateUser(c.Request().Context(), id, service.UpdateUserInput{
		Email:       req.Email,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Phone:       req.Phone,
		CompanyName: req.CompanyName,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// DeleteUser godoc
// @Summary Delete a user
// @Tags users
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 204
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/{id} [delete]
func (h *UserHandler) DeleteUser(c echo.Context) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.DeleteUser(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ActivateUser godoc
// @Summary Set a user's status to ACTIVE
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} model.User
// @Router /users/{id}/activate [patch]
func (h *UserHandler) ActivateUser(c echo.Context) error {
	return h.patchStatus(c, h.svc.ActivateUser)
}

// DeactivateUser godoc
// @Summary Set a user's status to INACTIVE
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} model.User
// @Router /users/{id}/deactivate [patch]
func (h *UserHandler) DeactivateUser(c echo.Context) error {
	return h.patchStatus(c, h.svc.DeactivateUser)
}

// SuspendUser godoc
// @Summary Set a user's status to SUSPENDED
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} model.User
// @Router /users/{id}/suspend [patch]
func (h *UserHandler) SuspendUser(c echo.Context) error {
	return h.patchStatus(c, h.svc.SuspendUser)
}

// ChangeRole godoc
// @Summary Change a user's role
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param role path string true "New role"
// @Success 200 {object} model.User
// @Router /users/{id}/role/{role} [patch]
func (h *UserHandler) ChangeRole(c echo.Context) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	user, err := h.svc.ChangeUserRole(c.Request().Context(), id, c.Param("role"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// CheckEmailExists godoc
// @Summary Check whether a user email exists
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param email path string true "Email"
// @Success 200 {object} map[string]bool
// @Router /users/email/{email}/exists [get]
func (h *UserHandler) CheckEmailExists(c echo.Context) error {
	exists, err := h.svc.EmailExists(c.Request().Context(), emailParam(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]bool{"exists": exists})
}

// Stats godoc
// @Summary User statistics
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.UserStats
// @Router /users/stats [get]
func (h *UserHandler) Stats(c echo.Context) error {
	stats, err := h.svc.Stats(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

// Health godoc
// @Summary User service health
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /users/health [get]
func (h *UserHandler) Health(c echo.Context) error {
	stats, err := h.svc.Stats(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":    "UP",
		"service":   "user-api",
		"timestamp": time.Now().UTC(),
		"total":     stats.Total,
	})
}

func (h *UserHandler) patchStatus(c echo.Context, op func(context.Context, uuid.UUID) (*model.User, error)) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	user, err := op(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}
