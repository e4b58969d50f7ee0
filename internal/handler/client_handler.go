package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"clientapi/internal/model"
	"clientapi/internal/service"
)

// ClientHandler handles client directory endpoints.
type ClientHandler struct {
	svc service.ClientService
}

// NewClientHandler creates a new client handler.
func NewClientHandler(svc service.ClientService) *ClientHandler {
	return &ClientHandler{svc: svc}
}

// CreateClientRequest represents a client creation request.
type CreateClientRequest struct {
	FirstName  string `json:"first_name" validate:"required,max=50"`
	LastName   string `json:"last_name" validate:"required,max=50"`
	Email      string `json:"email" validate:"required,email,max=100"`
	Phone      string `json:"phone,omitempty" validate:"omitempty,max=20"`
	Address    string `json:"address,omitempty" validate:"omitempty,max=200"`
	City       string `json:"city,omitempty" validate:"omitempty,max=50"`
	PostalCode string `json:"postal_code,omitempty" validate:"omitempty,max=10"`
	Country    string `json:"country,omitempty" validate:"omitempty,max=50"`
	Type       string `json:"type,omitempty" validate:"omitempty,oneof=INDIVIDUAL PROFESSIONAL DISTRIBUTOR"`
}

// UpdateClientRequest represents a partial client update.
type UpdateClientRequest struct {
	FirstName  string `json:"first_name,omitempty" validate:"omitempty,max=50"`
	LastName   string `json:"last_name,omitempty" validate:"omitempty,max=50"`
	Email      string `json:"email,omitempty" validate:"omitempty,email,max=100"`
	Phone      string `json:"phone,omitempty" validate:"omitempty,max=20"`
	Address    string `json:"address,omitempty" validate:"omitempty,max=200"`
	City       string `json:"city,omitempty" validate:"omitempty,max=50"`
	PostalCode string `json:"postal_code,omitempty" validate:"omitempty,max=10"`
	Country    string `json:"country,omitempty" validate:"omitempty,max=50"`
	Type       string `json:"type,omitempty" validate:"omitempty,oneof=INDIVIDUAL PROFESSIONAL DISTRIBUTOR"`
}

// CreateClient godoc
// @Summary Create a client
// @Tags clients
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateClientRequest true "Client payload"
// @Success 201 {object} model.Client
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /clients [post]
func (h *ClientHandler) CreateClient(c echo.Context) error {
	var req CreateClientRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	client, err := h.svc.CreateClient(c.Request().Context(), service.CreateClientInput{
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Email:      req.Email,
		Phone:      req.Phone,
		Address:    req.Address,
		City:       req.City,
		PostalCode: req.PostalCode,
		Country:    req.Country,
		Type:       req.Type,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, client)
}

// GetClient godoc
// @Summary Get client by id
// @Tags clients
// @Produce json
// @Security BearerAuth
// @Param id path string true "Client ID"
// @Success 200 {object} model.Client
// @Failure 404 {object} errors.ErrorResponse
// @Router /clients/{id} [get]
func (h *ClientHandler) GetClient(c echo.Context) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	client, err := h.svc.GetClient(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, client)
}

// GetClientByEmail godoc
// @Summary Get client by email
// @Tags clients
// @Produce json
// @Security BearerAuth
// @Param email path string true "Client email"
// @Success 200 {object} model.Client
// @Failure 404 {object} errors.ErrorResponse
// @Router /clients/email/{email} [get]
func (h *ClientHandler) GetClientByEmail(c echo.Context) error {
	client, err := h.svc.GetClientByEmail(c.Request().Context(), emailParam(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, client)
}

// ListClients godoc
// @Summary List clients
// @Tags clients
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page (1-based)"
// @Param size query int false "Page size"
// @Success 200 {object} repository.Page[model.Client]
// @Router /clients [get]
func (h *ClientHandler) ListClients(c echo.Context) error {
	page, err := h.svc.ListClients(c.Request().Context(), pageRequest(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

// ListByStatus godoc
// @Summary List clients by status
// @Tags clients
// @Produce json
// @Security BearerAuth
// @Param status path string true "Status"
// @Success 200 {object} repository.Page[model.Client]
// @Router /clients/status/{status} [get]
func (h *ClientHandler) ListByStatus(c echo.Context) error {
	page, err := h.svc.ListClientsByStatus(c.Request().Context(), c.Param("status"), pageRequest(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

// ListByType godoc
// @Summary List clients by type
// @Tags clients
// @Produce json
// @Security BearerAuth
// @Param type path string true "Client type"
// @Success 200 {object} repository.Page[model.Client]
// @Router /clients/type/{type} [get]
func (h *ClientHandler) ListByType(c echo.Context) error {
	page, err := h.svc.ListClientsByType(c.Request().Context(), c.Param("type"), pageRequest(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

// SearchClients godoc
// @Summary Search clients by name or email
// @Tags clients
// @Produce json
// @Security BearerAuth
// @Param q query string true "Search term"
// @Success 200 {object} repository.Page[model.Client]
// @Router /clients/search [get]
func (h *ClientHandler) SearchClients(c echo.Context) error {
	term := c.QueryParam("q")
	if term == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing search term")
	}
	page, err := h.svc.SearchClients(c.Request().Context(), term, pageRequest(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

// UpdateClient godoc
// @Summary Update a client
// @Tags clients
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Client ID"
// @Param request body UpdateClientRequest true "Fields to update"
// @Success 200 {object} model.Client
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /clients/{id} [put]
func (h *ClientHandler) UpdateClient(c echo.Context) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	var req UpdateClientRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	client, err := h.svc.UpdateClient(c.Request().Context(), id, service.UpdateClientInput{
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Email:      req.Email,
		Phone:      req.Phone,
		Address:    req.Address,
		City:       req.City,
		PostalCode: req.PostalCode,
		Country:    req.Country,
		Type:       req.Type,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, client)
}

// DeleteClient godoc
// @Summary Delete a client
// @Tags clients
// @Security BearerAuth
// @Param id path string true "Client ID"
// @Success 204
// @Failure 404 {object} errors.ErrorResponse
// @Router /clients/{id} [delete]
func (h *ClientHandler) DeleteClient(c echo.Context) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.DeleteClient(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ActivateClient godoc
// @Summary Set a client's status to ACTIVE
// @Tags clients
// @Produce json
// @Security BearerAuth
// @Param id path string true "Client ID"
// @Success 200 {object} model.Client
// @Router /clients/{id}/activate [patch]
func (h *ClientHandler) ActivateClient(c echo.Context) error {
	return h.patchStatus(c, h.svc.ActivateClient)
}

// DeactivateClient godoc
// @Summary Set a client's status to INACTIVE
// @Tags clients
// @Produce json
// @Security BearerAuth
// @Param id path string true "Client ID"
// @Success 200 {object} model.Client
// @Router /clients/{id}/deactivate [patch]
func (h *ClientHandler) DeactivateClient(c echo.Context) error {
	return h.patchStatus(c, h.svc.DeactivateClient)
}

// CheckEmailExists godoc
// @Summary Check whether a client email exists
// @Tags clients
// @Produce json
// @Security BearerAuth
// @Param email path string true "Email"
// @Success 200 {object} map[string]bool
// @Router /clients/email/{email}/exists [get]
func (h *ClientHandler) CheckEmailExists(c echo.Context) error {
	exists, err := h.svc.EmailExists(c.Request().Context(), emailParam(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]bool{"exists": exists})
}

// Stats godoc
// @Summary Client statistics
// @Tags clients
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.ClientStats
// @Router /clients/stats [get]
func (h *ClientHandler) Stats(c echo.Context) error {
	stats, err := h.svc.Stats(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *ClientHandler) patchStatus(c echo.Context, op func(context.Context, uuid.UUID) (*model.Client, error)) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	client, err := op(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, client)
}
