package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"clientapi/internal/metrics"
	"clientapi/internal/model"
	"clientapi/internal/service"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// LoginRequest represents a login request.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest represents a public registration request. The role is
// always CLIENT on this endpoint.
type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
	FirstName   string `json:"first_name" validate:"required,max=50"`
	LastName    string `json:"last_name" validate:"required,max=50"`
	Phone       string `json:"phone,omitempty" validate:"omitempty,max=20"`
	CompanyName string `json:"company_name,omitempty" validate:"omitempty,max=100"`
}

// AdminRegisterRequest is the privileged variant that may pick any role.
type AdminRegisterRequest struct {
	RegisterRequest
	Role string `json:"role" validate:"required,oneof=CLIENT ADMIN"`
}

// AuthResponse represents an authentication response.
type AuthResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

// Login godoc
// @Summary Login
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} AuthResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	token, user, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, AuthResponse{Token: token, User: user})
}

// Register godoc
// @Summary Register a new client account
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration data"
// @Success 201 {object} AuthResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	token, user, err := h.authService.Register(c.Request().Context(), service.RegisterInput{
		Email:       req.Email,
		Password:    req.Password,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Phone:       req.Phone,
		CompanyName: req.CompanyName,
		Role:        model.RoleClient,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, AuthResponse{Token: token, User: user})
}

// RegisterAdmin godoc
// @Summary Register an account with a chosen role
// @Description Reachable only with an ADMIN bearer token.
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body AdminRegisterRequest true "Registration data"
// @Success 201 {object} AuthResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /auth/register/admin [post]
func (h *AuthHandler) RegisterAdmin(c echo.Context) error {
	var req AdminRegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	token, user, err := h.authService.Register(c.Request().Context(), service.RegisterInput{
		Email:       req.Email,
		Password:    req.Password,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Phone:       req.Phone,
		CompanyName: req.CompanyName,
		Role:        req.Role,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, AuthResponse{Token: token, User: user})
}

// CheckEmail godoc
// @Summary Check email availability
// @Tags auth
// @Produce json
// @Param email path string true "Email to check"
// @Success 200 {object} map[string]bool
// @Router /auth/check-email/{email} [get]
func (h *AuthHandler) CheckEmail(c echo.Context) error {
	exists, err := h.authService.EmailExists(c.Request().Context(), emailParam(c))
	if err != nil {
		return err
	}

	result := "available"
	if exists {
		result = "taken"
	}
	metrics.EmailChecksTotal.WithLabelValues(result).Inc()

	return c.JSON(http.StatusOK, map[string]bool{
		"available": !exists,
		"exists":    exists,
	})
}
