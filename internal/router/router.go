package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"

	"clientapi/internal/auth"
	"clientapi/internal/handler"
	"clientapi/internal/middleware"
	"clientapi/internal/model"
)

// Register wires routes and middleware. Role requirements are attached to
// routes as data: public routes carry no middleware, authenticated routes
// carry the gate, and privileged routes additionally carry a required-role
// set.
func Register(
	e *echo.Echo,
	tokens *auth.JWTService,
	identities middleware.IdentityLoader,
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	clientHandler *handler.ClientHandler,
) {
	e.HideBanner = true
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())

	e.Validator = &CustomValidator{validator: validator.New()}
	e.HTTPErrorHandler = NewHTTPErrorHandler()

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	authenticated := middleware.Authenticate(tokens, identities)
	adminOnly := middleware.RequireRoles(model.RoleAdmin)

	api := e.Group("/api/v1")

	// Open endpoints: no token required at all.
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/register", authHandler.Register)
	api.GET("/auth/check-email/:email", authHandler.CheckEmail)

	// Privileged registration: any role, but only an ADMIN may call it.
	api.POST("/auth/register/admin", authHandler.RegisterAdmin, authenticated, adminOnly)

	// Client directory: reads for any authenticated caller, writes for
	// admins.
	clients := api.Group("/clients", authenticated)
	clients.GET("", clientHandler.ListClients)
	clients.GET("/search", clientHandler.SearchClients)
	clients.GET("/stats", clientHandler.Stats)
	clients.GET("/status/:status", clientHandler.ListByStatus)
	clients.GET("/type/:type", clientHandler.ListByType)
	clients.GET("/email/:email", clientHandler.GetClientByEmail)
	clients.GET("/email/:email/exists", clientHandler.CheckEmailExists)
	clients.GET("/:id", clientHandler.GetClient)
	clients.POST("", clientHandler.CreateClient, adminOnly)
	clients.PUT("/:id", clientHandler.UpdateClient, adminOnly)
	clients.DELETE("/:id", clientHandler.DeleteClient, adminOnly)
	clients.PATCH("/:id/activate", clientHandler.ActivateClient, adminOnly)
	clients.PATCH("/:id/deactivate", clientHandler.DeactivateClient, adminOnly)

	// User management is admin-only in its entirety.
	users := api.Group("/users", authenticated, adminOnly)
	users.GET("", userHandler.ListUsers)
	users.GET("/clients", userHandler.ListClients)
	users.GET("/admins", userHandler.ListAdmins)
	users.GET("/search", userHandler.SearchUsers)
	users.GET("/stats", userHandler.Stats)
	users.GET("/health", userHandler.Health)
	users.GET("/status/:status", userHandler.ListByStatus)
	users.GET("/role/:role", userHandler.ListByRole)
	users.GET("/email/:email", userHandler.GetUserByEmail)
	users.GET("/email/:email/exists", userHandler.CheckEmailExists)
	users.GET("/:id", userHandler.GetUser)
	users.POST("", userHandler.CreateUser)
	users.PUT("/:id", userHandler.UpdateUser)
	users.DELETE("/:id", userHandler.DeleteUser)
	users.PATCH("/:id/activate", userHandler.ActivateUser)
	users.PATCH("/:id/deactivate", userHandler.DeactivateUser)
	users.PATCH("/:id/suspend", userHandler.SuspendUser)
	users.PATCH("/:id/role/:role", userHandler.ChangeRole)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements the echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
