package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "clientapi/docs" // swagger docs

	"github.com/labstack/echo/v4"

	"clientapi/internal/auth"
	"clientapi/internal/cache"
	"clientapi/internal/config"
	"clientapi/internal/db"
	"clientapi/internal/handler"
	"clientapi/internal/repository"
	"clientapi/internal/router"
	"clientapi/internal/service"
	"clientapi/pkg/logger"
)

// @title Client API
// @version 1.0
// @description Client and user directory API with JWT authentication and role-based access control.
// @host localhost:8080
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		lg := logger.Get()
		lg.Fatal().Err(err).Msg("load config")
	}

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("database init")
	}
	if err := db.Migrate(gormDB); err != nil {
		log.Fatal().Err(err).Msg("auto-migrate")
	}

	cacheClient := cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)

	userRepo := repository.NewUserRepository(gormDB)
	clientRepo := repository.NewClientRepository(gormDB)

	hasher := auth.NewPasswordHasher(cfg.BcryptCost)
	tokens := auth.NewJWTService(cfg.JWTSecret, cfg.JWTTTL)

	authService := service.NewAuthService(userRepo, hasher, tokens, cacheClient)
	userService := service.NewUserService(userRepo, hasher, cacheClient)
	clientService := service.NewClientService(clientRepo, cacheClient)

	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	clientHandler := handler.NewClientHandler(clientService)

	e := echo.New()
	router.Register(e, tokens, userRepo, authHandler, userHandler, clientHandler)

	go func() {
		addr := ":" + cfg.ServerPort
		log.Info().Str("addr", addr).Str("env", cfg.Env).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}
	log.Info().Msg("server stopped")
}
