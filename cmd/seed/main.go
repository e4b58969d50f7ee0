// Command seed bootstraps the first ADMIN account so a fresh deployment
// has an identity able to reach the privileged endpoints.
package main

import (
	"context"
	stderrors "errors"
	"os"

	"clientapi/internal/auth"
	"clientapi/internal/config"
	"clientapi/internal/db"
	"clientapi/internal/errors"
	"clientapi/internal/model"
	"clientapi/internal/repository"
	"clientapi/pkg/logger"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		lg := logger.Get()
		lg.Fatal().Err(err).Msg("load config")
	}
	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: true})

	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		log.Fatal().Msg("ADMIN_EMAIL and ADMIN_PASSWORD must be set")
	}

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("database init")
	}
	if err := db.Migrate(gormDB); err != nil {
		log.Fatal().Err(err).Msg("auto-migrate")
	}

	users := repository.NewUserRepository(gormDB)
	hasher := auth.NewPasswordHasher(cfg.BcryptCost)

	hash, err := hasher.Hash(password)
	if err != nil {
		log.Fatal().Err(err).Msg("hash password")
	}

	admin := &model.User{
		FirstName:    "System",
		LastName:     "Administrator",
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleAdmin,
		Status:       model.StatusActive,
	}
	if err := users.Create(ctx, admin); err != nil {
		if stderrors.Is(err, errors.ErrEmailAlreadyExists) {
			log.Info().Str("email", model.NormalizeEmail(email)).Msg("admin already exists, nothing to do")
			return
		}
		log.Fatal().Err(err).Msg("create admin")
	}

	log.Info().
		Str("id", admin.ID.String()).
		Str("email", admin.Email).
		Msg("admin account created")
}
