package main

import (
	"context"
	"flag"
	"log"

	"go.uber.org/zap"

	"github.com/creativa-studio/lead-service/internal/config"
	"github.com/creativa-studio/lead-service/internal/observability"
	"github.com/creativa-studio/lead-service/internal/persistence"
	"github.com/creativa-studio/lead-service/internal/repository"
	"github.com/creativa-studio/lead-service/internal/service"
)

// Seeds an admin account so the dashboard has someone to log in as.
func main() {
	name := flag.String("name", "Admin", "admin display name")
	email := flag.String("email", "", "admin email (required)")
	password := flag.String("password", "", "admin password (required)")
	flag.Parse()

	if *email == "" || *password == "" {
		log.Fatal("both -email and -password are required")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx := context.Background()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	adminRepo := repository.NewAdminRepository(pg.PoolHandle())
	authService := service.NewAuthService(*cfg, adminRepo)

	admin, err := authService.Register(ctx, *name, *email, *password)
	if err != nil {
		logger.Fatal("failed to create admin", zap.Error(err))
	}

	logger.Info("admin created", zap.String("id", admin.ID), zap.String("email", admin.Email))
}
