package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/Mulandii/Clinic-cms/domain"
	"github.com/Mulandii/Clinic-cms/internal/config"
	"github.com/Mulandii/Clinic-cms/internal/infrastructure/auth"
	"github.com/Mulandii/Clinic-cms/internal/infrastructure/database"
	"github.com/Mulandii/Clinic-cms/internal/infrastructure/repositories"
)

// db-setup migrates the clinic schema, mirrors the route policies into
// casbin_rule and optionally creates the first administrator from
// BOOTSTRAP_ADMIN_EMAIL / BOOTSTRAP_ADMIN_PASSWORD.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("db setup failed", zap.Error(err))
	}
	logger.Info("database ready")
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	db, err := database.Open(cfg, logger)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		return err
	}

	cas, err := auth.NewCasbinService(db, config.DefaultRouteRules())
	if err != nil {
		return err
	}
	policies, err := cas.E.GetPolicy()
	if err != nil {
		return err
	}
	logger.Info("route policies stored", zap.Int("count", len(policies)))

	var users int64
	if err := db.WithContext(ctx).Model(&repositories.DBUser{}).Count(&users).Error; err != nil {
		return err
	}
	logger.Info("users table accessible", zap.Int64("count", users))

	email, password := os.Getenv("BOOTSTRAP_ADMIN_EMAIL"), os.Getenv("BOOTSTRAP_ADMIN_PASSWORD")
	if email == "" || password == "" {
		return nil
	}
	hash, err := auth.NewPasswordService().Hash(password)
	if err != nil {
		return err
	}
	admin := &domain.Identity{Email: email, Role: domain.RoleAdmin}
	err = repositories.NewUserRepository(db).Create(ctx, admin, hash)
	switch {
	case errors.Is(err, domain.ErrIdentityExists):
		logger.Info("bootstrap admin already exists", zap.String("email", email))
	case err != nil:
		return err
	default:
		logger.Info("bootstrap admin created", zap.String("id", admin.ID))
	}
	return nil
}
