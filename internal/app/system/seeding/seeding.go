// internal/app/system/seeding/seeding.go
package seeding

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	userstore "github.com/dalemusser/smilebloom/internal/app/store/users"
	"github.com/dalemusser/smilebloom/internal/app/system/authutil"
	"github.com/dalemusser/smilebloom/internal/domain/models"
)

// SeedAll seeds default data if not already present.
func SeedAll(ctx context.Context, db *mongo.Database, logger *zap.Logger, adminUsername, adminPassword string) error {
	return seedAdminUser(ctx, db, logger, adminUsername, adminPassword)
}

// seedAdminUser creates the initial admin account when the configured
// username doesn't exist yet. If the account exists but has been demoted
// or deactivated, it is restored to an active admin. Empty credentials
// skip seeding.
func seedAdminUser(ctx context.Context, db *mongo.Database, logger *zap.Logger, username, password string) error {
	users := userstore.New(db)

	if username == "" || password == "" {
		admins, err := users.CountActiveAdmins(ctx)
		if err != nil {
			logger.Error("failed to count active admin users", zap.Error(err))
			return err
		}
		if admins == 0 {
			logger.Warn("no active admin account exists and no seed credentials are configured")
		} else {
			logger.Debug("admin seeding skipped, no credentials configured")
		}
		return nil
	}

	existing, err := users.GetByUsername(ctx, username)
	if err != nil && err != mongo.ErrNoDocuments {
		logger.Error("failed to check for existing admin user",
			zap.String("username", username),
			zap.Error(err))
		return err
	}
	if existing != nil {
		if existing.Role == models.RoleAdmin && existing.Status == models.StatusActive {
			logger.Debug("admin user already exists", zap.String("username", username))
			return nil
		}
		role := models.RoleAdmin
		status := models.StatusActive
		if err := users.UpdateFromInput(ctx, existing.ID, userstore.UpdateInput{
			Role:   &role,
			Status: &status,
		}); err != nil {
			logger.Error("failed to restore admin user",
				zap.String("username", username),
				zap.Error(err))
			return err
		}
		logger.Info("restored admin user to active admin",
			zap.String("username", username),
			zap.String("user_id", existing.ID.Hex()))
		return nil
	}

	hash, err := authutil.HashPassword(password)
	if err != nil {
		return err
	}

	created, err := users.Create(ctx, models.User{
		Username:     username,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
	})
	if err != nil {
		// A concurrent boot may have won the race.
		if err == userstore.ErrDuplicateUsername {
			logger.Debug("admin user created concurrently", zap.String("username", username))
			return nil
		}
		logger.Error("failed to seed admin user",
			zap.String("username", username),
			zap.Error(err))
		return err
	}

	logger.Info("seeded admin user",
		zap.String("username", created.Username),
		zap.String("user_id", created.ID.Hex()))
	return nil
}
