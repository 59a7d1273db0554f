// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/dalemusser/smilebloom/internal/app/system/seeding"
	"github.com/dalemusser/smilebloom/internal/app/system/tasks"
)

// Startup runs once after DB connections and schema/index setup are complete,
// but before the HTTP handler is built and requests are served.
//
// Returning a non-nil error aborts startup. The context is cancelled if the
// process is asked to shut down while Startup is running.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if err := seeding.SeedAll(ctx, deps.MongoDatabase, logger,
		appCfg.SeedAdminUsername, appCfg.SeedAdminPassword); err != nil {
		logger.Error("failed to seed admin user", zap.Error(err))
		return err
	}

	startTaskRunner(deps.MongoDatabase, appCfg, logger)
	return nil
}

// taskRunner is the global task runner instance, used for graceful shutdown.
var taskRunner *tasks.Runner

// startTaskRunner initializes and starts the background task runner.
func startTaskRunner(db *mongo.Database, appCfg AppConfig, logger *zap.Logger) {
	taskRunner = tasks.New(logger)

	taskRunner.Register(tasks.OAuthStateCleanupJob(db, logger))
	taskRunner.Register(tasks.LoginRecordRetentionJob(db, logger, appCfg.LoginRecordRetention))
	taskRunner.Register(tasks.AuditLogRetentionJob(db, logger, appCfg.AuditLogRetention))

	taskRunner.Start()
}
