// internal/app/system/tasks/jobs.go
package tasks

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/dalemusser/smilebloom/internal/app/store/audit"
	loginstore "github.com/dalemusser/smilebloom/internal/app/store/logins"
	"github.com/dalemusser/smilebloom/internal/app/store/oauthstate"
	"github.com/dalemusser/smilebloom/internal/app/system/timeouts"
)

// OAuthStateCleanupJob creates a job that removes expired OAuth state tokens.
// Mongo's TTL monitor covers these too, but it only runs every 60 seconds and
// makes no timing guarantees, so we sweep on our own schedule as well.
func OAuthStateCleanupJob(db *mongo.Database, logger *zap.Logger) Job {
	states := oauthstate.New(db)
	return Job{
		Name:     "oauth-state-cleanup",
		Interval: 1 * time.Hour,
		Run: func(ctx context.Context) error {
			ctx, cancel := timeouts.WithSweep(ctx)
			defer cancel()

			deleted, err := states.DeleteExpired(ctx)
			if err != nil {
				return err
			}
			if deleted > 0 {
				logger.Info("cleaned up expired oauth states",
					zap.Int64("deleted", deleted))
			}
			return nil
		},
	}
}

// LoginRecordRetentionJob creates a job that prunes login records older than
// the given retention period.
func LoginRecordRetentionJob(db *mongo.Database, logger *zap.Logger, retention time.Duration) Job {
	logins := loginstore.New(db)
	return Job{
		Name:     "login-record-retention",
		Interval: 24 * time.Hour,
		Run: func(ctx context.Context) error {
			ctx, cancel := timeouts.WithSweep(ctx)
			defer cancel()

			cutoff := time.Now().UTC().Add(-retention)
			deleted, err := logins.DeleteOlderThan(ctx, cutoff)
			if err != nil {
				return err
			}
			if deleted > 0 {
				logger.Info("pruned old login records",
					zap.Int64("deleted", deleted),
					zap.Duration("retention", retention))
			}
			return nil
		},
	}
}

// AuditLogRetentionJob creates a job that prunes audit log entries older than
// the given retention period.
func AuditLogRetentionJob(db *mongo.Database, logger *zap.Logger, retention time.Duration) Job {
	auditStore := audit.New(db)
	return Job{
		Name:     "audit-log-retention",
		Interval: 24 * time.Hour,
		Run: func(ctx context.Context) error {
			ctx, cancel := timeouts.WithSweep(ctx)
			defer cancel()

			cutoff := time.Now().UTC().Add(-retention)
			deleted, err := auditStore.DeleteOlderThan(ctx, cutoff)
			if err != nil {
				return err
			}
			if deleted > 0 {
				logger.Info("pruned old audit log entries",
					zap.Int64("deleted", deleted),
					zap.Duration("retention", retention))
			}
			return nil
		},
	}
}
