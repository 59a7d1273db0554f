// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"

	"github.com/dalemusser/smilebloom/internal/app/store/audit"
	"github.com/dalemusser/smilebloom/internal/app/system/network"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Config holds audit logging configuration.
type Config struct {
	// Auth controls logging for authentication events (login, logout, register, password).
	// Values: "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only), "off" (disabled)
	Auth string
	// Activity controls logging for profile, child, and tooth event changes.
	// Same values as Auth.
	Activity string
}

// Logger provides convenience methods for logging audit events.
// It logs to both MongoDB (via audit.Store) and structured logs (via zap).
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

// logToZap logs the event to zap with consistent structure.
func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}

	if event.UserID != nil {
		fields = append(fields, zap.String("user_id", event.UserID.Hex()))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records an audit event based on configuration.
// If the logger is nil, this is a no-op (allows tests to use nil audit logger).
// Logging destination is controlled by config: "all", "db", "log", or "off".
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	var setting string
	switch event.Category {
	case audit.CategoryAuth:
		setting = l.config.Auth
	default:
		setting = l.config.Activity
	}

	if setting == "off" {
		return
	}

	if setting == "all" || setting == "log" {
		l.logToZap(event)
	}

	if setting == "all" || setting == "db" {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

/* --- Authentication events --- */

// LoginSuccess logs a successful login.
func (l *Logger) LoginSuccess(ctx context.Context, r *http.Request, userID primitive.ObjectID, provider, username string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLoginSuccess,
		UserID:    &userID,
		IP:        network.ClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
		Details: map[string]string{
			"provider": provider,
			"username": username,
		},
	})
}

// LoginFailed logs a rejected login attempt. The reason stays internal; the
// HTTP response never distinguishes failure causes.
func (l *Logger) LoginFailed(ctx context.Context, r *http.Request, attemptedUsername, reason string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     audit.EventLoginFailed,
		IP:            network.ClientIP(r),
		UserAgent:     r.UserAgent(),
		Success:       false,
		FailureReason: reason,
		Details: map[string]string{
			"attempted_username": attemptedUsername,
		},
	})
}

// Logout logs a user logout.
// Accepts string IDs from SessionUser and converts them to ObjectIDs.
func (l *Logger) Logout(ctx context.Context, r *http.Request, userIDStr string) {
	var userID *primitive.ObjectID

	if oid, err := primitive.ObjectIDFromHex(userIDStr); err == nil {
		userID = &oid
	}

	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLogout,
		UserID:    userID,
		IP:        network.ClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
	})
}

// UserRegistered logs a new account registration.
func (l *Logger) UserRegistered(ctx context.Context, r *http.Request, userID primitive.ObjectID, username string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventUserRegistered,
		UserID:    &userID,
		IP:        network.ClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
		Details: map[string]string{
			"username": username,
		},
	})
}

// PasswordChanged logs a password change.
func (l *Logger) PasswordChanged(ctx context.Context, r *http.Request, userID primitive.ObjectID) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventPasswordChanged,
		UserID:    &userID,
		IP:        network.ClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
	})
}

// GoogleLinked logs a Google account being attached to a user.
func (l *Logger) GoogleLinked(ctx context.Context, r *http.Request, userID primitive.ObjectID) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventGoogleLinked,
		UserID:    &userID,
		IP:        network.ClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
	})
}

/* --- Profile events --- */

// EmailUpdated logs a contact email change.
func (l *Logger) EmailUpdated(ctx context.Context, r *http.Request, userID primitive.ObjectID) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryProfile,
		EventType: audit.EventEmailUpdated,
		UserID:    &userID,
		IP:        network.ClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
	})
}

// DentistUpdated logs a dentist reminder change. historyLogged records
// whether the change produced a history entry.
func (l *Logger) DentistUpdated(ctx context.Context, r *http.Request, userID primitive.ObjectID, historyLogged bool) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryProfile,
		EventType: audit.EventDentistUpdated,
		UserID:    &userID,
		IP:        network.ClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
		Details: map[string]string{
			"history_logged": boolToString(historyLogged),
		},
	})
}

/* --- Child and tooth events --- */

// ChildCreated logs a new child profile.
func (l *Logger) ChildCreated(ctx context.Context, r *http.Request, userID, childID primitive.ObjectID) {
	l.logChild(ctx, r, audit.EventChildCreated, userID, childID)
}

// ChildUpdated logs an edit to a child profile.
func (l *Logger) ChildUpdated(ctx context.Context, r *http.Request, userID, childID primitive.ObjectID) {
	l.logChild(ctx, r, audit.EventChildUpdated, userID, childID)
}

// ChildDeleted logs the removal of a child profile.
func (l *Logger) ChildDeleted(ctx context.Context, r *http.Request, userID, childID primitive.ObjectID) {
	l.logChild(ctx, r, audit.EventChildDeleted, userID, childID)
}

func (l *Logger) logChild(ctx context.Context, r *http.Request, eventType string, userID, childID primitive.ObjectID) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryChild,
		EventType: eventType,
		UserID:    &userID,
		IP:        network.ClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
		Details: map[string]string{
			"child_id": childID.Hex(),
		},
	})
}

// ToothEventCreated logs a recorded tooth event.
func (l *Logger) ToothEventCreated(ctx context.Context, r *http.Request, userID, childID primitive.ObjectID, eventType string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryTeeth,
		EventType: audit.EventToothEventCreated,
		UserID:    &userID,
		IP:        network.ClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
		Details: map[string]string{
			"child_id": childID.Hex(),
			"type":     eventType,
		},
	})
}

// ToothEventDeleted logs the removal of a tooth event.
func (l *Logger) ToothEventDeleted(ctx context.Context, r *http.Request, userID, eventID primitive.ObjectID) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryTeeth,
		EventType: audit.EventToothEventDeleted,
		UserID:    &userID,
		IP:        network.ClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
		Details: map[string]string{
			"event_id": eventID.Hex(),
		},
	})
}

func boolToString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
