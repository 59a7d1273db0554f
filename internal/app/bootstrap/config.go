// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"

	"github.com/dalemusser/smilebloom/internal/app/system/auth"
)

// EnvVarPrefix is the prefix for environment variables.
const EnvVarPrefix = "SMILEBLOOM"

// appConfigKeys defines the configuration keys for this application.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: SMILEBLOOM_MONGO_URI, SMILEBLOOM_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "smilebloom", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "smilebloom-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "744h", Desc: "Session cookie max age; must cover the 30-day remember-me token"},
	{Name: "token_secret", Default: "dev-only-token-secret-please-change-0123", Desc: "HS256 signing secret for session tokens (32+ chars in production)"},
	{Name: "csrf_key", Default: "dev-only-csrf-key-please-change-0123456789", Desc: "CSRF token signing key (32+ chars in production)"},

	{Name: "cors_allowed_origins", Default: "", Desc: "Comma-separated CORS origins for the API (empty means any)"},

	// Audit logging settings
	{Name: "audit_log_auth", Default: "all", Desc: "Auth event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_activity", Default: "all", Desc: "Activity event logging: 'all' (db+log), 'db', 'log', or 'off'"},

	// Google OAuth configuration
	{Name: "google_client_id", Default: "", Desc: "Google OAuth2 client ID"},
	{Name: "google_client_secret", Default: "", Desc: "Google OAuth2 client secret"},

	// Base URL for the OAuth redirect
	{Name: "base_url", Default: "http://localhost:8080", Desc: "Externally visible base URL of this service"},

	// Admin seeding configuration
	{Name: "seed_admin_username", Default: "", Desc: "Username of admin user to create on startup"},
	{Name: "seed_admin_password", Default: "", Desc: "Password of admin user to create on startup"},

	// Retention windows for background cleanup
	{Name: "login_record_retention", Default: "2160h", Desc: "How long login records are kept (default: 90 days)"},
	{Name: "audit_log_retention", Default: "8760h", Desc: "How long audit events are kept (default: 365 days)"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, SMILEBLOOM_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, EnvVarPrefix, appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),
		SessionMaxAge: appValues.Duration("session_max_age", 31*24*time.Hour),
		TokenSecret:   appValues.String("token_secret"),
		CSRFKey:       appValues.String("csrf_key"),

		CORSAllowedOrigins: splitOrigins(appValues.String("cors_allowed_origins")),

		AuditLogAuth:     appValues.String("audit_log_auth"),
		AuditLogActivity: appValues.String("audit_log_activity"),

		GoogleClientID:     appValues.String("google_client_id"),
		GoogleClientSecret: appValues.String("google_client_secret"),

		BaseURL: appValues.String("base_url"),

		SeedAdminUsername: appValues.String("seed_admin_username"),
		SeedAdminPassword: appValues.String("seed_admin_password"),

		LoginRecordRetention: appValues.Duration("login_record_retention", 90*24*time.Hour),
		AuditLogRetention:    appValues.Duration("audit_log_retention", 365*24*time.Hour),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	// The cookie must outlive the longest-lived token, or remembered
	// sessions would drop before their tokens expire.
	if appCfg.SessionMaxAge < auth.RememberTokenTTL {
		logger.Warn("session_max_age is shorter than the remember-me token TTL",
			zap.Duration("session_max_age", appCfg.SessionMaxAge),
			zap.Duration("remember_token_ttl", auth.RememberTokenTTL))
	}

	if appCfg.LoginRecordRetention <= 0 {
		return fmt.Errorf("login_record_retention must be positive")
	}
	if appCfg.AuditLogRetention <= 0 {
		return fmt.Errorf("audit_log_retention must be positive")
	}

	return nil
}

func splitOrigins(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			origins = append(origins, p)
		}
	}
	return origins
}
