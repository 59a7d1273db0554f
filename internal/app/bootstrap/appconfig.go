// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig handles
// framework-level settings (ports, TLS, logging level, body size limits);
// AppConfig is everything specific to this application.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Maximum connections in pool (default: 100)
	MongoMinPoolSize uint64 // Minimum connections to keep warm (default: 10)

	// Session and token configuration. The session cookie only transports
	// the signed token; expiry is enforced by the token itself.
	SessionKey    string        // Secret key for signing session cookies (must be strong in production)
	SessionName   string        // Cookie name for sessions (default: smilebloom-session)
	SessionDomain string        // Cookie domain (blank means current host)
	SessionMaxAge time.Duration // Session cookie lifetime; must cover the remember-me token TTL
	TokenSecret   string        // HS256 signing secret for session tokens (must be strong in production)
	CSRFKey       string        // Secret key for signing CSRF tokens (must be strong in production)

	// CORS configuration for the JSON API. Empty means any origin.
	CORSAllowedOrigins []string

	// Audit logging configuration
	// Values: "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only), "off" (disabled)
	AuditLogAuth     string // Authentication events (login, logout, register)
	AuditLogActivity string // Profile, child, and tooth event changes

	// Google OAuth configuration (flow disabled when either is empty)
	GoogleClientID     string
	GoogleClientSecret string

	// Base URL of this service, used to build the OAuth redirect URL
	BaseURL string

	// Admin seeding configuration (skipped when either is empty)
	SeedAdminUsername string
	SeedAdminPassword string

	// Retention windows for the background cleanup jobs
	LoginRecordRetention time.Duration // How long login records are kept (default: 90 days)
	AuditLogRetention    time.Duration // How long audit events are kept (default: 365 days)
}
