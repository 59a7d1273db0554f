// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"
	"time"

	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/csrf"
	"go.uber.org/zap"

	authapifeature "github.com/dalemusser/smilebloom/internal/app/features/authapi"
	authgooglefeature "github.com/dalemusser/smilebloom/internal/app/features/authgoogle"
	childrenfeature "github.com/dalemusser/smilebloom/internal/app/features/children"
	dashboardfeature "github.com/dalemusser/smilebloom/internal/app/features/dashboard"
	healthfeature "github.com/dalemusser/smilebloom/internal/app/features/health"
	profilefeature "github.com/dalemusser/smilebloom/internal/app/features/profile"
	registerfeature "github.com/dalemusser/smilebloom/internal/app/features/register"
	teethfeature "github.com/dalemusser/smilebloom/internal/app/features/teeth"
	teetheventsfeature "github.com/dalemusser/smilebloom/internal/app/features/teethevents"
	"github.com/dalemusser/smilebloom/internal/app/store/audit"
	userstore "github.com/dalemusser/smilebloom/internal/app/store/users"
	"github.com/dalemusser/smilebloom/internal/app/system/apicors"
	"github.com/dalemusser/smilebloom/internal/app/system/auditlog"
	"github.com/dalemusser/smilebloom/internal/app/system/auth"
	"github.com/dalemusser/smilebloom/internal/app/system/jsonutil"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// Startup have completed. The surface is a JSON API:
//
//	POST   /api/register            - create an account
//	POST   /api/auth/login          - sign in, sets the session cookie
//	POST   /api/auth/logout         - sign out
//	GET    /api/auth/session        - current session info
//	GET    /api/teeth               - tooth catalog (public)
//	/api/profile, /api/children, /api/teeth-events, /api/dashboard
//	                                - signed-in only
//	/auth/google                    - Google OAuth flow (when configured)
//	/health/live, /health/ready     - probes
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies and strict secret checks in production mode.
	secure := coreCfg.Env == "prod"

	signer, err := auth.NewTokenSigner(appCfg.TokenSecret, secure)
	if err != nil {
		logger.Error("token signer init failed", zap.Error(err))
		return nil, err
	}
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName,
		appCfg.SessionDomain, appCfg.SessionMaxAge, secure, signer, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Fresh user data on every request so role changes and disabled
	// accounts take effect immediately.
	sessionMgr.SetUserFetcher(userstore.NewFetcher(deps.MongoDatabase, logger))

	auditStore := audit.New(deps.MongoDatabase)
	auditLogger := auditlog.New(auditStore, logger, auditlog.Config{
		Auth:     appCfg.AuditLogAuth,
		Activity: appCfg.AuditLogActivity,
	})

	authenticator := auth.NewAuthenticator(userstore.New(deps.MongoDatabase), signer, logger)

	r := chi.NewRouter()

	// Global middleware. CORS must run early to answer preflights.
	r.Use(chimw.Timeout(30 * time.Second))
	if len(appCfg.CORSAllowedOrigins) > 0 {
		r.Use(apicors.MiddlewareWithOrigins(appCfg.CORSAllowedOrigins...))
	} else {
		r.Use(apicors.Middleware())
	}
	r.Use(middleware.SecurityHeadersFromConfig(coreCfg))
	r.Use(sessionMgr.LoadSessionUser)

	// CSRF protection for the cookie-authenticated mutations. Safe methods
	// pass through unverified but receive the current token in the
	// X-CSRF-Token response header; clients echo it back on writes in the
	// same header. Cookie name is "smilebloom_csrf" to avoid collisions with
	// other services on the same domain.
	csrfOpts := []csrf.Option{
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.CookieName("smilebloom_csrf"),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			logger.Warn("CSRF validation failed",
				zap.String("path", req.URL.Path),
				zap.String("method", req.Method),
				zap.String("reason", csrf.FailureReason(req).Error()),
			)
			jsonutil.Forbidden(w, "CSRF token invalid or missing")
		})),
	}
	// In dev mode, trust localhost origins for CSRF validation.
	if !secure {
		csrfOpts = append(csrfOpts, csrf.TrustedOrigins([]string{
			"localhost:8080",
			"localhost:3000",
			"127.0.0.1:8080",
			"127.0.0.1:3000",
		}))
	}
	if appCfg.SessionDomain != "" {
		csrfOpts = append(csrfOpts, csrf.Domain(appCfg.SessionDomain))
	}
	csrfProtect := csrf.Protect([]byte(appCfg.CSRFKey), csrfOpts...)
	r.Use(func(next http.Handler) http.Handler {
		return csrfProtect(exposeCSRFToken(next))
	})

	// Health check endpoints for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))
	healthfeature.MountRootEndpoints(r, healthHandler)

	// Google OAuth (only mounted when configured)
	if appCfg.GoogleClientID != "" && appCfg.GoogleClientSecret != "" {
		googleHandler := authgooglefeature.NewHandler(
			deps.MongoDatabase,
			sessionMgr,
			auditLogger,
			appCfg.GoogleClientID,
			appCfg.GoogleClientSecret,
			appCfg.BaseURL,
			logger,
		)
		r.Mount("/auth/google", authgooglefeature.Routes(googleHandler))
		logger.Info("Google OAuth enabled",
			zap.String("redirect_url", appCfg.BaseURL+"/auth/google/callback"))
	}

	r.Route("/api", func(api chi.Router) {
		// Public endpoints
		registerHandler := registerfeature.NewHandler(deps.MongoDatabase, auditLogger, logger)
		api.Mount("/register", registerfeature.Routes(registerHandler))

		authHandler := authapifeature.NewHandler(deps.MongoDatabase, authenticator, sessionMgr, auditLogger, logger)
		api.Mount("/auth", authapifeature.Routes(authHandler))

		teethHandler := teethfeature.NewHandler(logger)
		api.Mount("/teeth", teethfeature.Routes(teethHandler))

		// Signed-in endpoints
		api.Group(func(priv chi.Router) {
			priv.Use(sessionMgr.RequireSignedIn)

			profileHandler := profilefeature.NewHandler(deps.MongoDatabase, auditLogger, logger)
			priv.Mount("/profile", profilefeature.Routes(profileHandler))

			childrenHandler := childrenfeature.NewHandler(deps.MongoDatabase, auditLogger, logger)
			priv.Mount("/children", childrenfeature.Routes(childrenHandler))

			eventsHandler := teetheventsfeature.NewHandler(deps.MongoDatabase, auditLogger, logger)
			priv.Mount("/teeth-events", teetheventsfeature.Routes(eventsHandler))

			dashboardHandler := dashboardfeature.NewHandler(deps.MongoDatabase, logger)
			priv.Mount("/dashboard", dashboardfeature.Routes(dashboardHandler))
		})
	})

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		jsonutil.NotFound(w, "Not found")
	})

	return r, nil
}

// exposeCSRFToken surfaces the per-request CSRF token in a response header
// so JSON clients can pick it up from any response, typically the session
// lookup, and send it back on mutating requests.
func exposeCSRFToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("X-CSRF-Token", csrf.Token(req))
		next.ServeHTTP(w, req)
	})
}
