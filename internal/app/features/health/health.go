// Package health exposes liveness and readiness probes.
package health

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"github.com/dalemusser/smilebloom/internal/app/system/jsonutil"
	"github.com/dalemusser/smilebloom/internal/app/system/timeouts"
)

// Handler answers health probes for load balancers and orchestrators.
type Handler struct {
	mongoClient *mongo.Client
	logger      *zap.Logger
}

// NewHandler creates a health probe Handler.
func NewHandler(mongoClient *mongo.Client, logger *zap.Logger) *Handler {
	return &Handler{
		mongoClient: mongoClient,
		logger:      logger,
	}
}

// Routes serves /health (full check), /health/ready, and /health/live.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.Check)
	r.Get("/ready", h.Ready)
	r.Get("/live", h.Live)
	return r
}

// MountRootEndpoints adds the Kubernetes-convention probe paths on the
// root router: /ready, /readyz (readiness) and /livez (liveness).
func MountRootEndpoints(r chi.Router, h *Handler) {
	r.Get("/ready", h.Ready)
	r.Get("/readyz", h.Ready)
	r.Get("/livez", h.Live)
}

// Check reports overall service health including MongoDB connectivity.
// Returns 503 with status "degraded" when the database is unreachable.
func (h *Handler) Check(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	overall := "ok"
	services := map[string]string{"mongodb": "ok"}

	if err := h.pingMongo(r.Context()); err != nil {
		h.logger.Warn("health check: mongodb ping failed", zap.Error(err))
		services["mongodb"] = "unavailable"
		overall = "degraded"
		status = http.StatusServiceUnavailable
	}

	jsonutil.JSON(w, status, map[string]any{
		"status":   overall,
		"services": services,
	})
}

// Ready reports whether the service can reach MongoDB.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if err := h.pingMongo(r.Context()); err != nil {
		h.logger.Warn("readiness check failed", zap.Error(err))
		jsonutil.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready"})
		return
	}
	jsonutil.OK(w, map[string]string{"status": "ready"})
}

// Live reports that the process is up and serving requests.
func (h *Handler) Live(w http.ResponseWriter, r *http.Request) {
	jsonutil.OK(w, map[string]string{"status": "alive"})
}

func (h *Handler) pingMongo(ctx context.Context) error {
	ctx, cancel := timeouts.WithPing(ctx)
	defer cancel()
	return h.mongoClient.Ping(ctx, readpref.Primary())
}
