// Package teeth serves the static tooth catalog.
//
// The catalog is reference data, not user data, so the endpoint is public:
//   - GET /api/teeth?type=DECIDUOUS|PERMANENT - List catalog entries
package teeth

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/dalemusser/smilebloom/internal/app/system/jsonutil"
	"github.com/dalemusser/smilebloom/internal/app/system/teethcatalog"
)

// Handler handles tooth catalog requests.
type Handler struct {
	logger *zap.Logger
}

// NewHandler creates a new teeth Handler.
func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{logger: logger}
}

// ListHandler handles GET /api/teeth. The optional type query parameter
// filters by dentition kind; without it the full catalog is returned.
func (h *Handler) ListHandler(w http.ResponseWriter, r *http.Request) {
	kind := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("type")))
	if kind != "" && !teethcatalog.IsValidKind(kind) {
		jsonutil.BadRequest(w, "Type must be DECIDUOUS or PERMANENT")
		return
	}
	jsonutil.OK(w, map[string]any{"teeth": teethcatalog.List(kind)})
}
