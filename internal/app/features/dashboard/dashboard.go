// Package dashboard provides the signed-in user's summary endpoint.
//
//   - GET /api/dashboard - children with ages and tooth counts, recent events
package dashboard

import (
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	childstore "github.com/dalemusser/smilebloom/internal/app/store/children"
	teetheventstore "github.com/dalemusser/smilebloom/internal/app/store/teethevents"
	"github.com/dalemusser/smilebloom/internal/app/system/auth"
	"github.com/dalemusser/smilebloom/internal/app/system/jsonutil"
	"github.com/dalemusser/smilebloom/internal/app/system/teethstatus"
	"github.com/dalemusser/smilebloom/internal/domain/models"
)

const recentEventLimit = 10

// Handler handles dashboard requests.
type Handler struct {
	children *childstore.Store
	events   *teetheventstore.Store
	logger   *zap.Logger
}

// NewHandler creates a new dashboard Handler.
func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		children: childstore.New(db),
		events:   teetheventstore.New(db),
		logger:   logger,
	}
}

type childSummary struct {
	Child      models.Child `json:"child"`
	AgeMonths  int          `json:"age_months"`
	ToothCount int          `json:"tooth_count"`
	EventCount int          `json:"event_count"`
}

// SummaryHandler handles GET /api/dashboard.
//
// The tooth count per child is the number of teeth whose latest event is
// ERUPTED, which is what the mouth chart renders.
func (h *Handler) SummaryHandler(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		jsonutil.Unauthorized(w, "unauthorized")
		return
	}
	owner := u.UserID()
	if owner.IsZero() {
		jsonutil.Unauthorized(w, "unauthorized")
		return
	}

	children, err := h.children.ListByOwner(r.Context(), owner)
	if err != nil {
		h.logger.Error("failed to list children", zap.Error(err))
		jsonutil.InternalError(w, "Failed to load dashboard")
		return
	}

	now := time.Now()
	summaries := make([]childSummary, 0, len(children))
	for _, child := range children {
		summary, err := h.summarize(r, child, now)
		if err != nil {
			h.logger.Error("failed to summarize child",
				zap.String("child_id", child.ID.Hex()), zap.Error(err))
			jsonutil.InternalError(w, "Failed to load dashboard")
			return
		}
		summaries = append(summaries, summary)
	}

	recent, err := h.events.Find(r.Context(), teetheventstore.Filter{
		OwnerUserID: owner,
		Limit:       recentEventLimit,
	})
	if err != nil {
		h.logger.Error("failed to load recent events", zap.Error(err))
		jsonutil.InternalError(w, "Failed to load dashboard")
		return
	}

	jsonutil.OK(w, map[string]any{
		"children":      summaries,
		"recent_events": recent,
	})
}

func (h *Handler) summarize(r *http.Request, child models.Child, now time.Time) (childSummary, error) {
	events, err := h.events.FindAllForChild(r.Context(), child.OwnerUserID, child.ID)
	if err != nil {
		return childSummary{}, err
	}
	perTooth, err := teethstatus.LatestByTooth(events)
	if err != nil {
		return childSummary{}, err
	}
	erupted := 0
	for _, status := range perTooth {
		if status == models.EventErupted {
			erupted++
		}
	}
	return childSummary{
		Child:      child,
		AgeMonths:  teethstatus.AgeInMonths(child.Birthday, now),
		ToothCount: erupted,
		EventCount: len(events),
	}, nil
}
