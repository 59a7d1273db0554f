// Package teethevents provides the tooth event endpoints.
//
// Endpoints (mounted at /api/teeth-events, all require a signed-in user):
//   - GET    /api/teeth-events?childId=&limit=  - List events, newest first
//   - POST   /api/teeth-events                  - Record an event
//   - DELETE /api/teeth-events/{id}             - Delete one event
//   - GET    /api/teeth-events/status?childId=&mirror= - Derived tooth status
//
// Events and derived views are always scoped to the signed-in owner.
package teethevents

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	childstore "github.com/dalemusser/smilebloom/internal/app/store/children"
	teetheventstore "github.com/dalemusser/smilebloom/internal/app/store/teethevents"
	"github.com/dalemusser/smilebloom/internal/app/system/auditlog"
	"github.com/dalemusser/smilebloom/internal/app/system/auth"
	"github.com/dalemusser/smilebloom/internal/app/system/htmlsanitize"
	"github.com/dalemusser/smilebloom/internal/app/system/jsonutil"
	"github.com/dalemusser/smilebloom/internal/app/system/normalize"
	"github.com/dalemusser/smilebloom/internal/app/system/teethcatalog"
	"github.com/dalemusser/smilebloom/internal/app/system/teethstatus"
	"github.com/dalemusser/smilebloom/internal/domain/models"
)

const dateOnlyLayout = "2006-01-02"

// Handler handles tooth event API requests.
type Handler struct {
	events      *teetheventstore.Store
	children    *childstore.Store
	auditLogger *auditlog.Logger
	logger      *zap.Logger
}

// NewHandler creates a new teethevents Handler.
func NewHandler(db *mongo.Database, auditLogger *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		events:      teetheventstore.New(db),
		children:    childstore.New(db),
		auditLogger: auditLogger,
		logger:      logger,
	}
}

// ListHandler handles GET /api/teeth-events.
//
// Query parameters:
//   - childId: optional, restrict to one child
//   - limit: optional, default 50, max 200
//   - page: optional, 1-based
func (h *Handler) ListHandler(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}

	filter := teetheventstore.Filter{OwnerUserID: owner}

	if raw := normalize.QueryParam(r.URL.Query().Get("childId")); raw != "" {
		childID, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			jsonutil.BadRequest(w, "Invalid childId")
			return
		}
		filter.ChildID = childID
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 0 {
			jsonutil.BadRequest(w, "Invalid limit")
			return
		}
		filter.Limit = n
	}
	if raw := r.URL.Query().Get("page"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 1 {
			jsonutil.BadRequest(w, "Invalid page")
			return
		}
		filter.Page = n
	}

	events, err := h.events.Find(r.Context(), filter)
	if err != nil {
		h.logger.Error("failed to list tooth events", zap.Error(err))
		jsonutil.InternalError(w, "Failed to list events")
		return
	}
	jsonutil.OK(w, map[string]any{"events": events})
}

// CreateHandler handles POST /api/teeth-events.
//
// Request body:
//
//	{
//	    "child_id": "...",
//	    "tooth_code": "51",
//	    "type": "ERUPTED",
//	    "event_date": "2026-08-01",
//	    "remark": "first tooth!"
//	}
//
// tooth_code is required unless type is NOTE and must exist in the catalog.
// event_date accepts RFC3339 or YYYY-MM-DD and defaults to now.
func (h *Handler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}

	var in struct {
		ChildID   string  `json:"child_id"`
		ToothCode *string `json:"tooth_code"`
		Type      string  `json:"type"`
		EventDate string  `json:"event_date"`
		Remark    *string `json:"remark"`
	}
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.BadRequest(w, "Invalid JSON payload")
		return
	}

	childID, err := primitive.ObjectIDFromHex(in.ChildID)
	if err != nil {
		jsonutil.BadRequest(w, "Invalid child_id")
		return
	}
	// The child must belong to the caller.
	if _, err := h.children.GetOwned(r.Context(), owner, childID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			jsonutil.NotFound(w, "Child not found")
			return
		}
		h.logger.Error("failed to verify child ownership", zap.Error(err))
		jsonutil.InternalError(w, "Failed to record event")
		return
	}

	eventType := normalize.EventType(in.Type)
	if !models.IsValidEventType(eventType) {
		jsonutil.BadRequest(w, "Type must be ERUPTED, SHED, EXTRACTED, or NOTE")
		return
	}

	var toothCode *string
	if in.ToothCode != nil && *in.ToothCode != "" {
		code := normalize.ToothCode(*in.ToothCode)
		if !teethcatalog.Exists(code) {
			jsonutil.BadRequest(w, "Unknown tooth code")
			return
		}
		toothCode = &code
	}
	if toothCode == nil && eventType != models.EventNote {
		jsonutil.BadRequest(w, "tooth_code is required for this event type")
		return
	}

	eventDate := time.Now().UTC()
	if in.EventDate != "" {
		eventDate, err = parseEventDate(in.EventDate)
		if err != nil {
			jsonutil.BadRequest(w, "Invalid event_date, want RFC3339 or YYYY-MM-DD")
			return
		}
	}

	event, err := h.events.Create(r.Context(), models.ToothEvent{
		OwnerUserID: owner,
		ChildID:     childID,
		ToothCode:   toothCode,
		Type:        eventType,
		EventDate:   eventDate,
		Remark:      htmlsanitize.TextPtr(in.Remark),
	})
	if err != nil {
		h.logger.Error("failed to create tooth event", zap.Error(err))
		jsonutil.InternalError(w, "Failed to record event")
		return
	}

	h.auditLogger.ToothEventCreated(r.Context(), r, owner, childID, event.Type)
	jsonutil.Created(w, event)
}

// DeleteHandler handles DELETE /api/teeth-events/{id}.
func (h *Handler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}

	eventID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		jsonutil.NotFound(w, "Event not found")
		return
	}

	if err := h.events.DeleteOwned(r.Context(), owner, eventID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			jsonutil.NotFound(w, "Event not found")
			return
		}
		h.logger.Error("failed to delete tooth event", zap.Error(err))
		jsonutil.InternalError(w, "Failed to delete event")
		return
	}

	h.auditLogger.ToothEventDeleted(r.Context(), r, owner, eventID)
	jsonutil.OK(w, map[string]string{"status": "deleted"})
}

// StatusHandler handles GET /api/teeth-events/status.
//
// Query parameters:
//   - childId: required
//   - mirror: optional bool, flips LEFT and RIGHT in the quadrant view
//
// Response:
//
//	{
//	    "age_months": 52,
//	    "per_tooth": {"51": "ERUPTED", ...},
//	    "per_quadrant": {"UPPER_LEFT": "ERUPTED", ...},
//	    "in_window": [{catalog entries expected at this age}]
//	}
func (h *Handler) StatusHandler(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}

	childID, err := primitive.ObjectIDFromHex(normalize.QueryParam(r.URL.Query().Get("childId")))
	if err != nil {
		jsonutil.BadRequest(w, "Invalid childId")
		return
	}
	mirror := false
	if raw := r.URL.Query().Get("mirror"); raw != "" {
		mirror, err = strconv.ParseBool(raw)
		if err != nil {
			jsonutil.BadRequest(w, "Invalid mirror flag")
			return
		}
	}

	child, err := h.children.GetOwned(r.Context(), owner, childID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			jsonutil.NotFound(w, "Child not found")
			return
		}
		h.logger.Error("failed to load child", zap.Error(err))
		jsonutil.InternalError(w, "Failed to derive status")
		return
	}

	events, err := h.events.FindAllForChild(r.Context(), owner, childID)
	if err != nil {
		h.logger.Error("failed to load tooth events", zap.Error(err))
		jsonutil.InternalError(w, "Failed to derive status")
		return
	}

	perTooth, err := teethstatus.LatestByTooth(events)
	if err != nil {
		h.logger.Error("tooth status fold failed", zap.Error(err))
		jsonutil.InternalError(w, "Failed to derive status")
		return
	}
	perQuadrant, err := teethstatus.LatestByQuadrant(events, mirror)
	if err != nil {
		h.logger.Error("quadrant status fold failed", zap.Error(err))
		jsonutil.InternalError(w, "Failed to derive status")
		return
	}

	ageMonths := teethstatus.AgeInMonths(child.Birthday, time.Now())
	inWindow := teethstatus.ExpectedNow(ageMonths)
	if inWindow == nil {
		inWindow = []teethcatalog.Tooth{}
	}

	jsonutil.OK(w, map[string]any{
		"age_months":   ageMonths,
		"per_tooth":    perTooth,
		"per_quadrant": perQuadrant,
		"in_window":    inWindow,
	})
}

func requireOwner(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		jsonutil.Unauthorized(w, "unauthorized")
		return primitive.NilObjectID, false
	}
	owner := u.UserID()
	if owner.IsZero() {
		jsonutil.Unauthorized(w, "unauthorized")
		return primitive.NilObjectID, false
	}
	return owner, true
}

func parseEventDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.ParseInLocation(dateOnlyLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}
