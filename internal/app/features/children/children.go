// Package children provides the child profile endpoints.
//
// Endpoints (mounted at /api/children, all require a signed-in user):
//   - GET    /api/children      - List the caller's children
//   - POST   /api/children      - Create a child
//   - GET    /api/children/{id} - Fetch one child
//   - PATCH  /api/children/{id} - Partial update
//   - DELETE /api/children/{id} - Delete, cascading to tooth events
//
// Every operation is scoped to the signed-in owner; a child that exists but
// belongs to another account behaves exactly like one that doesn't exist.
package children

import (
	"context"
	"errors"
	"net/http"
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
	"github.com/dalemusser/smilebloom/internal/app/system/inputval"
	"github.com/dalemusser/smilebloom/internal/app/system/jsonutil"
	"github.com/dalemusser/smilebloom/internal/app/system/normalize"
	"github.com/dalemusser/smilebloom/internal/app/system/txn"
	"github.com/dalemusser/smilebloom/internal/domain/models"
)

// dateOnlyLayout accepts birthday input without a time component.
const dateOnlyLayout = "2006-01-02"

// Handler handles child profile API requests.
type Handler struct {
	db          *mongo.Database
	children    *childstore.Store
	events      *teetheventstore.Store
	auditLogger *auditlog.Logger
	logger      *zap.Logger
}

// NewHandler creates a new children Handler.
func NewHandler(db *mongo.Database, auditLogger *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		db:          db,
		children:    childstore.New(db),
		events:      teetheventstore.New(db),
		auditLogger: auditLogger,
		logger:      logger,
	}
}

// ListHandler handles GET /api/children.
func (h *Handler) ListHandler(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}

	list, err := h.children.ListByOwner(r.Context(), owner)
	if err != nil {
		h.logger.Error("failed to list children", zap.Error(err))
		jsonutil.InternalError(w, "Failed to list children")
		return
	}
	jsonutil.OK(w, map[string]any{"children": list})
}

// CreateHandler handles POST /api/children.
//
// Request body:
//
//	{"fullname": "Nong Mai", "birthday": "2022-04-01", "gender": "FEMALE", "email": "..."}
func (h *Handler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}

	var in struct {
		FullName string  `json:"fullname"`
		Birthday string  `json:"birthday"`
		Gender   string  `json:"gender"`
		Email    *string `json:"email"`
	}
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.BadRequest(w, "Invalid JSON payload")
		return
	}

	fullName := htmlsanitize.Text(normalize.Name(in.FullName))
	if fullName == "" {
		jsonutil.BadRequest(w, "Full name is required")
		return
	}
	gender := normalize.Gender(in.Gender)
	if !inputval.IsValidGender(gender) {
		jsonutil.BadRequest(w, "Gender must be MALE or FEMALE")
		return
	}
	birthday, err := parseBirthday(in.Birthday)
	if err != nil {
		jsonutil.BadRequest(w, "Invalid birthday, want YYYY-MM-DD")
		return
	}
	if birthday.After(time.Now().UTC()) {
		jsonutil.BadRequest(w, "Birthday cannot be in the future")
		return
	}
	var email *string
	if in.Email != nil && *in.Email != "" {
		e := normalize.Email(*in.Email)
		if !inputval.IsValidEmail(e) {
			jsonutil.BadRequest(w, "Invalid email address")
			return
		}
		email = &e
	}

	child, err := h.children.Create(r.Context(), models.Child{
		OwnerUserID: owner,
		FullName:    fullName,
		Birthday:    birthday,
		Gender:      gender,
		Email:       email,
	})
	if err != nil {
		h.logger.Error("failed to create child", zap.Error(err))
		jsonutil.InternalError(w, "Failed to create child")
		return
	}

	h.auditLogger.ChildCreated(r.Context(), r, owner, child.ID)
	jsonutil.Created(w, child)
}

// GetHandler handles GET /api/children/{id}.
func (h *Handler) GetHandler(w http.ResponseWriter, r *http.Request) {
	owner, childID, ok := requireOwnedID(w, r)
	if !ok {
		return
	}

	child, err := h.children.GetOwned(r.Context(), owner, childID)
	if err != nil {
		h.respondLookupError(w, err)
		return
	}
	jsonutil.OK(w, child)
}

// UpdateHandler handles PATCH /api/children/{id}. Omitted fields are left
// unchanged; an empty email clears the address.
func (h *Handler) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	owner, childID, ok := requireOwnedID(w, r)
	if !ok {
		return
	}

	var in struct {
		FullName *string `json:"fullname"`
		Birthday *string `json:"birthday"`
		Gender   *string `json:"gender"`
		Email    *string `json:"email"`
	}
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.BadRequest(w, "Invalid JSON payload")
		return
	}

	var input childstore.UpdateInput

	if in.FullName != nil {
		name := htmlsanitize.Text(normalize.Name(*in.FullName))
		if name == "" {
			jsonutil.BadRequest(w, "Full name cannot be empty")
			return
		}
		input.FullName = &name
	}
	if in.Birthday != nil {
		birthday, err := parseBirthday(*in.Birthday)
		if err != nil {
			jsonutil.BadRequest(w, "Invalid birthday, want YYYY-MM-DD")
			return
		}
		input.Birthday = &birthday
	}
	if in.Gender != nil {
		gender := normalize.Gender(*in.Gender)
		if !inputval.IsValidGender(gender) {
			jsonutil.BadRequest(w, "Gender must be MALE or FEMALE")
			return
		}
		input.Gender = &gender
	}
	if in.Email != nil {
		email := normalize.Email(*in.Email)
		if email != "" && !inputval.IsValidEmail(email) {
			jsonutil.BadRequest(w, "Invalid email address")
			return
		}
		input.Email = &email
	}

	if input.FullName == nil && input.Birthday == nil && input.Gender == nil && input.Email == nil {
		jsonutil.BadRequest(w, "No fields to update")
		return
	}

	if err := h.children.UpdateOwned(r.Context(), owner, childID, input); err != nil {
		h.respondLookupError(w, err)
		return
	}

	h.auditLogger.ChildUpdated(r.Context(), r, owner, childID)

	child, err := h.children.GetOwned(r.Context(), owner, childID)
	if err != nil {
		h.respondLookupError(w, err)
		return
	}
	jsonutil.OK(w, child)
}

// DeleteHandler handles DELETE /api/children/{id}. The child's tooth events
// are removed in the same transaction when the deployment supports one.
func (h *Handler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	owner, childID, ok := requireOwnedID(w, r)
	if !ok {
		return
	}

	err := txn.Run(r.Context(), h.db, h.logger, func(ctx context.Context) error {
		if err := h.children.DeleteOwned(ctx, owner, childID); err != nil {
			return err
		}
		_, err := h.events.DeleteByChild(ctx, owner, childID)
		return err
	})
	if err != nil {
		h.respondLookupError(w, err)
		return
	}

	h.auditLogger.ChildDeleted(r.Context(), r, owner, childID)
	jsonutil.OK(w, map[string]string{"status": "deleted"})
}

func (h *Handler) respondLookupError(w http.ResponseWriter, err error) {
	if errors.Is(err, mongo.ErrNoDocuments) {
		jsonutil.NotFound(w, "Child not found")
		return
	}
	h.logger.Error("child store error", zap.Error(err))
	jsonutil.InternalError(w, "Request failed")
}

// requireOwner resolves the signed-in owner's ObjectID, writing a 401 when
// absent.
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

// requireOwnedID resolves the owner plus the {id} URL parameter. A malformed
// id is reported as not found, the same as a missing record.
func requireOwnedID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, primitive.ObjectID, bool) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return primitive.NilObjectID, primitive.NilObjectID, false
	}
	childID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		jsonutil.NotFound(w, "Child not found")
		return primitive.NilObjectID, primitive.NilObjectID, false
	}
	return owner, childID, true
}

func parseBirthday(s string) (time.Time, error) {
	if t, err := time.ParseInLocation(dateOnlyLayout, s, time.UTC); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
