// internal/app/store/teethevents/eventstore.go
package teetheventstore

import (
	"context"
	"time"

	"github.com/dalemusser/smilebloom/internal/app/store/storeutil"
	"github.com/dalemusser/smilebloom/internal/app/system/normalize"
	"github.com/dalemusser/smilebloom/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	// DefaultLimit is applied when a listing requests no explicit limit.
	DefaultLimit = 50
	// MaxLimit caps a single listing regardless of what was requested.
	MaxLimit = 200
)

// Store provides tooth event persistence. Like children, every operation is
// scoped to the owning account.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("teeth_events")}
}

// Create inserts a new tooth event.
func (s *Store) Create(ctx context.Context, e models.ToothEvent) (models.ToothEvent, error) {
	e.ID = primitive.NewObjectID()
	e.Type = normalize.EventType(e.Type)
	e.EventDate = e.EventDate.UTC()

	if e.ToothCode != nil && *e.ToothCode != "" {
		code := normalize.ToothCode(*e.ToothCode)
		e.ToothCode = &code
	} else {
		e.ToothCode = nil
	}
	if e.Remark != nil && *e.Remark == "" {
		e.Remark = nil
	}

	now := time.Now().UTC()
	e.CreatedAt = now
	e.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, e); err != nil {
		return models.ToothEvent{}, err
	}
	return e, nil
}

// Filter describes a tooth event listing.
type Filter struct {
	OwnerUserID primitive.ObjectID
	ChildID     primitive.ObjectID // zero value means all children of the owner
	Limit       int64              // 0 means DefaultLimit; clamped to MaxLimit
	Page        int64              // 1-based; 0 means first page
}

// Find returns events matching the filter, newest event date first with
// creation time breaking ties. The ordering is what the status reducer
// expects, so callers can feed the result straight into it.
func (s *Store) Find(ctx context.Context, f Filter) ([]models.ToothEvent, error) {
	query := bson.M{"owner_user_id": f.OwnerUserID}
	if !f.ChildID.IsZero() {
		query["child_id"] = f.ChildID
	}

	limit := f.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	opts := storeutil.Paginate(limit, f.Page).
		SetSort(bson.D{
			{Key: "event_date", Value: -1},
			{Key: "created_at", Value: -1},
		})

	cur, err := s.c.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	events := []models.ToothEvent{}
	if err := cur.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// FindAllForChild returns the complete event history for one child, newest
// first, without a listing cap. Status derivation needs the full history.
func (s *Store) FindAllForChild(ctx context.Context, ownerID, childID primitive.ObjectID) ([]models.ToothEvent, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "event_date", Value: -1},
		{Key: "created_at", Value: -1},
	})
	cur, err := s.c.Find(ctx, bson.M{
		"owner_user_id": ownerID,
		"child_id":      childID,
	}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	events := []models.ToothEvent{}
	if err := cur.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// GetOwned loads one event by ID, scoped to the owner.
func (s *Store) GetOwned(ctx context.Context, ownerID, eventID primitive.ObjectID) (*models.ToothEvent, error) {
	var e models.ToothEvent
	err := s.c.FindOne(ctx, bson.M{
		"_id":           eventID,
		"owner_user_id": ownerID,
	}).Decode(&e)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// DeleteOwned removes one event, scoped to the owner.
// Returns mongo.ErrNoDocuments when no owned event matched.
func (s *Store) DeleteOwned(ctx context.Context, ownerID, eventID primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{
		"_id":           eventID,
		"owner_user_id": ownerID,
	})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// DeleteByChild removes every event recorded for a child. Called when the
// child profile itself is deleted.
func (s *Store) DeleteByChild(ctx context.Context, ownerID, childID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{
		"owner_user_id": ownerID,
		"child_id":      childID,
	})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// CountByOwner returns the number of events recorded by an account.
func (s *Store) CountByOwner(ctx context.Context, ownerID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"owner_user_id": ownerID})
}
