// internal/app/store/children/childstore.go
package childstore

import (
	"context"
	"time"

	"github.com/dalemusser/smilebloom/internal/app/system/normalize"
	"github.com/dalemusser/smilebloom/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store provides child profile persistence. Every read and write is scoped
// to the owning account: a child belonging to another user is
// indistinguishable from one that does not exist.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("children")}
}

// Create inserts a new child profile for the given owner.
func (s *Store) Create(ctx context.Context, c models.Child) (models.Child, error) {
	c.ID = primitive.NewObjectID()
	c.FullName = normalize.Name(c.FullName)
	c.Gender = normalize.Gender(c.Gender)
	c.Birthday = c.Birthday.UTC()

	if c.Email != nil && *c.Email != "" {
		email := normalize.Email(*c.Email)
		c.Email = &email
	} else {
		c.Email = nil
	}

	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, c); err != nil {
		return models.Child{}, err
	}
	return c, nil
}

// GetOwned loads a child by ID, scoped to the owner.
// Returns mongo.ErrNoDocuments when the child does not exist or belongs to
// someone else.
func (s *Store) GetOwned(ctx context.Context, ownerID, childID primitive.ObjectID) (*models.Child, error) {
	var c models.Child
	err := s.c.FindOne(ctx, bson.M{
		"_id":           childID,
		"owner_user_id": ownerID,
	}).Decode(&c)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListByOwner returns all children for an account, newest first.
func (s *Store) ListByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]models.Child, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{"owner_user_id": ownerID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	children := []models.Child{}
	if err := cur.All(ctx, &children); err != nil {
		return nil, err
	}
	return children, nil
}

// UpdateInput holds the optional fields for a child profile update.
// All fields are pointers - nil means "don't update this field".
type UpdateInput struct {
	FullName *string
	Birthday *time.Time
	Gender   *string
	Email    *string
}

// UpdateOwned updates a child using optional fields, scoped to the owner.
// Returns mongo.ErrNoDocuments when no owned child matched.
func (s *Store) UpdateOwned(ctx context.Context, ownerID, childID primitive.ObjectID, input UpdateInput) error {
	set := bson.M{
		"updated_at": time.Now().UTC(),
	}
	unset := bson.M{}

	if input.FullName != nil {
		set["fullname"] = normalize.Name(*input.FullName)
	}
	if input.Birthday != nil {
		set["birthday"] = input.Birthday.UTC()
	}
	if input.Gender != nil {
		set["gender"] = normalize.Gender(*input.Gender)
	}
	if input.Email != nil {
		if *input.Email == "" {
			unset["email"] = ""
		} else {
			set["email"] = normalize.Email(*input.Email)
		}
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	res, err := s.c.UpdateOne(ctx, bson.M{
		"_id":           childID,
		"owner_user_id": ownerID,
	}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// DeleteOwned removes a child profile, scoped to the owner.
// Returns mongo.ErrNoDocuments when no owned child matched.
func (s *Store) DeleteOwned(ctx context.Context, ownerID, childID primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{
		"_id":           childID,
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

// CountByOwner returns the number of children registered to an account.
func (s *Store) CountByOwner(ctx context.Context, ownerID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"owner_user_id": ownerID})
}
