// internal/app/store/users/userstore.go
package userstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/smilebloom/internal/app/system/dentist"
	"github.com/dalemusser/smilebloom/internal/app/system/normalize"
	"github.com/dalemusser/smilebloom/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

var (
	// ErrDuplicateUsername is returned when attempting to create a user with
	// a username that already exists.
	ErrDuplicateUsername = errors.New("a user with this username already exists")
	errBadRole           = errors.New("invalid role")
	errBadStatus         = errors.New(`status must be "ACTIVE"|"INACTIVE"`)
)

// GetByID loads a user by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByUsername looks up a user by exact, case-sensitive username.
// Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"username": normalize.Username(username)}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByGoogleID looks up a user by linked Google account ID.
// Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"google_user_id": googleID}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// UsernameExists checks if a username is already taken, using the folded key
// so visually confusable variants are rejected too.
func (s *Store) UsernameExists(ctx context.Context, username string) (bool, error) {
	count, err := s.c.CountDocuments(ctx, bson.M{
		"username_ci": text.Fold(normalize.Username(username)),
	})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create inserts a new user after normalizing & validating fields.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	u.ID = primitive.NewObjectID()
	u.Username = normalize.Username(u.Username)
	u.UsernameCI = text.Fold(u.Username)

	if u.Email != nil && *u.Email != "" {
		email := normalize.Email(*u.Email)
		u.Email = &email
	} else {
		u.Email = nil
	}

	if u.Role == "" {
		u.Role = models.RoleUser
	}
	if u.Status == "" {
		u.Status = models.StatusActive
	}

	if !models.IsValidRole(u.Role) {
		return models.User{}, errBadRole
	}
	if !models.IsValidStatus(u.Status) {
		return models.User{}, errBadStatus
	}

	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateUsername
		}
		return models.User{}, err
	}
	return u, nil
}

// UpdateEmail sets the user's contact email (stored lowercase).
func (s *Store) UpdateEmail(ctx context.Context, id primitive.ObjectID, email string) error {
	set := bson.M{
		"email":      normalize.Email(email),
		"updated_at": time.Now().UTC(),
	}
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// UpdatePassword replaces the user's password hash.
func (s *Store) UpdatePassword(ctx context.Context, id primitive.ObjectID, passwordHash string) error {
	set := bson.M{
		"password_hash": passwordHash,
		"updated_at":    time.Now().UTC(),
	}
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	return err
}

// LinkGoogleID attaches a Google account ID to the user.
func (s *Store) LinkGoogleID(ctx context.Context, id primitive.ObjectID, googleID string) error {
	set := bson.M{
		"google_user_id": googleID,
		"updated_at":     time.Now().UTC(),
	}
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	return err
}

// ApplyDentistUpdate persists a computed dentist reminder transition in one
// atomic update: scalar fields via $set/$unset, and, when entry is non-nil,
// a history append via $push with $slice so the array never exceeds the cap
// (oldest entries are evicted first).
func (s *Store) ApplyDentistUpdate(ctx context.Context, id primitive.ObjectID, next dentist.State, entry *models.DentistEntry) error {
	set := bson.M{"updated_at": time.Now().UTC()}
	unset := bson.M{}

	if next.Name != nil {
		set["dentist_name"] = *next.Name
	} else {
		unset["dentist_name"] = ""
	}
	if next.Day != nil {
		set["dentist_day"] = *next.Day
	} else {
		unset["dentist_day"] = ""
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	if entry != nil {
		update["$push"] = bson.M{
			"dentist_history": bson.M{
				"$each":  []models.DentistEntry{*entry},
				"$slice": -models.DentistHistoryCap,
			},
		}
	}

	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// UpdateInput holds the optional fields for an administrative user update.
// All fields are pointers - nil means "don't update this field".
type UpdateInput struct {
	Email        *string
	Role         *string
	Status       *string
	PasswordHash *string
}

// UpdateFromInput updates a user using optional fields.
// Only non-nil fields in input are updated.
func (s *Store) UpdateFromInput(ctx context.Context, id primitive.ObjectID, input UpdateInput) error {
	set := bson.M{
		"updated_at": time.Now().UTC(),
	}

	if input.Email != nil {
		set["email"] = normalize.Email(*input.Email)
	}
	if input.Role != nil {
		set["role"] = normalize.Role(*input.Role)
	}
	if input.Status != nil {
		set["status"] = normalize.Status(*input.Status)
	}
	if input.PasswordHash != nil {
		set["password_hash"] = *input.PasswordHash
	}

	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateUsername
		}
		return err
	}
	return nil
}

// CountActiveAdmins returns the number of users with role ADMIN and status ACTIVE.
func (s *Store) CountActiveAdmins(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{
		"role":   models.RoleAdmin,
		"status": models.StatusActive,
	})
}
