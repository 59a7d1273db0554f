// internal/domain/models/child.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Child is one child profile owned by a user. All reads and writes are
// scoped to OwnerUserID; a child is never visible outside its owner.
type Child struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OwnerUserID primitive.ObjectID `bson:"owner_user_id" json:"owner_user_id"`

	FullName string    `bson:"fullname" json:"fullname"`
	Birthday time.Time `bson:"birthday" json:"birthday"`
	Gender   string    `bson:"gender" json:"gender"` // MALE, FEMALE
	Email    *string   `bson:"email,omitempty" json:"email,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Genders
const (
	GenderMale   = "MALE"
	GenderFemale = "FEMALE"
)

// IsValidGender checks if a gender value is valid.
func IsValidGender(g string) bool {
	return g == GenderMale || g == GenderFemale
}
