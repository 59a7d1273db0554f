// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents an account holder (a parent tracking their children's
// dental development).
//
// Auth fields:
//   - Username: What the user types to identify themselves (exact, case-sensitive match)
//   - UsernameCI: Folded version kept for duplicate detection and admin search
//   - Email: Contact email (optional, stored lowercase)
type User struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username   string             `bson:"username" json:"username"`
	UsernameCI string             `bson:"username_ci" json:"-"` // lowercase, diacritics-stripped

	PasswordHash string  `bson:"password_hash" json:"-"` // bcrypt hash (never in JSON)
	Email        *string `bson:"email,omitempty" json:"email,omitempty"`

	Role   string `bson:"role" json:"role"`     // ADMIN, USER
	Status string `bson:"status" json:"status"` // ACTIVE, INACTIVE

	// External identity links (set when the account is connected to a provider)
	GoogleUserID   *string `bson:"google_user_id,omitempty" json:"-"`
	LineUserID     *string `bson:"line_user_id,omitempty" json:"-"`
	FacebookUserID *string `bson:"facebook_user_id,omitempty" json:"-"`

	// Dentist reminder. DentistDay is a YYYY-MM-DD string; DentistHistory is
	// append-only and capped at the 50 most recent entries.
	DentistName    *string        `bson:"dentist_name,omitempty" json:"dentist_name,omitempty"`
	DentistDay     *string        `bson:"dentist_day,omitempty" json:"dentist_day,omitempty"`
	DentistHistory []DentistEntry `bson:"dentist_history,omitempty" json:"dentist_history,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// DentistEntry is one saved dentist reminder.
type DentistEntry struct {
	DentistName *string   `bson:"dentist_name,omitempty" json:"dentist_name,omitempty"`
	DentistDay  string    `bson:"dentist_day" json:"dentist_day"`
	SavedAt     time.Time `bson:"saved_at" json:"saved_at"`
}

// DentistHistoryCap is the maximum number of history entries kept per user.
// Older entries are evicted first.
const DentistHistoryCap = 50

// User roles
const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

// User statuses
const (
	StatusActive   = "ACTIVE"
	StatusInactive = "INACTIVE"
)

// AllRoles returns all valid user roles.
func AllRoles() []string {
	return []string{RoleAdmin, RoleUser}
}

// IsValidRole checks if a role is valid.
func IsValidRole(role string) bool {
	for _, r := range AllRoles() {
		if r == role {
			return true
		}
	}
	return false
}

// IsValidStatus checks if a status is valid.
func IsValidStatus(status string) bool {
	return status == StatusActive || status == StatusInactive
}
