// internal/domain/models/toothevent.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ToothEvent records one observation for a child: a tooth erupted, was shed,
// was extracted, or a free-form note. NOTE events carry no tooth code.
type ToothEvent struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OwnerUserID primitive.ObjectID `bson:"owner_user_id" json:"owner_user_id"`
	ChildID     primitive.ObjectID `bson:"child_id" json:"child_id"`

	ToothCode *string   `bson:"tooth_code,omitempty" json:"tooth_code,omitempty"` // FDI code, e.g. "51"
	Type      string    `bson:"type" json:"type"`                                 // ERUPTED, SHED, EXTRACTED, NOTE
	EventDate time.Time `bson:"event_date" json:"event_date"`
	Remark    *string   `bson:"remark,omitempty" json:"remark,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Tooth event types
const (
	EventErupted   = "ERUPTED"
	EventShed      = "SHED"
	EventExtracted = "EXTRACTED"
	EventNote      = "NOTE"
)

// AllEventTypes returns all valid tooth event types.
func AllEventTypes() []string {
	return []string{EventErupted, EventShed, EventExtracted, EventNote}
}

// IsValidEventType checks if an event type is valid.
func IsValidEventType(t string) bool {
	for _, v := range AllEventTypes() {
		if v == t {
			return true
		}
	}
	return false
}
