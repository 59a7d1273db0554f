// Package dentist implements the dentist reminder patch semantics: a
// tri-state partial update over the (name, day) pair plus the append-only
// history rule. The package is pure; persistence lives in the user store.
package dentist

import (
	"errors"
	"time"

	"github.com/dalemusser/smilebloom/internal/domain/models"
)

// ErrInvalidDate is returned when a non-empty day is not a real calendar
// date in YYYY-MM-DD form.
var ErrInvalidDate = errors.New("dentist: invalid date, want YYYY-MM-DD")

// DayLayout is the stored wire form of a reminder day.
const DayLayout = "2006-01-02"

// State is the current reminder pair on a user record. Nil means unset.
type State struct {
	Name *string
	Day  *string
}

// Patch is a tri-state partial update: a nil field is left alone, an empty
// string clears the field, a non-empty string sets it.
type Patch struct {
	Name *string
	Day  *string
}

// Touched reports whether the patch mentions at least one field.
func (p Patch) Touched() bool {
	return p.Name != nil || p.Day != nil
}

// ValidateDay checks that s is a real UTC calendar date in YYYY-MM-DD form.
// Lenient forms such as "2024-1-2" are rejected.
func ValidateDay(s string) error {
	parsed, err := time.ParseInLocation(DayLayout, s, time.UTC)
	if err != nil {
		return ErrInvalidDate
	}
	if parsed.Format(DayLayout) != s {
		return ErrInvalidDate
	}
	return nil
}

// Apply computes the next reminder state and, when the history rule fires,
// the entry to append. It never mutates its inputs.
//
// A history entry is produced only when the patch touched a field, the next
// day is non-empty, and either field actually changed. The returned changed
// flag covers the scalar state alone: callers skip persistence entirely when
// changed is false and entry is nil.
func Apply(current State, patch Patch, now time.Time) (next State, entry *models.DentistEntry, changed bool, err error) {
	next = current
	if !patch.Touched() {
		return next, nil, false, nil
	}

	if patch.Day != nil && *patch.Day != "" {
		if err := ValidateDay(*patch.Day); err != nil {
			return current, nil, false, err
		}
	}

	if patch.Name != nil {
		next.Name = setOrClear(*patch.Name)
	}
	if patch.Day != nil {
		next.Day = setOrClear(*patch.Day)
	}

	nameChanged := !eq(current.Name, next.Name)
	dayChanged := !eq(current.Day, next.Day)
	changed = nameChanged || dayChanged

	if next.Day != nil && (nameChanged || dayChanged) {
		e := models.DentistEntry{
			DentistDay: *next.Day,
			SavedAt:    now.UTC(),
		}
		if next.Name != nil && *next.Name != "" {
			e.DentistName = next.Name
		}
		entry = &e
	}
	return next, entry, changed, nil
}

func setOrClear(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func eq(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
