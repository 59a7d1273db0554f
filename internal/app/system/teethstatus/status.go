// Package teethstatus derives per-tooth and per-quadrant dental status from
// a child's event history, plus the age arithmetic used to decide whether a
// tooth is inside its expected eruption window.
//
// All reducers expect the event slice already sorted newest first (event
// date descending, then created time descending), which is how the event
// store returns it. The reducers do not re-sort; an out-of-order slice is a
// programming error and is reported as ErrUnsorted.
package teethstatus

import (
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/smilebloom/internal/app/system/teethcatalog"
	"github.com/dalemusser/smilebloom/internal/domain/models"
)

// ErrUnsorted is returned when the input events are not in newest-first
// order.
var ErrUnsorted = errors.New("teethstatus: events not sorted newest first")

// Quadrant identifies one quarter of the mouth, e.g. "UPPER_LEFT".
type Quadrant string

// The four quadrants.
const (
	UpperLeft  Quadrant = "UPPER_LEFT"
	UpperRight Quadrant = "UPPER_RIGHT"
	LowerLeft  Quadrant = "LOWER_LEFT"
	LowerRight Quadrant = "LOWER_RIGHT"
)

// QuadrantOf builds the quadrant key for an arch/side pair.
func QuadrantOf(arch, side string) Quadrant {
	return Quadrant(arch + "_" + side)
}

func mirrorSide(side string) string {
	switch side {
	case teethcatalog.SideLeft:
		return teethcatalog.SideRight
	case teethcatalog.SideRight:
		return teethcatalog.SideLeft
	}
	return side
}

// checkOrder verifies newest-first ordering between adjacent events.
func checkOrder(prev, cur models.ToothEvent) error {
	if cur.EventDate.After(prev.EventDate) {
		return fmt.Errorf("%w: event date %s after %s", ErrUnsorted,
			cur.EventDate.Format(time.RFC3339), prev.EventDate.Format(time.RFC3339))
	}
	if cur.EventDate.Equal(prev.EventDate) && cur.CreatedAt.After(prev.CreatedAt) {
		return fmt.Errorf("%w: created %s after %s at same event date", ErrUnsorted,
			cur.CreatedAt.Format(time.RFC3339), prev.CreatedAt.Format(time.RFC3339))
	}
	return nil
}

// LatestByTooth folds events into the latest status per tooth code. NOTE
// events and events without a tooth code are skipped; the first event seen
// for a code wins (the input is newest first).
func LatestByTooth(events []models.ToothEvent) (map[string]string, error) {
	out := make(map[string]string)
	for i, ev := range events {
		if i > 0 {
			if err := checkOrder(events[i-1], ev); err != nil {
				return nil, err
			}
		}
		if ev.Type == models.EventNote || ev.ToothCode == nil || *ev.ToothCode == "" {
			continue
		}
		code := *ev.ToothCode
		if _, seen := out[code]; seen {
			continue
		}
		out[code] = ev.Type
	}
	return out, nil
}

// LatestByQuadrant folds events into the latest status per mouth quadrant.
// NOTE events, events without a tooth code, and codes absent from the
// catalog are skipped. When mirror is set the left/right side is flipped
// (the chart is drawn from the viewer's perspective). The fold stops early
// once all four quadrants are assigned.
func LatestByQuadrant(events []models.ToothEvent, mirror bool) (map[Quadrant]string, error) {
	out := make(map[Quadrant]string, 4)
	for i, ev := range events {
		if i > 0 {
			if err := checkOrder(events[i-1], ev); err != nil {
				return nil, err
			}
		}
		if ev.Type == models.EventNote || ev.ToothCode == nil || *ev.ToothCode == "" {
			continue
		}
		tooth, ok := teethcatalog.ByCode(*ev.ToothCode)
		if !ok {
			continue
		}
		side := tooth.Side
		if mirror {
			side = mirrorSide(side)
		}
		q := QuadrantOf(tooth.Arch, side)
		if _, seen := out[q]; seen {
			continue
		}
		out[q] = ev.Type
		if len(out) == 4 {
			break
		}
	}
	return out, nil
}

// AgeInMonths returns the whole number of calendar months between birthday
// and now, floored, never negative. Both instants are interpreted on the
// UTC calendar.
func AgeInMonths(birthday, now time.Time) int {
	b := birthday.UTC()
	n := now.UTC()
	months := (n.Year()-b.Year())*12 + int(n.Month()) - int(b.Month())
	if n.Day() < b.Day() {
		months--
	}
	if months < 0 {
		return 0
	}
	return months
}

// InWindow reports whether a child of the given age (in months) is inside
// the tooth's expected eruption window, bounds inclusive.
func InWindow(ageMonths int, tooth teethcatalog.Tooth) bool {
	return ageMonths >= tooth.EruptStart && ageMonths <= tooth.EruptEnd
}

// ExpectedNow returns the catalog entries whose eruption window contains the
// given age, in catalog order.
func ExpectedNow(ageMonths int) []teethcatalog.Tooth {
	var out []teethcatalog.Tooth
	for _, tooth := range teethcatalog.All() {
		if InWindow(ageMonths, tooth) {
			out = append(out, tooth)
		}
	}
	return out
}
