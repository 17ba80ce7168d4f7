// Package availability decides whether a room is free over a date range.
// Ranges are closed on both ends: a stay from the 1st to the 5th occupies
// the 5th, so another stay starting on the 5th conflicts with it while one
// starting on the 6th does not.
package availability

import (
	"context"

	"github.com/hotelbook/room-reservation/internal/model"
)

// Range is an inclusive span of calendar days.
type Range struct {
	Start model.Date
	End   model.Date
}

// Overlaps reports whether a and b share at least one calendar day.  It
// covers partial overlap on either side and containment in either
// direction.
func Overlaps(a, b Range) bool {
	return !a.Start.After(b.End) && !b.Start.After(a.End)
}

// IsAvailable reports whether no reservation in existing for roomID
// overlaps [start, end].  Reservations for other rooms are ignored, and an
// empty set means the room is free.
func IsAvailable(existing []model.Reservation, roomID int, start, end model.Date) bool {
	candidate := Range{Start: start, End: end}
	for _, r := range existing {
		if r.RoomID != roomID {
			continue
		}
		if Overlaps(Range{Start: r.StartDate, End: r.EndDate}, candidate) {
			return false
		}
	}
	return true
}

// RoomFinder is the part of the reservation store the checker reads from.
type RoomFinder interface {
	FindByRoom(ctx context.Context, roomID int) ([]model.Reservation, error)
}

// Checker answers availability questions against the current store contents.
type Checker struct {
	finder RoomFinder
}

func NewChecker(f RoomFinder) *Checker { return &Checker{finder: f} }

// IsAvailable loads every reservation for roomID and applies the overlap
// predicate to [start, end].  Every stored record counts, including one the
// caller may be about to move.
func (c *Checker) IsAvailable(ctx context.Context, roomID int, start, end model.Date) (bool, error) {
	existing, err := c.finder.FindByRoom(ctx, roomID)
	if err != nil {
		return false, err
	}
	return IsAvailable(existing, roomID, start, end), nil
}
