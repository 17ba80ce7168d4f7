// Package repository holds the reservation store adapters.  Every adapter
// stores dates as YYYY-MM-DD strings and identifies a reservation by the
// full (name, start_date, end_date, room_id) tuple.
package repository

import (
	"context"
	"errors"

	"github.com/hotelbook/room-reservation/internal/model"
)

// ErrCorruptRecord is returned when a stored reservation cannot be decoded,
// for example a date that is not in YYYY-MM-DD form.
var ErrCorruptRecord = errors.New("stored reservation is malformed")

// ReservationRepo is the store adapter used by the reservation service.
// Update and Delete act on at most one record equal to match on all four
// fields and report how many records they touched; zero is not an error.
type ReservationRepo interface {
	FindByName(ctx context.Context, name string) ([]model.Reservation, error)
	FindByRoom(ctx context.Context, roomID int) ([]model.Reservation, error)
	Insert(ctx context.Context, r model.Reservation) error
	Update(ctx context.Context, match model.Reservation, newStart, newEnd model.Date) (int64, error)
	Delete(ctx context.Context, match model.Reservation) (int64, error)
}

// fromStrings builds a reservation from its stored representation.
func fromStrings(name, start, end string, roomID int) (model.Reservation, error) {
	s, err := model.ParseDate(start)
	if err != nil {
		return model.Reservation{}, errors.Join(ErrCorruptRecord, err)
	}
	e, err := model.ParseDate(end)
	if err != nil {
		return model.Reservation{}, errors.Join(ErrCorruptRecord, err)
	}
	return model.Reservation{Name: name, StartDate: s, EndDate: e, RoomID: roomID}, nil
}
