package service

import "errors"

// Client errors.  They are wrapped with request details, so compare with
// errors.Is.
var (
	// ErrInvalidRoomID: the room id is outside the hotel's inventory.
	ErrInvalidRoomID = errors.New("invalid room id")
	// ErrInvalidDateRange: start date after end date.
	ErrInvalidDateRange = errors.New("invalid date range")
	// ErrRoomUnavailable: the range overlaps an existing reservation.
	ErrRoomUnavailable = errors.New("this room is not available")
	// ErrInvalidReservation: a required field is missing.
	ErrInvalidReservation = errors.New("invalid reservation")
	// ErrRoomBusy: another request holds the room lock.  Only returned when
	// room locking is enabled.
	ErrRoomBusy = errors.New("room is being modified by another request")
)
