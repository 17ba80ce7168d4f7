package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hotelbook/room-reservation/internal/availability"
	"github.com/hotelbook/room-reservation/internal/model"
	q "github.com/hotelbook/room-reservation/internal/queue"
	"github.com/hotelbook/room-reservation/internal/repository"
)

// publishTimeout bounds how long a finished request waits on the broker.
const publishTimeout = 2 * time.Second

// ReservationService validates requests, consults the availability checker
// and then writes through the store.  The check and the write are separate
// store round trips; unless a RoomLocker other than NoRoomLock is
// configured, two overlapping requests racing on the same room can both be
// accepted.
type ReservationService struct {
	repo    repository.ReservationRepo
	checker *availability.Checker
	locks   RoomLocker
	events  EventPublisher
	now     func() time.Time
}

// NewReservationService wires the service.  A nil locker means no locking
// and a nil publisher drops events.
func NewReservationService(repo repository.ReservationRepo, locks RoomLocker, events EventPublisher) *ReservationService {
	if repo == nil {
		panic("nil repository passed to NewReservationService")
	}
	if locks == nil {
		locks = NoRoomLock{}
	}
	if events == nil {
		events = NopPublisher{}
	}
	return &ReservationService{
		repo:    repo,
		checker: availability.NewChecker(repo),
		locks:   locks,
		events:  events,
		now:     time.Now,
	}
}

// FindByName lists every reservation made under name.
func (s *ReservationService) FindByName(ctx context.Context, name string) ([]model.Reservation, error) {
	return s.repo.FindByName(ctx, name)
}

// FindByRoom lists every reservation for roomID.
func (s *ReservationService) FindByRoom(ctx context.Context, roomID int) ([]model.Reservation, error) {
	if err := validateRoom(roomID); err != nil {
		return nil, err
	}
	return s.repo.FindByRoom(ctx, roomID)
}

// IsAvailable reports whether roomID is free over [start, end].
func (s *ReservationService) IsAvailable(ctx context.Context, roomID int, start, end model.Date) (bool, error) {
	if err := validateRoom(roomID); err != nil {
		return false, err
	}
	if err := validateRange(start, end); err != nil {
		return false, err
	}
	return s.checker.IsAvailable(ctx, roomID, start, end)
}

// Reserve stores r if its room is free over its whole date range.
func (s *ReservationService) Reserve(ctx context.Context, r model.Reservation) error {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidReservation)
	}
	if err := validateRoom(r.RoomID); err != nil {
		return err
	}
	if err := validateRange(r.StartDate, r.EndDate); err != nil {
		return err
	}

	unlock, err := s.locks.Lock(ctx, r.RoomID)
	if err != nil {
		return err
	}
	defer unlock()

	ok, err := s.checker.IsAvailable(ctx, r.RoomID, r.StartDate, r.EndDate)
	if err != nil {
		return fmt.Errorf("check availability: %w", err)
	}
	if !ok {
		return unavailable(r.RoomID, r.StartDate, r.EndDate)
	}
	if err := s.repo.Insert(ctx, r); err != nil {
		return fmt.Errorf("insert reservation: %w", err)
	}
	s.publish(ctx, q.EventCreated, r, model.Date{}, model.Date{})
	return nil
}

// Reschedule moves the reservation equal to match to [newStart, newEnd].
// The new range is checked against every reservation on the room, match
// included, so a move that overlaps the booking's own current nights is
// rejected.  It returns the number of reservations changed; zero means
// nothing matched.
func (s *ReservationService) Reschedule(ctx context.Context, match model.Reservation, newStart, newEnd model.Date) (int64, error) {
	match.Name = strings.TrimSpace(match.Name)
	if err := validateRoom(match.RoomID); err != nil {
		return 0, err
	}
	if match.StartDate.IsZero() || match.EndDate.IsZero() {
		return 0, fmt.Errorf("%w: start_date and end_date are required", ErrInvalidReservation)
	}
	if err := validateRange(newStart, newEnd); err != nil {
		return 0, err
	}

	unlock, err := s.locks.Lock(ctx, match.RoomID)
	if err != nil {
		return 0, err
	}
	defer unlock()

	ok, err := s.checker.IsAvailable(ctx, match.RoomID, newStart, newEnd)
	if err != nil {
		return 0, fmt.Errorf("check availability: %w", err)
	}
	if !ok {
		return 0, unavailable(match.RoomID, newStart, newEnd)
	}
	n, err := s.repo.Update(ctx, match, newStart, newEnd)
	if err != nil {
		return 0, fmt.Errorf("update reservation: %w", err)
	}
	if n > 0 {
		s.publish(ctx, q.EventRescheduled, match, newStart, newEnd)
	}
	return n, nil
}

// Cancel deletes the reservation equal to match.  It returns the number of
// reservations removed; zero means nothing matched.  Names are compared
// trimmed, the way Reserve stores them.
func (s *ReservationService) Cancel(ctx context.Context, match model.Reservation) (int64, error) {
	match.Name = strings.TrimSpace(match.Name)
	if err := validateRoom(match.RoomID); err != nil {
		return 0, err
	}
	n, err := s.repo.Delete(ctx, match)
	if err != nil {
		return 0, fmt.Errorf("delete reservation: %w", err)
	}
	if n > 0 {
		s.publish(ctx, q.EventCancelled, match, model.Date{}, model.Date{})
	}
	return n, nil
}

func (s *ReservationService) publish(ctx context.Context, typ string, r model.Reservation, newStart, newEnd model.Date) {
	ev := q.ReservationEvent{
		ID:           uuid.NewString(),
		Type:         typ,
		Name:         r.Name,
		RoomID:       r.RoomID,
		StartDate:    r.StartDate.String(),
		EndDate:      r.EndDate.String(),
		NewStartDate: newStart.String(),
		NewEndDate:   newEnd.String(),
		OccurredAt:   s.now().UTC().Format(time.RFC3339),
	}
	// publish even if the client has gone away
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := s.events.Publish(pctx, ev); err != nil {
		log.Printf("reservation-events: publish %s failed: %v", typ, err)
	}
}

func validateRoom(id int) error {
	if !model.ValidRoomID(id) {
		return fmt.Errorf("%w: room id: %d does not exist", ErrInvalidRoomID, id)
	}
	return nil
}

func validateRange(start, end model.Date) error {
	if start.IsZero() || end.IsZero() {
		return fmt.Errorf("%w: start_date and end_date are required", ErrInvalidReservation)
	}
	if start.After(end) {
		return fmt.Errorf("%w: start_date %s is after end_date %s", ErrInvalidDateRange, start, end)
	}
	return nil
}

func unavailable(roomID int, start, end model.Date) error {
	return fmt.Errorf("%w: room %d is booked between %s and %s", ErrRoomUnavailable, roomID, start, end)
}
