package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/hotelbook/room-reservation/internal/model"
	q "github.com/hotelbook/room-reservation/internal/queue"
	"github.com/hotelbook/room-reservation/internal/repository"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []q.ReservationEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev q.ReservationEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

type failingRepo struct {
	repository.ReservationRepo
	err error
}

func (f failingRepo) FindByRoom(context.Context, int) ([]model.Reservation, error) { return nil, f.err }

func d(s string) model.Date { return model.MustParseDate(s) }

func newTestService(seed ...model.Reservation) (*ReservationService, *repository.MemoryReservationRepo, *recordingPublisher) {
	repo := repository.NewMemoryReservationRepo(seed...)
	pub := &recordingPublisher{}
	svc := NewReservationService(repo, nil, pub)
	svc.now = func() time.Time { return time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC) }
	return svc, repo, pub
}

func TestReserveValidation(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	tests := []struct {
		name string
		r    model.Reservation
		want error
	}{
		{"room 11", model.Reservation{Name: "ana", StartDate: d("2024-01-01"), EndDate: d("2024-01-02"), RoomID: 11}, ErrInvalidRoomID},
		{"room 0", model.Reservation{Name: "ana", StartDate: d("2024-01-01"), EndDate: d("2024-01-02"), RoomID: 0}, ErrInvalidRoomID},
		{"start after end", model.Reservation{Name: "ana", StartDate: d("2024-03-10"), EndDate: d("2024-03-01"), RoomID: 1}, ErrInvalidDateRange},
		{"missing end", model.Reservation{Name: "ana", StartDate: d("2024-03-10"), RoomID: 1}, ErrInvalidReservation},
		{"blank name", model.Reservation{Name: "  ", StartDate: d("2024-03-01"), EndDate: d("2024-03-02"), RoomID: 1}, ErrInvalidReservation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := svc.Reserve(ctx, tt.r); !errors.Is(err, tt.want) {
				t.Errorf("Reserve() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestReserveRejectsOverlap(t *testing.T) {
	existing := model.Reservation{Name: "ana", StartDate: d("2024-01-01"), EndDate: d("2024-01-05"), RoomID: 2}
	svc, repo, pub := newTestService(existing)
	ctx := context.Background()

	tests := []struct {
		start, end string
		want       error
	}{
		{"2024-01-05", "2024-01-05", ErrRoomUnavailable},
		{"2023-12-30", "2024-01-01", ErrRoomUnavailable},
		{"2024-01-02", "2024-01-03", ErrRoomUnavailable},
		{"2023-12-01", "2024-02-01", ErrRoomUnavailable},
		{"2024-01-06", "2024-01-10", nil},
	}
	for _, tt := range tests {
		r := model.Reservation{Name: "bob", StartDate: d(tt.start), EndDate: d(tt.end), RoomID: 2}
		if err := svc.Reserve(ctx, r); !errors.Is(err, tt.want) {
			t.Errorf("Reserve(%s..%s) error = %v, want %v", tt.start, tt.end, err, tt.want)
		}
	}

	rows, _ := repo.FindByRoom(ctx, 2)
	if len(rows) != 2 {
		t.Errorf("room 2 has %d reservations, want 2", len(rows))
	}
	if len(pub.events) != 1 || pub.events[0].Type != q.EventCreated || pub.events[0].StartDate != "2024-01-06" {
		t.Fatalf("events = %+v, want one created event for 2024-01-06", pub.events)
	}
	if pub.events[0].ID == "" || pub.events[0].OccurredAt != "2024-01-01T09:00:00Z" {
		t.Errorf("event metadata = %+v", pub.events[0])
	}
}

func TestReserveSameRangeOtherRoom(t *testing.T) {
	svc, _, _ := newTestService(model.Reservation{Name: "ana", StartDate: d("2024-01-01"), EndDate: d("2024-01-05"), RoomID: 2})
	r := model.Reservation{Name: "bob", StartDate: d("2024-01-01"), EndDate: d("2024-01-05"), RoomID: 3}
	if err := svc.Reserve(context.Background(), r); err != nil {
		t.Errorf("Reserve on another room: %v", err)
	}
}

func TestIsAvailableAfterReserve(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	r := model.Reservation{Name: "ana", StartDate: d("2024-04-10"), EndDate: d("2024-04-12"), RoomID: 5}
	if err := svc.Reserve(ctx, r); err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	for _, tt := range []struct {
		start, end model.Date
		want       bool
	}{
		{r.StartDate, r.EndDate, false},
		{r.StartDate.AddDays(-3), r.StartDate.AddDays(-1), true},
		{r.EndDate.AddDays(1), r.EndDate.AddDays(3), true},
	} {
		for i := 0; i < 2; i++ {
			got, err := svc.IsAvailable(ctx, 5, tt.start, tt.end)
			if err != nil || got != tt.want {
				t.Errorf("IsAvailable(%s..%s) #%d = (%v, %v), want (%v, nil)", tt.start, tt.end, i, got, err, tt.want)
			}
		}
	}
	if _, err := svc.IsAvailable(ctx, 11, r.StartDate, r.EndDate); !errors.Is(err, ErrInvalidRoomID) {
		t.Errorf("IsAvailable(room 11) error = %v, want ErrInvalidRoomID", err)
	}
}

func TestFindByRoomValidation(t *testing.T) {
	svc, _, _ := newTestService()
	if _, err := svc.FindByRoom(context.Background(), 11); !errors.Is(err, ErrInvalidRoomID) {
		t.Errorf("FindByRoom(11) error = %v, want ErrInvalidRoomID", err)
	}
	rows, err := svc.FindByRoom(context.Background(), 10)
	if err != nil || len(rows) != 0 {
		t.Errorf("FindByRoom(10) = (%v, %v), want empty", rows, err)
	}
}

func TestReschedule(t *testing.T) {
	mine := model.Reservation{Name: "ana", StartDate: d("2024-05-01"), EndDate: d("2024-05-03"), RoomID: 4}
	other := model.Reservation{Name: "bob", StartDate: d("2024-05-10"), EndDate: d("2024-05-12"), RoomID: 4}
	svc, repo, pub := newTestService(mine, other)
	ctx := context.Background()

	// the booking's own nights count as taken
	if _, err := svc.Reschedule(ctx, mine, d("2024-05-02"), d("2024-05-06")); !errors.Is(err, ErrRoomUnavailable) {
		t.Fatalf("Reschedule over own nights error = %v, want ErrRoomUnavailable", err)
	}

	n, err := svc.Reschedule(ctx, mine, d("2024-05-05"), d("2024-05-08"))
	if err != nil || n != 1 {
		t.Fatalf("Reschedule to free range = (%d, %v), want (1, nil)", n, err)
	}
	moved := mine
	moved.StartDate, moved.EndDate = d("2024-05-05"), d("2024-05-08")

	if _, err := svc.Reschedule(ctx, moved, d("2024-05-09"), d("2024-05-10")); !errors.Is(err, ErrRoomUnavailable) {
		t.Errorf("Reschedule into other booking error = %v, want ErrRoomUnavailable", err)
	}
	if _, err := svc.Reschedule(ctx, moved, d("2024-03-10"), d("2024-03-01")); !errors.Is(err, ErrInvalidDateRange) {
		t.Errorf("Reschedule reversed range error = %v, want ErrInvalidDateRange", err)
	}
	wrongRoom := moved
	wrongRoom.RoomID = 11
	if _, err := svc.Reschedule(ctx, wrongRoom, d("2024-06-01"), d("2024-06-02")); !errors.Is(err, ErrInvalidRoomID) {
		t.Errorf("Reschedule room 11 error = %v, want ErrInvalidRoomID", err)
	}

	// unknown reservation is a silent no-op
	n, err = svc.Reschedule(ctx, mine, d("2024-07-01"), d("2024-07-02"))
	if err != nil || n != 0 {
		t.Errorf("Reschedule stale match = (%d, %v), want (0, nil)", n, err)
	}

	rows, _ := repo.FindByName(ctx, "ana")
	if len(rows) != 1 || !rows[0].Equal(moved) {
		t.Errorf("ana's reservations = %+v, want %+v", rows, moved)
	}
	if len(pub.events) != 1 || pub.events[0].Type != q.EventRescheduled || pub.events[0].NewEndDate != "2024-05-08" {
		t.Errorf("events = %+v, want one rescheduled event", pub.events)
	}
}

func TestPaddedNameMatchesStoredReservation(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()
	padded := model.Reservation{Name: " ana ", StartDate: d("2024-08-01"), EndDate: d("2024-08-02"), RoomID: 7}
	if err := svc.Reserve(ctx, padded); err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if rows, _ := repo.FindByName(ctx, "ana"); len(rows) != 1 {
		t.Fatalf("stored under trimmed name = %+v, want one row", rows)
	}

	n, err := svc.Reschedule(ctx, padded, d("2024-08-05"), d("2024-08-06"))
	if err != nil || n != 1 {
		t.Fatalf("Reschedule with padded name = (%d, %v), want (1, nil)", n, err)
	}
	padded.StartDate, padded.EndDate = d("2024-08-05"), d("2024-08-06")
	n, err = svc.Cancel(ctx, padded)
	if err != nil || n != 1 {
		t.Errorf("Cancel with padded name = (%d, %v), want (1, nil)", n, err)
	}
}

func TestCancel(t *testing.T) {
	mine := model.Reservation{Name: "ana", StartDate: d("2024-05-01"), EndDate: d("2024-05-03"), RoomID: 4}
	svc, repo, pub := newTestService(mine)
	ctx := context.Background()

	if _, err := svc.Cancel(ctx, model.Reservation{Name: "ana", RoomID: 11}); !errors.Is(err, ErrInvalidRoomID) {
		t.Errorf("Cancel room 11 error = %v, want ErrInvalidRoomID", err)
	}
	n, err := svc.Cancel(ctx, mine)
	if err != nil || n != 1 {
		t.Fatalf("Cancel = (%d, %v), want (1, nil)", n, err)
	}
	n, err = svc.Cancel(ctx, mine)
	if err != nil || n != 0 {
		t.Errorf("second Cancel = (%d, %v), want (0, nil)", n, err)
	}
	if rows, _ := repo.FindByRoom(ctx, 4); len(rows) != 0 {
		t.Errorf("room 4 still has %+v", rows)
	}
	if len(pub.events) != 1 || pub.events[0].Type != q.EventCancelled {
		t.Errorf("events = %+v, want one cancelled event", pub.events)
	}
}

func TestPublishFailureDoesNotFailRequest(t *testing.T) {
	svc, repo, pub := newTestService()
	pub.err = errors.New("broker down")
	r := model.Reservation{Name: "ana", StartDate: d("2024-01-01"), EndDate: d("2024-01-01"), RoomID: 1}
	if err := svc.Reserve(context.Background(), r); err != nil {
		t.Fatalf("Reserve with failing publisher: %v", err)
	}
	if rows, _ := repo.FindByRoom(context.Background(), 1); len(rows) != 1 {
		t.Errorf("reservation not stored")
	}
}

func TestReserveStoreError(t *testing.T) {
	boom := errors.New("connection reset")
	svc := NewReservationService(failingRepo{err: boom}, nil, nil)
	r := model.Reservation{Name: "ana", StartDate: d("2024-01-01"), EndDate: d("2024-01-02"), RoomID: 1}
	err := svc.Reserve(context.Background(), r)
	if !errors.Is(err, boom) {
		t.Errorf("Reserve error = %v, want wrapped %v", err, boom)
	}
	if errors.Is(err, ErrRoomUnavailable) {
		t.Errorf("store error reported as unavailable")
	}
}
