package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/hotelbook/room-reservation/internal/model"
)

// MemoryReservationRepo keeps reservations in process memory.  It backs
// STORE_DRIVER=memory for local runs and serves as the store in tests.
type MemoryReservationRepo struct {
	mu   sync.RWMutex
	rows []model.Reservation
}

func NewMemoryReservationRepo(seed ...model.Reservation) *MemoryReservationRepo {
	return &MemoryReservationRepo{rows: append([]model.Reservation(nil), seed...)}
}

func (r *MemoryReservationRepo) FindByName(_ context.Context, name string) ([]model.Reservation, error) {
	return r.filter(func(res model.Reservation) bool { return res.Name == name }), nil
}

func (r *MemoryReservationRepo) FindByRoom(_ context.Context, roomID int) ([]model.Reservation, error) {
	return r.filter(func(res model.Reservation) bool { return res.RoomID == roomID }), nil
}

// filter returns matches ordered by start date, insertion order breaking ties.
func (r *MemoryReservationRepo) filter(keep func(model.Reservation) bool) []model.Reservation {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.Reservation, 0)
	for _, res := range r.rows {
		if keep(res) {
			out = append(out, res)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out
}

func (r *MemoryReservationRepo) Insert(_ context.Context, res model.Reservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = append(r.rows, res)
	return nil
}

func (r *MemoryReservationRepo) Update(_ context.Context, match model.Reservation, newStart, newEnd model.Date) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.rows {
		if r.rows[i].Equal(match) {
			r.rows[i].StartDate = newStart
			r.rows[i].EndDate = newEnd
			return 1, nil
		}
	}
	return 0, nil
}

func (r *MemoryReservationRepo) Delete(_ context.Context, match model.Reservation) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.rows {
		if r.rows[i].Equal(match) {
			r.rows = append(r.rows[:i], r.rows[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}
