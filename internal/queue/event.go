// Package queue defines message payloads exchanged over the message broker.
package queue

// Event types carried in ReservationEvent.Type.
const (
    EventCreated     = "reservation.created"
    EventRescheduled = "reservation.rescheduled"
    EventCancelled   = "reservation.cancelled"
)

// ReservationEvent is published after a reservation is created, moved or
// cancelled.  Dates use YYYY-MM-DD; NewStartDate and NewEndDate are only
// set for reschedules, where StartDate and EndDate hold the old range.
type ReservationEvent struct {
    ID           string `json:"id"`
    Type         string `json:"type"`
    Name         string `json:"name"`
    RoomID       int    `json:"room_id"`
    StartDate    string `json:"start_date"`
    EndDate      string `json:"end_date"`
    NewStartDate string `json:"new_start_date,omitempty"`
    NewEndDate   string `json:"new_end_date,omitempty"`
    OccurredAt   string `json:"occurred_at"`
}
