package model

// Fixed room inventory.  Room ids outside [MinRoomID, MaxRoomID] do not exist.
const (
    MinRoomID = 1
    MaxRoomID = 10
)

// Reservation is a guest's booking of one room over an inclusive date range.
// There is no synthetic key: a reservation is identified by all four fields
// together, and only the date range may change after creation.
//
// Fields:
//  Name      – guest name, not unique.
//  StartDate – first night, inclusive.
//  EndDate   – last day, inclusive; never before StartDate.
//  RoomID    – room number in [MinRoomID, MaxRoomID].
type Reservation struct {
    Name      string `json:"name"`
    StartDate Date   `json:"start_date"`
    EndDate   Date   `json:"end_date"`
    RoomID    int    `json:"room_id"`
}

// Equal reports whether r and o have the same name, room and date range.
func (r Reservation) Equal(o Reservation) bool {
    return r.Name == o.Name &&
        r.RoomID == o.RoomID &&
        r.StartDate.Equal(o.StartDate) &&
        r.EndDate.Equal(o.EndDate)
}

// ValidRoomID reports whether id names one of the hotel's rooms.
func ValidRoomID(id int) bool {
    return id >= MinRoomID && id <= MaxRoomID
}
