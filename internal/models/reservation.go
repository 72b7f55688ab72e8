package models

import (
	"time"

	"gorm.io/datatypes"
)

// Room is a reservable space (lab, auditorium, court). Resources is a free
// form JSON list of what the room offers, e.g. ["projetor","quadro branco"].
type Room struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	Name      string         `json:"name" gorm:"not null;uniqueIndex;size:100"`
	Capacity  int            `json:"capacity"`
	Resources datatypes.JSON `json:"resources" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Room) TableName() string {
	return "rooms"
}

// Reservation books a room for a window within one day. StartTime and EndTime
// are "HH:MM" strings, which compare correctly as plain strings, so overlap
// checks stay in SQL without time zone handling.
type Reservation struct {
	ID     uint  `json:"id" gorm:"primaryKey"`
	RoomID uint  `json:"room_id" gorm:"index;not null"`
	Room   *Room `json:"room,omitempty" gorm:"foreignKey:RoomID"`

	AccountID uint     `json:"account_id" gorm:"index;not null"`
	Account   *Account `json:"account,omitempty" gorm:"foreignKey:AccountID"`

	Date      time.Time `json:"date" gorm:"type:date;index;not null"`
	StartTime string    `json:"start_time" gorm:"not null;size:5"`
	EndTime   string    `json:"end_time" gorm:"not null;size:5"`
	Purpose   string    `json:"purpose" gorm:"size:300"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Reservation) TableName() string {
	return "reservations"
}

// Overlaps reports whether two half-open windows [start, end) on the same
// date intersect. Windows that merely touch do not overlap.
func (r *Reservation) Overlaps(start, end string) bool {
	return r.StartTime < end && r.EndTime > start
}
