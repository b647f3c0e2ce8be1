package model

import "time"

const (
	SlotTypeRegular = "regular"
	SlotTypeEV      = "ev"
)

const (
	SlotAvailable   = "available"
	SlotBooked      = "booked"
	SlotMaintenance = "maintenance"
)

// Slot is one parking space in the fixed facility inventory. Slots are
// created once at initialization and mutated in place on booking, release
// and maintenance toggles; they are never deleted.
type Slot struct {
	ID           string     `json:"id"`
	Number       int        `json:"number"`
	Type         string     `json:"type"`
	Status       string     `json:"status"`
	BookedBy     string     `json:"booked_by,omitempty"`
	BookingStart *time.Time `json:"booking_start,omitempty"`
	BookingEnd   *time.Time `json:"booking_end,omitempty"`
	AdminNote    string     `json:"admin_note,omitempty"`
}

func (s *Slot) IsAvailable() bool {
	return s.Status == SlotAvailable
}
