package model

import "time"

const (
	BookingActive    = "active"
	BookingCompleted = "completed"
	BookingCancelled = "cancelled"
)

// Booking is a single parking session. A booking is created active with zero
// duration and amount; it is finalized exactly once, transitioning to
// completed (fee applied) or cancelled (no fee). Both states are terminal.
type Booking struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id"`
	SlotID     string     `json:"slot_id"`
	SlotNumber int        `json:"slot_number"`
	SlotType   string     `json:"slot_type"`
	StartTime  time.Time  `json:"start_time"`
	EndTime    *time.Time `json:"end_time,omitempty"`
	Duration   int        `json:"duration"`
	Amount     float64    `json:"amount"`
	Status     string     `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
}

func (b *Booking) IsActive() bool {
	return b.Status == BookingActive
}

type ReserveRequest struct {
	SlotID string `json:"slot_id" validate:"required"`
}

type EndSessionRequest struct {
	BookingID string `json:"booking_id" validate:"required"`
}
