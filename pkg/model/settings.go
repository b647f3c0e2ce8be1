package model

import "time"

// BillingSettings is the admin-tunable billing policy. Rate changes apply
// to sessions settled afterwards; already-settled bookings keep the amount
// they were charged.
type BillingSettings struct {
	HourlyRate float64   `json:"hourly_rate"`
	UpdatedAt  time.Time `json:"updated_at"`
	UpdatedBy  string    `json:"updated_by,omitempty"`
}

type RateUpdateRequest struct {
	HourlyRate float64 `json:"hourly_rate" validate:"required,gt=0"`
}
