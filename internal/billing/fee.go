// Package billing is the single authority for parking fees. Every caller
// that charges a user goes through the same calculator so a booking's cost
// never depends on which screen ended it.
package billing

import (
	"time"

	"parkfinder/pkg/model"
)

type Calculator struct {
	graceMinutes int
}

func NewCalculator(graceMinutes int) *Calculator {
	return &Calculator{graceMinutes: graceMinutes}
}

// DurationMinutes returns whole elapsed minutes, partial minutes dropped.
// Negative spans clamp to zero.
func (c *Calculator) DurationMinutes(start, end time.Time) int {
	minutes := int(end.Sub(start).Minutes())
	if minutes < 0 {
		return 0
	}
	return minutes
}

// BillableHours converts a stay into charged hours. The first graceMinutes
// are free; anything past that is billed in full started hours, so minute
// 31 of a 30-minute grace already costs one hour.
func (c *Calculator) BillableHours(durationMinutes int) int {
	if durationMinutes <= c.graceMinutes {
		return 0
	}
	excess := durationMinutes - c.graceMinutes
	return (excess + 59) / 60
}

func (c *Calculator) Fee(durationMinutes int, hourlyRate float64) float64 {
	return float64(c.BillableHours(durationMinutes)) * hourlyRate
}

// Breakdown produces the line items shown on invoices.
func (c *Calculator) Breakdown(durationMinutes int, hourlyRate float64) model.Billing {
	free := durationMinutes
	if free > c.graceMinutes {
		free = c.graceMinutes
	}
	hours := c.BillableHours(durationMinutes)
	subtotal := float64(hours) * hourlyRate

	return model.Billing{
		TotalDuration:   durationMinutes,
		FreeMinutes:     free,
		BillableMinutes: durationMinutes - free,
		BillableHours:   hours,
		HourlyRate:      hourlyRate,
		Subtotal:        subtotal,
		Tax:             0,
		Total:           subtotal,
	}
}
