package model

import "time"

const (
	PaymentMethodCash = "cash"
	PaymentMethodCard = "card"
	PaymentMethodUPI  = "upi"
)

const PaymentCompleted = "completed"

// Billing is the fee breakdown recorded with every payment: how much of the
// session was free, how much was billable, and how the total was derived.
type Billing struct {
	TotalDuration   int     `json:"total_duration"`
	FreeMinutes     int     `json:"free_minutes"`
	BillableMinutes int     `json:"billable_minutes"`
	BillableHours   int     `json:"billable_hours"`
	HourlyRate      float64 `json:"hourly_rate"`
	Subtotal        float64 `json:"subtotal"`
	Tax             float64 `json:"tax"`
	Total           float64 `json:"total"`
}

type InvoiceRef struct {
	Number  string    `json:"number"`
	Date    time.Time `json:"date"`
	DueDate time.Time `json:"due_date"`
}

// Payment is created exactly once per booking that incurs a non-zero fee and
// is immutable thereafter.
type Payment struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	BookingID string     `json:"booking_id"`
	SlotID    string     `json:"slot_id"`
	Amount    float64    `json:"amount"`
	Method    string     `json:"method"`
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	Billing   Billing    `json:"billing"`
	Invoice   InvoiceRef `json:"invoice"`
}

// Invoice is the display document joining a payment with its user and
// booking. Dangling references degrade to "Unknown User"/"N/A" rather than
// failing the lookup.
type Invoice struct {
	Number   string          `json:"number"`
	Date     time.Time       `json:"date"`
	Customer InvoiceCustomer `json:"customer"`
	Booking  InvoiceBooking  `json:"booking"`
	Billing  Billing         `json:"billing"`
	Payment  InvoicePayment  `json:"payment"`
}

type InvoiceCustomer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	ID    string `json:"id"`
}

type InvoiceBooking struct {
	ID         string `json:"id"`
	SlotNumber string `json:"slot_number"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
}

type InvoicePayment struct {
	Method string  `json:"method"`
	Status string  `json:"status"`
	Amount float64 `json:"amount"`
}

const (
	PeriodToday = "today"
	PeriodWeek  = "week"
	PeriodMonth = "month"
	PeriodYear  = "year"
	PeriodAll   = "all"
)

// RevenueStats aggregates the payment set over a reporting window.
type RevenueStats struct {
	TotalRevenue       float64 `json:"total_revenue"`
	TotalTransactions  int     `json:"total_transactions"`
	AverageTransaction float64 `json:"average_transaction"`
	TotalDuration      int     `json:"total_duration"`
	FreeMinutesGiven   int     `json:"free_minutes_given"`
}

type ProcessPaymentRequest struct {
	BookingID string `json:"booking_id" validate:"required"`
	Method    string `json:"method" validate:"omitempty,oneof=cash card upi"`
}
