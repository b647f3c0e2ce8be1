package model

import "time"

const (
	RoleAdmin      = "admin"
	RoleSupervisor = "supervisor"
	RoleUser       = "user"
)

// User is an account plus its denormalized lifetime aggregates. The totals
// are maintained incrementally at session end and must always equal the sums
// over that user's completed bookings.
//
// Passwords are stored and compared in plaintext: this system models a demo
// with no real authentication, and that trade-off is deliberate.
type User struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	Password      string    `json:"password,omitempty"`
	Role          string    `json:"role"`
	CreatedAt     time.Time `json:"created_at"`
	TotalSpent    float64   `json:"total_spent"`
	TotalBookings int       `json:"total_bookings"`
	TotalHours    int       `json:"total_hours"`
}

// Public returns a copy safe to hand to the UI layer.
func (u *User) Public() *User {
	c := *u
	c.Password = ""
	return &c
}

type SignupRequest struct {
	Username string `json:"username" validate:"required,min=3,max=40"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=4,max=100"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RoleUpdateRequest struct {
	Role string `json:"role" validate:"required,oneof=admin supervisor user"`
}
