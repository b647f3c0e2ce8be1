package model

import "time"

const (
	IssueOpen     = "open"
	IssueResolved = "resolved"
)

const (
	FeedbackNew      = "new"
	FeedbackResolved = "resolved"
)

// Issue is a maintenance problem reported against a slot. Issues have an
// independent open/resolved lifecycle; resolved is terminal.
type Issue struct {
	ID          string     `json:"id"`
	SlotID      string     `json:"slot_id"`
	SlotNumber  int        `json:"slot_number"`
	Type        string     `json:"type"`
	Priority    string     `json:"priority"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	ReportedBy  string     `json:"reported_by"`
	CreatedAt   time.Time  `json:"created_at"`
	ResolvedAt  *time.Time `json:"resolved_at,omitempty"`
}

// Feedback mirrors the issue lifecycle with new -> resolved and carries the
// supervisor's free-text response once answered.
type Feedback struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Type        string     `json:"type"`
	Message     string     `json:"message"`
	Status      string     `json:"status"`
	Response    string     `json:"response,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	RespondedAt *time.Time `json:"responded_at,omitempty"`
}

type IssueReport struct {
	SlotID      string `json:"slot_id" validate:"required"`
	Type        string `json:"type" validate:"required,min=2,max=60"`
	Priority    string `json:"priority" validate:"required,oneof=low medium high"`
	Description string `json:"description" validate:"required,min=3,max=500"`
}

type FeedbackSubmission struct {
	Name    string `json:"name" validate:"required,min=2,max=60"`
	Type    string `json:"type" validate:"omitempty,max=60"`
	Message string `json:"message" validate:"required,min=3,max=1000"`
}

type FeedbackResponse struct {
	Response string `json:"response" validate:"required,min=2,max=1000"`
}
