package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrNotActive = errors.New("booking is not active")

	ErrActiveBookingExists = errors.New("user already has an active booking")

	ErrNotOwner = errors.New("booking belongs to another user")
)
