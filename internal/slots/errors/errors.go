package errors

import "errors"

var (
	ErrNotFound = errors.New("slot not found")

	ErrNotAvailable = errors.New("slot is not available")

	ErrUnderMaintenance = errors.New("slot is under maintenance")
)
