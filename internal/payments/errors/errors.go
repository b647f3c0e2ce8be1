package errors

import "errors"

var (
	ErrNotFound = errors.New("payment not found")

	ErrAlreadySettled = errors.New("booking has already been settled")
)
