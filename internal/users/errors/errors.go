package errors

import "errors"

var (
	ErrNotFound = errors.New("user not found")

	ErrUsernameTaken = errors.New("username is already taken")

	ErrInvalidCredentials = errors.New("invalid username or password")
)
