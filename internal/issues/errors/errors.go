package errors

import "errors"

var (
	ErrIssueNotFound = errors.New("issue not found")

	ErrFeedbackNotFound = errors.New("feedback not found")

	ErrAlreadyResolved = errors.New("already resolved")
)
