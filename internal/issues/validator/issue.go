package validator

import (
	"errors"
	"fmt"
	"strings"

	"parkfinder/pkg/logger"
	"parkfinder/pkg/model"

	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type IssueValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewIssueValidator(log *logger.Logger) *IssueValidator {
	return &IssueValidator{
		validate: validator.New(),
		logger:   log,
	}
}

func (v *IssueValidator) ValidateReport(req *model.IssueReport) error {
	return v.validateStruct(req)
}

func (v *IssueValidator) ValidateFeedback(req *model.FeedbackSubmission) error {
	return v.validateStruct(req)
}

func (v *IssueValidator) ValidateResponse(req *model.FeedbackResponse) error {
	return v.validateStruct(req)
}

func (v *IssueValidator) validateStruct(s any) error {
	if err := v.validate.Struct(s); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func (v *IssueValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s characters", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s characters", err.Field(), err.Param())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
