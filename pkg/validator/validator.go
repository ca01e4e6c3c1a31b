package validator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/budhitree/nexus-art-gallery/pkg/apperror"
	"github.com/go-playground/validator/v10"
)

// BindError turns a gin binding failure into a validation error with a readable message.
func BindError(err error) error {
	return apperror.Wrap(apperror.ErrValidation, "%s", FormatValidationError(err))
}

func FormatValidationError(err error) string {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		var messages []string
		for _, fieldError := range validationErrors {
			message := getFieldErrorMessage(fieldError)
			messages = append(messages, message)
		}
		return strings.Join(messages, "; ")
	}
	return err.Error()
}

func getFieldErrorMessage(fe validator.FieldError) string {
	field := getFieldName(fe.Field())

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "min":
		if fe.Kind().String() == "string" {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must contain at least %s item(s)", field, fe.Param())
	case "max":
		if fe.Kind().String() == "string" {
			return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must contain at most %s item(s)", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

func getFieldName(field string) string {
	fieldNames := map[string]string{
		"UserID":          "userId",
		"Password":        "password",
		"Name":            "name",
		"UserType":        "userType",
		"Prompt":          "prompt",
		"ReferenceImages": "referenceImages",
		"MaxImages":       "maxImages",
		"ImageIDs":        "imageIds",
		"CurrentUserID":   "currentUserId",
	}

	if name, ok := fieldNames[field]; ok {
		return name
	}
	return field
}
