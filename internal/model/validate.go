package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrDueOrDuration is returned for drafts with neither a due date nor a
// duration in days.
var ErrDueOrDuration = errors.New("set either a duration in days or a due date")

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterStructValidation(draftStructLevel, Draft{})
	return v
}

func draftStructLevel(sl validator.StructLevel) {
	draft := sl.Current().Interface().(Draft)
	if draft.DurationDays == nil && draft.DueDate == nil {
		sl.ReportError(draft.DueDate, "DueDate", "fechaVencimiento", "due_or_duration", "")
	}
}

// ValidateDraft checks a draft after trimming. The returned error reads as a
// single user-facing sentence.
func ValidateDraft(draft Draft) error {
	return describe(validate.Struct(draft.Normalized()))
}

func ValidateCredentials(creds Credentials) error {
	creds.Email = strings.TrimSpace(creds.Email)
	return describe(validate.Struct(creds))
}

func ValidateRegistration(reg Registration) error {
	reg.FirstName = strings.TrimSpace(reg.FirstName)
	reg.LastName = strings.TrimSpace(reg.LastName)
	reg.Email = strings.TrimSpace(reg.Email)
	return describe(validate.Struct(reg))
}

// ValidationError collects the failing fields of one validation pass.
type ValidationError struct {
	Fields   map[string]string
	Messages []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Messages, "; ")
}

func (e *ValidationError) Unwrap() error {
	if _, ok := e.Fields["DueDate"]; ok {
		return ErrDueOrDuration
	}
	return nil
}

func describe(err error) error {
	if err == nil {
		return nil
	}
	var valErrs validator.ValidationErrors
	if !errors.As(err, &valErrs) {
		return err
	}
	result := &ValidationError{Fields: make(map[string]string, len(valErrs))}
	for _, fe := range valErrs {
		msg := formatFieldError(fe)
		result.Fields[fe.StructField()] = msg
		result.Messages = append(result.Messages, msg)
	}
	return result
}

func formatFieldError(fe validator.FieldError) string {
	field := strings.ToLower(fe.StructField())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return "email must be a valid email address"
	case "min":
		if fe.Kind().String() == "string" {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if fe.Kind().String() == "string" {
			return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", field, fe.Param())
	case "due_or_duration":
		return ErrDueOrDuration.Error()
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
