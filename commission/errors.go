package commission

import "fmt"

// InvalidInputError is returned for malformed numeric input to the rule engine
// (non-numeric text, non-positive price, percentage out of range).
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input %s: %s", e.Field, e.Reason)
}

// ValidationError is returned when a report record breaks an invariant before it is persisted.
// Field is the json name of the offending field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ConfigurationError means the commission settings cannot produce a correct result:
// a required key is missing or the administration split goes negative.
type ConfigurationError struct {
	Key     string
	Message string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("commission settings %s: %s", e.Key, e.Message)
}

func invalidInput(field string, format string, args ...any) error {
	return &InvalidInputError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

func validationFailed(field string, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}
