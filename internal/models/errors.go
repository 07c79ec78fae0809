package models

import "fmt"

// ValidationError reports a parameter that cannot be used as given. Err, when
// set, is the underlying error kind and is reachable through errors.Is.
type ValidationError struct {
	Parameter string
	Value     interface{}
	Message   string
	Err       error
}

func NewValidationError(parameter string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Parameter: parameter,
		Value:     value,
		Message:   message,
	}
}

// WrapValidationError builds a ValidationError around err, using its text as
// the message.
func WrapValidationError(parameter string, value interface{}, err error) *ValidationError {
	return &ValidationError{
		Parameter: parameter,
		Value:     value,
		Message:   err.Error(),
		Err:       err,
	}
}

func (ve *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for parameter '%s' with value '%v': %s",
		ve.Parameter, ve.Value, ve.Message)
}

func (ve *ValidationError) Unwrap() error {
	return ve.Err
}
