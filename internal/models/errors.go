package models

import "fmt"

// ValidationError reports bad, missing or mistyped product input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func missingField(key string) error {
	return &ValidationError{Field: key, Message: fmt.Sprintf("Invalid product: missing %s", key)}
}
