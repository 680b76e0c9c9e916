//nolint:all
package model

import "fmt"

// RequiredError indicates that a required model field holds its zero value.
type RequiredError struct {
	Field string
}

func (e *RequiredError) Error() string {
	return fmt.Sprintf("required field '%s' is zero value.", e.Field)
}
