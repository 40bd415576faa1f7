package application

import (
	"errors"
	"fmt"
	"strings"

	"github.com/oksasatya/user-accounts/pkg/validation"
)

var (
	// ErrAccountNotFound is returned by Update when the id does not exist.
	// Get and SoftDelete report absence through their results instead.
	ErrAccountNotFound = errors.New("account not found")
	// ErrConflict is returned when an email uniqueness rule rejects a write.
	ErrConflict = errors.New("conflict")
)

// ValidationError carries every field-level violation of a payload.
type ValidationError struct {
	Fields []validation.FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func notFound(id int64) error {
	return fmt.Errorf("%w: user with id %d not found", ErrAccountNotFound, id)
}

func conflict(reason string) error {
	return fmt.Errorf("%w: %s", ErrConflict, reason)
}
