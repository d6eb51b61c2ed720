package usecase

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type ErrNotFound struct {
	ID      uuid.UUID
	Code    string
	Message string
}

func (e ErrNotFound) Error() string {
	return e.Message
}

// ErrValidation reports a missing or malformed caller-supplied field.
type ErrValidation struct {
	Field   string
	Message string
}

func (e ErrValidation) Error() string {
	return e.Message
}

// ErrNameConflict is returned when a tag rename collides with another tag.
type ErrNameConflict struct {
	Name string
}

func (e ErrNameConflict) Error() string {
	return fmt.Sprintf("tag name %q already exists", e.Name)
}

// ErrConfiguration marks a storage provider that cannot sign because its
// identity is incomplete. It is never retried.
type ErrConfiguration struct {
	Missing []string
}

func (e ErrConfiguration) Error() string {
	return "storage provider is not configured: missing " + strings.Join(e.Missing, ", ")
}
