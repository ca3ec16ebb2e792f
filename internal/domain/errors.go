package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidURL          = errors.New("invalid product url")
	ErrInvalidSource       = errors.New("unsupported source")
	ErrExtractionTransport = errors.New("could not fetch product page")
	ErrImagePreview        = errors.New("image preview failed")
	ErrGeneration          = errors.New("review generation failed")
	ErrPublish             = errors.New("publish failed")
	ErrCategoryNotFound    = errors.New("category not found")
	ErrDraftNotFound       = errors.New("draft not found")
)

// PublishError reports a create-post call that did not answer 201.
type PublishError struct {
	StatusCode int
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("%s: content api returned status %d", ErrPublish, e.StatusCode)
}

func (e *PublishError) Unwrap() error {
	return ErrPublish
}
