package service

import (
	"errors"

	"github.com/project-amenities/backend/internal/validation"
)

var (
	ErrSessionNotFound    = errors.New("form session not found")
	ErrDocumentNotFound   = errors.New("no form document has been submitted")
	ErrUnsupportedFile    = errors.New("only image files can be uploaded")
	ErrPreviewUnavailable = errors.New("form preview is not available")
)

// ValidationError is returned by Submit when the document is rejected.
type ValidationError struct {
	Fields validation.FieldErrors
}

func (e *ValidationError) Error() string {
	return e.Fields.Error()
}
