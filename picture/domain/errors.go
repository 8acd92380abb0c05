package domain

import "errors"

var (
	// ErrDocumentConfiguration is returned when a document submitted for save is
	// not a valid picture document: missing type, wrong type, or duplicate id.
	ErrDocumentConfiguration = errors.New("document configuration error")

	// ErrNotFound is returned when no document exists under the requested id
	ErrNotFound = errors.New("document not found")

	// ErrConflict is returned by a DocumentStore when Create targets an existing id
	ErrConflict = errors.New("document already exists")
)
