package documents

import "errors"

// Domain errors for document intake.
var (
	// ErrDocumentRead indicates a document could not be read or parsed.
	ErrDocumentRead = errors.New("document read failed")
	// ErrDocumentTooLarge indicates a document exceeds the configured size limit.
	ErrDocumentTooLarge = errors.New("document exceeds maximum size")
)
