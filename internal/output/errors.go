package output

import "errors"

// Domain errors for artifact output.
var (
	// ErrUnsupportedFormat indicates a configured format is not text or json.
	ErrUnsupportedFormat = errors.New("unsupported output format")
)
