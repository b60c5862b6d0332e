package docx

import "errors"

// Sentinel errors for DOCX conversion.
var (
	// ErrInvalidDocument indicates the data is not a readable DOCX archive.
	ErrInvalidDocument = errors.New("invalid DOCX document")

	// ErrEntryTooLarge indicates an archive entry exceeds the decompression limit.
	ErrEntryTooLarge = errors.New("DOCX entry too large")
)
