package layout

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownFormat indicates a format name that is neither print nor ebook.
var ErrUnknownFormat = errors.New("unknown format")

// Format selects the output target of a typesetting request.
type Format int

// Supported formats. The zero value is not a valid format.
const (
	FormatPrint Format = iota + 1
	FormatEbook
)

// Format names as they appear in config files, flags and the job API.
const (
	formatPrintName = "print"
	formatEbookName = "ebook"
)

// String returns the canonical lowercase name.
func (f Format) String() string {
	switch f {
	case FormatPrint:
		return formatPrintName
	case FormatEbook:
		return formatEbookName
	}
	return "unknown"
}

// Valid reports whether f is one of the supported formats.
func (f Format) Valid() bool {
	return f == FormatPrint || f == FormatEbook
}

// ParseFormat converts a case-insensitive name into a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case formatPrintName:
		return FormatPrint, nil
	case formatEbookName:
		return FormatEbook, nil
	}
	return 0, fmt.Errorf("%w: %q (must be print or ebook)", ErrUnknownFormat, s)
}

// MarshalText implements encoding.TextMarshaler.
func (f Format) MarshalText() ([]byte, error) {
	if !f.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownFormat, int(f))
	}
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *Format) UnmarshalText(text []byte) error {
	parsed, err := ParseFormat(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}
