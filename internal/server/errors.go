package server

import "errors"

// Sentinel errors for request handling.
var (
	ErrBadRequest      = errors.New("bad request")
	ErrFetchSource     = errors.New("failed to fetch manuscript")
	ErrForbiddenSource = errors.New("sourceUrl must resolve to a public address")
	ErrSourceTooBig    = errors.New("manuscript exceeds upload limit")
	ErrMissingUpload   = errors.New("missing manuscript file")
)
