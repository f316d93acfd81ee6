package api

import "errors"

// Sentinel kinds for API errors.
var (
	ErrBadRequest = errors.New("bad request")
	ErrBadDate    = errors.New("invalid date; want YYYY-MM-DD")
)
