package services

import "errors"

// Report service errors
var (
	ErrNoInput       = errors.New("no input file configured")
	ErrUnknownReport = errors.New("unknown report kind")
)
