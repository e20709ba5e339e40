package report

import "errors"

var (
	ErrUnauthorized = errors.New("unauthorized to view these statistics")
)
