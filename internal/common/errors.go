package common

import "errors"

var (

	// repository specific errors
	ErrNotFound    = errors.New("not found")
	ErrHasChildren = errors.New("record has children")

	// service specific errors
	ErrValidation   = errors.New("validation error")
	ErrUnauthorized = errors.New("unauthorized")
	ErrUnknownTable = errors.New("unknown table")
)
