package domain

import (
	"errors"
	"fmt"
)

// Common errors
var (
	ErrNotFound     = errors.New("record not found")
	ErrForbidden    = errors.New("access forbidden: you don't own this resource")
	ErrInvalidInput = errors.New("invalid input")
	ErrCacheMiss    = errors.New("cache miss")
	ErrUnauthorized = errors.New("unauthorized")
	ErrConflict     = errors.New("conflict")
)

// ErrInvalidDays is returned when a listing duration is not a positive number of days.
// It wraps ErrInvalidInput so callers can match either.
var ErrInvalidDays = fmt.Errorf("%w: days must be a positive integer", ErrInvalidInput)
