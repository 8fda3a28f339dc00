// Package common defines shared sentinel errors used across ReadNest
// components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Storage-level errors.
	ErrNotFound = errors.New("not found")

	// ErrDecode marks a stored record that does not match the expected shape.
	// A record failing decode is unusable as a whole, not merely missing a field.
	ErrDecode = errors.New("record decode failed")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
)
