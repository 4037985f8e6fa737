package entity

import "errors"

var (
	ErrNotFound  = errors.New("verification: no pending code for identifier")
	ErrExpired   = errors.New("verification: code has expired")
	ErrMismatch  = errors.New("verification: code does not match")
	ErrExhausted = errors.New("verification: too many failed attempts")

	// ErrConflict means the store gave up after repeated concurrent writes to one identifier.
	ErrConflict = errors.New("verification: concurrent update conflict")
)
