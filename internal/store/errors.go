package store

import "errors"

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a unique column already holds the value.
	ErrDuplicate = errors.New("duplicate")
	// ErrSlotUnavailable is returned when a doctor already has a booked appointment in the interval.
	ErrSlotUnavailable = errors.New("slot unavailable")
	// ErrStale is returned when a row changed between read and conditional write.
	ErrStale = errors.New("stale record")
)
