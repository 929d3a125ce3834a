package errors

import "errors"

var (
	ErrNotFound = errors.New("reservation not found")

	ErrInvalidID = errors.New("invalid reservation ID format")

	ErrIntervalConflict = errors.New("interval overlaps a committed booking")

	ErrIntervalNotFound = errors.New("interval not present in index")

	ErrLockTimeout = errors.New("timed out waiting for vehicle lock")
)
