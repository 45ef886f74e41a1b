package store

import "errors"

var (
	// ErrEmptyName is returned when a lecture or session name is blank
	ErrEmptyName = errors.New("name cannot be empty")

	// ErrLectureNotFound is returned when the named lecture does not exist
	ErrLectureNotFound = errors.New("lecture not found")

	// ErrLectureExists is returned when creating a lecture that already exists
	ErrLectureExists = errors.New("lecture already exists")

	// ErrSessionNotFound is returned when the named session does not exist
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionExists is returned when creating a session that already exists
	ErrSessionExists = errors.New("session already exists")

	// ErrUnknownParameter is returned for parameter names outside the
	// supported set
	ErrUnknownParameter = errors.New("unknown parameter")

	// ErrInvalidParameter is returned when a parameter value fails range
	// validation
	ErrInvalidParameter = errors.New("invalid parameter value")
)
