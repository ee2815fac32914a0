package domain

import "errors"

var (
	// ErrAlreadyExists is returned when an aggregate with the same natural key is already stored.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidCommand is returned when a command carries values that violate its constraints.
	ErrInvalidCommand = errors.New("invalid command")
)
