package domain

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrInvalidPayload = errors.New("Invalid reservation payload")
	ErrConflict       = errors.New("already exists")
)

// ErrMsgNoMatch is recorded on events whose property could not be resolved.
const ErrMsgNoMatch = "No matching property found"
