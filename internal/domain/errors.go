package domain

import "errors"

// Sentinel failure kinds. Services wrap these with context via fmt.Errorf
// and the HTTP boundary maps them to response statuses with errors.Is.
var (
	ErrNotFound       = errors.New("not found")
	ErrConflict       = errors.New("already exists")
	ErrRoomMismatch   = errors.New("room mismatch")
	ErrValidation     = errors.New("invalid request")
	ErrBadCredentials = errors.New("invalid email or password")
)
