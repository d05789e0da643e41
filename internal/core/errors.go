package core

import "errors"

// Error taxonomy shared by all services. Handlers map these onto envelope
// codes with errors.Is; everything unmatched is treated as internal.
var (
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrExpired          = errors.New("session expired")
	ErrValidation       = errors.New("invalid input")
	ErrGenerationFailed = errors.New("reply generation failed")
)
