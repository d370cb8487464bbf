package models

import "errors"

var (
	ErrNotFound               = errors.New("not found")
	ErrForbidden              = errors.New("forbidden")
	ErrConflict               = errors.New("conflict")
	ErrInvalidInput           = errors.New("invalid input")
	ErrInvalidSignature       = errors.New("invalid signature")
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrUnauthorized           = errors.New("unauthorized")
)

// ErrNotConfigured marks features whose external provider has no credentials.
var ErrNotConfigured = errors.New("not configured")
