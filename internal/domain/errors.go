package domain

import "errors"

var (
	// Account errors
	ErrAccountNotFound     = errors.New("account not found")
	ErrAccountExists       = errors.New("account already exists")
	ErrInsufficientBalance = errors.New("insufficient balance")

	// Event errors
	ErrVersionConflict  = errors.New("event version conflict")
	ErrUnknownEventKind = errors.New("unknown event kind")

	// Input errors
	ErrInvalidAmount = errors.New("amount must be positive")
	ErrInvalidEmail  = errors.New("invalid email format")
	ErrInvalidOwner  = errors.New("owner reference must not be empty")
	ErrInvalidCursor = errors.New("invalid pagination cursor")
)
