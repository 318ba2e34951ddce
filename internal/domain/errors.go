package domain

import "errors"

// Generic
var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
)

// Business rules
var (
	ErrInsufficientFunds = errors.New("not enough money on balance")
	ErrInvalidStatus     = errors.New("invalid transaction status")
)

// Settlement pipeline
var (
	// ErrAlreadyClaimed means another settlement cycle wrote the terminal
	// status first; the losing pipeline must skip the transaction.
	ErrAlreadyClaimed = errors.New("transaction already claimed")

	ErrDeliveryExhausted = errors.New("webhook retry budget exhausted")
)
