package usecase

import "errors"

// Sentinel errors for use case layer
var (
	// ErrInvalidPayload means a webhook body is missing required fields
	ErrInvalidPayload = errors.New("invalid webhook payload")

	// ErrInvalidCaller means the caller id is not a usable phone number
	ErrInvalidCaller = errors.New("invalid caller id")
)

// Context keys for error values
const (
	CallerIDKey = "caller_id"
)
