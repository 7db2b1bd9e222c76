package model

import "github.com/m-mizutani/goerr/v2"

// Validation errors
var (
	ErrEmptyContent       = goerr.New("memory content is empty")
	ErrMissingOwner       = goerr.New("memory owner is missing")
	ErrSalienceOutOfRange = goerr.New("salience must be within [0, 1]")
	ErrNegativeDecay      = goerr.New("decay rate must not be negative")
)

// Context keys for error values
const (
	OwnerKey    = "owner"
	SalienceKey = "salience"
	DecayKey    = "decay_rate"
)
