package types

import (
	"regexp"

	"github.com/m-mizutani/goerr/v2"
)

// FieldKey is a normalized data-collection field identifier, e.g. "first_name"
type FieldKey string

var fieldKeyPattern = regexp.MustCompile(`^[a-z0-9]+(_[a-z0-9]+)*$`)

// Validate checks if the FieldKey is valid
func (k FieldKey) Validate() error {
	if k == "" {
		return goerr.New("field key cannot be empty")
	}
	if !fieldKeyPattern.MatchString(string(k)) {
		return goerr.New("field key must be lowercase alphanumeric with underscores", goerr.V("key", k))
	}
	return nil
}

// String returns the string representation of FieldKey
func (k FieldKey) String() string {
	return string(k)
}
