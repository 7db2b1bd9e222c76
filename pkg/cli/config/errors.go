package config

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for configuration validation
var (
	ErrConfigNotFound     = goerr.New("configuration file not found")
	ErrInvalidConfig      = goerr.New("invalid configuration")
	ErrDuplicateField     = goerr.New("field is assigned to more than one tier")
	ErrInvalidFieldKey    = goerr.New("invalid field key format")
	ErrMissingSecret      = goerr.New("required secret is not set")
	ErrInvalidBackend     = goerr.New("invalid memory backend")
	ErrInvalidLogLevel    = goerr.New("invalid log level")
	ErrInvalidLogFormat   = goerr.New("invalid log format")
	ErrInvalidMemoryURL   = goerr.New("invalid memory engine URL")
	ErrInvalidSearchLimit = goerr.New("search limit must be positive")
)

// Context keys for error values
const (
	ConfigPathKey = "config_path"
	FieldKey      = "field"
	TierKey       = "tier"
	FlagKey       = "flag"
	ValueKey      = "value"
)
