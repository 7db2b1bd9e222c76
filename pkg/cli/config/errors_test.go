package config_test

import (
	"errors"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/webmasterarbez/elaoms/pkg/cli/config"
)

func TestConfigErrors_SentinelIdentification(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		sentinelError error
		wantMatch     bool
	}{
		{
			name:          "ErrConfigNotFound can be identified",
			err:           goerr.Wrap(config.ErrConfigNotFound, "failed to load config"),
			sentinelError: config.ErrConfigNotFound,
			wantMatch:     true,
		},
		{
			name:          "ErrDuplicateField can be identified through two wraps",
			err:           goerr.Wrap(goerr.Wrap(config.ErrDuplicateField, "found duplicate"), "validation failed"),
			sentinelError: config.ErrDuplicateField,
			wantMatch:     true,
		},
		{
			name:          "ErrMissingSecret can be identified",
			err:           goerr.Wrap(config.ErrMissingSecret, "no key", goerr.V(config.FlagKey, "post-call-key")),
			sentinelError: config.ErrMissingSecret,
			wantMatch:     true,
		},
		{
			name:          "Different sentinel errors do not match",
			err:           goerr.Wrap(config.ErrConfigNotFound, "failed to load config"),
			sentinelError: config.ErrInvalidConfig,
			wantMatch:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matched := errors.Is(tt.err, tt.sentinelError)
			gt.Value(t, matched).Equal(tt.wantMatch)
		})
	}
}

func TestConfigErrors_ContextExtraction(t *testing.T) {
	err := goerr.Wrap(config.ErrInvalidFieldKey, "invalid field",
		goerr.V(config.FieldKey, "e-mail!"),
		goerr.V(config.TierKey, "high"),
	)

	var ge *goerr.Error
	gt.Bool(t, errors.As(err, &ge)).True()
	gt.Value(t, ge.Values()[config.FieldKey]).Equal(any("e-mail!"))
	gt.Value(t, ge.Values()[config.TierKey]).Equal(any("high"))
}
