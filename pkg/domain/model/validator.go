package model

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// Validate checks that the intent can be sent to a memory engine. Gateways
// call it before any I/O.
func (x *MemoryWriteIntent) Validate() error {
	if x == nil || strings.TrimSpace(x.Content) == "" {
		return ErrEmptyContent
	}
	if x.Owner == "" {
		return ErrMissingOwner
	}
	if x.Salience < 0 || x.Salience > 1 {
		return goerr.Wrap(ErrSalienceOutOfRange, "invalid salience",
			goerr.V(OwnerKey, x.Owner), goerr.V(SalienceKey, x.Salience))
	}
	if x.DecayRate < 0 {
		return goerr.Wrap(ErrNegativeDecay, "invalid decay rate",
			goerr.V(OwnerKey, x.Owner), goerr.V(DecayKey, x.DecayRate))
	}
	return nil
}
