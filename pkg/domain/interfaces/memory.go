package interfaces

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/webmasterarbez/elaoms/pkg/domain/model"
)

// Sentinel errors returned by MemoryGateway implementations
var (
	// ErrUpstreamUnavailable means the memory engine could not be reached,
	// timed out or answered with a server error
	ErrUpstreamUnavailable = goerr.New("memory engine unavailable")

	// ErrValidationRejected means the memory was refused because of its
	// content, e.g. empty text
	ErrValidationRejected = goerr.New("memory rejected by validation")
)

// MemoryGateway is the boundary to the external cognitive memory engine. It
// exposes only the operations the call lifecycle needs. Implementations must
// be safe for concurrent use and must not retry on their own.
type MemoryGateway interface {
	// Add stores one memory and returns the engine-assigned id
	Add(ctx context.Context, intent *model.MemoryWriteIntent) (model.MemoryID, error)

	// Query returns up to limit memories of owner ranked by the engine's
	// relevance to text. No match yields an empty slice, not an error.
	Query(ctx context.Context, text string, owner model.CallerID, limit int) ([]*model.MemoryHit, error)

	// Summary returns the engine's free-text summary of owner. A never-seen
	// owner yields an empty string, not an error.
	Summary(ctx context.Context, owner model.CallerID) (string, error)

	// Close releases transport resources
	Close() error
}
