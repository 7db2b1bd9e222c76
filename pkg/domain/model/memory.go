package model

import (
	"github.com/google/uuid"
	"github.com/webmasterarbez/elaoms/pkg/domain/types"
)

// MemoryID is the identifier assigned to a stored memory by the memory engine
type MemoryID string

// NewMemoryID generates a new UUID v4 MemoryID
func NewMemoryID() MemoryID {
	return MemoryID(uuid.New().String())
}

// PermanentDecay is the decay rate attached to every memory this system
// writes. Nothing is forgotten; ranking is left to retrieval.
const PermanentDecay = 0.0

// Memory tags and metadata keys shared between writers and readers
const (
	TagProfile      = "profile"
	TagCallSummary  = "call_summary"
	TagNextGreeting = "next_greeting"

	MetaField          = "field"
	MetaValue          = "value"
	MetaKind           = "kind"
	MetaAgentID        = "agent_id"
	MetaConversationID = "conversation_id"
	MetaEventTimestamp = "event_timestamp"
	MetaSectorHint     = "sector_hint"
)

// MemoryWriteIntent is one memory the system wants the engine to store
type MemoryWriteIntent struct {
	Content    string
	Owner      CallerID
	Tier       types.SalienceTier
	Salience   float64
	DecayRate  float64
	Tags       []string
	SectorHint types.Sector
	Metadata   map[string]any
}

// MemoryHit is one result of a memory query, in engine ranking order
type MemoryHit struct {
	ID       MemoryID
	Content  string
	Score    float64
	Sector   types.Sector
	Salience float64
	Metadata map[string]any
}

// MetaString returns a metadata value as string, or "" if absent or not a string
func (h *MemoryHit) MetaString(key string) string {
	if h == nil || h.Metadata == nil {
		return ""
	}
	if v, ok := h.Metadata[key].(string); ok {
		return v
	}
	return ""
}
