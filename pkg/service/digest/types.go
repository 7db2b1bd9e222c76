package digest

import (
	"context"

	"github.com/webmasterarbez/elaoms/pkg/domain/model"
)

// Service condenses a completed call into a short digest for long-term memory
type Service interface {
	// Digest returns the digest of a call. An empty Summary means there was
	// nothing worth remembering.
	Digest(ctx context.Context, input Input) (*Result, error)
}

// Input is a completed call as seen by the digest service
type Input struct {
	ConversationID string
	AgentID        string
	Transcript     []model.TranscriptTurn
	// PlatformSummary is the summary produced by the voice platform, if any
	PlatformSummary string
	// Facts are the data-collection values already extracted, for context
	Facts map[string]string
}

// Result is the digest of one call
type Result struct {
	Summary string
	// NextGreeting is an optional opening line for the caller's next call
	// with the same agent
	NextGreeting string
}

// MaxSummaryLength bounds a digest built from raw utterances
const MaxSummaryLength = 500

// llmResponse is the structured output from the LLM
type llmResponse struct {
	Summary      string `json:"summary"`
	NextGreeting string `json:"next_greeting"`
}
