package model

import (
	"time"

	"github.com/webmasterarbez/elaoms/pkg/domain/types"
)

// CallContext carries the identifiers of one inbound webhook. It is built per
// request and never stored.
type CallContext struct {
	Caller       CallerID
	AgentID      string
	CalledNumber string
	CallSID      string
	Stage        types.Stage
}

// TranscriptRole is the speaker of a transcript turn
type TranscriptRole string

const (
	RoleAgent TranscriptRole = "agent"
	RoleUser  TranscriptRole = "user"
)

// TranscriptTurn is one utterance of a finished call
type TranscriptTurn struct {
	Role          TranscriptRole
	Message       string
	TimeInCallSec int
}

// CompletedCall is everything the platform reports about a finished call that
// is relevant for memory extraction
type CompletedCall struct {
	Caller            CallerID
	AgentID           string
	ConversationID    string
	EventTime         time.Time
	Transcript        []TranscriptTurn
	TranscriptSummary string
	// DataCollection holds the values extracted by the platform keyed by the
	// data collection id. Nil values mean the field was not collected.
	DataCollection map[string]any
}

// UserMessages returns the non-empty caller utterances in call order
func (c *CompletedCall) UserMessages() []string {
	var msgs []string
	for _, turn := range c.Transcript {
		if turn.Role == RoleUser && turn.Message != "" {
			msgs = append(msgs, turn.Message)
		}
	}
	return msgs
}
