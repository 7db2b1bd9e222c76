// Package elevenlabs holds the wire formats of the ElevenLabs Conversational
// AI webhooks handled by this service.
package elevenlabs

import (
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/webmasterarbez/elaoms/pkg/domain/model"
)

// Post-call webhook types
const (
	PostCallTranscription  = "post_call_transcription"
	PostCallAudio          = "post_call_audio"
	CallInitiationFailure  = "call_initiation_failure"
	SystemCallerIDVariable = "system__caller_id"
)

// ClientDataRequest is the body of the conversation initiation webhook
type ClientDataRequest struct {
	CallerID     string `json:"caller_id"`
	AgentID      string `json:"agent_id"`
	CalledNumber string `json:"called_number"`
	CallSID      string `json:"call_sid"`
}

// Validate checks required fields
func (r *ClientDataRequest) Validate() error {
	if r.CallerID == "" {
		return goerr.New("caller_id is required")
	}
	if r.AgentID == "" {
		return goerr.New("agent_id is required")
	}
	return nil
}

// ClientDataResponse is returned to the platform at conversation initiation
type ClientDataResponse struct {
	DynamicVariables           map[string]string           `json:"dynamic_variables"`
	ConversationConfigOverride *ConversationConfigOverride `json:"conversation_config_override,omitempty"`
}

// ConversationConfigOverride overrides agent settings for one conversation
type ConversationConfigOverride struct {
	Agent *AgentOverride `json:"agent,omitempty"`
}

// AgentOverride holds the agent fields that may be overridden
type AgentOverride struct {
	FirstMessage string `json:"first_message,omitempty"`
}

// SearchDataRequest is sent by the agent's server tool mid-call
type SearchDataRequest struct {
	Query          string         `json:"query"`
	UserID         string         `json:"user_id"`
	AgentID        string         `json:"agent_id"`
	ConversationID string         `json:"conversation_id,omitempty"`
	Context        map[string]any `json:"context,omitempty"`
}

// Validate checks required fields
func (r *SearchDataRequest) Validate() error {
	if strings.TrimSpace(r.Query) == "" {
		return goerr.New("query is required")
	}
	if r.UserID == "" {
		return goerr.New("user_id is required")
	}
	return nil
}

// SearchDataResponse returns ranked memory snippets to the agent
type SearchDataResponse struct {
	Profile  *ProfileData `json:"profile,omitempty"`
	Memories []MemoryItem `json:"memories"`
}

// ProfileData is a small caller profile assembled from search hits
type ProfileData struct {
	Name        string `json:"name,omitempty"`
	Summary     string `json:"summary,omitempty"`
	PhoneNumber string `json:"phone_number,omitempty"`
}

// MemoryItem is one memory snippet returned to the agent
type MemoryItem struct {
	Content  string  `json:"content"`
	Sector   string  `json:"sector"`
	Salience float64 `json:"salience"`
	Score    float64 `json:"score"`
}

// PostCallWebhook is the body of the post-call webhook
type PostCallWebhook struct {
	Type           string       `json:"type"`
	EventTimestamp int64        `json:"event_timestamp"`
	Data           PostCallData `json:"data"`
}

// Validate checks required fields
func (w *PostCallWebhook) Validate() error {
	if w.Type == "" {
		return goerr.New("type is required")
	}
	if w.Data.ConversationID == "" {
		return goerr.New("data.conversation_id is required")
	}
	return nil
}

// StatusSuccess is the status of every post-call acknowledgement
const StatusSuccess = "success"

// PostCallResponse acknowledges a post-call webhook. Stored and Failed count
// memory writes for transcription webhooks.
type PostCallResponse struct {
	Status         string `json:"status"`
	Type           string `json:"type"`
	ConversationID string `json:"conversation_id"`
	Message        string `json:"message"`
	Stored         int    `json:"stored"`
	Failed         int    `json:"failed"`
}

// PostCallData is the conversation payload of a post-call webhook. Only the
// fields used for memory extraction are decoded.
type PostCallData struct {
	AgentID                          string                            `json:"agent_id"`
	ConversationID                   string                            `json:"conversation_id"`
	Status                           string                            `json:"status"`
	UserID                           string                            `json:"user_id,omitempty"`
	Transcript                       []TranscriptEntry                 `json:"transcript"`
	Analysis                         *Analysis                         `json:"analysis,omitempty"`
	ConversationInitiationClientData *ConversationInitiationClientData `json:"conversation_initiation_client_data,omitempty"`
	HasAudio                         bool                              `json:"has_audio"`
}

// TranscriptEntry is one turn of the call transcript
type TranscriptEntry struct {
	Role           string `json:"role"`
	Message        string `json:"message"`
	TimeInCallSecs int    `json:"time_in_call_secs"`
}

// Analysis holds the platform's post-call analysis
type Analysis struct {
	DataCollectionResults map[string]DataCollectionResult `json:"data_collection_results"`
	CallSuccessful        string                          `json:"call_successful,omitempty"`
	TranscriptSummary     string                          `json:"transcript_summary,omitempty"`
	CallSummaryTitle      string                          `json:"call_summary_title,omitempty"`
}

// DataCollectionResult is one value the platform extracted during the call
type DataCollectionResult struct {
	DataCollectionID string `json:"data_collection_id"`
	Value            any    `json:"value"`
	Rationale        string `json:"rationale,omitempty"`
}

// ConversationInitiationClientData echoes what was returned at initiation
type ConversationInitiationClientData struct {
	UserID           string         `json:"user_id,omitempty"`
	DynamicVariables map[string]any `json:"dynamic_variables"`
}

// CallerID extracts the caller's raw phone number. The system dynamic variable
// takes precedence over the conversation's user id.
func (d *PostCallData) CallerID() string {
	if d.ConversationInitiationClientData != nil {
		if v, ok := d.ConversationInitiationClientData.DynamicVariables[SystemCallerIDVariable].(string); ok && v != "" {
			return v
		}
		if d.ConversationInitiationClientData.UserID != "" {
			return d.ConversationInitiationClientData.UserID
		}
	}
	return d.UserID
}

// ToCompletedCall converts the webhook into the domain representation used
// for memory extraction
func (w *PostCallWebhook) ToCompletedCall() *model.CompletedCall {
	call := &model.CompletedCall{
		Caller:         model.NormalizeCallerID(w.Data.CallerID()),
		AgentID:        w.Data.AgentID,
		ConversationID: w.Data.ConversationID,
		DataCollection: map[string]any{},
	}
	if w.EventTimestamp > 0 {
		call.EventTime = time.Unix(w.EventTimestamp, 0).UTC()
	}

	for _, entry := range w.Data.Transcript {
		call.Transcript = append(call.Transcript, model.TranscriptTurn{
			Role:          model.TranscriptRole(entry.Role),
			Message:       entry.Message,
			TimeInCallSec: entry.TimeInCallSecs,
		})
	}

	if w.Data.Analysis != nil {
		call.TranscriptSummary = w.Data.Analysis.TranscriptSummary
		for id, result := range w.Data.Analysis.DataCollectionResults {
			call.DataCollection[id] = result.Value
		}
	}

	return call
}
