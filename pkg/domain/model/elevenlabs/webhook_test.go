package elevenlabs_test

import (
	"encoding/json"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/webmasterarbez/elaoms/pkg/domain/model"
	"github.com/webmasterarbez/elaoms/pkg/domain/model/elevenlabs"
)

const postCallBody = `{
  "type": "post_call_transcription",
  "event_timestamp": 1739537297,
  "data": {
    "agent_id": "agent_123",
    "conversation_id": "conv_456",
    "status": "done",
    "user_id": "+15550000000",
    "transcript": [
      {"role": "agent", "message": "Hello, how can I help?", "time_in_call_secs": 0},
      {"role": "user", "message": "I asked about billing.", "time_in_call_secs": 3}
    ],
    "analysis": {
      "transcript_summary": "The caller asked about billing.",
      "data_collection_results": {
        "first_name": {"data_collection_id": "first_name", "value": "Stefan"},
        "email": {"data_collection_id": "email", "value": null}
      }
    },
    "conversation_initiation_client_data": {
      "dynamic_variables": {"system__caller_id": "+1 (555) 123-4567"}
    }
  }
}`

func TestPostCallWebhook_ToCompletedCall(t *testing.T) {
	var hook elevenlabs.PostCallWebhook
	gt.NoError(t, json.Unmarshal([]byte(postCallBody), &hook)).Required()
	gt.NoError(t, hook.Validate())

	call := hook.ToCompletedCall()
	gt.Value(t, call.Caller).Equal(model.CallerID("+15551234567"))
	gt.Value(t, call.AgentID).Equal("agent_123")
	gt.Value(t, call.ConversationID).Equal("conv_456")
	gt.Value(t, call.EventTime.Unix()).Equal(int64(1739537297))
	gt.Value(t, call.TranscriptSummary).Equal("The caller asked about billing.")
	gt.Array(t, call.Transcript).Length(2)
	gt.Value(t, call.DataCollection["first_name"]).Equal(any("Stefan"))
	gt.Value(t, call.DataCollection["email"]).Nil()
}

func TestPostCallData_CallerID(t *testing.T) {
	t.Run("falls back to user id", func(t *testing.T) {
		d := elevenlabs.PostCallData{UserID: "+15550000000"}
		gt.Value(t, d.CallerID()).Equal("+15550000000")
	})

	t.Run("empty when nothing is present", func(t *testing.T) {
		d := elevenlabs.PostCallData{}
		gt.Value(t, d.CallerID()).Equal("")
	})
}

func TestRequestValidate(t *testing.T) {
	gt.Error(t, (&elevenlabs.ClientDataRequest{AgentID: "a"}).Validate())
	gt.Error(t, (&elevenlabs.ClientDataRequest{CallerID: "+15551234567"}).Validate())
	gt.NoError(t, (&elevenlabs.ClientDataRequest{CallerID: "+15551234567", AgentID: "a"}).Validate())

	gt.Error(t, (&elevenlabs.SearchDataRequest{UserID: "+15551234567", Query: "  "}).Validate())
	gt.NoError(t, (&elevenlabs.SearchDataRequest{UserID: "+15551234567", Query: "billing"}).Validate())

	gt.Error(t, (&elevenlabs.PostCallWebhook{Type: "post_call_audio"}).Validate())
}
