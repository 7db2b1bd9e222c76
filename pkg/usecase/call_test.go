package usecase_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/webmasterarbez/elaoms/pkg/domain/model/elevenlabs"
	"github.com/webmasterarbez/elaoms/pkg/repository/memory"
	"github.com/webmasterarbez/elaoms/pkg/usecase"
)

func transcriptionWebhook(caller string, messages ...string) *elevenlabs.PostCallWebhook {
	wh := &elevenlabs.PostCallWebhook{
		Type:           elevenlabs.PostCallTranscription,
		EventTimestamp: 1739537297,
		Data: elevenlabs.PostCallData{
			AgentID:        "agent-1",
			ConversationID: "conv-1",
			Status:         "done",
			ConversationInitiationClientData: &elevenlabs.ConversationInitiationClientData{
				DynamicVariables: map[string]any{elevenlabs.SystemCallerIDVariable: caller},
			},
		},
	}
	for _, msg := range messages {
		wh.Data.Transcript = append(wh.Data.Transcript, elevenlabs.TranscriptEntry{Role: "user", Message: msg})
	}
	return wh
}

func TestCallUseCase_HandleInitiation(t *testing.T) {
	ctx := context.Background()

	t.Run("invalid caller is rejected", func(t *testing.T) {
		uc := usecase.New(memory.New())
		_, err := uc.Call.HandleInitiation(ctx, &elevenlabs.ClientDataRequest{CallerID: "anonymous", AgentID: "agent-1"})
		gt.Error(t, err).Is(usecase.ErrInvalidCaller)
	})

	t.Run("missing fields are rejected", func(t *testing.T) {
		uc := usecase.New(memory.New())
		_, err := uc.Call.HandleInitiation(ctx, &elevenlabs.ClientDataRequest{CallerID: "+15551234567"})
		gt.Error(t, err).Is(usecase.ErrInvalidPayload)
	})

	t.Run("formatting variants resolve to the same caller", func(t *testing.T) {
		repo := memory.New()
		uc := usecase.New(repo)

		_, err := uc.Call.HandleCompletion(ctx, transcriptionWebhook("(555) 123-4567", "I asked about billing today"))
		gt.NoError(t, err).Required()

		resp, err := uc.Call.HandleInitiation(ctx, &elevenlabs.ClientDataRequest{CallerID: "+1 555 123 4567", AgentID: "agent-1"})
		gt.NoError(t, err).Required()
		gt.String(t, resp.DynamicVariables[usecase.VarLastCallSummary]).Contains("asked about billing")
	})

	t.Run("unreachable engine still answers", func(t *testing.T) {
		repo := memory.New()
		repo.SetUnavailable(true)
		uc := usecase.New(repo)

		resp, err := uc.Call.HandleInitiation(ctx, &elevenlabs.ClientDataRequest{CallerID: "+15551234567", AgentID: "agent-1"})
		gt.NoError(t, err).Required()
		gt.Value(t, len(resp.DynamicVariables)).Equal(0)
		gt.Value(t, resp.ConversationConfigOverride).Nil()
	})
}

func TestCallUseCase_TwoCalls(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	uc := usecase.New(repo)
	req := &elevenlabs.ClientDataRequest{CallerID: "+15551234567", AgentID: "agent-1", CalledNumber: "+15550000000"}

	first, err := uc.Call.HandleInitiation(ctx, req)
	gt.NoError(t, err).Required()
	gt.Value(t, len(first.DynamicVariables)).Equal(0)
	gt.Value(t, first.ConversationConfigOverride).Nil()

	ack, err := uc.Call.HandleCompletion(ctx, transcriptionWebhook("+15551234567", "asked about billing"))
	gt.NoError(t, err).Required()
	gt.Value(t, ack.Stored).Equal(1)
	gt.Value(t, ack.Failed).Equal(0)

	stored := repo.Memories(testCaller)
	gt.Array(t, stored).Length(1).Required()
	gt.Value(t, stored[0].Salience).Equal(0.7)
	gt.Value(t, stored[0].Content).Equal("asked about billing")

	second, err := uc.Call.HandleInitiation(ctx, req)
	gt.NoError(t, err).Required()
	gt.Value(t, second.DynamicVariables[usecase.VarLastCallSummary]).Equal("Last time we talked about: asked about billing")
	gt.Value(t, second.ConversationConfigOverride).NotNil().Required()
	gt.String(t, second.ConversationConfigOverride.Agent.FirstMessage).Contains("asked about billing")
}

func TestCallUseCase_HandleSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("invalid user id", func(t *testing.T) {
		uc := usecase.New(memory.New())
		_, err := uc.Call.HandleSearch(ctx, &elevenlabs.SearchDataRequest{Query: "billing", UserID: "bob"})
		gt.Error(t, err).Is(usecase.ErrInvalidCaller)
	})

	t.Run("empty query", func(t *testing.T) {
		uc := usecase.New(memory.New())
		_, err := uc.Call.HandleSearch(ctx, &elevenlabs.SearchDataRequest{Query: " ", UserID: "+15551234567"})
		gt.Error(t, err).Is(usecase.ErrInvalidPayload)
	})

	t.Run("returns stored memories", func(t *testing.T) {
		repo := memory.New()
		uc := usecase.New(repo)
		_, err := uc.Call.HandleCompletion(ctx, transcriptionWebhook("+15551234567", "asked about billing"))
		gt.NoError(t, err).Required()

		resp, err := uc.Call.HandleSearch(ctx, &elevenlabs.SearchDataRequest{Query: "billing", UserID: "+15551234567", AgentID: "agent-1"})
		gt.NoError(t, err).Required()
		gt.Array(t, resp.Memories).Length(1).Required()
		gt.Value(t, resp.Memories[0].Content).Equal("asked about billing")
	})
}

func TestCallUseCase_HandleCompletion(t *testing.T) {
	ctx := context.Background()

	t.Run("non transcription types are acknowledged without writes", func(t *testing.T) {
		for _, typ := range []string{elevenlabs.PostCallAudio, elevenlabs.CallInitiationFailure, "something_new"} {
			t.Run(typ, func(t *testing.T) {
				repo := memory.New()
				uc := usecase.New(repo)

				wh := transcriptionWebhook("+15551234567", "asked about billing")
				wh.Type = typ
				resp, err := uc.Call.HandleCompletion(ctx, wh)
				gt.NoError(t, err).Required()
				gt.Value(t, resp.Status).Equal(elevenlabs.StatusSuccess)
				gt.Value(t, resp.Type).Equal(typ)
				gt.Value(t, resp.ConversationID).Equal("conv-1")
				gt.Array(t, repo.Memories(testCaller)).Length(0)
			})
		}
	})

	t.Run("unreachable engine is still a success", func(t *testing.T) {
		repo := memory.New()
		repo.SetUnavailable(true)
		uc := usecase.New(repo)

		resp, err := uc.Call.HandleCompletion(ctx, transcriptionWebhook("+15551234567", "asked about billing"))
		gt.NoError(t, err).Required()
		gt.Value(t, resp.Status).Equal(elevenlabs.StatusSuccess)
		gt.Value(t, resp.Stored).Equal(0)
		gt.Value(t, resp.Failed).Equal(1)
	})

	t.Run("missing caller is acknowledged", func(t *testing.T) {
		uc := usecase.New(memory.New())

		wh := transcriptionWebhook("", "asked about billing")
		resp, err := uc.Call.HandleCompletion(ctx, wh)
		gt.NoError(t, err).Required()
		gt.Value(t, resp.Stored).Equal(0)
	})

	t.Run("missing conversation id is invalid", func(t *testing.T) {
		uc := usecase.New(memory.New())

		wh := transcriptionWebhook("+15551234567")
		wh.Data.ConversationID = ""
		_, err := uc.Call.HandleCompletion(ctx, wh)
		gt.Error(t, err).Is(usecase.ErrInvalidPayload)
	})
}
