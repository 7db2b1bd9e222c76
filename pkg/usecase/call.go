package usecase

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/webmasterarbez/elaoms/pkg/domain/model"
	"github.com/webmasterarbez/elaoms/pkg/domain/model/elevenlabs"
	"github.com/webmasterarbez/elaoms/pkg/domain/types"
	"github.com/webmasterarbez/elaoms/pkg/utils/logging"
)

// CallUseCase handles the three stages of a call. Each handler takes the
// already authenticated payload of its stage.
type CallUseCase struct {
	profile     *ProfileResolver
	extractor   *MemoryExtractor
	searchLimit int
}

func NewCallUseCase(profile *ProfileResolver, extractor *MemoryExtractor) *CallUseCase {
	return &CallUseCase{
		profile:     profile,
		extractor:   extractor,
		searchLimit: searchDefaultLimit,
	}
}

// HandleInitiation returns the personalization payload for a new call
func (uc *CallUseCase) HandleInitiation(ctx context.Context, req *elevenlabs.ClientDataRequest) (*elevenlabs.ClientDataResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, goerr.Wrap(ErrInvalidPayload, "invalid client data request", goerr.V("cause", err.Error()))
	}

	callCtx := model.CallContext{
		Caller:       model.NormalizeCallerID(req.CallerID),
		AgentID:      req.AgentID,
		CalledNumber: req.CalledNumber,
		CallSID:      req.CallSID,
		Stage:        types.StageInitiation,
	}
	if !callCtx.Caller.IsE164() {
		return nil, goerr.Wrap(ErrInvalidCaller, "caller id is not an E.164 number", goerr.V(CallerIDKey, req.CallerID))
	}

	ctx = logging.With(ctx, logging.From(ctx).With(
		slog.String("stage", callCtx.Stage.String()),
		slog.String("caller", callCtx.Caller.String()),
		slog.String("agent_id", callCtx.AgentID),
	))

	profile := uc.profile.Resolve(ctx, callCtx.Caller, callCtx.AgentID)
	resp := uc.profile.Personalize(profile)

	logging.From(ctx).Info("call initiation handled",
		slog.Bool("returning_caller", !profile.IsNew()),
		slog.Bool("first_message_override", resp.ConversationConfigOverride != nil),
	)

	return resp, nil
}

// HandleSearch answers a mid-call memory search
func (uc *CallUseCase) HandleSearch(ctx context.Context, req *elevenlabs.SearchDataRequest) (*elevenlabs.SearchDataResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, goerr.Wrap(ErrInvalidPayload, "invalid search data request", goerr.V("cause", err.Error()))
	}

	caller := model.NormalizeCallerID(req.UserID)
	if !caller.IsE164() {
		return nil, goerr.Wrap(ErrInvalidCaller, "user id is not an E.164 number", goerr.V(CallerIDKey, req.UserID))
	}

	ctx = logging.With(ctx, logging.From(ctx).With(
		slog.String("stage", types.StageSearch.String()),
		slog.String("caller", caller.String()),
		slog.String("agent_id", req.AgentID),
	))

	resp := uc.profile.Search(ctx, caller, req.Query, uc.searchLimit)

	logging.From(ctx).Info("memory search handled", slog.Int("memories", len(resp.Memories)))
	return resp, nil
}

// HandleCompletion extracts and stores memories of a finished call. Memory
// engine failures are counted in the response, never returned as errors.
func (uc *CallUseCase) HandleCompletion(ctx context.Context, webhook *elevenlabs.PostCallWebhook) (*elevenlabs.PostCallResponse, error) {
	if err := webhook.Validate(); err != nil {
		return nil, goerr.Wrap(ErrInvalidPayload, "invalid post-call webhook", goerr.V("cause", err.Error()))
	}

	ctx = logging.With(ctx, logging.From(ctx).With(
		slog.String("stage", types.StageCompletion.String()),
		slog.String("type", webhook.Type),
		slog.String("conversation_id", webhook.Data.ConversationID),
	))
	logger := logging.From(ctx)

	resp := &elevenlabs.PostCallResponse{
		Status:         elevenlabs.StatusSuccess,
		Type:           webhook.Type,
		ConversationID: webhook.Data.ConversationID,
	}

	switch webhook.Type {
	case elevenlabs.PostCallTranscription:
	case elevenlabs.PostCallAudio:
		resp.Message = "Audio webhook acknowledged"
		logger.Info("post-call audio acknowledged")
		return resp, nil
	case elevenlabs.CallInitiationFailure:
		resp.Message = "Call initiation failure acknowledged"
		logger.Info("call initiation failure acknowledged")
		return resp, nil
	default:
		resp.Message = "Unknown webhook type acknowledged"
		logger.Warn("unknown post-call webhook type")
		return resp, nil
	}

	call := webhook.ToCompletedCall()
	if call.Caller == "" {
		resp.Message = "Transcription acknowledged without caller id"
		logger.Warn("post-call transcription has no caller id, skipping memory extraction")
		return resp, nil
	}

	intents, err := uc.extractor.Extract(ctx, call)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to extract memories")
	}

	result := uc.extractor.Submit(ctx, intents)
	resp.Stored = result.Stored
	resp.Failed = result.Failed
	resp.Message = "Transcription processed"

	logger.Info("post-call transcription processed",
		slog.String("caller", call.Caller.String()),
		slog.Int("intents", len(intents)),
		slog.Int("stored", result.Stored),
		slog.Int("failed", result.Failed),
	)

	return resp, nil
}
