package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/webmasterarbez/elaoms/pkg/domain/interfaces"
	"github.com/webmasterarbez/elaoms/pkg/domain/model"
	"github.com/webmasterarbez/elaoms/pkg/domain/model/config"
	"github.com/webmasterarbez/elaoms/pkg/domain/types"
	"github.com/webmasterarbez/elaoms/pkg/service/digest"
	"github.com/webmasterarbez/elaoms/pkg/utils/errutil"
	"github.com/webmasterarbez/elaoms/pkg/utils/logging"
)

// fieldTemplates turn a normalized data-collection field into a sentence
var fieldTemplates = map[string]string{
	"first_name": "User's name is %s",
	"name":       "User's name is %s",
	"last_name":  "User's last name is %s",
	"full_name":  "User's full name is %s",
	"email":      "User prefers contact via email at %s",
	"preference": "User preference: %s",
	"topic":      "User is interested in %s",
	"issue":      "User reported issue: %s",
	"request":    "User requested: %s",
	"feedback":   "User feedback: %s",
}

// MemoryExtractor turns a completed call into memory write intents and
// submits them
type MemoryExtractor struct {
	memory   interfaces.MemoryGateway
	digest   digest.Service
	salience *config.SalienceTable
}

func NewMemoryExtractor(memory interfaces.MemoryGateway, digestSvc digest.Service, salience *config.SalienceTable) *MemoryExtractor {
	if digestSvc == nil {
		digestSvc = digest.NewPlain()
	}
	if salience == nil {
		salience = config.DefaultSalienceTable()
	}
	return &MemoryExtractor{
		memory:   memory,
		digest:   digestSvc,
		salience: salience,
	}
}

// SubmitResult counts the outcome of submitting intents
type SubmitResult struct {
	Stored int
	Failed int
}

// Extract builds one intent per collected field, one call summary intent
// and, when the digest provides one, a next greeting intent. Every intent is
// permanent.
func (e *MemoryExtractor) Extract(ctx context.Context, call *model.CompletedCall) ([]*model.MemoryWriteIntent, error) {
	if call == nil {
		return nil, goerr.New("completed call is nil")
	}
	if call.Caller == "" {
		return nil, goerr.Wrap(ErrInvalidCaller, "completed call has no caller")
	}

	base := map[string]any{
		model.MetaConversationID: call.ConversationID,
		model.MetaAgentID:        call.AgentID,
	}
	if !call.EventTime.IsZero() {
		base[model.MetaEventTimestamp] = call.EventTime.Unix()
	}
	withBase := func(extra map[string]any) map[string]any {
		meta := make(map[string]any, len(base)+len(extra))
		for k, v := range base {
			meta[k] = v
		}
		for k, v := range extra {
			meta[k] = v
		}
		return meta
	}

	keys := make([]string, 0, len(call.DataCollection))
	for k := range call.DataCollection {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var intents []*model.MemoryWriteIntent
	facts := make(map[string]string)
	for _, rawKey := range keys {
		value := formatFieldValue(call.DataCollection[rawKey])
		if value == "" {
			continue
		}
		key := config.NormalizeFieldKey(rawKey)
		if key == "" {
			continue
		}
		facts[key] = value

		tier := e.salience.Tier(key)
		intents = append(intents, &model.MemoryWriteIntent{
			Content:    formatField(key, value),
			Owner:      call.Caller,
			Tier:       tier,
			Salience:   tier.Value(),
			DecayRate:  model.PermanentDecay,
			Tags:       []string{model.TagProfile, key},
			SectorHint: types.SectorSemantic,
			Metadata: withBase(map[string]any{
				model.MetaField: key,
				model.MetaValue: value,
				model.MetaKind:  model.TagProfile,
			}),
		})
	}

	result, err := e.digest.Digest(ctx, digest.Input{
		ConversationID:  call.ConversationID,
		AgentID:         call.AgentID,
		Transcript:      call.Transcript,
		PlatformSummary: call.TranscriptSummary,
		Facts:           facts,
	})
	if err != nil {
		logging.From(ctx).Warn("digest failed, skipping call summary",
			slog.String("conversation_id", call.ConversationID),
			slog.Any("error", err),
		)
		return intents, nil
	}

	if summary := strings.TrimSpace(result.Summary); summary != "" {
		intents = append(intents, &model.MemoryWriteIntent{
			Content:    summary,
			Owner:      call.Caller,
			Tier:       types.SalienceMedium,
			Salience:   types.SalienceMedium.Value(),
			DecayRate:  model.PermanentDecay,
			Tags:       []string{model.TagCallSummary},
			SectorHint: types.SectorEpisodic,
			Metadata:   withBase(map[string]any{model.MetaKind: model.TagCallSummary}),
		})
	}

	if greeting := strings.TrimSpace(result.NextGreeting); greeting != "" && call.AgentID != "" {
		intents = append(intents, &model.MemoryWriteIntent{
			Content:    greeting,
			Owner:      call.Caller,
			Tier:       types.SalienceMedium,
			Salience:   types.SalienceMedium.Value(),
			DecayRate:  model.PermanentDecay,
			Tags:       []string{model.TagNextGreeting},
			SectorHint: types.SectorProcedural,
			Metadata:   withBase(map[string]any{model.MetaKind: model.TagNextGreeting}),
		})
	}

	return intents, nil
}

// Submit writes each intent independently. A failed write is logged and
// counted but never stops the rest.
func (e *MemoryExtractor) Submit(ctx context.Context, intents []*model.MemoryWriteIntent) SubmitResult {
	var result SubmitResult
	logger := logging.From(ctx)

	for _, intent := range intents {
		id, err := e.memory.Add(ctx, intent)
		if err != nil {
			result.Failed++
			if errors.Is(err, interfaces.ErrValidationRejected) {
				logger.Warn("memory rejected by engine",
					slog.String("caller", intent.Owner.String()),
					slog.String("tier", intent.Tier.String()),
					slog.Any("tags", intent.Tags),
					slog.Any("error", err),
				)
				continue
			}
			_ = errutil.Handle(ctx, goerr.Wrap(err, "memory write failed",
				goerr.V(CallerIDKey, intent.Owner.String()),
				goerr.V("tier", intent.Tier.String()),
				goerr.V("tags", intent.Tags),
			), "failed to store memory")
			continue
		}

		result.Stored++
		logger.Debug("memory stored",
			slog.String("memory_id", string(id)),
			slog.String("tier", intent.Tier.String()),
		)
	}

	return result
}

func formatField(key, value string) string {
	if tmpl, ok := fieldTemplates[key]; ok {
		return fmt.Sprintf(tmpl, value)
	}
	return fmt.Sprintf("%s: %s", titleCase(key), value)
}

func formatFieldValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			if s := formatFieldValue(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	default:
		return strings.TrimSpace(fmt.Sprint(val))
	}
}
