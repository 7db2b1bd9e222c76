package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/webmasterarbez/elaoms/pkg/domain/interfaces"
	"github.com/webmasterarbez/elaoms/pkg/domain/model"
	"github.com/webmasterarbez/elaoms/pkg/domain/model/elevenlabs"
	"github.com/webmasterarbez/elaoms/pkg/domain/types"
	"github.com/webmasterarbez/elaoms/pkg/utils/logging"
	"golang.org/x/sync/errgroup"
)

// Queries sent to the memory engine while building a profile
const (
	queryRecentInteraction = "recent interaction"
	queryName              = "user name first_name"
	queryNextGreeting      = "next greeting"

	recentQueryLimit   = 5
	nameQueryLimit     = 10
	greetingQueryLimit = 10

	lastCallSummaryLength = 150
	greetingTopicLength   = 100
	lastCallPrefix        = "Last time we talked about: "

	searchDefaultLimit     = 10
	searchSummaryMinSal    = 0.7
	searchSummaryMaxPieces = 3
	profileSummaryMinSal   = 0.8
	profileSummaryMaxLen   = 200
)

// Dynamic variable names sent at conversation initiation
const (
	VarUserName           = "user_name"
	VarUserProfileSummary = "user_profile_summary"
	VarLastCallSummary    = "last_call_summary"
)

// ProfileResolver assembles what is known about a caller at call start
type ProfileResolver struct {
	memory  interfaces.MemoryGateway
	persona string
}

func NewProfileResolver(memory interfaces.MemoryGateway, persona string) *ProfileResolver {
	return &ProfileResolver{
		memory:  memory,
		persona: persona,
	}
}

// Resolve never fails. Unknown callers and engine failures both produce the
// neutral profile.
func (r *ProfileResolver) Resolve(ctx context.Context, caller model.CallerID, agentID string) *model.MemoryProfile {
	logger := logging.From(ctx).With(slog.String("caller", caller.String()))

	if caller == "" {
		return model.NewNeutralProfile(caller)
	}

	var (
		summary   string
		recent    []*model.MemoryHit
		nameHits  []*model.MemoryHit
		greetHits []*model.MemoryHit
	)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		s, err := r.memory.Summary(egCtx, caller)
		if err != nil {
			return goerr.Wrap(err, "failed to get summary")
		}
		summary = s
		return nil
	})
	eg.Go(func() error {
		hits, err := r.memory.Query(egCtx, queryRecentInteraction, caller, recentQueryLimit)
		if err != nil {
			return goerr.Wrap(err, "failed to query recent interaction")
		}
		recent = hits
		return nil
	})
	eg.Go(func() error {
		hits, err := r.memory.Query(egCtx, queryName, caller, nameQueryLimit)
		if err != nil {
			return goerr.Wrap(err, "failed to query name")
		}
		nameHits = hits
		return nil
	})
	if agentID != "" {
		eg.Go(func() error {
			hits, err := r.memory.Query(egCtx, queryNextGreeting, caller, greetingQueryLimit)
			if err != nil {
				return goerr.Wrap(err, "failed to query next greeting")
			}
			greetHits = hits
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		logger.Warn("memory engine unavailable, using neutral profile", slog.Any("error", err))
		return model.NewNeutralProfile(caller)
	}

	parsed := parseSummary(summary)

	profile := model.NewNeutralProfile(caller)
	profile.MemoryCount = parsed.memoryCount
	profile.ActivityLevel = parsed.activityLevel
	profile.DisplayName = extractDisplayName(nameHits)
	profile.Summary = parsed.topContent
	if profile.Summary == "" {
		profile.Summary = summarizeProfileHits(nameHits)
	}
	profile.LastCallSummary = lastCallSummary(recent)
	profile.NextGreeting = findNextGreeting(greetHits, agentID)

	logger.Debug("profile resolved",
		slog.Int("memory_count", profile.MemoryCount),
		slog.String("activity_level", profile.ActivityLevel),
		slog.Bool("has_name", profile.DisplayName != ""),
		slog.Bool("has_last_call", profile.LastCallSummary != ""),
	)

	return profile
}

// Personalize turns a profile into the initiation response. The dynamic
// variables object is always present; the first message override is only
// set for returning callers.
func (r *ProfileResolver) Personalize(profile *model.MemoryProfile) *elevenlabs.ClientDataResponse {
	resp := &elevenlabs.ClientDataResponse{
		DynamicVariables: map[string]string{},
	}
	if profile == nil {
		return resp
	}

	if profile.DisplayName != "" {
		resp.DynamicVariables[VarUserName] = profile.DisplayName
	}
	if profile.Summary != "" {
		resp.DynamicVariables[VarUserProfileSummary] = profile.Summary
	}
	if profile.LastCallSummary != "" {
		resp.DynamicVariables[VarLastCallSummary] = profile.LastCallSummary
	}

	if profile.IsNew() {
		return resp
	}

	first := profile.NextGreeting
	if first == "" {
		first = r.greeting(profile)
	}
	resp.ConversationConfigOverride = &elevenlabs.ConversationConfigOverride{
		Agent: &elevenlabs.AgentOverride{FirstMessage: first},
	}
	return resp
}

func (r *ProfileResolver) greeting(profile *model.MemoryProfile) string {
	name := profile.DisplayName

	topic := ""
	if len(profile.Summary) > 10 && !isConversationalFiller(profile.Summary) {
		topic = model.TruncateAtSentence(profile.Summary, greetingTopicLength)
		if topic == "" {
			topic = model.Truncate(profile.Summary, greetingTopicLength)
		}
		topic = strings.TrimRight(topic, ".!? ")
	}

	hello := "Hello"
	if name != "" {
		hello += " " + name
	}
	if r.persona != "" {
		hello += fmt.Sprintf(", it's %s", r.persona)
	}

	switch {
	case name != "" && topic != "":
		return fmt.Sprintf("%s. Welcome back! Last time you shared about %s. What would you like to pick up today?", hello, topic)
	case name != "":
		return fmt.Sprintf("%s. It's good to hear from you again. What would you like to talk about today?", hello)
	case topic != "":
		return fmt.Sprintf("%s. Welcome back! Last time you shared about %s. By the way, I don't think I caught your name last time?", hello, topic)
	default:
		return fmt.Sprintf("%s. Welcome back, it's lovely to hear from you again. Before we continue, I don't think I caught your name last time?", hello)
	}
}

// Search answers a mid-call memory lookup. Engine failures produce an empty
// result rather than an error so the conversation can go on.
func (r *ProfileResolver) Search(ctx context.Context, caller model.CallerID, query string, limit int) *elevenlabs.SearchDataResponse {
	resp := &elevenlabs.SearchDataResponse{Memories: []elevenlabs.MemoryItem{}}
	if limit <= 0 {
		limit = searchDefaultLimit
	}

	hits, err := r.memory.Query(ctx, query, caller, limit)
	if err != nil {
		logging.From(ctx).Warn("memory search failed, returning empty result",
			slog.String("caller", caller.String()),
			slog.Any("error", err),
		)
		return resp
	}

	var name string
	var parts []string
	for _, hit := range hits {
		sector := hit.Sector
		if sector == "" {
			sector = types.SectorSemantic
		}
		resp.Memories = append(resp.Memories, elevenlabs.MemoryItem{
			Content:  hit.Content,
			Sector:   sector.String(),
			Salience: hit.Salience,
			Score:    hit.Score,
		})

		if name == "" {
			switch config.NormalizeFieldKey(hit.MetaString(model.MetaField)) {
			case "first_name", "name":
				name = strings.TrimSpace(hit.MetaString(model.MetaValue))
			}
		}
		if hit.Content != "" && hit.Salience > searchSummaryMinSal && len(parts) < searchSummaryMaxPieces {
			parts = append(parts, hit.Content)
		}
	}

	if name != "" || len(parts) > 0 {
		resp.Profile = &elevenlabs.ProfileData{
			Name:        name,
			Summary:     strings.Join(parts, " "),
			PhoneNumber: caller.String(),
		}
	}

	return resp
}

func lastCallSummary(hits []*model.MemoryHit) string {
	for _, hit := range hits {
		if hit.MetaString(model.MetaKind) != model.TagCallSummary && hit.Sector != types.SectorEpisodic {
			continue
		}
		content := strings.TrimSpace(hit.Content)
		if isConversationalFiller(content) {
			continue
		}
		truncated := model.TruncateAtSentence(content, lastCallSummaryLength)
		if truncated != "" && !isConversationalFiller(truncated) {
			return lastCallPrefix + truncated
		}
	}
	return ""
}

func findNextGreeting(hits []*model.MemoryHit, agentID string) string {
	if agentID == "" {
		return ""
	}
	for _, hit := range hits {
		if hit.MetaString(model.MetaKind) == model.TagNextGreeting && hit.MetaString(model.MetaAgentID) == agentID {
			return strings.TrimSpace(hit.Content)
		}
	}
	return ""
}

// summarizeProfileHits joins up to three high-salience profile facts, used
// when the engine summary has no usable top content
func summarizeProfileHits(hits []*model.MemoryHit) string {
	var parts []string
	for _, hit := range hits {
		if len(parts) >= searchSummaryMaxPieces {
			break
		}
		if hit.Sector != types.SectorSemantic || hit.Salience < profileSummaryMinSal {
			continue
		}
		content := strings.TrimSpace(hit.Content)
		if content == "" || len(content) >= profileSummaryMaxLen || isConversationalFiller(content) {
			continue
		}
		parts = append(parts, content)
	}
	return strings.Join(parts, " ")
}
