package digest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/webmasterarbez/elaoms/pkg/domain/model"
	"github.com/webmasterarbez/elaoms/pkg/utils/logging"
)

// client implements Service with an LLM
type client struct {
	llmClient gollem.LLMClient
	greeting  bool
}

// Option is a functional option for client configuration
type Option func(*client)

// WithNextGreeting asks the model to also write an opening line for the
// caller's next call
func WithNextGreeting(enabled bool) Option {
	return func(c *client) {
		c.greeting = enabled
	}
}

// New creates an LLM backed digest Service. When the model fails or returns
// nothing usable, the plain digest is returned instead.
func New(llmClient gollem.LLMClient, opts ...Option) (Service, error) {
	if llmClient == nil {
		return nil, goerr.New("LLM client is required")
	}

	c := &client{
		llmClient: llmClient,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

func (c *client) Digest(ctx context.Context, input Input) (*Result, error) {
	fallback := &Result{Summary: fallbackSummary(input)}
	if len(input.Transcript) == 0 {
		return fallback, nil
	}

	result, err := c.generate(ctx, input)
	if err != nil {
		logging.From(ctx).Warn("LLM digest failed, using plain digest",
			slog.String("conversation_id", input.ConversationID),
			slog.Any("error", err),
		)
		return fallback, nil
	}
	if result.Summary == "" {
		result.Summary = fallback.Summary
	}
	return result, nil
}

func (c *client) generate(ctx context.Context, input Input) (*Result, error) {
	session, err := c.llmClient.NewSession(ctx,
		gollem.WithSessionContentType(gollem.ContentTypeJSON),
		gollem.WithSessionResponseSchema(c.buildResponseSchema()),
		gollem.WithSessionSystemPrompt(buildSystemPrompt(c.greeting)),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create LLM session")
	}

	resp, err := session.Generate(ctx, []gollem.Input{gollem.Text(buildUserPrompt(input))})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate content from LLM")
	}
	if resp == nil || len(resp.Texts) == 0 {
		return nil, goerr.New("empty LLM response")
	}

	var llmResp llmResponse
	if err := json.Unmarshal([]byte(resp.Texts[0]), &llmResp); err != nil {
		return nil, goerr.Wrap(err, "failed to parse LLM response", goerr.V("response", resp.Texts[0]))
	}

	result := &Result{
		Summary: strings.TrimSpace(llmResp.Summary),
	}
	if len(result.Summary) > MaxSummaryLength {
		if truncated := model.TruncateAtSentence(result.Summary, MaxSummaryLength); truncated != "" {
			result.Summary = truncated
		} else {
			result.Summary = model.Truncate(result.Summary, MaxSummaryLength)
		}
	}
	if c.greeting {
		result.NextGreeting = strings.TrimSpace(llmResp.NextGreeting)
	}
	return result, nil
}

func buildSystemPrompt(greeting bool) string {
	var sb strings.Builder

	sb.WriteString("You are summarizing a phone call between a voice agent and a caller so the agent can remember it next time.\n\n")
	sb.WriteString("## Instructions:\n\n")
	sb.WriteString("1. Write `summary`: two or three plain sentences about what the caller talked about, asked for or shared.\n")
	sb.WriteString("2. Describe the caller in the third person. Do not quote the agent and do not include greetings or filler.\n")
	sb.WriteString("3. Keep the summary under 400 characters and in the language of the call.\n")
	if greeting {
		sb.WriteString("4. Write `next_greeting`: one warm sentence the agent can open the next call with, referring to what was discussed.\n")
	} else {
		sb.WriteString("4. Leave `next_greeting` empty.\n")
	}

	return sb.String()
}

func buildUserPrompt(input Input) string {
	var sb strings.Builder

	if input.PlatformSummary != "" {
		sb.WriteString("## Platform summary:\n\n")
		sb.WriteString(input.PlatformSummary)
		sb.WriteString("\n\n")
	}

	if len(input.Facts) > 0 {
		sb.WriteString("## Known facts:\n\n")
		keys := make([]string, 0, len(input.Facts))
		for k := range input.Facts {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&sb, "- %s: %s\n", k, input.Facts[k])
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Transcript:\n\n")
	for _, turn := range input.Transcript {
		if turn.Message == "" {
			continue
		}
		fmt.Fprintf(&sb, "%s: %s\n", turn.Role, turn.Message)
	}

	return sb.String()
}

func (c *client) buildResponseSchema() *gollem.Parameter {
	return &gollem.Parameter{
		Title:       "CallDigest",
		Description: "Digest of a completed phone call",
		Type:        gollem.TypeObject,
		Properties: map[string]*gollem.Parameter{
			"summary": {
				Type:        gollem.TypeString,
				Description: "What the caller talked about, in two or three sentences",
				Required:    true,
			},
			"next_greeting": {
				Type:        gollem.TypeString,
				Description: "Opening line for the next call, or empty",
			},
		},
	}
}
