package digest

import (
	"context"
	"strings"

	"github.com/webmasterarbez/elaoms/pkg/domain/model"
)

type plain struct{}

// NewPlain returns a Service that needs no model. It uses the platform's
// transcript summary, falling back to the caller's own utterances.
func NewPlain() Service {
	return &plain{}
}

func (p *plain) Digest(ctx context.Context, input Input) (*Result, error) {
	return &Result{Summary: fallbackSummary(input)}, nil
}

func fallbackSummary(input Input) string {
	if s := strings.TrimSpace(input.PlatformSummary); s != "" {
		return s
	}

	var parts []string
	for _, turn := range input.Transcript {
		if turn.Role != model.RoleUser {
			continue
		}
		if msg := strings.TrimSpace(turn.Message); msg != "" {
			parts = append(parts, msg)
		}
	}
	if len(parts) == 0 {
		return ""
	}

	joined := strings.Join(parts, " ")
	if truncated := model.TruncateAtSentence(joined, MaxSummaryLength); truncated != "" {
		return truncated
	}
	return model.Truncate(joined, MaxSummaryLength)
}
