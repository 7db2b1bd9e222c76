package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem/llm/gemini"
	"github.com/urfave/cli/v3"
	"github.com/webmasterarbez/elaoms/pkg/service/digest"
)

// Gemini holds configuration for the Gemini LLM client
type Gemini struct {
	projectID    string
	location     string
	nextGreeting bool
}

// Flags returns CLI flags for Gemini configuration
func (g *Gemini) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "gemini-project",
			Category:    "Digest",
			Usage:       "Google Cloud project ID for Gemini API (plain digest when empty)",
			Sources:     cli.EnvVars("ELAOMS_GEMINI_PROJECT"),
			Destination: &g.projectID,
		},
		&cli.StringFlag{
			Name:        "gemini-location",
			Category:    "Digest",
			Usage:       "Google Cloud location for Gemini API",
			Value:       "us-central1",
			Sources:     cli.EnvVars("ELAOMS_GEMINI_LOCATION"),
			Destination: &g.location,
		},
		&cli.BoolFlag{
			Name:        "next-greeting",
			Category:    "Digest",
			Usage:       "Generate an agent-specific first message for the caller's next call",
			Value:       true,
			Sources:     cli.EnvVars("ELAOMS_NEXT_GREETING"),
			Destination: &g.nextGreeting,
		},
	}
}

// LogValue implements slog.LogValuer
func (g Gemini) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("project_id", g.projectID),
		slog.String("location", g.location),
		slog.Bool("next_greeting", g.nextGreeting),
	)
}

// Enabled reports whether an LLM digest is configured
func (g *Gemini) Enabled() bool {
	return g.projectID != ""
}

// Configure creates the transcript digest service. Without a project ID the
// plain digest is returned.
func (g *Gemini) Configure(ctx context.Context) (digest.Service, error) {
	if g.projectID == "" {
		return digest.NewPlain(), nil
	}

	client, err := gemini.New(ctx, g.projectID, g.location)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create Gemini client")
	}

	svc, err := digest.New(client, digest.WithNextGreeting(g.nextGreeting))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create digest service")
	}
	return svc, nil
}
